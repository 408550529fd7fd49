package models

import "strings"

// Credentials, login ve register formlarından (veya /api/session/*) gelen veri.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate, iki alanın da dolu olduğunu kontrol eder.
// Başka kural uygulanmaz; kullanıcı adı politikası backend'e aittir.
func (c *Credentials) Validate() error {
	c.Username = strings.TrimSpace(c.Username)
	if c.Username == "" || c.Password == "" {
		return invalid("auth.fieldsRequired")
	}
	return nil
}
