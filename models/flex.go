// Package models, uygulamanın domain modellerini tanımlar: oturum, form
// taslakları, backend'le alınıp verilen log kayıtları ve coach transcript'i.
//
// Backend log kayıtlarını opak değer olarak ele alırız; sadece gösterim ve
// zorunlu alan kontrolü yapılır.
package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// FlexString, JSON'da string, sayı veya null olarak gelebilen bir değeri
// metin olarak saklar. Backend bazı alanları (id, calories) sayı, bazılarını
// string döndürür; gösterim için ikisi de yeterlidir.
type FlexString string

// UnmarshalJSON, string, number ve null kabul eder.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*f = FlexString(n.String())
		return nil
	}
}

// MarshalJSON, değer sayıya benziyorsa sayı, değilse string olarak yazar.
func (f FlexString) MarshalJSON() ([]byte, error) {
	s := string(f)
	if s == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return []byte(s), nil
	}
	return json.Marshal(s)
}

func (f FlexString) String() string {
	return string(f)
}

// parseOptionalNumber, boş alan için nil döner; sayı değilse ok=false.
// NaN ve Inf sonlu olmadığı için JSON'a yazılamaz, sayı sayılmaz.
func parseOptionalNumber(raw string) (val *float64, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil, false
	}
	return &n, true
}
