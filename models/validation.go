package models

import (
	"fmt"

	"github.com/akinalp/wellness-coach/pkg"
)

// ValidationError, bir form taslağının zorunlu alan veya sayı kontrolünü
// geçemediğini bildirir. Key, kullanıcıya gösterilecek i18n mesaj anahtarıdır.
//
// errors.Is(err, pkg.ErrBadRequest) true döner.
type ValidationError struct {
	Key string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Key)
}

func (e *ValidationError) Unwrap() error {
	return pkg.ErrBadRequest
}

func invalid(key string) error {
	return &ValidationError{Key: key}
}
