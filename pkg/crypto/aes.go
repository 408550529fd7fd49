// Package crypto, oturum anahtarlarını türetir ve backend cookie'lerini
// veritabanında şifreli saklamak için AES-256-GCM sağlar.
//
//	key, _ := crypto.DeriveKey(secret, crypto.PurposeCookieSealing)
//	sealed, _ := crypto.Encrypt(`[{"name":"session",...}]`, key)
//	plain, _ := crypto.Decrypt(sealed, key)
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Anahtar türetme amaçları. Aynı SESSION_SECRET'tan her amaç için
// bağımsız bir anahtar çıkar; biri sızarsa diğeri etkilenmez.
const (
	PurposeTokenSigning  = "wellness-coach/session-token"
	PurposeCookieSealing = "wellness-coach/backend-cookies"
)

// KeySize, AES-256 ve HS256 için kullanılan anahtar uzunluğu.
const KeySize = 32

// DeriveKey, secret'tan HKDF-SHA256 ile 32-byte anahtar türetir.
func DeriveKey(secret, purpose string) ([]byte, error) {
	if secret == "" {
		return nil, errors.New("secret must not be empty")
	}

	key := make([]byte, KeySize)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(purpose))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("hkdf: %w", err)
	}
	return key, nil
}

// Encrypt, plaintext'i AES-256-GCM ile şifreler.
// Dönen string base64: nonce (12 byte) + ciphertext + tag.
func Encrypt(plaintext string, key []byte) (string, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("nonce generation: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt, Encrypt çıktısını çözer. Yanlış anahtar veya bozulmuş veri hata döner.
func Decrypt(encoded string, key []byte) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}

	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("decryption failed: %w", err)
	}
	return string(plaintext), nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return gcm, nil
}
