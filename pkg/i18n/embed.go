package i18n

import (
	"embed"
	"io/fs"
)

//go:embed locales/*.json
var embeddedLocales embed.FS

// Locales, gömülü locales/ dizinini kök olarak döner.
// Binary harici çeviri dosyasına ihtiyaç duymaz.
func Locales() fs.FS {
	sub, err := fs.Sub(embeddedLocales, "locales")
	if err != nil {
		panic(err)
	}
	return sub
}

// LoadEmbedded, gömülü çevirileri yükler.
func LoadEmbedded() error {
	return Load(Locales())
}
