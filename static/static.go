// Package static, HTML şablonlarını ve statik asset'leri binary'ye gömer.
//
// templates/: layout.html + her sayfa için bir dosya. Her sayfa
// {{define "content"}} bloğu tanımlar; handlers.Renderer layout'u klonlar.
// assets/: /assets/ altında servis edilen CSS ve JS.
package static

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed assets
var assetFS embed.FS

// Templates, şablon dosyalarını kök dizinde sunar.
func Templates() fs.FS {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		panic("static: templates directory missing: " + err.Error())
	}
	return sub
}

// Assets, asset dosyalarını kök dizinde sunar.
func Assets() fs.FS {
	sub, err := fs.Sub(assetFS, "assets")
	if err != nil {
		panic("static: assets directory missing: " + err.Error())
	}
	return sub
}
