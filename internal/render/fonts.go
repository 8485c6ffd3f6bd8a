package render

import (
	"fmt"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
)

// fontSet holds the parsed embedded Go fonts. Faces are cut per draw call so
// the renderer can pick exact sizes, including auto-shrunk ones.
type fontSet struct {
	bold     *truetype.Font
	medium   *truetype.Font
	regular  *truetype.Font
	mono     *truetype.Font
	monoBold *truetype.Font
}

func loadFonts() (*fontSet, error) {
	fs := &fontSet{}
	for _, f := range []struct {
		name string
		ttf  []byte
		dst  **truetype.Font
	}{
		{"gobold", gobold.TTF, &fs.bold},
		{"gomedium", gomedium.TTF, &fs.medium},
		{"goregular", goregular.TTF, &fs.regular},
		{"gomono", gomono.TTF, &fs.mono},
		{"gomonobold", gomonobold.TTF, &fs.monoBold},
	} {
		parsed, err := truetype.Parse(f.ttf)
		if err != nil {
			return nil, fmt.Errorf("parse embedded font %s: %w", f.name, err)
		}
		*f.dst = parsed
	}
	return fs, nil
}

func (fs *fontSet) face(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}
