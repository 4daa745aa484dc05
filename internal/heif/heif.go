// Package heif wraps the goheif decoder behind the standard image
// registry so HEIC files decode through the usual image.Decode path.
package heif

import (
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/jdeng/goheif"
)

var registerOnce sync.Once

// heifBrands lists the ftyp brands we accept as HEIF containers.
// The leading four bytes are the box size, matched as wildcards.
var heifBrands = []string{"heic", "heix", "hevc", "mif1", "msf1"}

// Register installs the HEIF decoder into the image package registry.
// Safe to call from multiple goroutines; registration happens once per
// process.
func Register() {
	registerOnce.Do(func() {
		for _, brand := range heifBrands {
			image.RegisterFormat("heic", "????ftyp"+brand, goheif.Decode, goheif.DecodeConfig)
		}
	})
}

// DecodeFile opens and decodes a single image file. Registration is
// lazy, so callers never need to invoke Register themselves.
func DecodeFile(path string) (image.Image, error) {
	Register()

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return img, nil
}
