package main

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/tiff"

	"github.com/twpayne/go-heightmap"
)

// newGrayImage returns raster's intensities as an image.
func newGrayImage(raster *heightmap.CompositeRaster) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, raster.Width, raster.Height))
	copy(img.Pix, raster.Intensities())
	return img
}

// formatFromPath returns the image format implied by path's extension.
func formatFromPath(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

// An encodeFunc writes an image.
type encodeFunc func(io.Writer, image.Image) error

// imageEncoder returns the encoder for format.
func imageEncoder(format string) (encodeFunc, error) {
	switch format {
	case "png":
		return png.Encode, nil
	case "tif", "tiff":
		return func(w io.Writer, img image.Image) error {
			return tiff.Encode(w, img, &tiff.Options{
				Compression: tiff.Deflate,
			})
		}, nil
	default:
		return nil, fmt.Errorf("%s: unsupported image format", format)
	}
}

// writeImage writes raster to path in format.
func writeImage(path, format string, raster *heightmap.CompositeRaster) (err error) {
	encode, err := imageEncoder(format)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
	}()
	return encode(file, newGrayImage(raster))
}
