// Package common contains plain data types and helpers shared across the engine:
// colors, matrix math, image decoding, logging and debug assertions.
package common

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/disintegration/imaging"
	"github.com/mauserzjeh/dxt"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// TextureStagingData holds decoded RGBA8 pixel data pending GPU upload.
type TextureStagingData struct {
	// Pixels is tightly packed RGBA, 4 bytes per pixel, rows top to bottom.
	Pixels []byte
	// Width is the width of the image in pixels.
	Width uint32
	// Height is the height of the image in pixels.
	Height uint32
}

// SamplerStagingData holds the configuration for a sampler pending GPU creation.
// Zero fields fall back to backend defaults.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode outside the [0, 1] range.
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp bound the sampled level of detail.
	LodMinClamp, LodMaxClamp float32
	// MaxAnisotropy is the maximum anisotropy level for anisotropic filtering.
	MaxAnisotropy uint16
}

var ddsMagic = []byte("DDS ")

const (
	ddsHeaderSize  = 128
	ddsFourCCDXT1  = "DXT1"
	ddsFourCCDXT5  = "DXT5"
	ddsFourCCStart = 84
)

// LoadImage reads and decodes an image file into RGBA staging data.
// PNG, JPEG, BMP, TIFF, WebP and DXT1/DXT5 DDS files are supported.
//
// Parameters:
//   - path: the file to read
//   - flipV: flip the image vertically so row 0 is the bottom of the image
//
// Returns:
//   - TextureStagingData: the decoded pixels
//   - error: if the file cannot be read or decoded
func LoadImage(path string, flipV bool) (TextureStagingData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return TextureStagingData{}, fmt.Errorf("failed to read image %s: %w", path, err)
	}
	staging, err := DecodeImage(data, flipV)
	if err != nil {
		return TextureStagingData{}, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return staging, nil
}

// DecodeImage decodes encoded image bytes into RGBA staging data.
//
// Parameters:
//   - data: the encoded image
//   - flipV: flip the image vertically so row 0 is the bottom of the image
//
// Returns:
//   - TextureStagingData: the decoded pixels
//   - error: if the format is unknown or the data is corrupt
func DecodeImage(data []byte, flipV bool) (TextureStagingData, error) {
	var img image.Image
	var err error
	if bytes.HasPrefix(data, ddsMagic) {
		img, err = decodeDDS(data)
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return TextureStagingData{}, err
	}

	var nrgba *image.NRGBA
	if flipV {
		nrgba = imaging.FlipV(img)
	} else {
		nrgba = imaging.Clone(img)
	}
	b := nrgba.Bounds()
	return TextureStagingData{
		Pixels: nrgba.Pix,
		Width:  uint32(b.Dx()),
		Height: uint32(b.Dy()),
	}, nil
}

// decodeDDS decodes the top mip level of an uncompressed-header DXT1 or DXT5 DDS file.
func decodeDDS(data []byte) (image.Image, error) {
	if len(data) < ddsHeaderSize {
		return nil, errors.New("dds: truncated header")
	}
	height := binary.LittleEndian.Uint32(data[12:16])
	width := binary.LittleEndian.Uint32(data[16:20])
	fourCC := string(data[ddsFourCCStart : ddsFourCCStart+4])
	payload := data[ddsHeaderSize:]

	var pix []byte
	var err error
	switch fourCC {
	case ddsFourCCDXT1:
		pix, err = dxt.DecodeDXT1(payload, uint(width), uint(height))
	case ddsFourCCDXT5:
		pix, err = dxt.DecodeDXT5(payload, uint(width), uint(height))
	default:
		return nil, fmt.Errorf("dds: unsupported format %q", fourCC)
	}
	if err != nil {
		return nil, fmt.Errorf("dds: %w", err)
	}

	img := image.NewNRGBA(image.Rect(0, 0, int(width), int(height)))
	copy(img.Pix, pix)
	return img, nil
}
