package common

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoRowPNG encodes a 1x2 image with a red top row and a blue bottom row.
func twoRowPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 1, 2))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(0, 1, color.NRGBA{B: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeImageFlip(t *testing.T) {
	data := twoRowPNG(t)

	staging, err := DecodeImage(data, false)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), staging.Width)
	assert.Equal(t, uint32(2), staging.Height)
	assert.Equal(t, []byte{255, 0, 0, 255, 0, 0, 255, 255}, staging.Pixels)

	flipped, err := DecodeImage(data, true)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 255, 255, 255, 0, 0, 255}, flipped.Pixels)
}

func TestDecodeImageRejectsGarbage(t *testing.T) {
	_, err := DecodeImage([]byte("not an image"), false)
	assert.Error(t, err)
}

func TestDecodeDDSUnsupportedFormat(t *testing.T) {
	data := make([]byte, ddsHeaderSize)
	copy(data, ddsMagic)
	binary.LittleEndian.PutUint32(data[12:16], 4)
	binary.LittleEndian.PutUint32(data[16:20], 4)
	copy(data[ddsFourCCStart:], "ATI2")

	_, err := DecodeImage(data, false)
	assert.ErrorContains(t, err, "unsupported format")

	_, err = DecodeImage(data[:32], false)
	assert.ErrorContains(t, err, "truncated")
}

func TestLoadImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tex.png")
	require.NoError(t, os.WriteFile(path, twoRowPNG(t), 0o644))

	staging, err := LoadImage(path, true)
	require.NoError(t, err)
	assert.Len(t, staging.Pixels, 8)

	_, err = LoadImage(filepath.Join(dir, "missing.png"), true)
	assert.Error(t, err)
}
