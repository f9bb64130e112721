package texture

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

var (
	light = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	dark  = color.RGBA{R: 60, G: 60, B: 60, A: 255}
)

func TestChecker(t *testing.T) {
	img := Checker(8, 4, light, dark)
	assert.Equal(t, light, img.RGBAAt(0, 0))
	assert.Equal(t, dark, img.RGBAAt(2, 0))
	assert.Equal(t, dark, img.RGBAAt(0, 2))
	assert.Equal(t, light, img.RGBAAt(2, 2))
	assert.Equal(t, light, img.RGBAAt(7, 7))
}

func TestFitScalesDown(t *testing.T) {
	img := Checker(64, 2, light, dark)
	fit := Fit(img, 16)
	assert.Equal(t, 16, fit.Rect.Dx())
	assert.Equal(t, 16, fit.Rect.Dy())

	same := Fit(img, 64)
	assert.Same(t, img, same)

	wide := Fit(image.NewRGBA(image.Rect(0, 0, 100, 10)), 50)
	assert.Equal(t, image.Rect(0, 0, 50, 5), wide.Rect)
}

func TestLoadBMP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ground.bmp")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, bmp.Encode(f, Checker(4, 2, light, dark)))
	require.NoError(t, f.Close())

	img, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, light, img.RGBAAt(0, 0))
	assert.Equal(t, dark, img.RGBAAt(2, 0))
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func tgaHeader(imageType byte, w, h int, bpp byte, descriptor byte) []byte {
	hdr := make([]byte, 18)
	hdr[2] = imageType
	hdr[12], hdr[13] = byte(w), byte(w>>8)
	hdr[14], hdr[15] = byte(h), byte(h>>8)
	hdr[16] = bpp
	hdr[17] = descriptor
	return hdr
}

func TestDecodeTGAUncompressedBottomUp(t *testing.T) {
	data := tgaHeader(tgaTrueColor, 2, 2, 24, 0)
	// Rows are stored bottom-up, pixels as BGR.
	data = append(data,
		0, 0, 255, 0, 255, 0, // bottom row: red, green
		255, 0, 0, 255, 255, 255, // top row: blue, white
	)
	img, err := DecodeTGA(data)
	require.NoError(t, err)
	rgba := img.(*image.RGBA)
	assert.Equal(t, color.RGBA{B: 255, A: 255}, rgba.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, rgba.RGBAAt(1, 0))
	assert.Equal(t, color.RGBA{R: 255, A: 255}, rgba.RGBAAt(0, 1))
	assert.Equal(t, color.RGBA{G: 255, A: 255}, rgba.RGBAAt(1, 1))
}

func TestDecodeTGARLE(t *testing.T) {
	data := tgaHeader(tgaTrueColorRLE, 3, 1, 32, 0x20)
	data = append(data,
		0x81, 10, 20, 30, 40, // run of two
		0x00, 1, 2, 3, 4, // one raw pixel
	)
	img, err := DecodeTGA(data)
	require.NoError(t, err)
	rgba := img.(*image.RGBA)
	assert.Equal(t, color.RGBA{R: 30, G: 20, B: 10, A: 40}, rgba.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{R: 30, G: 20, B: 10, A: 40}, rgba.RGBAAt(1, 0))
	assert.Equal(t, color.RGBA{R: 3, G: 2, B: 1, A: 4}, rgba.RGBAAt(2, 0))
}

func TestDecodeTGAErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"short header", []byte{0, 0, 2}},
		{"color mapped", append(func() []byte { h := tgaHeader(tgaTrueColor, 1, 1, 24, 0); h[1] = 1; return h }(), 0, 0, 0)},
		{"grayscale", tgaHeader(3, 1, 1, 8, 0)},
		{"16 bit", tgaHeader(tgaTrueColor, 1, 1, 16, 0)},
		{"truncated raw", append(tgaHeader(tgaTrueColor, 2, 2, 24, 0), 1, 2, 3)},
		{"truncated rle", append(tgaHeader(tgaTrueColorRLE, 4, 1, 24, 0), 0x83, 1, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTGA(tt.data)
			assert.Error(t, err)
		})
	}
}
