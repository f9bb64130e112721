package debug

import (
	"fmt"
	"image"
	"os"

	"golang.org/x/image/bmp"
)

// DepthImage converts a bottom-up square depth buffer into a top-down
// grayscale image. Depths are stretched over the observed [min, max] range so
// the crop-tightened cascades stay readable; a flat buffer maps to black.
func DepthImage(depth []float32, size int) (*image.Gray, error) {
	if size <= 0 || len(depth) != size*size {
		return nil, fmt.Errorf("depth data size mismatch: expected %d, got %d", size*size, len(depth))
	}

	lo, hi := depth[0], depth[0]
	for _, d := range depth[1:] {
		lo = min(lo, d)
		hi = max(hi, d)
	}
	scale := float32(0)
	if hi > lo {
		scale = 255 / (hi - lo)
	}

	img := image.NewGray(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		src := depth[(size-1-y)*size : (size-y)*size]
		row := img.Pix[y*img.Stride : y*img.Stride+size]
		for x, d := range src {
			row[x] = uint8((d-lo)*scale + 0.5)
		}
	}
	return img, nil
}

// CaptureDepth writes a depth buffer as a grayscale BMP named after the
// cascade and returns the file name.
func (sc *ScreenshotCapture) CaptureDepth(depth []float32, size, cascade int) (string, error) {
	img, err := DepthImage(depth, size)
	if err != nil {
		return "", err
	}

	filename, err := sc.prepare(fmt.Sprintf("cascade%d.bmp", cascade))
	if err != nil {
		return "", err
	}

	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := bmp.Encode(file, img); err != nil {
		return "", fmt.Errorf("encoding BMP: %w", err)
	}
	return filename, nil
}
