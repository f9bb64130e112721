package debug

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/Faultbox/cascadeview/internal/engine/shadow"
	"github.com/Faultbox/cascadeview/pkg/math"
)

func TestBoxLines(t *testing.T) {
	b := shadow.AABB{Min: math.Vec3{X: -1, Y: -2, Z: -3}, Max: math.Vec3{X: 1, Y: 2, Z: 3}}
	v := BoxLines(b, 0.5)
	require.Len(t, v, WireframeVertexCount*3)

	for i := 0; i < len(v); i += 3 {
		p := math.Vec3{X: v[i], Y: v[i+1], Z: v[i+2]}
		assert.InDelta(t, 1.5, abs32(p.X), 1e-6)
		assert.InDelta(t, 2.5, abs32(p.Y), 1e-6)
		assert.InDelta(t, 3.5, abs32(p.Z), 1e-6)
	}
}

func TestFrustumLinesUnitEdges(t *testing.T) {
	c := shadow.AABB{Max: math.Vec3{X: 1, Y: 1, Z: 1}}.Corners()
	v := FrustumLines(c)
	require.Len(t, v, WireframeVertexCount*3)

	// Every edge of a unit box has length 1.
	for i := 0; i < len(v); i += 6 {
		a := math.Vec3{X: v[i], Y: v[i+1], Z: v[i+2]}
		b := math.Vec3{X: v[i+3], Y: v[i+4], Z: v[i+5]}
		assert.InDelta(t, 1, a.Distance(b), 1e-6, "edge %d", i/6)
	}
}

func TestAppendFrustumLines(t *testing.T) {
	c := shadow.AABB{Max: math.Vec3{X: 1, Y: 1, Z: 1}}.Corners()
	v := AppendFrustumLines(nil, c)
	v = AppendFrustumLines(v, c)
	assert.Len(t, v, 2*WireframeVertexCount*3)
}

func TestFlipRGBA(t *testing.T) {
	// 1x2 image: bottom row red, top row blue.
	pixels := []byte{
		255, 0, 0, 255,
		0, 0, 255, 255,
	}
	img, err := FlipRGBA(pixels, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 255, 255}, img.Pix[0:4], "top row comes from the last GL row")
	assert.Equal(t, []byte{255, 0, 0, 255}, img.Pix[4:8])

	_, err = FlipRGBA(pixels, 2, 2)
	assert.Error(t, err)
}

func TestCaptureFromPixels(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	sc := NewScreenshotCapture(dir, "frame")
	sc.now = func() time.Time { return time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC) }

	name, err := sc.CaptureFromPixels(make([]byte, 4*3*2), 3, 2)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "frame_2024-03-01_12-30-00.000.png"), name)

	f, err := os.Open(name)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
}

func TestDepthImage(t *testing.T) {
	// Bottom-up 2x2: bottom row near, top row far.
	img, err := DepthImage([]float32{0.2, 0.2, 0.6, 0.6}, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint8{255, 255}, img.Pix[0:2])
	assert.Equal(t, []uint8{0, 0}, img.Pix[img.Stride:img.Stride+2])

	flat, err := DepthImage([]float32{1, 1, 1, 1}, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 0}, flat.Pix[0:2])

	_, err = DepthImage([]float32{1, 1, 1}, 2)
	assert.Error(t, err)
}

func TestCaptureDepth(t *testing.T) {
	dir := t.TempDir()
	sc := NewScreenshotCapture(dir, "depth")

	name, err := sc.CaptureDepth([]float32{0, 0.5, 0.5, 1}, 2, 3)
	require.NoError(t, err)
	assert.Contains(t, filepath.Base(name), "cascade3.bmp")

	f, err := os.Open(name)
	require.NoError(t, err)
	defer f.Close()
	img, err := bmp.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 2), img.Bounds())
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
