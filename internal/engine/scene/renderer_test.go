package scene

import (
	"errors"
	"fmt"
	gomath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/cascadeview/internal/engine/camera"
	"github.com/Faultbox/cascadeview/internal/engine/lighting"
	"github.com/Faultbox/cascadeview/internal/engine/mesh"
	"github.com/Faultbox/cascadeview/internal/engine/shadow"
	"github.com/Faultbox/cascadeview/pkg/math"
)

// recordingDevice logs every call in order.
type recordingDevice struct {
	events  []string
	ranges  [][2]float64
	lit     []LitParams
	failOn  string
	drawErr error
}

func (d *recordingDevice) log(format string, args ...any) {
	d.events = append(d.events, fmt.Sprintf(format, args...))
}

func (d *recordingDevice) Clear()             { d.log("clear") }
func (d *recordingDevice) BindShadowTarget()  { d.log("shadow-target") }
func (d *recordingDevice) BindDefaultTarget() { d.log("default-target") }
func (d *recordingDevice) BindShadowTexture() { d.log("shadow-texture") }

func (d *recordingDevice) SetColorWrites(enabled bool) { d.log("color %v", enabled) }

func (d *recordingDevice) SetPolygonOffset(enabled bool, factor, units float32) {
	d.log("offset %v %g %g", enabled, factor, units)
}

func (d *recordingDevice) SetDepthRange(near, far float64) {
	d.ranges = append(d.ranges, [2]float64{near, far})
	d.log("range")
}

func (d *recordingDevice) UseDepthProgram(crop, lightViewProj math.Mat4) { d.log("depth-program") }
func (d *recordingDevice) UseLineProgram(viewProj math.Mat4)             { d.log("line-program") }

func (d *recordingDevice) UseLitProgram(p LitParams) {
	d.lit = append(d.lit, p)
	d.log("lit-program")
}

func (d *recordingDevice) Draw(obj *mesh.Object, pass Pass) error {
	ev := fmt.Sprintf("draw %s %s", pass, obj.Name)
	d.log("%s", ev)
	if d.failOn != "" && d.failOn == fmt.Sprintf("%s@%d", ev, len(d.lit)) {
		return d.drawErr
	}
	return nil
}

func (d *recordingDevice) count(event string) int {
	n := 0
	for _, e := range d.events {
		if e == event {
			n++
		}
	}
	return n
}

type fixture struct {
	cam    *camera.Camera
	rig    *shadow.LightRig
	splits shadow.Splits
	frame  Frame
}

func newFixture(t *testing.T, cascades int) *fixture {
	t.Helper()
	cam, err := camera.New(camera.Config{
		Position:  math.Vec3{X: 0, Y: 20, Z: 60},
		Reference: math.Vec3{},
		FOV:       math.Radians(60),
		Near:      1,
		Far:       1000,
		Aspect:    16.0 / 9.0,
	})
	require.NoError(t, err)

	rig, err := shadow.NewLightRig(shadow.LightConfig{
		Mode:     shadow.LightStatic,
		Position: math.Vec3{X: 100, Y: 200, Z: 50},
	})
	require.NoError(t, err)
	require.NoError(t, rig.FitScene(shadow.AABB{
		Min: math.Vec3{X: -400, Y: 0, Z: -400},
		Max: math.Vec3{X: 400, Y: 40, Z: 400},
	}))

	splits, err := shadow.NewSplits(cam.Near(), cam.Far(), cascades)
	require.NoError(t, err)

	lights := lighting.NewRegistry()
	_, err = lights.Add(lighting.Light{Position: rig.Position4(), Diffuse: [3]float32{1, 1, 1}, Enabled: true})
	require.NoError(t, err)

	objects := []*mesh.Object{
		{Name: "ground", Model: math.Identity()},
		{Name: "cube", Model: math.Translate(0, 2, 0), CastsShadow: true},
	}

	return &fixture{
		cam:    cam,
		rig:    rig,
		splits: splits,
		frame: Frame{
			Camera:  cam,
			Light:   rig,
			Lights:  lights,
			Splits:  splits,
			Objects: objects,
		},
	}
}

type clipState struct {
	near, far uint32
	proj      math.Mat4
}

func snapshot(c *camera.Camera) clipState {
	return clipState{
		near: gomath.Float32bits(c.Near()),
		far:  gomath.Float32bits(c.Far()),
		proj: c.ProjectionMatrix(),
	}
}

func TestRenderFrameOrdering(t *testing.T) {
	f := newFixture(t, 4)
	dev := &recordingDevice{}
	r := NewRenderer(dev, DefaultOptions())

	require.NoError(t, r.RenderFrame(f.frame))

	cascade := []string{
		"shadow-target",
		"color false",
		"offset true 2 4",
		"depth-program",
		"draw depth cube",
		"offset false 0 0",
		"color true",
		"default-target",
		"range",
		"shadow-texture",
		"lit-program",
		"draw lit ground",
		"draw lit cube",
		"range",
	}
	want := []string{"default-target", "clear"}
	for i := 0; i < 4; i++ {
		want = append(want, cascade...)
	}
	assert.Equal(t, want, dev.events)
	assert.Len(t, r.Cascades(), 4)
}

func TestRenderFrameDepthRanges(t *testing.T) {
	f := newFixture(t, 4)
	dev := &recordingDevice{}
	require.NoError(t, NewRenderer(dev, DefaultOptions()).RenderFrame(f.frame))

	// Each cascade sets its slice and then resets to [0, 1].
	require.Len(t, dev.ranges, 8)
	var slices [][2]float64
	for i := 0; i < len(dev.ranges); i += 2 {
		slices = append(slices, dev.ranges[i])
		assert.Equal(t, [2]float64{0, 1}, dev.ranges[i+1])
	}

	assert.Equal(t, 0.0, slices[0][0])
	assert.Equal(t, 1.0, slices[3][1])
	for i := 0; i < 3; i++ {
		assert.Equal(t, slices[i][1], slices[i+1][0], "cascade %d end must equal cascade %d start", i, i+1)
		assert.Less(t, slices[i][0], slices[i][1])
	}
}

func TestRenderFrameRestoresCamera(t *testing.T) {
	f := newFixture(t, 4)
	before := snapshot(f.cam)

	dev := &recordingDevice{}
	require.NoError(t, NewRenderer(dev, DefaultOptions()).RenderFrame(f.frame))
	assert.Equal(t, before, snapshot(f.cam))

	// The lit pass of each cascade sees the cascade's own clip planes.
	require.Len(t, dev.lit, 4)
	for i, p := range dev.lit {
		near, far := f.splits.Range(i)
		want := math.Perspective(f.cam.FOV(), f.cam.Aspect(), near, far)
		assert.Equal(t, want, p.Projection, "cascade %d projection", i)
		assert.Equal(t, i, p.Cascade)
		assert.True(t, p.Shadowed)
		assert.Equal(t, f.rig.ViewProjection(), p.LightViewProj)
	}
}

func TestRenderFrameRestoresCameraOnError(t *testing.T) {
	f := newFixture(t, 4)
	before := snapshot(f.cam)

	boom := errors.New("draw failed")
	dev := &recordingDevice{failOn: "draw lit cube@3", drawErr: boom}
	err := NewRenderer(dev, DefaultOptions()).RenderFrame(f.frame)

	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "cascade 2")
	assert.Equal(t, before, snapshot(f.cam))
	assert.Equal(t, [2]float64{0, 1}, dev.ranges[len(dev.ranges)-1], "depth range reset on error")
	assert.Equal(t, "range", dev.events[len(dev.events)-1])
	assert.Equal(t, 3, dev.count("lit-program"), "cascade 3 never starts")
}

func TestRenderFrameDepthPassErrorRestoresState(t *testing.T) {
	f := newFixture(t, 2)
	boom := errors.New("depth draw failed")
	dev := &recordingDevice{failOn: "draw depth cube@0", drawErr: boom}

	err := NewRenderer(dev, DefaultOptions()).RenderFrame(f.frame)
	require.ErrorIs(t, err, boom)

	n := len(dev.events)
	assert.Equal(t, []string{"offset false 0 0", "color true", "default-target"}, dev.events[n-3:])
	assert.Empty(t, dev.ranges)
}

func TestRenderFrameCaptureDepth(t *testing.T) {
	f := newFixture(t, 4)
	dev := &recordingDevice{}
	r := NewRenderer(dev, DefaultOptions())

	var captured []int
	r.CaptureDepth(2, func(i int) {
		captured = append(captured, i)
		dev.log("capture")
	})
	require.NoError(t, r.RenderFrame(f.frame))
	require.NoError(t, r.RenderFrame(f.frame))

	assert.Equal(t, []int{2}, captured, "capture runs once")
	// The capture sees cascade 2's depth: after its depth pass, before its lit pass.
	idx := indexOf(dev.events, "capture")
	require.Positive(t, idx)
	assert.Equal(t, "default-target", dev.events[idx-1])
	assert.Equal(t, "range", dev.events[idx+1])
}

func TestRenderFrameTightenBounds(t *testing.T) {
	f := newFixture(t, 3)
	opts := DefaultOptions()
	opts.TightenBounds = true
	r := NewRenderer(&recordingDevice{}, opts)
	require.NoError(t, r.RenderFrame(f.frame))

	lightVP := f.rig.ViewProjection()
	for _, c := range r.Cascades() {
		assert.Equal(t, shadow.CropMatrix(c.Corners.Bounds().Corners(), lightVP), c.Crop)
	}
}

func TestRenderFrameWithoutShadows(t *testing.T) {
	f := newFixture(t, 4)
	before := snapshot(f.cam)
	dev := &recordingDevice{}
	opts := DefaultOptions()
	opts.ShadowsEnabled = false

	line := &mesh.Object{Name: "frusta", Model: math.Identity()}
	f.frame.Overlay = []*mesh.Object{line}
	require.NoError(t, NewRenderer(dev, opts).RenderFrame(f.frame))

	assert.Equal(t, []string{
		"default-target", "clear",
		"lit-program", "draw lit ground", "draw lit cube",
		"line-program", "draw line frusta",
	}, dev.events)
	assert.False(t, dev.lit[0].Shadowed)
	assert.Equal(t, before, snapshot(f.cam))
}

func TestRenderFrameRequiresCamera(t *testing.T) {
	r := NewRenderer(&recordingDevice{}, DefaultOptions())
	assert.ErrorIs(t, r.RenderFrame(Frame{}), ErrNoCamera)
}

func TestRenderFrameRequiresSplits(t *testing.T) {
	f := newFixture(t, 1)
	f.frame.Splits = nil
	err := NewRenderer(&recordingDevice{}, DefaultOptions()).RenderFrame(f.frame)
	assert.ErrorIs(t, err, shadow.ErrInvalidCount)
}

func indexOf(events []string, e string) int {
	for i, v := range events {
		if v == e {
			return i
		}
	}
	return -1
}
