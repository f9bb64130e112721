package scene

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/cascadeview/internal/engine/mesh"
	"github.com/Faultbox/cascadeview/internal/engine/scene/shaders"
	"github.com/Faultbox/cascadeview/internal/engine/shader"
	"github.com/Faultbox/cascadeview/internal/engine/shadow"
	"github.com/Faultbox/cascadeview/internal/logger"
	"github.com/Faultbox/cascadeview/pkg/math"
)

// GLDevice implements Device on an OpenGL 4.1 core context.
type GLDevice struct {
	shadowMap *shadow.Map
	depth     *shader.Program
	lit       *LitProgram
	lines     *shader.Program

	width, height int32
	lineViewProj  math.Mat4

	// CheckErrors makes Draw report glGetError after every draw call.
	CheckErrors bool
}

// NewGLDevice creates the shadow depth target and compiles the programs.
// Must be called AFTER the OpenGL context is created.
func NewGLDevice(shadowResolution int32, width, height int) (*GLDevice, error) {
	d := &GLDevice{
		width:  int32(width),
		height: int32(height),
	}

	var err error
	d.shadowMap, err = shadow.NewMap(shadowResolution)
	if err != nil {
		return nil, err
	}

	d.depth, err = shader.NewProgram("depth", shaders.DepthVertexShader, shaders.DepthFragmentShader)
	if err != nil {
		d.Destroy()
		return nil, err
	}
	d.lit, err = NewLitProgram()
	if err != nil {
		d.Destroy()
		return nil, err
	}
	d.lines, err = shader.NewProgram("line", shaders.LineVertexShader, shaders.LineFragmentShader)
	if err != nil {
		d.Destroy()
		return nil, err
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.ClearColor(0.1, 0.1, 0.1, 1.0)

	logger.Debug("gl device ready",
		zap.Int32("shadowResolution", d.shadowMap.Resolution),
		zap.Int("width", width),
		zap.Int("height", height),
	)
	return d, nil
}

// ShadowMap returns the shared depth target.
func (d *GLDevice) ShadowMap() *shadow.Map {
	return d.shadowMap
}

// Resize updates the default framebuffer size.
func (d *GLDevice) Resize(width, height int) {
	d.width = int32(width)
	d.height = int32(height)
	gl.Viewport(0, 0, d.width, d.height)
}

func (d *GLDevice) Clear() {
	gl.Enable(gl.DEPTH_TEST)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (d *GLDevice) BindShadowTarget() {
	d.shadowMap.Bind()
}

func (d *GLDevice) BindDefaultTarget() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, d.width, d.height)
}

func (d *GLDevice) SetColorWrites(enabled bool) {
	gl.ColorMask(enabled, enabled, enabled, enabled)
}

func (d *GLDevice) SetPolygonOffset(enabled bool, factor, units float32) {
	if !enabled {
		gl.Disable(gl.POLYGON_OFFSET_FILL)
		return
	}
	gl.Enable(gl.POLYGON_OFFSET_FILL)
	gl.PolygonOffset(factor, units)
}

func (d *GLDevice) SetDepthRange(near, far float64) {
	gl.DepthRange(near, far)
}

func (d *GLDevice) BindShadowTexture() {
	d.shadowMap.BindTexture(gl.TEXTURE0 + shadowUnit)
}

func (d *GLDevice) UseDepthProgram(crop, lightViewProj math.Mat4) {
	d.depth.Use()
	d.depth.SetMat4("uLightCropMatrix", crop)
	d.depth.SetMat4("uLightViewProjection", lightViewProj)
}

func (d *GLDevice) UseLitProgram(p LitParams) {
	d.lit.Use()
	d.lit.SetViewProj(p.Projection.Mul(p.View))
	d.lit.SetVec3("uCameraPosition", p.CameraPosition)
	d.lit.SetLightCrop(p.LightCrop)
	d.lit.SetLightViewProj(p.LightViewProj)
	d.lit.SetLightIndex(p.LightIndex)
	d.lit.SetLights(p.Lights)
	d.lit.SetBool("uShadows", p.Shadowed)
	d.lit.SetBool("uTintCascades", p.Tint)
	d.lit.SetInt("uCascade", int32(p.Cascade))
}

// UseLineProgram binds the wireframe program. Lines are drawn without depth
// testing since the color buffer holds per-cascade depth ranges.
func (d *GLDevice) UseLineProgram(viewProj math.Mat4) {
	d.lines.Use()
	d.lineViewProj = viewProj
	gl.Disable(gl.DEPTH_TEST)
}

func (d *GLDevice) Draw(obj *mesh.Object, pass Pass) error {
	switch pass {
	case DepthPass:
		d.depth.SetMat4("uModel", obj.Model)
	case LitPass:
		d.lit.SetMVP(obj.Model)
		d.lit.SetVec4("uDiffuse", obj.Diffuse)
		textured := obj.Textured && obj.Texture != 0
		d.lit.SetTextured(textured)
		if textured {
			gl.ActiveTexture(gl.TEXTURE0 + diffuseUnit)
			gl.BindTexture(gl.TEXTURE_2D, obj.Texture)
		}
	case LinePass:
		d.lines.SetMat4("uMVP", d.lineViewProj.Mul(obj.Model))
		d.lines.SetVec4("uColor", obj.Diffuse)
	}
	obj.Draw()

	if d.CheckErrors {
		if e := gl.GetError(); e != gl.NO_ERROR {
			return fmt.Errorf("gl error 0x%x drawing %s in %s pass", e, obj.Name, pass)
		}
	}
	return nil
}

// Destroy releases the programs and the shadow target.
func (d *GLDevice) Destroy() {
	if d.lines != nil {
		d.lines.Delete()
	}
	if d.lit != nil {
		d.lit.Delete()
	}
	if d.depth != nil {
		d.depth.Delete()
	}
	if d.shadowMap != nil {
		d.shadowMap.Destroy()
	}
}

// ReadPixels reads the default framebuffer as bottom-up RGBA rows.
func (d *GLDevice) ReadPixels() (pixels []byte, width, height int) {
	width, height = int(d.width), int(d.height)
	pixels = make([]byte, width*height*4)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, d.width, d.height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, width, height
}
