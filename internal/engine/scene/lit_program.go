package scene

import (
	"github.com/Faultbox/cascadeview/internal/engine/lighting"
	"github.com/Faultbox/cascadeview/internal/engine/scene/shaders"
	"github.com/Faultbox/cascadeview/internal/engine/shader"
	"github.com/Faultbox/cascadeview/pkg/math"
)

// Texture units used by the lit pass.
const (
	diffuseUnit = 0
	shadowUnit  = 1
)

// LitProgram wraps the lit-pass program with typed setters.
type LitProgram struct {
	*shader.Program

	crop          math.Mat4
	lightViewProj math.Mat4
	viewProj      math.Mat4
}

// NewLitProgram compiles the lit-pass shaders.
func NewLitProgram() (*LitProgram, error) {
	p, err := shader.NewProgram("lit", shaders.LitVertexShader, shaders.LitFragmentShader)
	if err != nil {
		return nil, err
	}
	lp := &LitProgram{
		Program:       p,
		crop:          math.Identity(),
		lightViewProj: math.Identity(),
		viewProj:      math.Identity(),
	}
	lp.Use()
	lp.SetInt("uTexture", diffuseUnit)
	lp.SetInt("uShadowMap", shadowUnit)
	lp.SetFloat("uShininess", 32)
	return lp, nil
}

// SetLightCrop sets the crop matrix of the current cascade.
func (lp *LitProgram) SetLightCrop(m math.Mat4) {
	lp.crop = m
}

// SetLightViewProj sets the light projection x view.
func (lp *LitProgram) SetLightViewProj(m math.Mat4) {
	lp.lightViewProj = m
}

// SetViewProj sets the main camera projection x view.
func (lp *LitProgram) SetViewProj(m math.Mat4) {
	lp.viewProj = m
	lp.SetMat4("uViewProjection", m)
}

// SetLightIndex selects the registry light that casts the shadow.
func (lp *LitProgram) SetLightIndex(i int) {
	lp.SetInt("uLightIndex", int32(i))
}

// SetTextured toggles diffuse texture sampling.
func (lp *LitProgram) SetTextured(textured bool) {
	lp.SetBool("uTextured", textured)
}

// SetLights uploads the light registry.
func (lp *LitProgram) SetLights(r *lighting.Registry) {
	if r == nil {
		lp.SetInt("uLightCount", 0)
		return
	}
	lp.SetInt("uLightCount", int32(r.Len()))
	lp.SetVec4Array("uLightPosition", r.Positions())
	lp.SetVec3Array("uLightAmbient", r.Ambients())
	lp.SetVec3Array("uLightDiffuse", r.Diffuses())
	lp.SetVec3Array("uLightSpecular", r.Speculars())
	lp.SetIntArray("uLightEnabled", r.EnabledFlags())
}

// SetMVP uploads the per-object transforms: model, normal matrix and the
// cropped light transform.
func (lp *LitProgram) SetMVP(model math.Mat4) {
	lp.SetMat4("uModel", model)
	lp.SetMat3("uNormalMatrix", model.NormalMatrix())
	lp.SetMat4("uLightModelViewProjection", lp.crop.Mul(lp.lightViewProj))
}
