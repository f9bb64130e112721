// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// DepthVertexShader transforms shadow casters by the cropped light view-projection.
//
//go:embed depth.vert
var DepthVertexShader string

// DepthFragmentShader writes depth only.
//
//go:embed depth.frag
var DepthFragmentShader string

// LitVertexShader is the vertex shader for the lit pass.
//
//go:embed lit.vert
var LitVertexShader string

// LitFragmentShader shades with the light registry and the cascade shadow test.
//
//go:embed lit.frag
var LitFragmentShader string

// LineVertexShader is the vertex shader for debug wireframes.
//
//go:embed line.vert
var LineVertexShader string

// LineFragmentShader is the fragment shader for debug wireframes.
//
//go:embed line.frag
var LineFragmentShader string
