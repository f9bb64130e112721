package shadow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapIsValid(t *testing.T) {
	var missing *Map
	assert.False(t, missing.IsValid())
	assert.False(t, (&Map{FBO: 1}).IsValid(), "no depth texture")
	assert.False(t, (&Map{DepthTexture: 2}).IsValid(), "no framebuffer")
	assert.True(t, (&Map{FBO: 1, DepthTexture: 2, Resolution: 16}).IsValid())
}
