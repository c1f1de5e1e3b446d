package wgsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRejectsMalformedSource(t *testing.T) {
	assert.Error(t, Validate("fn main( {"))
}

func TestValidateAcceptsFragment(t *testing.T) {
	src := `
@fragment
fn main(@location(0) color: vec4<f32>) -> @location(0) vec4<f32> {
    return color;
}
`
	assert.NoError(t, Validate(src))
}
