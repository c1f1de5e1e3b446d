package wgsl

import (
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy2d/engine/camera"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessInclude(t *testing.T) {
	p := NewPreProcessor()
	out, err := p.Process("//@oxy:include camera\n@group(0) @binding(0) var<uniform> camera: CameraUniform;")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, strings.TrimRight(camera.GPUCameraUniformSource, "\n")))
	assert.Contains(t, out, "var<uniform> camera")
}

func TestProcessIncludesOnce(t *testing.T) {
	p := NewPreProcessor()
	p.Register("consts", "const N: u32 = 4u;")
	out, err := p.Process("  //@oxy:include consts\n//@oxy:include consts\nfn main() {}")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "const N"))
}

func TestProcessErrors(t *testing.T) {
	p := NewPreProcessor()
	_, err := p.Process("fn a() {}\n//@oxy:include nope")
	assert.ErrorContains(t, err, `line 2: unknown include "nope"`)

	_, err = p.Process("//@oxy:include")
	assert.ErrorContains(t, err, "exactly one name")
}

func TestProcessPassthrough(t *testing.T) {
	src := "// plain comment\nfn a() {}"
	out, err := NewPreProcessor().Process(src)
	require.NoError(t, err)
	assert.Equal(t, src, out)
}
