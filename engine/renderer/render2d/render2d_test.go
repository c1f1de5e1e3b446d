package render2d_test

import (
	"bytes"
	"encoding/binary"
	"log/slog"
	"slices"
	"testing"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/camera"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/gpu/gputest"
	"github.com/Carmen-Shannon/oxy2d/engine/renderer/render2d"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	vertexBufferLabel = "render2d vertices"
	indexBufferLabel  = "render2d indices"
	cameraBufferLabel = "render2d camera"
)

func newTestRenderer2D(t *testing.T) (render2d.Renderer2D, renderer.Renderer, *gputest.Backend) {
	t.Helper()
	b := gputest.New()
	ctx := renderer.NewRenderer(nil, renderer.WithBackend(b))
	r := render2d.NewRenderer2D(ctx)
	r.Init()
	require.True(t, r.WhiteTexture().IsInit())
	b.ClearCalls()
	b.Writes = nil
	return r, ctx, b
}

func writesLabeled(b *gputest.Backend, label string) []gputest.Write {
	var out []gputest.Write
	for _, w := range b.Writes {
		if w.Object.Label == label {
			out = append(out, w)
		}
	}
	return out
}

func decodeVertices(t *testing.T, data []byte) []render2d.Vertex {
	t.Helper()
	var v render2d.Vertex
	require.Zero(t, len(data)%v.Size())
	out := make([]render2d.Vertex, len(data)/v.Size())
	require.NoError(t, binary.Read(bytes.NewReader(data), binary.LittleEndian, out))
	return out
}

func decodeIndices(t *testing.T, data []byte) []uint32 {
	t.Helper()
	out := make([]uint32, len(data)/4)
	require.NoError(t, binary.Read(bytes.NewReader(data), binary.LittleEndian, out))
	return out
}

// triangles resolves every flushed index against the vertices uploaded with it.
func triangles(t *testing.T, b *gputest.Backend) [][3]render2d.Vertex {
	t.Helper()
	vw := writesLabeled(b, vertexBufferLabel)
	iw := writesLabeled(b, indexBufferLabel)
	require.Equal(t, len(vw), len(iw))

	var out [][3]render2d.Vertex
	for i := range vw {
		vertices := decodeVertices(t, vw[i].Data)
		indices := decodeIndices(t, iw[i].Data)
		require.Zero(t, len(indices)%3)
		for j := 0; j < len(indices); j += 3 {
			out = append(out, [3]render2d.Vertex{
				vertices[indices[j]], vertices[indices[j+1]], vertices[indices[j+2]],
			})
		}
	}
	return out
}

func TestTwoRectsFlushAsOneDraw(t *testing.T) {
	r, _, b := newTestRenderer2D(t)

	r.Rect([2]float32{0, 0}, [2]float32{1, 1}, common.ColorRed)
	r.Rect([2]float32{1, 0}, [2]float32{1, 1}, common.ColorBlue)
	assert.Equal(t, 1, r.OccupiedSlots())
	r.Flush()

	vw := writesLabeled(b, vertexBufferLabel)
	require.Len(t, vw, 1)
	vertices := decodeVertices(t, vw[0].Data)
	assert.Len(t, vertices, 8)

	iw := writesLabeled(b, indexBufferLabel)
	require.Len(t, iw, 1)
	assert.Equal(t, []uint32{0, 1, 2, 2, 3, 0, 4, 5, 6, 6, 7, 4}, decodeIndices(t, iw[0].Data))

	draws := b.CallsOf(gputest.OpDrawIndexed)
	require.Len(t, draws, 1)
	assert.Equal(t, 12, draws[0].N)

	for _, v := range vertices {
		assert.Equal(t, int32(0), v.TexIndex)
		assert.Equal(t, int32(0), v.IsEllipse)
	}
	assert.Equal(t, common.ColorRed.Normalized(), vertices[0].Color)
	assert.Equal(t, common.ColorBlue.Normalized(), vertices[4].Color)
	assert.Equal(t, [2]float32{2, 1}, vertices[6].Position)

	assert.Zero(t, r.VertexCount())
	assert.Zero(t, r.IndexCount())
	assert.Equal(t, 1, r.OccupiedSlots())
	assert.Equal(t, render2d.Stats{DrawCalls: 1, Triangles: 4}, r.Stats())
}

func TestFlushOrder(t *testing.T) {
	r, ctx, b := newTestRenderer2D(t)
	tex := gpu.NewColorTexture(b, 2, 2, gpu.FilterNearest)
	b.ClearCalls()

	r.RectTextured([2]float32{0, 0}, [2]float32{1, 1}, tex, common.ColorWhite)
	r.Flush()

	ops := b.Ops()
	require.GreaterOrEqual(t, len(ops), 2)
	assert.Equal(t, gputest.OpWriteBuffer, ops[0])
	assert.Equal(t, gputest.OpWriteBuffer, ops[1])
	assert.Equal(t, vertexBufferLabel, b.Calls[0].Target.(*gputest.Object).Label)
	assert.Equal(t, indexBufferLabel, b.Calls[1].Target.(*gputest.Object).Label)

	shader := slices.Index(ops, gputest.OpBindShader)
	index := slices.Index(ops, gputest.OpBindIndexBuffer)
	vertex := slices.Index(ops, gputest.OpBindVertexBuffer)
	draw := slices.Index(ops, gputest.OpDrawIndexed)
	require.NotEqual(t, -1, shader)
	assert.Less(t, shader, index)
	assert.Less(t, index, vertex)
	assert.Less(t, vertex, draw)
	assert.Equal(t, len(ops)-1, draw)

	assert.Equal(t, r.WhiteTexture(), ctx.Cache().BoundTexture(0))
	assert.Equal(t, tex, ctx.Cache().BoundTexture(1))
}

func TestQuadsNeverSplitAcrossBatches(t *testing.T) {
	r, _, b := newTestRenderer2D(t)

	for i := range render2d.MaxVertices/4 + 1 {
		r.Rect([2]float32{float32(i), 0}, [2]float32{1, 1}, common.ColorGreen)

		assert.LessOrEqual(t, r.VertexCount(), render2d.MaxVertices)
		assert.LessOrEqual(t, r.IndexCount(), render2d.MaxIndices)
		assert.LessOrEqual(t, r.OccupiedSlots(), render2d.MaxTextureSlots)
		assert.Zero(t, r.IndexCount()%6)
	}
	r.Flush()

	draws := b.CallsOf(gputest.OpDrawIndexed)
	assert.GreaterOrEqual(t, len(draws), 2)
	for _, d := range draws {
		assert.Zero(t, d.N%6)
		assert.Less(t, d.N, render2d.MaxIndices)
	}
}

func TestAutoFlushMatchesPerShapeFlush(t *testing.T) {
	const quads = render2d.MaxVertices/4 + 1

	batched, _, bb := newTestRenderer2D(t)
	single, _, sb := newTestRenderer2D(t)
	for i := range quads {
		pos := [2]float32{float32(i % 100), float32(i / 100)}
		batched.Rect(pos, [2]float32{1, 1}, common.ColorYellow)
		single.Rect(pos, [2]float32{1, 1}, common.ColorYellow)
		single.Flush()
	}
	batched.Flush()

	assert.GreaterOrEqual(t, bb.Count(gputest.OpDrawIndexed), 2)
	assert.Equal(t, quads, sb.Count(gputest.OpDrawIndexed))
	assert.Equal(t, triangles(t, sb), triangles(t, bb))
	assert.Equal(t, batched.Stats().Triangles, single.Stats().Triangles)
}

func TestPushTextureDeduplicates(t *testing.T) {
	r, _, b := newTestRenderer2D(t)
	tex := gpu.NewColorTexture(b, 2, 2, gpu.FilterLinear)

	for range 10 {
		assert.Equal(t, 1, r.PushTexture(tex))
	}
	for range 10 {
		r.RectTextured([2]float32{0, 0}, [2]float32{1, 1}, tex, common.ColorWhite)
	}
	assert.Equal(t, 2, r.OccupiedSlots())
	assert.Equal(t, 0, r.PushTexture(r.WhiteTexture()))
}

func TestFullSlotTableFlushes(t *testing.T) {
	r, _, b := newTestRenderer2D(t)
	textures := make([]gpu.Texture2D, render2d.MaxTextureSlots)
	for i := range textures {
		textures[i] = gpu.NewColorTexture(b, 1, 1, gpu.FilterNearest)
	}

	for i, tex := range textures[:render2d.MaxTextureSlots-1] {
		r.RectTextured([2]float32{float32(i), 0}, [2]float32{1, 1}, tex, common.ColorWhite)
	}
	assert.Equal(t, render2d.MaxTextureSlots, r.OccupiedSlots())
	assert.Zero(t, b.Count(gputest.OpDrawIndexed))

	r.RectTextured([2]float32{0, 1}, [2]float32{1, 1}, textures[len(textures)-1], common.ColorWhite)

	assert.Equal(t, 1, b.Count(gputest.OpDrawIndexed))
	assert.Equal(t, 2, r.OccupiedSlots())
	assert.Equal(t, 4, r.VertexCount())

	r.Flush()
	vertices := decodeVertices(t, writesLabeled(b, vertexBufferLabel)[1].Data)
	assert.Equal(t, int32(1), vertices[0].TexIndex)
}

func TestPushTextureOnFullTableWithoutShapes(t *testing.T) {
	r, _, b := newTestRenderer2D(t)
	for i := 1; i < render2d.MaxTextureSlots; i++ {
		require.Equal(t, i, r.PushTexture(gpu.NewColorTexture(b, 1, 1, gpu.FilterLinear)))
	}
	require.Equal(t, render2d.MaxTextureSlots, r.OccupiedSlots())

	extra := gpu.NewColorTexture(b, 1, 1, gpu.FilterLinear)
	assert.Equal(t, 1, r.PushTexture(extra))
	assert.Equal(t, 2, r.OccupiedSlots())
	assert.Zero(t, b.Count(gputest.OpDrawIndexed), "a table holding only textures has nothing to draw")

	assert.NotPanics(t, func() {
		r.RectTextured([2]float32{0, 0}, [2]float32{1, 1}, extra, common.ColorWhite)
	})
	r.Flush()

	require.Equal(t, 1, b.Count(gputest.OpDrawIndexed))
	vertices := decodeVertices(t, writesLabeled(b, vertexBufferLabel)[0].Data)
	assert.Equal(t, int32(1), vertices[0].TexIndex)
}

func TestRepeatedFlushSkipsTextureBinds(t *testing.T) {
	r, ctx, b := newTestRenderer2D(t)
	tex := gpu.NewColorTexture(b, 2, 2, gpu.FilterNearest)
	b.ClearCalls()

	r.RectTextured([2]float32{0, 0}, [2]float32{1, 1}, tex, common.ColorWhite)
	r.Flush()
	assert.Equal(t, render2d.MaxTextureSlots, b.Count(gputest.OpBindTexture))
	assert.Equal(t, r.WhiteTexture(), ctx.Cache().BoundTexture(render2d.MaxTextureSlots-1))

	b.ClearCalls()
	r.RectTextured([2]float32{0, 0}, [2]float32{1, 1}, tex, common.ColorWhite)
	r.Flush()

	assert.Zero(t, b.Count(gputest.OpBindTexture))
	assert.Equal(t, 1, b.Count(gputest.OpDrawIndexed))
}

func TestTextureFilterReachesVertices(t *testing.T) {
	r, _, b := newTestRenderer2D(t)
	smooth := gpu.NewColorTexture(b, 2, 2, gpu.FilterLinear)
	pixelArt := gpu.NewColorTexture(b, 2, 2, gpu.FilterNearest)

	r.RectTextured([2]float32{0, 0}, [2]float32{1, 1}, smooth, common.ColorWhite)
	r.RectTextured([2]float32{1, 0}, [2]float32{1, 1}, pixelArt, common.ColorWhite)
	r.Flush()

	vertices := decodeVertices(t, writesLabeled(b, vertexBufferLabel)[0].Data)
	require.Len(t, vertices, 8)
	assert.Equal(t, int32(0), vertices[0].Nearest)
	assert.Equal(t, int32(1), vertices[4].Nearest)
}

func TestEllipseFlag(t *testing.T) {
	r, _, b := newTestRenderer2D(t)

	r.Circle([2]float32{0, 0}, 2, common.ColorRed)
	r.Ellipse([2]float32{5, 5}, [2]float32{2, 1}, common.ColorRed)
	r.Rect([2]float32{0, 0}, [2]float32{1, 1}, common.ColorRed)
	r.Flush()

	vertices := decodeVertices(t, writesLabeled(b, vertexBufferLabel)[0].Data)
	require.Len(t, vertices, 12)
	for _, v := range vertices[:8] {
		assert.Equal(t, int32(1), v.IsEllipse)
	}
	for _, v := range vertices[8:] {
		assert.Equal(t, int32(0), v.IsEllipse)
	}
	assert.Equal(t, [2]float32{-2, -2}, vertices[0].Position)
	assert.Equal(t, [2]float32{2, 2}, vertices[2].Position)
	assert.Equal(t, [2]float32{3, 4}, vertices[4].Position)
	assert.Equal(t, [2]float32{7, 6}, vertices[6].Position)
}

func TestTriangle(t *testing.T) {
	r, _, b := newTestRenderer2D(t)

	r.Tri([2]float32{0, 0}, [2]float32{1, 0}, [2]float32{0, 1}, common.ColorCyan)
	assert.Equal(t, 3, r.VertexCount())
	assert.Equal(t, 3, r.IndexCount())
	r.Flush()

	assert.Equal(t, render2d.Stats{DrawCalls: 1, Triangles: 1}, r.Stats())
	assert.Equal(t, []uint32{0, 1, 2}, decodeIndices(t, writesLabeled(b, indexBufferLabel)[0].Data))

	r.ResetStats()
	assert.Equal(t, render2d.Stats{}, r.Stats())
}

func TestSetCameraSkipsUnchangedMatrix(t *testing.T) {
	r, _, b := newTestRenderer2D(t)

	r.SetCamera(common.Identity())
	assert.Empty(t, writesLabeled(b, cameraBufferLabel))

	m := common.Ortho(-2, 2, -1, 1, -1, 1)
	r.SetCamera(m)
	r.SetCamera(m)
	assert.Len(t, writesLabeled(b, cameraBufferLabel), 1)

	cam := camera.NewCamera(camera.WithBounds(-4, 4, -3, 3))
	r.SetCameraFrom(cam)
	r.SetCameraFrom(cam)
	writes := writesLabeled(b, cameraBufferLabel)
	require.Len(t, writes, 2)
	u := camera.GPUCameraUniform{ViewProj: cam.ViewProjectionMatrix()}
	assert.Equal(t, u.Marshal(), writes[1].Data)
}

func TestFlushEmptyBatchDoesNothing(t *testing.T) {
	r, _, b := newTestRenderer2D(t)

	r.Flush()

	assert.Empty(t, b.Calls)
	assert.Equal(t, render2d.Stats{}, r.Stats())
}

func TestInitTwiceWarns(t *testing.T) {
	var logs bytes.Buffer
	common.SetLogger(slog.New(slog.NewTextHandler(&logs, nil)))
	t.Cleanup(func() { common.SetLogger(nil) })

	r, _, b := newTestRenderer2D(t)
	r.Init()

	assert.Zero(t, b.Count(gputest.OpCreateShader))
	assert.Zero(t, b.Count(gputest.OpCreateBuffer))
	assert.Contains(t, logs.String(), "already initialized")
}

func TestInitFailsWithoutShader(t *testing.T) {
	b := gputest.New()
	b.FailShaders = true
	r := render2d.NewRenderer2D(renderer.NewRenderer(nil, renderer.WithBackend(b)))

	r.Init()

	assert.False(t, r.WhiteTexture().IsInit())
	assert.Zero(t, b.Count(gputest.OpCreateBuffer))
}

func TestSubmitBeforeInitPanics(t *testing.T) {
	if !common.AssertionsEnabled {
		t.Skip("assertions are compiled out")
	}
	r := render2d.NewRenderer2D(renderer.NewRenderer(nil, renderer.WithBackend(gputest.New())))

	assert.Panics(t, func() { r.Rect([2]float32{0, 0}, [2]float32{1, 1}, common.ColorRed) })
}

func TestReleaseFreesResources(t *testing.T) {
	r, _, b := newTestRenderer2D(t)

	r.Release()

	assert.Zero(t, b.Live("buffer"))
	assert.Zero(t, b.Live("shader"))
	assert.Zero(t, b.Live("texture"))
	assert.False(t, r.WhiteTexture().IsInit())
}
