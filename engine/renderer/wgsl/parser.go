package wgsl

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy2d/engine/renderer/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

var (
	structRe        = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)
	locationRe      = regexp.MustCompile(`@location\((\d+)\)`)
	builtinRe       = regexp.MustCompile(`@builtin\(\w+\)`)
	fieldRe         = regexp.MustCompile(`(?:@\w+\([^)]*\)\s*)*(\w+)\s*:\s*(.+)`)
	vertexEntryRe   = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)
	fragmentEntryRe = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)
	computeEntryRe  = regexp.MustCompile(`(?s)@compute\b.*?\bfn\s+(\w+)`)
	workgroupRe     = regexp.MustCompile(`@workgroup_size\(\s*(\d+)\s*(?:,\s*(\d+)\s*(?:,\s*(\d+)\s*)?)?\)`)
	bindingRe       = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// Parse reflects a single WGSL source. Every binding gets the given stage visibility.
//
// Parameters:
//   - source: the WGSL source
//   - visibility: the shader stages the bindings are visible to
//
// Returns:
//   - Module: the reflected bindings, entry points and vertex inputs
func Parse(source string, visibility wgpu.ShaderStage) Module {
	clean := StripComments(source)
	structs := parseStructs(clean)
	sizes := structLayouts(structs)

	m := Module{
		VertexEntry:   firstMatch(vertexEntryRe, clean),
		FragmentEntry: firstMatch(fragmentEntryRe, clean),
		ComputeEntry:  firstMatch(computeEntryRe, clean),
		WorkgroupSize: parseWorkgroupSize(clean),
	}

	for _, match := range bindingRe.FindAllStringSubmatch(clean, -1) {
		group, _ := strconv.Atoi(match[1])
		binding, _ := strconv.Atoi(match[2])
		addressSpace := strings.TrimSpace(match[3])
		typeName := strings.TrimSpace(match[5])

		b := Binding{
			Name:    strings.TrimSpace(match[4]),
			Group:   group,
			Binding: binding,
			Entry:   classify(uint32(binding), visibility, addressSpace, typeName),
		}
		b.Kind = kindOf(b.Entry)
		if b.Kind.IsBuffer() {
			if l, ok := resolveLayout(typeName, sizes); ok {
				b.Size = l.size
				b.Entry.Buffer.MinBindingSize = l.size
			}
		}
		m.Bindings = append(m.Bindings, b)
	}
	sortBindings(m.Bindings)

	for _, s := range structs {
		if !isVertexInput(s) {
			continue
		}
		if layout, ok := vertexBufferLayout(s); ok {
			m.VertexInputs = append(m.VertexInputs, layout)
		}
	}
	return m
}

// Merge combines the reflection of two stages of one program. A binding declared by both
// stages is kept once with the union of both visibilities.
func Merge(a, b Module) Module {
	out := a
	out.Bindings = slices.Clone(a.Bindings)
	for _, nb := range b.Bindings {
		i := slices.IndexFunc(out.Bindings, func(x Binding) bool {
			return x.Group == nb.Group && x.Binding == nb.Binding
		})
		if i < 0 {
			out.Bindings = append(out.Bindings, nb)
			continue
		}
		out.Bindings[i].Entry.Visibility |= nb.Entry.Visibility
		if out.Bindings[i].Size < nb.Size {
			out.Bindings[i].Size = nb.Size
			out.Bindings[i].Entry.Buffer.MinBindingSize = nb.Size
		}
	}
	sortBindings(out.Bindings)

	if out.VertexEntry == "" {
		out.VertexEntry = b.VertexEntry
	}
	if out.FragmentEntry == "" {
		out.FragmentEntry = b.FragmentEntry
	}
	if out.ComputeEntry == "" {
		out.ComputeEntry = b.ComputeEntry
		out.WorkgroupSize = b.WorkgroupSize
	}
	if len(out.VertexInputs) == 0 {
		out.VertexInputs = b.VertexInputs
	}
	return out
}

// BindGroupLayouts groups the module's bindings into one layout descriptor per group,
// entries ordered by binding.
func (m Module) BindGroupLayouts() map[int]wgpu.BindGroupLayoutDescriptor {
	out := make(map[int]wgpu.BindGroupLayoutDescriptor)
	for _, b := range m.Bindings {
		desc := out[b.Group]
		desc.Entries = append(desc.Entries, b.Entry)
		out[b.Group] = desc
	}
	return out
}

// GroupCount returns one more than the highest bind group index in use.
func (m Module) GroupCount() int {
	n := 0
	for _, b := range m.Bindings {
		n = max(n, b.Group+1)
	}
	return n
}

func sortBindings(bs []Binding) {
	slices.SortFunc(bs, func(a, b Binding) int {
		if a.Group != b.Group {
			return a.Group - b.Group
		}
		return a.Binding - b.Binding
	})
}

func kindOf(e wgpu.BindGroupLayoutEntry) gpu.ResourceKind {
	switch {
	case e.Buffer.Type == wgpu.BufferBindingTypeUniform:
		return gpu.ResourceUniformBuffer
	case e.Buffer.Type != wgpu.BufferBindingTypeUndefined:
		return gpu.ResourceStorageBuffer
	case e.StorageTexture.Access != wgpu.StorageTextureAccessUndefined:
		return gpu.ResourceStorageTexture
	case e.Sampler.Type != wgpu.SamplerBindingTypeUndefined:
		return gpu.ResourceSampler
	}
	return gpu.ResourceTexture
}

func firstMatch(re *regexp.Regexp, s string) string {
	if m := re.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}

// parseWorkgroupSize reads @workgroup_size; omitted dimensions are 1.
func parseWorkgroupSize(source string) [3]uint32 {
	size := [3]uint32{1, 1, 1}
	m := workgroupRe.FindStringSubmatch(source)
	if m == nil {
		return size
	}
	for i := range 3 {
		if m[i+1] == "" {
			continue
		}
		if v, err := strconv.ParseUint(m[i+1], 10, 32); err == nil {
			size[i] = uint32(v)
		}
	}
	return size
}

func parseStructs(source string) []structDecl {
	var out []structDecl
	for _, m := range structRe.FindAllStringSubmatch(source, -1) {
		out = append(out, structDecl{name: m[1], fields: parseFields(m[2])})
	}
	return out
}

func parseFields(body string) []field {
	var out []field
	for _, part := range splitTopLevel(body) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fm := fieldRe.FindStringSubmatch(part)
		if fm == nil {
			continue
		}
		f := field{
			name:     fm[1],
			typeName: strings.TrimSpace(fm[2]),
			location: -1,
			builtin:  builtinRe.MatchString(part),
		}
		if lm := locationRe.FindStringSubmatch(part); lm != nil {
			f.location, _ = strconv.Atoi(lm[1])
		}
		out = append(out, f)
	}
	return out
}

// isVertexInput reports whether the struct carries @location fields and no builtins,
// which separates vertex inputs from stage outputs.
func isVertexInput(s structDecl) bool {
	located := false
	for _, f := range s.fields {
		if f.builtin {
			return false
		}
		located = located || f.location >= 0
	}
	return located
}

func vertexBufferLayout(s structDecl) (wgpu.VertexBufferLayout, bool) {
	attrs := make([]wgpu.VertexAttribute, 0, len(s.fields))
	var offset uint64
	for _, f := range s.fields {
		vf, ok := vertexFormats[f.typeName]
		if !ok {
			return wgpu.VertexBufferLayout{}, false
		}
		attrs = append(attrs, wgpu.VertexAttribute{
			Format:         vf.format,
			Offset:         offset,
			ShaderLocation: uint32(f.location),
		})
		offset += vf.size
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: offset,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attrs,
	}, true
}

// splitTopLevel splits at commas outside angle brackets, so array<T, N> stays whole.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth = max(depth-1, 0)
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// StripComments removes line comments and nested block comments.
func StripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		if i+1 < len(source) {
			switch {
			case source[i] == '/' && source[i+1] == '*':
				depth++
				i++
				continue
			case source[i] == '*' && source[i+1] == '/' && depth > 0:
				depth--
				i++
				continue
			case depth == 0 && source[i] == '/' && source[i+1] == '/':
				for i < len(source) && source[i] != '\n' {
					i++
				}
				if i < len(source) {
					sb.WriteByte('\n')
				}
				continue
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}
