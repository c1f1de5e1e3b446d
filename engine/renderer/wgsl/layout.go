package wgsl

import (
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

func alignUp(align, v uint64) uint64 {
	if align == 0 {
		return v
	}
	return (v + align - 1) &^ (align - 1)
}

// resolveLayout returns the host-shareable size and alignment of a WGSL type. A
// runtime-sized array resolves to a single element, its minimum binding size.
func resolveLayout(typeName string, known map[string]typeLayout) (typeLayout, bool) {
	if l, ok := primitiveLayouts[typeName]; ok {
		return l, true
	}
	if l, ok := known[typeName]; ok {
		return l, true
	}
	inner, ok := strings.CutPrefix(typeName, "array<")
	if !ok || !strings.HasSuffix(inner, ">") {
		return typeLayout{}, false
	}
	elemType, count, sized := strings.Cut(strings.TrimSuffix(inner, ">"), ",")
	elem, ok := resolveLayout(strings.TrimSpace(elemType), known)
	if !ok {
		return typeLayout{}, false
	}
	stride := alignUp(elem.align, elem.size)
	if !sized {
		return typeLayout{stride, elem.align}, true
	}
	n, err := strconv.ParseUint(strings.TrimSpace(count), 10, 64)
	if err != nil {
		return typeLayout{}, false
	}
	return typeLayout{n * stride, elem.align}, true
}

// structLayout lays a struct out by WGSL rules. A trailing runtime-sized array counts as
// one element.
func structLayout(s structDecl, known map[string]typeLayout) (typeLayout, bool) {
	var offset uint64
	align := uint64(1)
	for _, f := range s.fields {
		if f.builtin {
			continue
		}
		l, ok := resolveLayout(f.typeName, known)
		if !ok {
			return typeLayout{}, false
		}
		offset = alignUp(l.align, offset) + l.size
		align = max(align, l.align)
	}
	return typeLayout{alignUp(align, offset), align}, true
}

// structLayouts resolves every struct, retrying until structs nested in other structs settle.
func structLayouts(structs []structDecl) map[string]typeLayout {
	known := make(map[string]typeLayout, len(structs))
	pending := structs
	for len(pending) > 0 {
		var next []structDecl
		for _, s := range pending {
			if l, ok := structLayout(s, known); ok {
				known[s.name] = l
			} else {
				next = append(next, s)
			}
		}
		if len(next) == len(pending) {
			break
		}
		pending = next
	}
	return known
}

// classify builds the layout entry for one resource declaration.
func classify(binding uint32, visibility wgpu.ShaderStage, addressSpace, typeName string) wgpu.BindGroupLayoutEntry {
	e := wgpu.BindGroupLayoutEntry{Binding: binding, Visibility: visibility}

	switch {
	case addressSpace == "uniform":
		e.Buffer.Type = wgpu.BufferBindingTypeUniform
		return e
	case strings.HasPrefix(addressSpace, "storage"):
		e.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
		if strings.Contains(addressSpace, "read_write") {
			e.Buffer.Type = wgpu.BufferBindingTypeStorage
		}
		return e
	}

	base, params, _ := strings.Cut(typeName, "<")
	params = strings.TrimSpace(strings.TrimSuffix(params, ">"))
	switch {
	case typeName == "sampler":
		e.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	case typeName == "sampler_comparison":
		e.Sampler.Type = wgpu.SamplerBindingTypeComparison
	case strings.HasPrefix(base, "texture_storage_"):
		e.StorageTexture.ViewDimension = storageTextureDims[base]
		format, access, _ := strings.Cut(params, ",")
		e.StorageTexture.Format = texelFormats[strings.TrimSpace(format)]
		e.StorageTexture.Access = storageAccess[strings.TrimSpace(access)]
		if e.StorageTexture.Access == wgpu.StorageTextureAccessUndefined {
			e.StorageTexture.Access = wgpu.StorageTextureAccessWriteOnly
		}
	case strings.HasPrefix(base, "texture_depth_"):
		e.Texture.SampleType = wgpu.TextureSampleTypeDepth
		e.Texture.ViewDimension = sampledTextureDims[base]
	case strings.HasPrefix(base, "texture_"):
		e.Texture.ViewDimension = sampledTextureDims[base]
		e.Texture.SampleType = sampleTypes[params]
		if e.Texture.SampleType == wgpu.TextureSampleTypeUndefined {
			e.Texture.SampleType = wgpu.TextureSampleTypeFloat
		}
	}
	return e
}
