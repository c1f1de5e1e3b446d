package gpu

import "slices"

// ResourceKind classifies a shader input reported by reflection.
type ResourceKind int

const (
	ResourceUniformBuffer ResourceKind = iota
	ResourceStorageBuffer
	ResourceTexture
	ResourceStorageTexture
	ResourceSampler
)

// IsBuffer reports whether resources of this kind are bound with a Buffer.
func (k ResourceKind) IsBuffer() bool {
	return k == ResourceUniformBuffer || k == ResourceStorageBuffer
}

// IsTexture reports whether resources of this kind are bound with a Texture2D.
func (k ResourceKind) IsTexture() bool {
	return k == ResourceTexture || k == ResourceStorageTexture
}

// ResourceInfo describes one named input of a compiled shader.
type ResourceInfo struct {
	// Name is the variable name declared in the shader source.
	Name string
	// Kind is the resource category.
	Kind ResourceKind
	// Group and Binding locate the resource in the native binding model.
	Group, Binding int
	// Slot is the engine-side binding point: the texture unit for textures, the
	// buffer binding point for buffers and the sampler index for samplers. Slots are
	// assigned in (Group, Binding) order, counted separately per category.
	Slot int
	// Size is the minimum byte size of a buffer resource, 0 when unknown.
	Size uint64
}

// Reflection lists the inputs and entry points of a compiled shader program.
type Reflection struct {
	Resources     []ResourceInfo
	VertexEntry   string
	FragmentEntry string
	ComputeEntry  string
	WorkgroupSize [3]uint32
}

// Lookup finds a resource by name.
//
// Parameters:
//   - name: the variable name declared in the shader
//
// Returns:
//   - ResourceInfo: the matching resource
//   - bool: false if the shader declares no such resource
func (r Reflection) Lookup(name string) (ResourceInfo, bool) {
	i := slices.IndexFunc(r.Resources, func(info ResourceInfo) bool { return info.Name == name })
	if i < 0 {
		return ResourceInfo{}, false
	}
	return r.Resources[i], true
}

// BySlot finds the resource of a category bound at the given slot.
//
// Parameters:
//   - texture: true to search texture units, false to search buffer binding points
//   - slot: the slot to look up
//
// Returns:
//   - ResourceInfo: the matching resource
//   - bool: false if nothing is declared at that slot
func (r Reflection) BySlot(texture bool, slot int) (ResourceInfo, bool) {
	for _, info := range r.Resources {
		if info.Slot != slot {
			continue
		}
		if texture && info.Kind.IsTexture() || !texture && info.Kind.IsBuffer() {
			return info, true
		}
	}
	return ResourceInfo{}, false
}

// Count returns the number of declared resources of the given kind.
func (r Reflection) Count(kind ResourceKind) int {
	n := 0
	for _, info := range r.Resources {
		if info.Kind == kind {
			n++
		}
	}
	return n
}
