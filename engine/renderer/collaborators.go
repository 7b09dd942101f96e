package renderer

import (
	"github.com/spaghettifunk/vkrview/engine/core"
	vmath "github.com/spaghettifunk/vkrview/engine/math"
	"github.com/spaghettifunk/vkrview/engine/renderer/metadata"
)

// MeshSlot is the live-index view over a mesh managed by MeshManager.
// Surrounding subsystems like the pipeline registry, material system,
// shadow system, and texture system are interface contracts only.
type MeshSlot struct {
	Mesh      *metadata.Mesh
	Submeshes []SubmeshBinding
}

// MaterialInfo is the narrow view of a material the draw batcher needs
// to classify opaque vs. transparent and to drive globals/instance
// application. The underlying `resources.Material` carries no
// alpha_cutoff field, so this is a purpose-built projection rather than
// a reuse of that asset type.
type MaterialInfo struct {
	ID                    uint32
	Name                  string
	ShaderName            string
	AlphaCutoff           float32
	DiffuseTextureEnabled bool
	DiffuseTexture        core.Handle
	EmissionColor         vmath.Vec4
}

// IsCutout is true iff alpha_cutoff > 0 AND a non-zero diffuse texture
// is enabled; the batcher sorts cutout materials with the transparent
// commands and never places them in the opaque batches.
func (m *MaterialInfo) IsCutout() bool {
	return m != nil && m.AlphaCutoff > 0 && m.DiffuseTextureEnabled && m.DiffuseTexture.IsValid()
}

// SubmeshBinding is the per-submesh binding contract: material,
// pipeline, and geometry range used to decide opaque-vs-transparent
// and to resolve a draw's pipeline/geometry.
type SubmeshBinding struct {
	Material      *MaterialInfo
	Geometry      *metadata.Geometry
	RangeID       uint32
	Pipeline      core.Handle
	InstanceState core.Handle

	// IndexCount/FirstIndex/VertexOffset resolve this submesh's range
	// within the geometry's index/vertex buffers for indexed draws, both
	// per-command and multi-draw-indirect.
	IndexCount   uint32
	FirstIndex   uint32
	VertexOffset uint32
}

// MeshManager is the collaborator that owns mesh storage and the
// instance-path model/visibility/render-id state.
type MeshManager interface {
	// Acquire registers a new non-instanced mesh draw built from the
	// caller's geometry/material, growing Count() by one.
	Acquire(mesh *MeshSlot)
	// AcquireInstance registers a new instanced draw, returning the
	// handle the caller stores on its MeshRenderer component.
	AcquireInstance(submesh *SubmeshBinding) core.Handle

	Count() int
	GetMeshByLiveIndex(i int) (*MeshSlot, bool)
	GetSubmesh(mesh *MeshSlot, sub int) (*SubmeshBinding, bool)

	SetModel(mesh *MeshSlot, model vmath.Mat4)
	SetVisible(mesh *MeshSlot, visible bool)
	SetRenderID(mesh *MeshSlot, id uint32)
	GetRenderID(mesh *MeshSlot) (uint32, bool)

	// Destroy releases a mesh-slot draw (and its instance, if any) back
	// to the mesh manager; scene shutdown calls this for every mesh it
	// owns.
	Destroy(mesh *MeshSlot) error
	InstanceDestroy(instance core.Handle) error

	InstanceSetModel(instance core.Handle, model vmath.Mat4)
	InstanceSetVisible(instance core.Handle, visible bool)
	InstanceSetRenderID(instance core.Handle, id uint32)

	RefreshPipeline(mesh *MeshSlot, sub int, pipeline core.Handle)
	InstanceRefreshPipeline(instance core.Handle, pipeline core.Handle)

	GetAsset(mesh *MeshSlot) *metadata.Mesh

	InstanceCount() int
	GetInstanceByLiveIndex(i int) (core.Handle, bool)

	// InstanceState is the draw-time snapshot of one instance: the
	// model/visibility/render-id last pushed by scene sync, plus the
	// submesh binding the draw batcher resolves pipeline/material from.
	InstanceState(instance core.Handle) (model vmath.Mat4, visible bool, objectID uint32, submesh *SubmeshBinding, ok bool)
}

// InstanceBufferPool is the persistent ring allocator backing per-draw
// instance data.
type InstanceBufferPool interface {
	Alloc(count int) (base uint32, mapped []byte, ok bool)
	FlushRange(base uint32, count int)
	FlushCurrent()
}

// IndirectDrawSystem is the persistent ring allocator backing
// multi-draw-indirect command buffers.
type IndirectDrawSystem interface {
	Remaining() int
	Alloc(count int) (base uint32, mapped []byte, ok bool)
	FlushRange(base uint32, count int)
	GetCurrent() *metadata.RenderBuffer
}
