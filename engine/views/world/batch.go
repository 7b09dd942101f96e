// Package world implements the World View Layer (WVL): the primary 3D
// pass plus its editor-viewport (offscreen) variant — draw batching,
// frustum culling, instance/indirect issuance, shadow integration, and
// point-light gizmos.
package world

import (
	"sort"

	vmath "github.com/spaghettifunk/vkrview/engine/math"
	"github.com/spaghettifunk/vkrview/engine/renderer"
)

// DrawKey groups commands into mergeable batches.
type DrawKey struct {
	PipelineID uint32
	MaterialID uint32
	GeometryID uint32
	RangeID    uint32
}

// DrawCommand is one submesh draw, opaque or transparent.
type DrawCommand struct {
	Key            DrawKey
	MeshIndex      int
	SubmeshIndex   int
	Model          vmath.Mat4
	ObjectID       uint32
	CameraDistance float32
	IsInstance     bool

	// Binding is the submesh's resolved material/pipeline/geometry, kept
	// alongside the command so issuance doesn't need to re-resolve it
	// from the mesh manager after sorting/batching.
	Binding *renderer.SubmeshBinding
}

// Batch is a maximal run of commands sharing a DrawKey once sorted.
type Batch struct {
	Key           DrawKey
	FirstCommand  int
	CommandCount  int
	FirstInstance uint32
}

// Batcher collects and sorts opaque/transparent draw commands for one
// frame.
type Batcher struct {
	Opaque       []DrawCommand
	Transparent  []DrawCommand
	OpaqueBatches []Batch

	mdiAvailable bool
}

func NewBatcher(mdiAvailable bool) *Batcher {
	return &Batcher{mdiAvailable: mdiAvailable}
}

func (b *Batcher) Reset() {
	b.Opaque = b.Opaque[:0]
	b.Transparent = b.Transparent[:0]
	b.OpaqueBatches = b.OpaqueBatches[:0]
}

// BoundingSphere resolves a mesh's cull sphere by live index; ok is
// false when the mesh has none, in which case it is never culled.
type BoundingSphere func(meshIndex int) (center vmath.Vec3, radius float32, ok bool)

// Collect walks every live mesh and mesh instance in mm, frustum-culls
// mesh-slot entries by bounding sphere, classifies each submesh
// opaque/cutout, and appends a DrawCommand. cameraPosition is used only
// to compute transparent camera_distance.
func (b *Batcher) Collect(mm renderer.MeshManager, frustum *vmath.Frustum, sphereOf BoundingSphere, cameraPosition vmath.Vec3) {
	for i := 0; i < mm.Count(); i++ {
		slot, ok := mm.GetMeshByLiveIndex(i)
		if !ok {
			continue
		}
		if center, radius, hasSphere := sphereOf(i); hasSphere && frustum != nil {
			if !frustum.TestSphere(center, radius) {
				continue
			}
		}
		renderID, _ := mm.GetRenderID(slot)
		for sub := range slot.Submeshes {
			binding, ok := mm.GetSubmesh(slot, sub)
			if !ok {
				continue
			}
			b.appendCommand(binding, i, sub, false, vmath.NewMat4Identity(), renderID, cameraPosition)
		}
	}

	for i := 0; i < mm.InstanceCount(); i++ {
		instance, ok := mm.GetInstanceByLiveIndex(i)
		if !ok {
			continue
		}
		model, visible, objectID, binding, ok := mm.InstanceState(instance)
		if !ok || !visible || binding == nil {
			continue
		}
		b.appendCommand(binding, -1, -1, true, model, objectID, cameraPosition)
	}
}

func (b *Batcher) appendCommand(binding *renderer.SubmeshBinding, meshIndex, subIndex int, isInstance bool, model vmath.Mat4, objectID uint32, cameraPosition vmath.Vec3) {
	rangeID := binding.RangeID
	if b.mdiAvailable {
		// Zero range_id when MDI is available to allow merging across
		// submesh ranges.
		rangeID = 0
	}
	cmd := DrawCommand{
		Key: DrawKey{
			PipelineID: binding.Pipeline.Id,
			MaterialID: materialID(binding),
			GeometryID: geometryID(binding),
			RangeID:    rangeID,
		},
		MeshIndex:    meshIndex,
		SubmeshIndex: subIndex,
		IsInstance:   isInstance,
		Model:        model,
		ObjectID:     objectID,
		Binding:      binding,
	}
	if binding.Material != nil && binding.Material.IsCutout() {
		position := vmath.NewVec3(model.Data[12], model.Data[13], model.Data[14])
		cmd.CameraDistance = position.Sub(cameraPosition).Length()
		b.Transparent = append(b.Transparent, cmd)
		return
	}
	b.Opaque = append(b.Opaque, cmd)
}

func geometryID(binding *renderer.SubmeshBinding) uint32 {
	if binding.Geometry == nil {
		return 0
	}
	return binding.Geometry.ID
}

func materialID(binding *renderer.SubmeshBinding) uint32 {
	if binding.Material == nil {
		return 0
	}
	return binding.Material.ID
}

// BuildOpaqueBatches sorts Opaque by (pipeline,material,geometry,range)
// and produces maximal equal-key runs.
func (b *Batcher) BuildOpaqueBatches() {
	sort.SliceStable(b.Opaque, func(i, j int) bool {
		return lessKey(b.Opaque[i].Key, b.Opaque[j].Key)
	})
	b.OpaqueBatches = b.OpaqueBatches[:0]
	n := len(b.Opaque)
	for i := 0; i < n; {
		j := i + 1
		for j < n && b.Opaque[j].Key == b.Opaque[i].Key {
			j++
		}
		b.OpaqueBatches = append(b.OpaqueBatches, Batch{Key: b.Opaque[i].Key, FirstCommand: i, CommandCount: j - i})
		i = j
	}
}

// SortTransparent orders by descending camera distance: farther first.
func (b *Batcher) SortTransparent() {
	sort.SliceStable(b.Transparent, func(i, j int) bool {
		return b.Transparent[i].CameraDistance > b.Transparent[j].CameraDistance
	})
}

func lessKey(a, bk DrawKey) bool {
	if a.PipelineID != bk.PipelineID {
		return a.PipelineID < bk.PipelineID
	}
	if a.MaterialID != bk.MaterialID {
		return a.MaterialID < bk.MaterialID
	}
	if a.GeometryID != bk.GeometryID {
		return a.GeometryID < bk.GeometryID
	}
	return a.RangeID < bk.RangeID
}

// InstanceData names the fields of the per-draw instance record; writeInstances
// encodes Model, ObjectID, MaterialIndex and one zero word (76 bytes), not Padding.
type InstanceData struct {
	Model         vmath.Mat4
	ObjectID      uint32
	MaterialIndex uint32
	Flags         uint32
	Padding       uint32
}

// IndirectDrawCommand mirrors the GPU-visible MDI command layout.
type IndirectDrawCommand struct {
	IndexCount    uint32
	InstanceCount uint32
	FirstIndex    uint32
	VertexOffset  int32
	FirstInstance uint32
}
