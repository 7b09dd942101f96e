package world

import (
	"testing"

	"github.com/spaghettifunk/vkrview/engine/core"
	vmath "github.com/spaghettifunk/vkrview/engine/math"
	"github.com/spaghettifunk/vkrview/engine/renderer"
	"github.com/spaghettifunk/vkrview/engine/renderer/metadata"
)

type fakeMeshManager struct {
	slots []*renderer.MeshSlot
}

func (m *fakeMeshManager) Acquire(mesh *renderer.MeshSlot) { m.slots = append(m.slots, mesh) }
func (m *fakeMeshManager) AcquireInstance(submesh *renderer.SubmeshBinding) core.Handle {
	return core.InvalidHandle
}
func (m *fakeMeshManager) Count() int { return len(m.slots) }
func (m *fakeMeshManager) GetMeshByLiveIndex(i int) (*renderer.MeshSlot, bool) {
	if i < 0 || i >= len(m.slots) {
		return nil, false
	}
	return m.slots[i], true
}
func (m *fakeMeshManager) GetSubmesh(mesh *renderer.MeshSlot, sub int) (*renderer.SubmeshBinding, bool) {
	if sub < 0 || sub >= len(mesh.Submeshes) {
		return nil, false
	}
	return &mesh.Submeshes[sub], true
}
func (m *fakeMeshManager) SetModel(mesh *renderer.MeshSlot, model vmath.Mat4)   {}
func (m *fakeMeshManager) SetVisible(mesh *renderer.MeshSlot, visible bool)     {}
func (m *fakeMeshManager) SetRenderID(mesh *renderer.MeshSlot, id uint32)       {}
func (m *fakeMeshManager) GetRenderID(mesh *renderer.MeshSlot) (uint32, bool)   { return 0, true }
func (m *fakeMeshManager) Destroy(mesh *renderer.MeshSlot) error                { return nil }
func (m *fakeMeshManager) InstanceDestroy(instance core.Handle) error           { return nil }
func (m *fakeMeshManager) InstanceSetModel(instance core.Handle, model vmath.Mat4) {}
func (m *fakeMeshManager) InstanceSetVisible(instance core.Handle, visible bool)   {}
func (m *fakeMeshManager) InstanceSetRenderID(instance core.Handle, id uint32)     {}
func (m *fakeMeshManager) RefreshPipeline(mesh *renderer.MeshSlot, sub int, pipeline core.Handle) {
}
func (m *fakeMeshManager) InstanceRefreshPipeline(instance core.Handle, pipeline core.Handle) {}
func (m *fakeMeshManager) GetAsset(mesh *renderer.MeshSlot) *metadata.Mesh       { return mesh.Mesh }
func (m *fakeMeshManager) InstanceCount() int                                     { return 0 }
func (m *fakeMeshManager) GetInstanceByLiveIndex(i int) (core.Handle, bool)       { return core.InvalidHandle, false }
func (m *fakeMeshManager) InstanceState(instance core.Handle) (vmath.Mat4, bool, uint32, *renderer.SubmeshBinding, bool) {
	return vmath.Mat4{}, false, 0, nil, false
}

var _ renderer.MeshManager = (*fakeMeshManager)(nil)

func twoIdenticalMeshes() *fakeMeshManager {
	geo := &metadata.Geometry{ID: 7}
	binding := func() renderer.SubmeshBinding {
		return renderer.SubmeshBinding{
			Geometry: geo,
			RangeID:  1,
			Pipeline: core.Handle{Id: 1, Generation: 0},
		}
	}
	return &fakeMeshManager{
		slots: []*renderer.MeshSlot{
			{Submeshes: []renderer.SubmeshBinding{binding()}},
			{Submeshes: []renderer.SubmeshBinding{binding()}},
		},
	}
}

func TestBatcherCollectsIdenticalMeshesIntoOneOpaqueBatch(t *testing.T) {
	mm := twoIdenticalMeshes()
	b := NewBatcher(false)

	sphereOf := func(i int) (vmath.Vec3, float32, bool) { return vmath.Vec3{}, 0, false }
	b.Collect(mm, nil, sphereOf, vmath.Vec3{})
	b.BuildOpaqueBatches()

	if len(b.Opaque) != 2 {
		t.Fatalf("len(Opaque) = %d, want 2", len(b.Opaque))
	}
	if len(b.OpaqueBatches) != 1 {
		t.Fatalf("len(OpaqueBatches) = %d, want 1", len(b.OpaqueBatches))
	}
	if b.OpaqueBatches[0].CommandCount != 2 {
		t.Fatalf("CommandCount = %d, want 2", b.OpaqueBatches[0].CommandCount)
	}
}

func TestBatcherCullsOutsideFrustum(t *testing.T) {
	mm := twoIdenticalMeshes()
	b := NewBatcher(false)

	view := vmath.NewMat4Identity()
	proj := vmath.NewMat4Identity()
	frustum := vmath.NewFrustumFromViewProjection(view, proj)

	calls := 0
	sphereOf := func(i int) (vmath.Vec3, float32, bool) {
		calls++
		// Far outside any reasonable frustum derived from identity matrices.
		return vmath.NewVec3(1e9, 1e9, 1e9), 1, true
	}
	b.Collect(mm, &frustum, sphereOf, vmath.Vec3{})

	if calls != 2 {
		t.Fatalf("sphereOf called %d times, want 2 (one per mesh slot)", calls)
	}
	if len(b.Opaque) != 0 {
		t.Fatalf("len(Opaque) = %d, want 0 after culling", len(b.Opaque))
	}
}

func TestBatcherClassifiesCutoutAsTransparent(t *testing.T) {
	geo := &metadata.Geometry{ID: 1}
	mm := &fakeMeshManager{
		slots: []*renderer.MeshSlot{
			{Submeshes: []renderer.SubmeshBinding{{
				Geometry: geo,
				Pipeline: core.Handle{Id: 1},
				Material: &renderer.MaterialInfo{
					AlphaCutoff:           0.5,
					DiffuseTextureEnabled: true,
					DiffuseTexture:        core.Handle{Id: 1},
				},
			}}},
		},
	}
	b := NewBatcher(false)
	sphereOf := func(i int) (vmath.Vec3, float32, bool) { return vmath.Vec3{}, 0, false }
	b.Collect(mm, nil, sphereOf, vmath.NewVec3(0, 0, 0))

	if len(b.Opaque) != 0 {
		t.Fatalf("cutout material should not be classified opaque: len(Opaque) = %d", len(b.Opaque))
	}
	if len(b.Transparent) != 1 {
		t.Fatalf("len(Transparent) = %d, want 1", len(b.Transparent))
	}
}

func TestSortTransparentOrdersFartherFirst(t *testing.T) {
	b := &Batcher{
		Transparent: []DrawCommand{
			{CameraDistance: 1},
			{CameraDistance: 5},
			{CameraDistance: 3},
		},
	}
	b.SortTransparent()

	want := []float32{5, 3, 1}
	for i, d := range want {
		if b.Transparent[i].CameraDistance != d {
			t.Fatalf("Transparent[%d].CameraDistance = %v, want %v", i, b.Transparent[i].CameraDistance, d)
		}
	}
}
