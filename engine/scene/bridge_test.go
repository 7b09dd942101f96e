package scene

import (
	"testing"

	"github.com/spaghettifunk/vkrview/engine/core"
	vmath "github.com/spaghettifunk/vkrview/engine/math"
	"github.com/spaghettifunk/vkrview/engine/renderer"
	"github.com/spaghettifunk/vkrview/engine/renderer/metadata"
	"github.com/spaghettifunk/vkrview/engine/resources"
	"github.com/yohamta/donburi"
)

type fakeGeometryFactory struct{}

func (fakeGeometryFactory) CreateCube(dimensions vmath.Vec3) (*metadata.Geometry, error) {
	return &metadata.Geometry{ID: 1, Name: "cube"}, nil
}

type fakeMaterialFactory struct{}

func (fakeMaterialFactory) GetOrCreate(name, path string) (*resources.Material, error) {
	return &resources.Material{ID: 1}, nil
}
func (fakeMaterialFactory) CreateColored(color vmath.Vec4) (*resources.Material, error) {
	return &resources.Material{ID: 2}, nil
}
func (fakeMaterialFactory) Default() *resources.Material { return &resources.Material{ID: 0} }

type bridgeMeshSlot struct {
	model   vmath.Mat4
	visible bool
	renderID uint32
}

type fakeBridgeMeshManager struct {
	slots []*renderer.MeshSlot
	state []*bridgeMeshSlot
}

func (m *fakeBridgeMeshManager) Acquire(mesh *renderer.MeshSlot) {
	m.slots = append(m.slots, mesh)
	m.state = append(m.state, &bridgeMeshSlot{})
}
func (m *fakeBridgeMeshManager) AcquireInstance(submesh *renderer.SubmeshBinding) core.Handle {
	return core.InvalidHandle
}
func (m *fakeBridgeMeshManager) Count() int { return len(m.slots) }
func (m *fakeBridgeMeshManager) GetMeshByLiveIndex(i int) (*renderer.MeshSlot, bool) {
	if i < 0 || i >= len(m.slots) {
		return nil, false
	}
	return m.slots[i], true
}
func (m *fakeBridgeMeshManager) GetSubmesh(mesh *renderer.MeshSlot, sub int) (*renderer.SubmeshBinding, bool) {
	return nil, false
}
func (m *fakeBridgeMeshManager) SetModel(mesh *renderer.MeshSlot, model vmath.Mat4) {
	m.stateFor(mesh).model = model
}
func (m *fakeBridgeMeshManager) SetVisible(mesh *renderer.MeshSlot, visible bool) {
	m.stateFor(mesh).visible = visible
}
func (m *fakeBridgeMeshManager) SetRenderID(mesh *renderer.MeshSlot, id uint32) {
	m.stateFor(mesh).renderID = id
}
func (m *fakeBridgeMeshManager) GetRenderID(mesh *renderer.MeshSlot) (uint32, bool) {
	return m.stateFor(mesh).renderID, true
}
func (m *fakeBridgeMeshManager) Destroy(mesh *renderer.MeshSlot) error {
	for i, s := range m.slots {
		if s == mesh {
			m.slots = append(m.slots[:i], m.slots[i+1:]...)
			m.state = append(m.state[:i], m.state[i+1:]...)
			return nil
		}
	}
	return nil
}
func (m *fakeBridgeMeshManager) InstanceDestroy(instance core.Handle) error { return nil }
func (m *fakeBridgeMeshManager) InstanceSetModel(instance core.Handle, model vmath.Mat4)   {}
func (m *fakeBridgeMeshManager) InstanceSetVisible(instance core.Handle, visible bool)     {}
func (m *fakeBridgeMeshManager) InstanceSetRenderID(instance core.Handle, id uint32)       {}
func (m *fakeBridgeMeshManager) RefreshPipeline(mesh *renderer.MeshSlot, sub int, pipeline core.Handle) {
}
func (m *fakeBridgeMeshManager) InstanceRefreshPipeline(instance core.Handle, pipeline core.Handle) {}
func (m *fakeBridgeMeshManager) GetAsset(mesh *renderer.MeshSlot) *metadata.Mesh { return mesh.Mesh }
func (m *fakeBridgeMeshManager) InstanceCount() int                             { return 0 }
func (m *fakeBridgeMeshManager) GetInstanceByLiveIndex(i int) (core.Handle, bool) {
	return core.InvalidHandle, false
}
func (m *fakeBridgeMeshManager) InstanceState(instance core.Handle) (vmath.Mat4, bool, uint32, *renderer.SubmeshBinding, bool) {
	return vmath.Mat4{}, false, 0, nil, false
}

func (m *fakeBridgeMeshManager) stateFor(mesh *renderer.MeshSlot) *bridgeMeshSlot {
	for i, s := range m.slots {
		if s == mesh {
			return m.state[i]
		}
	}
	panic("unknown mesh slot")
}

var _ renderer.MeshManager = (*fakeBridgeMeshManager)(nil)

func newBridgeTestScene() (*Scene, *fakeBridgeMeshManager) {
	mm := &fakeBridgeMeshManager{}
	sc, err := NewScene(SceneConfig{
		MeshManager: mm,
		Geometries:  fakeGeometryFactory{},
		Materials:   fakeMaterialFactory{},
	})
	if err != nil {
		panic(err)
	}
	return sc, mm
}

func TestFullSyncAssignsPickingIDAndMeshState(t *testing.T) {
	sc, mm := newBridgeTestScene()

	e := sc.Spawn("box")
	sc.SetPosition(e, vmath.NewVec3(1, 2, 3))
	if err := sc.SetShape(e, ShapeCube, vmath.NewVec3(1, 1, 1), vmath.Vec4{}, "", ""); err != nil {
		t.Fatalf("SetShape: %v", err)
	}

	sc.UpdateAndSync(0.016)

	renderID := donburi.Get[RenderIDData](sc.world.Entry(e)).ID
	if renderID == 0 {
		t.Fatalf("render id not assigned")
	}

	pickingID := EncodePickingID(PickingScene, renderID)
	got, ok := sc.EntityFromPickingID(pickingID)
	if !ok || got != e {
		t.Fatalf("EntityFromPickingID(%d) = (%v, %v), want (%v, true)", pickingID, got, ok, e)
	}

	if !mm.state[0].visible {
		t.Fatalf("mesh slot 0 visible = false, want true")
	}
	if mm.state[0].renderID != renderID {
		t.Fatalf("mesh slot 0 render id = %d, want %d", mm.state[0].renderID, renderID)
	}
}

func TestIncrementalSyncHonorsHiddenVisibility(t *testing.T) {
	sc, mm := newBridgeTestScene()

	e := sc.Spawn("box")
	if err := sc.SetShape(e, ShapeCube, vmath.NewVec3(1, 1, 1), vmath.Vec4{}, "", ""); err != nil {
		t.Fatalf("SetShape: %v", err)
	}
	sc.UpdateAndSync(0.016)

	renderID := donburi.Get[RenderIDData](sc.world.Entry(e)).ID
	pickingID := EncodePickingID(PickingScene, renderID)

	if _, ok := sc.EntityFromPickingID(pickingID); !ok {
		t.Fatalf("entity should be resolvable before hiding")
	}

	donburi.SetValue(sc.world.Entry(e), Visibility, VisibilityData{Visible: false, InheritParent: true})
	sc.renderDirty = append(sc.renderDirty, e)
	sc.Sync()

	if _, ok := sc.EntityFromPickingID(pickingID); ok {
		t.Fatalf("hidden entity should no longer resolve from its picking id")
	}
	if mm.state[0].visible {
		t.Fatalf("mesh slot 0 visible = true, want false after hiding")
	}
}
