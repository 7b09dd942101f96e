package scene

import (
	"github.com/spaghettifunk/vkrview/engine/core"
	vmath "github.com/spaghettifunk/vkrview/engine/math"
	"github.com/spaghettifunk/vkrview/engine/renderer"
	"github.com/spaghettifunk/vkrview/engine/resources"
	"github.com/yohamta/donburi"
)

// Scene is the ECS world plus the ordering/dirty-tracking state: topo
// order, parent→children index, render bridge, and mesh/text ownership.
type Scene struct {
	world    donburi.World
	queries  *queries
	children *childIndex
	bridge   *SceneRenderBridge
	arena    *Arena

	meshManager renderer.MeshManager
	geometries  GeometryFactory
	materials   MaterialFactory
	worldRes    WorldResources

	hierarchyDirty       bool
	topoOrder            []donburi.Entity
	renderDirty          []donburi.Entity
	maxRenderDirty        int
	renderFullSyncNeeded bool

	nextRenderID uint32

	ownedMeshes map[donburi.Entity]*renderer.MeshSlot
	ownedText   map[donburi.Entity]int
}

// SceneConfig supplies the collaborators and bounds a Scene needs.
type SceneConfig struct {
	MeshManager    renderer.MeshManager
	Geometries     GeometryFactory
	Materials      MaterialFactory
	WorldResources WorldResources
	ArenaBytes     int
	MaxRenderDirty int
	PickingCapacity int
}

// NewScene compiles the query set and allocates the render bridge and
// arena. Returns WorldInitFailed if the queries fail to compile —
// though donburi's filter.Contains queries hold no external resources
// and cannot themselves fail, the error path is preserved for callers
// that treat scene construction as fallible.
func NewScene(cfg SceneConfig) (*Scene, error) {
	q, err := compileQueries()
	if err != nil {
		q.release()
		return nil, core.NewSceneError(core.SceneErrWorldInitFailed, err.Error())
	}

	maxDirty := cfg.MaxRenderDirty
	if maxDirty <= 0 {
		maxDirty = 4096
	}
	pickingCap := cfg.PickingCapacity
	if pickingCap <= 0 {
		pickingCap = 1024
	}

	return &Scene{
		world:          donburi.NewWorld(),
		queries:        q,
		children:       newChildIndex(),
		bridge:         newSceneRenderBridge(pickingCap),
		arena:          NewArena(cfg.ArenaBytes),
		meshManager:    cfg.MeshManager,
		geometries:     cfg.Geometries,
		materials:      cfg.Materials,
		worldRes:       cfg.WorldResources,
		hierarchyDirty: true,
		maxRenderDirty: maxDirty,
		ownedMeshes:    make(map[donburi.Entity]*renderer.MeshSlot),
		ownedText:      make(map[donburi.Entity]int),
	}, nil
}

// Spawn creates an entity carrying SceneName, SceneTransform (identity),
// and SceneVisibility (visible, inheriting), matching the default state
// every scene entity needs before components are layered on.
func (s *Scene) Spawn(name string) donburi.Entity {
	entry := s.world.Entry(s.world.Create(Name, Transform, Visibility))
	donburi.SetValue(entry, Name, NameData{Name: name})
	donburi.SetValue(entry, Transform, TransformData{
		Scale:    vmath.NewVec3One(),
		Rotation: vmath.NewQuatIdentity(),
		Local:    vmath.NewMat4Identity(),
		World:    vmath.NewMat4Identity(),
		Flags:    DirtyLocal,
	})
	donburi.SetValue(entry, Visibility, VisibilityData{Visible: true, InheritParent: true})
	return entry.Entity()
}

// SetParent reparents child under parent, invalidating the hierarchy:
// rebuilt on the next update.
func (s *Scene) SetParent(child, parent donburi.Entity) {
	if !s.world.Valid(child) {
		return
	}
	entry := s.world.Entry(child)
	t := donburi.Get[TransformData](entry)
	if t.HasParent {
		s.children.remove(t.Parent, child)
	}
	if s.world.Valid(parent) {
		t.Parent = parent
		t.HasParent = true
		s.children.add(parent, child)
	} else {
		t.Parent = 0
		t.HasParent = false
	}
	t.Flags |= DirtyLocal | DirtyHierarchy
	s.hierarchyDirty = true
}

// SetPosition/SetRotation/SetScale mutate a transform outside the update
// loop: they set dirty flags processed by the next Update.
func (s *Scene) SetPosition(e donburi.Entity, p vmath.Vec3) {
	if !s.world.Valid(e) {
		return
	}
	t := donburi.Get[TransformData](s.world.Entry(e))
	t.Position = p
	t.Flags |= DirtyLocal
}

func (s *Scene) SetRotation(e donburi.Entity, r vmath.Quaternion) {
	if !s.world.Valid(e) {
		return
	}
	t := donburi.Get[TransformData](s.world.Entry(e))
	t.Rotation = r
	t.Flags |= DirtyLocal
}

func (s *Scene) SetScale(e donburi.Entity, sc vmath.Vec3) {
	if !s.world.Valid(e) {
		return
	}
	t := donburi.Get[TransformData](s.world.Entry(e))
	t.Scale = sc
	t.Flags |= DirtyLocal
}

// WorldTransform returns e's current world matrix, as computed by the
// most recent Update.
func (s *Scene) WorldTransform(e donburi.Entity) (vmath.Mat4, bool) {
	if !s.world.Valid(e) {
		return vmath.Mat4{}, false
	}
	t := donburi.Get[TransformData](s.world.Entry(e))
	return t.World, true
}

// Update rebuilds topo order if the hierarchy changed, then runs the
// two transform passes.
func (s *Scene) Update(dt float64) {
	if !s.queries.valid {
		return
	}
	if s.hierarchyDirty {
		s.children.rebuild(s.world, s.queries.transforms)
		s.rebuildTopoOrder()
	}
	s.passLocal()
	s.passWorld()
}

// Sync chooses full or incremental sync based on renderFullSyncNeeded.
func (s *Scene) Sync() {
	if s.meshManager == nil {
		return
	}
	if s.renderFullSyncNeeded {
		s.fullSync(s.meshManager)
		return
	}
	s.incrementalSync(s.meshManager)
}

// FullSync forces a full render-bridge rebuild regardless of the dirty
// tracker's recommendation.
func (s *Scene) FullSync() {
	if s.meshManager == nil {
		return
	}
	s.fullSync(s.meshManager)
}

func (s *Scene) UpdateAndSync(dt float64) {
	s.Update(dt)
	s.Sync()
}

// EntityFromPickingID forwards to the render bridge.
func (s *Scene) EntityFromPickingID(objectID uint32) (donburi.Entity, bool) {
	return s.bridge.EntityFromPickingID(objectID)
}

func (s *Scene) allocateRenderID() uint32 {
	s.nextRenderID++
	return s.nextRenderID
}

// cubeIndexCount is the fixed index count of the unit-cube geometry
// CubeGeometryFactory produces: 6 faces, 2 triangles each, 3 indices
// per triangle.
const cubeIndexCount = 36

// materialInfoFrom projects a resources.Material onto the narrow view
// the draw batcher needs. A nil material (no MaterialFactory
// configured) yields a nil MaterialInfo, which batch.go treats as
// material id 0.
func materialInfoFrom(mat *resources.Material) *renderer.MaterialInfo {
	if mat == nil {
		return nil
	}
	return &renderer.MaterialInfo{
		ID:            mat.ID,
		Name:          mat.Name[0],
		EmissionColor: mat.DiffuseColour,
	}
}

// SetShape creates geometry and material through the respective
// factories, registers a mesh with the mesh manager, and assigns a
// render id.
func (s *Scene) SetShape(e donburi.Entity, kind ShapeKind, dimensions vmath.Vec3, color vmath.Vec4, materialName, materialPath string) error {
	if !s.world.Valid(e) {
		return core.NewSceneError(core.SceneErrInvalidEntity, "set_shape on invalid entity")
	}
	if kind != ShapeCube {
		return core.NewSceneError(core.SceneErrComponentAddFailed, "only cube shapes are supported")
	}
	if s.geometries == nil || s.meshManager == nil {
		return core.NewSceneError(core.SceneErrMeshLoadFailed, "no geometry factory/mesh manager configured")
	}

	geo, err := s.geometries.CreateCube(dimensions)
	if err != nil {
		return core.NewSceneError(core.SceneErrMeshLoadFailed, err.Error())
	}

	var mat *resources.Material
	if materialName != "" && s.materials != nil {
		mat, err = s.materials.GetOrCreate(materialName, materialPath)
		if err != nil {
			return core.NewSceneError(core.SceneErrMeshLoadFailed, err.Error())
		}
	} else if s.materials != nil {
		mat, err = s.materials.CreateColored(color)
		if err != nil {
			return core.NewSceneError(core.SceneErrMeshLoadFailed, err.Error())
		}
	}

	s.meshManager.Acquire(&renderer.MeshSlot{
		Submeshes: []renderer.SubmeshBinding{{
			Material:   materialInfoFrom(mat),
			Geometry:   geo,
			IndexCount: cubeIndexCount,
		}},
	})
	meshIndex := s.meshManager.Count() - 1

	entry := s.world.Entry(e)
	renderID := s.allocateRenderID()
	donburi.SetValue(entry, Shape, ShapeData{Kind: kind, Dimensions: dimensions, Color: color, MeshIndex: meshIndex})
	donburi.SetValue(entry, RenderID, RenderIDData{ID: renderID})

	t := donburi.Get[TransformData](entry)
	if slot, ok := s.meshManager.GetMeshByLiveIndex(meshIndex); ok {
		s.meshManager.SetModel(slot, t.World)
		s.meshManager.SetVisible(slot, true)
		s.meshManager.SetRenderID(slot, renderID)
		s.ownedMeshes[e] = slot
	}
	return nil
}

// SetText3D delegates glyph-atlas creation to WorldResources and stores
// only the slot id plus computed world extents.
func (s *Scene) SetText3D(e donburi.Entity, text string, cfg Text3DConfig) error {
	if !s.world.Valid(e) {
		return core.NewSceneError(core.SceneErrInvalidEntity, "set_text3d on invalid entity")
	}
	if s.worldRes == nil {
		return core.NewSceneError(core.SceneErrComponentAddFailed, "no WorldResources configured")
	}
	entry := s.world.Entry(e)
	t := donburi.Get[TransformData](entry)
	slot, w, h, err := s.worldRes.CreateText3D(text, cfg, t.World)
	if err != nil {
		return core.NewSceneError(core.SceneErrComponentAddFailed, err.Error())
	}
	donburi.SetValue(entry, Text3D, Text3DData{TextIndex: slot, WorldWidth: w, WorldHeight: h})
	s.ownedText[e] = slot
	return nil
}

// Shutdown releases meshes, mesh instances, and 3D-text slots the scene
// owns. Callers invoke wait_idle on the renderer beforehand.
func (s *Scene) Shutdown() {
	if s.meshManager != nil {
		for e, slot := range s.ownedMeshes {
			s.meshManager.Destroy(slot)
			delete(s.ownedMeshes, e)
		}
	}
	for e, slot := range s.ownedText {
		s.worldRes.DestroyText3D(slot)
		delete(s.ownedText, e)
	}
	s.queries.release()
}
