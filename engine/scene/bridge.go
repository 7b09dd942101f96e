package scene

import (
	"github.com/spaghettifunk/vkrview/engine/renderer"
	"github.com/yohamta/donburi"
)

// invalidEntity marks an unassigned render_id_to_entity slot: donburi's
// zero Entity value is never issued by Create, so it doubles as
// INVALID here.
const invalidEntity donburi.Entity = 0

// SceneRenderBridge owns the render_id → entity mapping consumed by GPU
// picking.
type SceneRenderBridge struct {
	renderIDToEntity []donburi.Entity
}

func newSceneRenderBridge(initialCapacity int) *SceneRenderBridge {
	b := &SceneRenderBridge{}
	b.ensureCapacity(initialCapacity)
	return b
}

func (b *SceneRenderBridge) ensureCapacity(n int) {
	if len(b.renderIDToEntity) >= n {
		return
	}
	grown := make([]donburi.Entity, n)
	copy(grown, b.renderIDToEntity)
	for i := len(b.renderIDToEntity); i < n; i++ {
		grown[i] = invalidEntity
	}
	b.renderIDToEntity = grown
}

// EntityFromPickingID resolves a GPU-reported object id back to an
// entity, decoding the picking-kind envelope first.
func (b *SceneRenderBridge) EntityFromPickingID(objectID uint32) (donburi.Entity, bool) {
	_, renderID, ok := DecodePickingID(objectID)
	if !ok {
		return invalidEntity, false
	}
	if int(renderID) >= len(b.renderIDToEntity) {
		return invalidEntity, false
	}
	e := b.renderIDToEntity[renderID]
	return e, e != invalidEntity
}

// fullSync rebuilds the entire bridge and pushes every renderable's
// current state into the mesh manager.
func (s *Scene) fullSync(mm renderer.MeshManager) {
	b := s.bridge
	b.ensureCapacity(int(s.nextRenderID) + 1)
	for i := range b.renderIDToEntity {
		b.renderIDToEntity[i] = invalidEntity
	}

	s.queries.renderables.Each(s.world, func(entry *donburi.Entry) {
		s.syncRenderableEntry(entry, mm)
	})
	s.queries.shapes.Each(s.world, func(entry *donburi.Entry) {
		s.syncShapeEntry(entry, mm)
	})
	s.queries.pointLights.Each(s.world, func(entry *donburi.Entry) {
		if !entry.HasComponent(RenderID) || !entry.HasComponent(MeshRenderer) {
			return
		}
		s.syncRenderableEntry(entry, mm)
	})

	s.renderDirty = s.renderDirty[:0]
	s.renderFullSyncNeeded = false
}

// incrementalSync processes only the entities marked dirty by the last
// transform update.
func (s *Scene) incrementalSync(mm renderer.MeshManager) {
	for _, e := range s.renderDirty {
		if !s.world.Valid(e) {
			continue
		}
		entry := s.world.Entry(e)
		if !entry.HasComponent(RenderID) {
			continue
		}
		if entry.HasComponent(MeshRenderer) {
			s.syncRenderableEntry(entry, mm)
		} else if entry.HasComponent(Shape) {
			s.syncShapeEntry(entry, mm)
		}
	}
	s.renderDirty = s.renderDirty[:0]
}

func (s *Scene) syncRenderableEntry(entry *donburi.Entry, mm renderer.MeshManager) {
	t := donburi.Get[TransformData](entry)
	rid := donburi.Get[RenderIDData](entry)
	mr := donburi.Get[MeshRendererData](entry)

	visible := s.isVisible(entry.Entity())
	mm.InstanceSetModel(mr.Instance, t.World)
	mm.InstanceSetVisible(mr.Instance, visible)
	mm.InstanceSetRenderID(mr.Instance, rid.ID)

	s.bridge.ensureCapacity(int(rid.ID) + 1)
	if visible {
		s.bridge.renderIDToEntity[rid.ID] = entry.Entity()
	} else {
		s.bridge.renderIDToEntity[rid.ID] = invalidEntity
	}
}

func (s *Scene) syncShapeEntry(entry *donburi.Entry, mm renderer.MeshManager) {
	t := donburi.Get[TransformData](entry)
	rid := donburi.Get[RenderIDData](entry)
	shape := donburi.Get[ShapeData](entry)

	slot, ok := mm.GetMeshByLiveIndex(shape.MeshIndex)
	if !ok {
		return
	}
	visible := s.isVisible(entry.Entity())
	mm.SetModel(slot, t.World)
	mm.SetVisible(slot, visible)
	mm.SetRenderID(slot, rid.ID)

	s.bridge.ensureCapacity(int(rid.ID) + 1)
	if visible {
		s.bridge.renderIDToEntity[rid.ID] = entry.Entity()
	} else {
		s.bridge.renderIDToEntity[rid.ID] = invalidEntity
	}
}

// isVisible walks up to world.capacity parents (bounded here by the
// number of live entities, since donburi has no fixed capacity): a
// non-inheriting, hidden SceneVisibility terminates the walk hidden; a
// missing transform or invalid parent terminates it visible.
func (s *Scene) isVisible(e donburi.Entity) bool {
	maxSteps := s.world.Len() + 1
	cur := e
	for i := 0; i < int(maxSteps); i++ {
		if !s.world.Valid(cur) {
			return true
		}
		entry := s.world.Entry(cur)
		if !entry.HasComponent(Visibility) {
			return true
		}
		vis := donburi.Get[VisibilityData](entry)
		if !vis.Visible {
			return false
		}
		if !vis.InheritParent {
			return true
		}
		if !entry.HasComponent(Transform) {
			return true
		}
		t := donburi.Get[TransformData](entry)
		if !t.HasParent || !s.world.Valid(t.Parent) {
			return true
		}
		cur = t.Parent
	}
	return true
}
