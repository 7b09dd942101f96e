package scene

import (
	"github.com/spaghettifunk/vkrview/engine/core"
	vmath "github.com/spaghettifunk/vkrview/engine/math"
	"github.com/yohamta/donburi"
)

// rebuildTopoOrder is a BFS linearization of the transform hierarchy
// from roots (parentless or dead-parented entities).
// Any transform left unvisited after the BFS (a cycle) is appended as an
// additional root, with a warning, rather than dropped.
func (s *Scene) rebuildTopoOrder() {
	visited := make(map[donburi.Entity]bool)
	var order []donburi.Entity

	var roots []donburi.Entity
	s.queries.transforms.Each(s.world, func(entry *donburi.Entry) {
		t := donburi.Get[TransformData](entry)
		if !t.HasParent || !s.world.Valid(t.Parent) {
			roots = append(roots, entry.Entity())
		}
	})

	var queue []donburi.Entity
	queue = append(queue, roots...)
	for _, r := range roots {
		visited[r] = true
	}
	for len(queue) > 0 {
		e := queue[0]
		queue = queue[1:]
		order = append(order, e)
		children, ok := s.children.children(e)
		if !ok {
			// No cached slot: fall back to a query scan for this parent.
			s.queries.transforms.Each(s.world, func(entry *donburi.Entry) {
				t := donburi.Get[TransformData](entry)
				if t.HasParent && t.Parent == e && s.world.Valid(entry.Entity()) {
					children = append(children, entry.Entity())
				}
			})
		}
		for _, c := range children {
			if visited[c] {
				continue
			}
			visited[c] = true
			queue = append(queue, c)
		}
	}

	s.queries.transforms.Each(s.world, func(entry *donburi.Entry) {
		e := entry.Entity()
		if !visited[e] {
			visited[e] = true
			core.LogWarn("scene: transform %v unreachable from any root (hierarchy cycle), appended as an extra root", e)
			order = append(order, e)
		}
	})

	s.topoOrder = order
	s.hierarchyDirty = false
}

// passLocal is pass 1 of the two-pass transform update: clear
// WORLD_UPDATED from the previous frame and recompute local for every
// dirty transform.
func (s *Scene) passLocal() {
	s.queries.transforms.Each(s.world, func(entry *donburi.Entry) {
		t := donburi.Get[TransformData](entry)
		t.Flags &^= WorldUpdated
		if t.Flags.Has(DirtyLocal) {
			rot := t.Rotation.ToMat4()
			tr := rot.Mul(vmath.NewMat4Translation(t.Position))
			scaleM := vmath.NewMat4Scale(t.Scale)
			t.Local = scaleM.Mul(tr)
			t.Flags &^= DirtyLocal
			t.Flags |= DirtyWorld
		}
	})
}

// passWorld is pass 2 of the two-pass transform update: walk
// topo_order, propagate deferred dirtiness from parent to child,
// recompute world, and collect the render-dirty list for entities
// carrying a renderable component.
func (s *Scene) passWorld() {
	s.renderDirty = s.renderDirty[:0]

	for _, e := range s.topoOrder {
		if !s.world.Valid(e) {
			continue
		}
		entry := s.world.Entry(e)
		t := donburi.Get[TransformData](entry)

		var parentWorld vmath.Mat4
		hasParent := false
		if t.HasParent && s.world.Valid(t.Parent) {
			pt := donburi.Get[TransformData](s.world.Entry(t.Parent))
			if pt.Flags.Has(WorldUpdated) {
				t.Flags |= DirtyWorld
			}
			parentWorld = pt.World
			hasParent = true
		}

		if !t.Flags.Has(DirtyWorld) {
			continue
		}

		if hasParent {
			t.World = t.Local.Mul(parentWorld)
		} else {
			t.World = t.Local
		}
		t.Flags &^= DirtyWorld
		t.Flags |= WorldUpdated

		if entry.HasComponent(MeshRenderer) || entry.HasComponent(Shape) {
			if len(s.renderDirty) >= s.maxRenderDirty {
				// Render-dirty list overflow: fall back to a full sync
				// rather than growing unbounded.
				s.renderFullSyncNeeded = true
				continue
			}
			s.renderDirty = append(s.renderDirty, e)
		}
	}
}
