package scene

import "github.com/yohamta/donburi"

// childSlot is the parent→children cache entry for one parent entity.
//
// A generation-guarded slot keyed by entity index is needed so a
// recycled entity index cannot be mistaken for its predecessor.
// donburi.Entity already encodes a generation internally (see
// DESIGN.md), so keying this map directly by donburi.Entity gives the
// same staleness guard for free: a reused slot produces a distinct
// Entity value, which simply becomes a new, unrelated map key.
type childSlot struct {
	children []donburi.Entity
}

// childIndex is a rebuildable performance cache over the transform
// hierarchy, mapping each parent to its known children.
type childIndex struct {
	slots map[donburi.Entity]*childSlot
}

func newChildIndex() *childIndex {
	return &childIndex{slots: make(map[donburi.Entity]*childSlot)}
}

func (ci *childIndex) add(parent, child donburi.Entity) {
	slot, ok := ci.slots[parent]
	if !ok {
		slot = &childSlot{}
		ci.slots[parent] = slot
	}
	for _, c := range slot.children {
		if c == child {
			return
		}
	}
	slot.children = append(slot.children, child)
}

func (ci *childIndex) remove(parent, child donburi.Entity) {
	slot, ok := ci.slots[parent]
	if !ok {
		return
	}
	for i, c := range slot.children {
		if c == child {
			last := len(slot.children) - 1
			slot.children[i] = slot.children[last]
			slot.children = slot.children[:last]
			return
		}
	}
}

func (ci *childIndex) clearParentSlot(parent donburi.Entity) {
	delete(ci.slots, parent)
}

// children returns the cached child list for parent, or nil if the slot
// has never been populated — callers fall back to a query scan in that
// case.
func (ci *childIndex) children(parent donburi.Entity) ([]donburi.Entity, bool) {
	slot, ok := ci.slots[parent]
	if !ok {
		return nil, false
	}
	return slot.children, true
}

// rebuild re-inserts every child under its parent, skipping dead parents.
func (ci *childIndex) rebuild(world donburi.World, q *donburi.Query) {
	ci.slots = make(map[donburi.Entity]*childSlot)
	q.Each(world, func(entry *donburi.Entry) {
		t := donburi.Get[TransformData](entry)
		if !t.HasParent {
			return
		}
		if !world.Valid(t.Parent) {
			return
		}
		ci.add(t.Parent, entry.Entity())
	})
}
