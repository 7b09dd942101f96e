package renderer

import (
	"github.com/spaghettifunk/vkrview/engine/core"
	vmath "github.com/spaghettifunk/vkrview/engine/math"
	"github.com/spaghettifunk/vkrview/engine/renderer/metadata"
)

// meshRecord is the live state MeshPool keeps per non-instanced draw:
// the slot the scene/render bridge obtained plus the model/visibility/
// render-id the draw batcher reads every frame.
type meshRecord struct {
	slot     *MeshSlot
	model    vmath.Mat4
	visible  bool
	renderID uint32
}

// instanceRecord mirrors meshRecord for the instanced path, plus the
// submesh binding the world layer's batcher resolves pipeline/material
// from.
type instanceRecord struct {
	model    vmath.Mat4
	visible  bool
	objectID uint32
	submesh  *SubmeshBinding
}

// MeshPool is the default in-memory MeshManager: a flat slice of mesh
// slots alongside a generational pool of instance records. It has no
// GPU-resident storage of its own — that lives on the geometry/material
// a MeshSlot/SubmeshBinding point to — so MeshPool's job is purely the
// live-index bookkeeping the world view layer and scene/render bridge
// depend on.
type MeshPool struct {
	meshes    []*meshRecord
	instances *core.HandlePool[instanceRecord]
}

// NewMeshPool constructs an empty pool with capacityHint reserved for
// non-instanced mesh slots.
func NewMeshPool(capacityHint int) *MeshPool {
	return &MeshPool{
		meshes:    make([]*meshRecord, 0, capacityHint),
		instances: core.NewHandlePool[instanceRecord](capacityHint),
	}
}

// Acquire registers slot as a new non-instanced mesh draw, reusing the
// first free entry of the pool when there is one.
func (p *MeshPool) Acquire(slot *MeshSlot) {
	rec := &meshRecord{slot: slot, visible: true}
	for i, existing := range p.meshes {
		if existing == nil {
			p.meshes[i] = rec
			return
		}
	}
	p.meshes = append(p.meshes, rec)
}

// AcquireInstance registers a new instanced draw, returning the handle
// the scene/render bridge stores on its component.
func (p *MeshPool) AcquireInstance(submesh *SubmeshBinding) core.Handle {
	return p.instances.Acquire(instanceRecord{visible: true, submesh: submesh})
}

func (p *MeshPool) find(mesh *MeshSlot) *meshRecord {
	for _, rec := range p.meshes {
		if rec != nil && rec.slot == mesh {
			return rec
		}
	}
	return nil
}

func (p *MeshPool) Count() int {
	n := 0
	for _, rec := range p.meshes {
		if rec != nil {
			n++
		}
	}
	return n
}

func (p *MeshPool) GetMeshByLiveIndex(i int) (*MeshSlot, bool) {
	live := 0
	for _, rec := range p.meshes {
		if rec == nil {
			continue
		}
		if live == i {
			return rec.slot, true
		}
		live++
	}
	return nil, false
}

func (p *MeshPool) GetSubmesh(mesh *MeshSlot, sub int) (*SubmeshBinding, bool) {
	if mesh == nil || sub < 0 || sub >= len(mesh.Submeshes) {
		return nil, false
	}
	return &mesh.Submeshes[sub], true
}

func (p *MeshPool) SetModel(mesh *MeshSlot, model vmath.Mat4) {
	if rec := p.find(mesh); rec != nil {
		rec.model = model
	}
}

func (p *MeshPool) SetVisible(mesh *MeshSlot, visible bool) {
	if rec := p.find(mesh); rec != nil {
		rec.visible = visible
	}
}

func (p *MeshPool) SetRenderID(mesh *MeshSlot, id uint32) {
	if rec := p.find(mesh); rec != nil {
		rec.renderID = id
	}
}

func (p *MeshPool) GetRenderID(mesh *MeshSlot) (uint32, bool) {
	rec := p.find(mesh)
	if rec == nil {
		return 0, false
	}
	return rec.renderID, true
}

func (p *MeshPool) Destroy(mesh *MeshSlot) error {
	for i, rec := range p.meshes {
		if rec != nil && rec.slot == mesh {
			p.meshes[i] = nil
			return nil
		}
	}
	return nil
}

func (p *MeshPool) InstanceDestroy(instance core.Handle) error {
	p.instances.Release(instance)
	return nil
}

func (p *MeshPool) InstanceSetModel(instance core.Handle, model vmath.Mat4) {
	if rec, ok := p.instances.GetPtr(instance); ok {
		rec.model = model
	}
}

func (p *MeshPool) InstanceSetVisible(instance core.Handle, visible bool) {
	if rec, ok := p.instances.GetPtr(instance); ok {
		rec.visible = visible
	}
}

func (p *MeshPool) InstanceSetRenderID(instance core.Handle, id uint32) {
	if rec, ok := p.instances.GetPtr(instance); ok {
		rec.objectID = id
	}
}

func (p *MeshPool) RefreshPipeline(mesh *MeshSlot, sub int, pipeline core.Handle) {
	if binding, ok := p.GetSubmesh(mesh, sub); ok {
		binding.Pipeline = pipeline
	}
}

func (p *MeshPool) InstanceRefreshPipeline(instance core.Handle, pipeline core.Handle) {
	if rec, ok := p.instances.GetPtr(instance); ok && rec.submesh != nil {
		rec.submesh.Pipeline = pipeline
	}
}

func (p *MeshPool) GetAsset(mesh *MeshSlot) *metadata.Mesh {
	if mesh == nil {
		return nil
	}
	return mesh.Mesh
}

func (p *MeshPool) InstanceCount() int { return p.instances.Len() }

func (p *MeshPool) GetInstanceByLiveIndex(i int) (core.Handle, bool) {
	var found core.Handle
	live := 0
	ok := false
	p.instances.Each(func(h core.Handle, _ *instanceRecord) bool {
		if live == i {
			found, ok = h, true
			return false
		}
		live++
		return true
	})
	return found, ok
}

func (p *MeshPool) InstanceState(instance core.Handle) (model vmath.Mat4, visible bool, objectID uint32, submesh *SubmeshBinding, ok bool) {
	rec, found := p.instances.Get(instance)
	if !found {
		return vmath.Mat4{}, false, 0, nil, false
	}
	return rec.model, rec.visible, rec.objectID, rec.submesh, true
}

var _ MeshManager = (*MeshPool)(nil)
