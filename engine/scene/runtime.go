package scene

import (
	"github.com/spaghettifunk/vkrview/engine/core"
	"github.com/spaghettifunk/vkrview/engine/renderer"
)

// SceneRuntime bundles a Scene with its own arena so a full scene
// teardown is a single arena reclamation.
type SceneRuntime struct {
	scene    *Scene
	frontend renderer.Frontend
}

// SceneRuntimeConfig is create's parameter set: the scene's
// collaborators plus the arena size to reserve.
type SceneRuntimeConfig struct {
	Frontend renderer.Frontend
	Scene    SceneConfig
}

// NewSceneRuntime initializes the scene (with its bridge and arena),
// then reserves ArenaBytes of the arena's budget.
func NewSceneRuntime(cfg SceneRuntimeConfig) (*SceneRuntime, error) {
	sc, err := NewScene(cfg.Scene)
	if err != nil {
		return nil, err
	}
	if !sc.arena.Alloc(cfg.Scene.ArenaBytes) {
		return nil, core.NewSceneError(core.SceneErrAllocFailed, "scene arena allocation failed")
	}
	return &SceneRuntime{scene: sc, frontend: cfg.Frontend}, nil
}

func (r *SceneRuntime) Scene() *Scene { return r.scene }

// Update, Sync, FullSync, UpdateAndSync, and EntityFromPickingID are
// trivial forwarders to the underlying Scene.
func (r *SceneRuntime) Update(dt float64)     { r.scene.Update(dt) }
func (r *SceneRuntime) Sync()                 { r.scene.Sync() }
func (r *SceneRuntime) FullSync()             { r.scene.FullSync() }
func (r *SceneRuntime) UpdateAndSync(dt float64) {
	r.scene.UpdateAndSync(dt)
}
func (r *SceneRuntime) EntityFromPickingID(id uint32) (uint64, bool) {
	e, ok := r.scene.EntityFromPickingID(id)
	return uint64(e), ok
}

// Destroy: on a live renderer, waits idle, invalidates picking state,
// tears down owned 3D-text and meshes, shuts the scene down, then
// reclaims the arena in one step.
func (r *SceneRuntime) Destroy() {
	if r.frontend != nil {
		r.frontend.WaitIdle()
	}

	// Invalidate picking state: every entry becomes unresolvable before
	// the entities themselves go away.
	for i := range r.scene.bridge.renderIDToEntity {
		r.scene.bridge.renderIDToEntity[i] = invalidEntity
	}

	r.scene.Shutdown()
	r.scene.arena.Reclaim()
}
