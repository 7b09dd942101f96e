package views

import (
	"sort"
	"sync"

	"github.com/spaghettifunk/vkrview/engine/core"
	vmath "github.com/spaghettifunk/vkrview/engine/math"
	"github.com/spaghettifunk/vkrview/engine/renderer"
	"github.com/spaghettifunk/vkrview/engine/renderer/metadata"
)

// System is the View System (VS): a bounded table of layers with a
// stable render order, typed-message dispatch, and render-target
// construction tied to the swapchain.
type System struct {
	frontend renderer.Frontend

	layers   *core.HandlePool[Layer]
	maxLayers int
	maxLayerPasses int

	sortedOrder []core.Handle
	orderDirty  bool
	nextInsertionIndex int

	modalFocus core.Handle

	windowWidth, windowHeight uint32
	frameNumber uint64

	// mu guards RebuildTargets/DrawAll against concurrent renderer access.
	mu sync.Mutex
}

// NewSystem is init(renderer, window_size).
func NewSystem(frontend renderer.Frontend, windowWidth, windowHeight uint32, maxLayers, maxLayerPasses int) (*System, error) {
	if frontend == nil {
		return nil, core.ErrInvalidParameter
	}
	return &System{
		frontend:       frontend,
		layers:         core.NewHandlePool[Layer](maxLayers),
		maxLayers:      maxLayers,
		maxLayerPasses: maxLayerPasses,
		windowWidth:    windowWidth,
		windowHeight:   windowHeight,
		orderDirty:     true,
	}, nil
}

// RegisterLayer is register_layer(cfg).
func (s *System) RegisterLayer(cfg LayerConfig) (core.Handle, error) {
	if cfg.Callbacks == nil || cfg.Name == "" {
		return core.InvalidHandle, core.ErrInvalidParameter
	}
	if len(cfg.Passes) < 1 || len(cfg.Passes) > s.maxLayerPasses {
		return core.InvalidHandle, core.ErrInvalidParameter
	}
	if s.layers.Len() >= s.maxLayers {
		return core.InvalidHandle, core.ErrNoSlot
	}

	layer := &Layer{
		Name:         cfg.Name,
		Order:        cfg.Order,
		Width:        cfg.Width,
		Height:       cfg.Height,
		View:         cfg.View,
		Projection:   cfg.Projection,
		Callbacks:    cfg.Callbacks,
		UserData:     cfg.UserData,
		Enabled:      cfg.Enabled,
		Flags:        cfg.Flags,
		SyncToWindow: cfg.SyncToWindow,
		Active:       true,
		behaviors:    core.NewHandlePool[behaviorSlot](4),
	}
	for _, pc := range cfg.Passes {
		layer.Passes = append(layer.Passes, &LayerPass{
			RenderpassName:         pc.RenderpassName,
			UseSwapchainColor:      pc.UseSwapchainColor,
			UseDepth:               pc.UseDepth,
			UseCustomRenderTargets: pc.UseCustomRenderTargets,
		})
	}

	if err := layer.Callbacks.OnCreate(layer); err != nil {
		// Failed on_create: nothing further was constructed, no teardown needed.
		return core.InvalidHandle, err
	}
	if err := layer.Callbacks.OnAttach(layer); err != nil {
		// Full teardown of the partially constructed layer.
		layer.Callbacks.OnDestroy(layer)
		return core.InvalidHandle, err
	}
	if layer.Enabled {
		if err := layer.Callbacks.OnEnable(layer); err != nil {
			layer.Callbacks.OnDetach(layer)
			layer.Callbacks.OnDestroy(layer)
			return core.InvalidHandle, err
		}
	}

	layer.insertionIndex = s.nextInsertionIndex
	s.nextInsertionIndex++

	h := s.layers.Acquire(*layer)
	s.orderDirty = true

	if err := s.rebuildPassTargetsFor(h); err != nil {
		core.LogWarn("vs: rebuild targets for new layer %q failed: %s", cfg.Name, err)
	}
	return h, nil
}

// UnregisterLayer is unregister_layer(handle): silent on invalid handle.
func (s *System) UnregisterLayer(h core.Handle) {
	layer, ok := s.layers.GetPtr(h)
	if !ok {
		return
	}

	for _, pass := range layer.Passes {
		for _, rt := range pass.RenderTargets {
			if rt != nil {
				s.frontend.RenderTargetDestroy(rt)
			}
		}
		pass.RenderTargets = nil
	}

	layer.behaviors.Each(func(bh core.Handle, slot *behaviorSlot) bool {
		if slot.active {
			slot.behavior.OnDetach(layer)
		}
		return true
	})
	layer.Callbacks.OnDetach(layer)
	layer.Callbacks.OnDestroy(layer)

	if s.modalFocus == h {
		s.modalFocus = core.InvalidHandle
	}

	s.layers.Release(h)
	s.orderDirty = true
}

// SetLayerCamera is set_layer_camera(handle, view?, projection?): either
// matrix may be omitted by passing nil, leaving it unchanged.
func (s *System) SetLayerCamera(h core.Handle, view, projection *vmath.Mat4) {
	layer, ok := s.layers.GetPtr(h)
	if !ok {
		return
	}
	if view != nil {
		layer.View = *view
	}
	if projection != nil {
		layer.Projection = *projection
	}
}

// OnResize is on_resize(w,h): for each layer, if sync_to_window update
// dims and invoke on_resize.
func (s *System) OnResize(width, height uint32) {
	s.windowWidth, s.windowHeight = width, height
	s.layers.Each(func(h core.Handle, l *Layer) bool {
		if l.SyncToWindow {
			l.Width, l.Height = width, height
		}
		l.Callbacks.OnResize(l, l.Width, l.Height)
		return true
	})
}

// GetLayer is get_layer(handle).
func (s *System) GetLayer(h core.Handle) (*Layer, bool) {
	return s.layers.GetPtr(h)
}

// SetLayerEnabled toggles the layer; on transition invokes
// on_enable/on_disable; on disable clears modal focus if held.
func (s *System) SetLayerEnabled(h core.Handle, enabled bool) error {
	layer, ok := s.layers.GetPtr(h)
	if !ok {
		return nil
	}
	if layer.Enabled == enabled {
		return nil
	}
	layer.Enabled = enabled
	if enabled {
		return layer.Callbacks.OnEnable(layer)
	}
	if s.modalFocus == h {
		s.modalFocus = core.InvalidHandle
	}
	return layer.Callbacks.OnDisable(layer)
}

// SetModalFocus: at most one layer has focus; an invalid handle clears it.
func (s *System) SetModalFocus(h core.Handle) {
	if s.layers.IsValid(h) {
		s.modalFocus = h
	} else {
		s.modalFocus = core.InvalidHandle
	}
}

func (s *System) ClearModalFocus() {
	s.modalFocus = core.InvalidHandle
}

// AttachBehavior adds a behavior slot with a generational handle scoped
// to the layer.
func (s *System) AttachBehavior(h core.Handle, b Behavior) (core.Handle, error) {
	layer, ok := s.layers.GetPtr(h)
	if !ok {
		return core.InvalidHandle, core.ErrHandleInvalid
	}
	bh := layer.behaviors.Acquire(behaviorSlot{behavior: b, active: true})
	if err := b.OnAttach(layer); err != nil {
		layer.behaviors.Release(bh)
		return core.InvalidHandle, err
	}
	return bh, nil
}

// DetachBehavior removes a behavior slot; silent no-op on stale handles.
func (s *System) DetachBehavior(layerHandle, behaviorHandle core.Handle) {
	layer, ok := s.layers.GetPtr(layerHandle)
	if !ok {
		return
	}
	slot, ok := layer.behaviors.Get(behaviorHandle)
	if !ok {
		return
	}
	slot.behavior.OnDetach(layer)
	layer.behaviors.Release(behaviorHandle)
}

// SendMsg dispatches msg to the target layer's on_data_received, then —
// only if the layer did not respond — to each active behavior in
// attach order, first response wins.
// An invalid target handle is a silent no-op, matching the core's
// handle error policy.
func (s *System) SendMsg(target core.Handle, msg Message) (*Response, error) {
	if err := ValidateMessage(msg.Header); err != nil {
		return nil, err
	}
	layer, ok := s.layers.GetPtr(target)
	if !ok {
		return nil, nil
	}
	rsp, err := layer.Callbacks.OnDataReceived(layer, msg)
	if err != nil || rsp != nil {
		return rsp, err
	}
	layer.behaviors.Each(func(bh core.Handle, slot *behaviorSlot) bool {
		if !slot.active {
			return true
		}
		r, e := slot.behavior.OnDataReceived(layer, msg)
		if e != nil || r != nil {
			rsp, err = r, e
			return false
		}
		return true
	})
	return rsp, err
}

// SendMsgNoRsp is SendMsg with the response discarded.
func (s *System) SendMsgNoRsp(target core.Handle, msg Message) error {
	_, err := s.SendMsg(target, msg)
	return err
}

// BroadcastMsg dispatches msg to every active layer whose flags contain
// all bits in flagsFilter; responses are discarded.
func (s *System) BroadcastMsg(msg Message, flagsFilter LayerFlag) error {
	if err := ValidateMessage(msg.Header); err != nil {
		return err
	}
	s.layers.Each(func(h core.Handle, l *Layer) bool {
		if l.Active && l.Flags&flagsFilter == flagsFilter {
			l.Callbacks.OnDataReceived(l, msg)
		}
		return true
	})
	return nil
}

// ensureSortedOrder rebuilds the render order when order_dirty, using a
// scratch slice released at function exit.
func (s *System) ensureSortedOrder() {
	if !s.orderDirty {
		return
	}
	type entry struct {
		handle         core.Handle
		order          int32
		insertionIndex int
	}
	var scratch []entry
	s.layers.Each(func(h core.Handle, l *Layer) bool {
		if l.Active {
			scratch = append(scratch, entry{h, l.Order, l.insertionIndex})
		}
		return true
	})
	sort.SliceStable(scratch, func(i, j int) bool {
		if scratch[i].order != scratch[j].order {
			return scratch[i].order < scratch[j].order
		}
		return scratch[i].insertionIndex < scratch[j].insertionIndex
	})
	sorted := make([]core.Handle, len(scratch))
	for i, e := range scratch {
		sorted[i] = e.handle
	}
	s.sortedOrder = sorted
	s.orderDirty = false
}

// UpdateAll is update_all(dt): iterates sorted layers in reverse so
// front-most layers receive input first; propagates the consumed flag;
// modal focus overrides order.
func (s *System) UpdateAll(dt float64, input *InputState) {
	s.ensureSortedOrder()

	for i := len(s.sortedOrder) - 1; i >= 0; i-- {
		h := s.sortedOrder[i]
		layer, ok := s.layers.GetPtr(h)
		if !ok || !layer.Active || !layer.Enabled {
			continue
		}

		var layerInput *InputState
		if s.modalFocus.IsValid() {
			if h == s.modalFocus {
				layerInput = input
			}
		} else {
			layerInput = input
		}

		if layer.Callbacks.OnUpdate(layer, dt, layerInput) {
			layerInput = nil
		}

		layer.behaviors.Each(func(bh core.Handle, slot *behaviorSlot) bool {
			if !slot.active {
				return true
			}
			if slot.behavior.OnUpdate(layer, dt, layerInput) {
				layerInput = nil
			}
			return true
		})
	}
}

// DrawAll is draw_all(dt, image_index): renders all enabled layers in
// sorted (ascending) order.
func (s *System) DrawAll(dt float64, imageIndex uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureSortedOrder()

	for _, h := range s.sortedOrder {
		layer, ok := s.layers.GetPtr(h)
		if !ok || !layer.Active || !layer.Enabled {
			continue
		}
		for _, pass := range layer.Passes {
			s.drawPass(layer, pass, imageIndex, dt)
		}
	}
	s.frameNumber++
}

func (s *System) drawPass(layer *Layer, pass *LayerPass, imageIndex uint8, dt float64) {
	if pass.Renderpass == nil {
		return
	}

	var target *metadata.RenderTarget
	if pass.UseCustomRenderTargets {
		if int(imageIndex) >= len(pass.RenderTargets) {
			return
		}
		target = pass.RenderTargets[imageIndex]
		for i, tex := range pass.CustomColorAttachments {
			if tex == nil {
				continue
			}
			s.frontend.TransitionTextureLayout(tex, pass.CustomColorLayouts[i], metadata.RENDER_TARGET_ATTACHMENT_LOAD_OPERATION_LOAD)
		}
	} else {
		if int(imageIndex) >= len(pass.RenderTargets) {
			return
		}
		target = pass.RenderTargets[imageIndex]
	}
	if target == nil {
		return
	}

	if !s.frontend.BeginRenderPass(pass.Renderpass, target) {
		return
	}

	layer.Callbacks.OnRender(layer, pass, s.frameNumber, uint64(imageIndex))
	layer.behaviors.Each(func(bh core.Handle, slot *behaviorSlot) bool {
		if slot.active {
			slot.behavior.OnRender(layer, pass, s.frameNumber, uint64(imageIndex))
		}
		return true
	})

	s.frontend.EndRenderPass(pass.Renderpass)

	if pass.UseCustomRenderTargets {
		for i, tex := range pass.CustomColorAttachments {
			if tex == nil {
				continue
			}
			s.frontend.TransitionTextureLayout(tex, metadata.RENDER_TARGET_ATTACHMENT_LOAD_OPERATION_LOAD, pass.CustomColorLayouts[i])
		}
	}
}

// RebuildTargets rebuilds every non-custom pass's render targets from
// the current swapchain.
func (s *System) RebuildTargets() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	s.layers.Each(func(h core.Handle, l *Layer) bool {
		for _, pass := range l.Passes {
			if pass.UseCustomRenderTargets {
				continue
			}
			if err := s.rebuildPass(l, pass); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return true
	})
	return firstErr
}

func (s *System) rebuildPassTargetsFor(h core.Handle) error {
	layer, ok := s.layers.GetPtr(h)
	if !ok {
		return core.ErrHandleInvalid
	}
	for _, pass := range layer.Passes {
		if pass.UseCustomRenderTargets {
			continue
		}
		if err := s.rebuildPass(layer, pass); err != nil {
			return err
		}
	}
	return nil
}

func (s *System) rebuildPass(layer *Layer, pass *LayerPass) error {
	renderpass := s.frontend.RenderpassGet(pass.RenderpassName)
	if renderpass == nil {
		core.LogError("vs: renderpass %q not registered, skipping pass on layer %q", pass.RenderpassName, layer.Name)
		return core.ErrRenderpassUnavailable
	}

	for _, rt := range pass.RenderTargets {
		if rt != nil {
			s.frontend.RenderTargetDestroy(rt)
		}
	}
	pass.RenderTargets = nil

	count := s.frontend.WindowAttachmentCount()
	targets := make([]*metadata.RenderTarget, count)
	for i := uint8(0); i < count; i++ {
		var attachmentConfigs []*metadata.RenderTargetAttachmentConfig
		if pass.UseSwapchainColor {
			attachmentConfigs = append(attachmentConfigs, &metadata.RenderTargetAttachmentConfig{
				RenderTargetAttachmentType: metadata.RENDER_TARGET_ATTACHMENT_TYPE_COLOUR,
				Source:                     metadata.RENDER_TARGET_ATTACHMENT_SOURCE_DEFAULT,
				LoadOperation:              metadata.RENDER_TARGET_ATTACHMENT_LOAD_OPERATION_DONT_CARE,
				StoreOperation:             metadata.RENDER_TARGET_ATTACHMENT_STORE_OPERATION_STORE,
			})
		}
		if pass.UseDepth {
			attachmentConfigs = append(attachmentConfigs, &metadata.RenderTargetAttachmentConfig{
				RenderTargetAttachmentType: metadata.RENDER_TARGET_ATTACHMENT_TYPE_DEPTH,
				Source:                     metadata.RENDER_TARGET_ATTACHMENT_SOURCE_DEFAULT,
				LoadOperation:              metadata.RENDER_TARGET_ATTACHMENT_LOAD_OPERATION_DONT_CARE,
				StoreOperation:             metadata.RENDER_TARGET_ATTACHMENT_STORE_OPERATION_DONT_CARE,
			})
		}
		if len(attachmentConfigs) == 0 {
			core.LogError("vs: pass %q on layer %q has neither swapchain color nor depth, skipping", pass.RenderpassName, layer.Name)
			return core.ErrInvalidParameter
		}
		desc := &metadata.RenderTargetConfig{Attachments: attachmentConfigs}
		targets[i] = s.frontend.RenderTargetCreate(desc, renderpass, layer.Width, layer.Height, true)
	}

	pass.Renderpass = renderpass
	pass.RenderTargets = targets
	return nil
}
