package views

import (
	"testing"

	"github.com/spaghettifunk/vkrview/engine/core"
	vmath "github.com/spaghettifunk/vkrview/engine/math"
	"github.com/spaghettifunk/vkrview/engine/renderer"
	"github.com/spaghettifunk/vkrview/engine/renderer/metadata"
)

type fakeFrontend struct {
	attachmentCount uint8
	hasDepth        bool

	renderTargetsCreated int
	renderTargetsDestroyed int
}

func newFakeFrontend(attachmentCount uint8, hasDepth bool) *fakeFrontend {
	return &fakeFrontend{attachmentCount: attachmentCount, hasDepth: hasDepth}
}

func (f *fakeFrontend) WindowAttachmentCount() uint8 { return f.attachmentCount }
func (f *fakeFrontend) WindowAttachmentGet(index uint8) *metadata.Texture {
	return &metadata.Texture{}
}
func (f *fakeFrontend) DepthAttachmentGet() *metadata.Texture {
	if !f.hasDepth {
		return nil
	}
	return &metadata.Texture{}
}
func (f *fakeFrontend) RenderpassGet(name string) *metadata.RenderPass {
	return &metadata.RenderPass{}
}
func (f *fakeFrontend) RenderpassCreateDesc(desc *metadata.RenderPassConfig) (*metadata.RenderPass, error) {
	return &metadata.RenderPass{}, nil
}
func (f *fakeFrontend) RenderpassDestroy(pass *metadata.RenderPass) {}
func (f *fakeFrontend) RenderTargetCreate(desc *metadata.RenderTargetConfig, pass *metadata.RenderPass, width, height uint32, syncToWindowSize bool) *metadata.RenderTarget {
	f.renderTargetsCreated++
	return &metadata.RenderTarget{}
}
func (f *fakeFrontend) RenderTargetDestroy(target *metadata.RenderTarget) {
	f.renderTargetsDestroyed++
}
func (f *fakeFrontend) TransitionTextureLayout(tex *metadata.Texture, from, to metadata.RenderTargetAttachmentLoadOperation) {
}
func (f *fakeFrontend) WaitIdle() {}
func (f *fakeFrontend) BeginRenderPass(pass *metadata.RenderPass, target *metadata.RenderTarget) bool {
	return true
}
func (f *fakeFrontend) EndRenderPass(pass *metadata.RenderPass) bool { return true }
func (f *fakeFrontend) BindVertexBuffer(geometry *metadata.Geometry) {}
func (f *fakeFrontend) BindIndexBuffer(geometry *metadata.Geometry)  {}
func (f *fakeFrontend) DrawIndexed(indexCount, instanceCount, firstIndex, vertexOffset, firstInstance uint32) {
}
func (f *fakeFrontend) DrawIndexedIndirect(buffer *metadata.RenderBuffer, offset uint64, drawCount uint32, stride uint32) {
}
func (f *fakeFrontend) ApplyLightingGlobals(pipelineID uint32, viewPosition vmath.Vec3, ambient vmath.Vec4) bool {
	return true
}
func (f *fakeFrontend) ApplyShadowGlobals(pipelineID uint32, shadow *renderer.ShadowFrameData) bool {
	return true
}

var _ renderer.Frontend = (*fakeFrontend)(nil)

type recordingCallbacks struct {
	name          string
	renderCount   int
	lastConsumed  bool
	consumeInput  bool
}

func (c *recordingCallbacks) OnCreate(l *Layer) error  { return nil }
func (c *recordingCallbacks) OnAttach(l *Layer) error  { return nil }
func (c *recordingCallbacks) OnEnable(l *Layer) error  { return nil }
func (c *recordingCallbacks) OnDisable(l *Layer) error { return nil }
func (c *recordingCallbacks) OnDetach(l *Layer) error  { return nil }
func (c *recordingCallbacks) OnDestroy(l *Layer) error { return nil }
func (c *recordingCallbacks) OnResize(l *Layer, width, height uint32) {}
func (c *recordingCallbacks) OnUpdate(l *Layer, dt float64, input *InputState) bool {
	c.lastConsumed = input != nil
	return c.consumeInput
}
func (c *recordingCallbacks) OnRender(l *Layer, pass *LayerPass, frameNumber, renderTargetIndex uint64) error {
	c.renderCount++
	return nil
}
func (c *recordingCallbacks) OnDataReceived(l *Layer, msg Message) (*Response, error) {
	return nil, nil
}

func TestRegisterRenderUnregister(t *testing.T) {
	fe := newFakeFrontend(2, true)
	sys, err := NewSystem(fe, 800, 600, 16, 4)
	if err != nil {
		t.Fatalf("NewSystem: %v", err)
	}

	cb := &recordingCallbacks{name: "world"}
	h, err := sys.RegisterLayer(LayerConfig{
		Name:      "world",
		Width:     800,
		Height:    600,
		Enabled:   true,
		Callbacks: cb,
		Passes:    []LayerPassConfig{{RenderpassName: "world", UseSwapchainColor: true, UseDepth: true}},
	})
	if err != nil {
		t.Fatalf("RegisterLayer: %v", err)
	}

	layer, ok := sys.GetLayer(h)
	if !ok {
		t.Fatalf("GetLayer returned false right after registration")
	}
	if len(layer.Passes[0].RenderTargets) != 2 {
		t.Fatalf("render_targets.len = %d, want 2 (window_attachment_count)", len(layer.Passes[0].RenderTargets))
	}

	sys.DrawAll(0.016, 0)
	if cb.renderCount != 1 {
		t.Fatalf("OnRender called %d times, want 1", cb.renderCount)
	}

	sys.UnregisterLayer(h)
	if fe.renderTargetsDestroyed != 2 {
		t.Fatalf("render_target_destroy called %d times, want 2", fe.renderTargetsDestroyed)
	}
	if _, ok := sys.GetLayer(h); ok {
		t.Fatalf("GetLayer should return false after unregister")
	}

	cb2 := &recordingCallbacks{name: "world2"}
	h2, err := sys.RegisterLayer(LayerConfig{
		Name:      "world2",
		Enabled:   true,
		Callbacks: cb2,
		Passes:    []LayerPassConfig{{RenderpassName: "world", UseSwapchainColor: true}},
	})
	if err != nil {
		t.Fatalf("RegisterLayer (2nd): %v", err)
	}
	if h2.Id != h.Id {
		t.Fatalf("expected slot reuse: got id %d, want %d", h2.Id, h.Id)
	}
	if h2.Generation != h.Generation+1 {
		t.Fatalf("generation = %d, want %d", h2.Generation, h.Generation+1)
	}
}

func TestOrderAndModalFocus(t *testing.T) {
	fe := newFakeFrontend(1, false)
	sys, err := NewSystem(fe, 100, 100, 16, 4)
	if err != nil {
		t.Fatalf("NewSystem: %v", err)
	}

	register := func(name string, order int32, consume bool) (*recordingCallbacks, core.Handle) {
		cb := &recordingCallbacks{name: name, consumeInput: consume}
		h, err := sys.RegisterLayer(LayerConfig{
			Name:      name,
			Order:     order,
			Enabled:   true,
			Callbacks: cb,
			Passes:    []LayerPassConfig{{RenderpassName: "rp", UseSwapchainColor: true}},
		})
		if err != nil {
			t.Fatalf("RegisterLayer(%s): %v", name, err)
		}
		return cb, h
	}

	a, _ := register("A", -1, false)
	b, hB := register("B", 0, true)
	c, _ := register("C", 5, false)

	input := &InputState{}
	sys.UpdateAll(0.016, input)

	if !c.lastConsumed {
		t.Fatalf("C (first in reverse order) should receive non-nil input")
	}
	if !b.lastConsumed {
		t.Fatalf("B should receive non-nil input before consuming it")
	}
	if a.lastConsumed {
		t.Fatalf("A should receive nil input after B consumed it")
	}

	sys.SetModalFocus(hB)
	a.lastConsumed, b.lastConsumed, c.lastConsumed = false, false, false
	sys.UpdateAll(0.016, input)
	if a.lastConsumed || c.lastConsumed {
		t.Fatalf("with modal focus on B, only B should receive input: a=%v c=%v", a.lastConsumed, c.lastConsumed)
	}
	if !b.lastConsumed {
		t.Fatalf("B should receive input while holding modal focus")
	}

	sys.DrawAll(0.016, 0)
}
