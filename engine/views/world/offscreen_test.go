package world

import (
	"testing"

	vmath "github.com/spaghettifunk/vkrview/engine/math"
	"github.com/spaghettifunk/vkrview/engine/renderer"
	"github.com/spaghettifunk/vkrview/engine/renderer/metadata"
	"github.com/spaghettifunk/vkrview/engine/views"
)

type fakeOffscreenFrontend struct {
	attachmentCount uint8

	waitIdleCalls    int
	targetsCreated   int
	targetsDestroyed int
	passesDestroyed  int
	lastCreateWidth  uint32
	lastCreateHeight uint32
}

func (f *fakeOffscreenFrontend) WindowAttachmentCount() uint8           { return f.attachmentCount }
func (f *fakeOffscreenFrontend) WindowAttachmentGet(index uint8) *metadata.Texture { return &metadata.Texture{} }
func (f *fakeOffscreenFrontend) DepthAttachmentGet() *metadata.Texture  { return &metadata.Texture{} }

func (f *fakeOffscreenFrontend) RenderpassGet(name string) *metadata.RenderPass {
	return &metadata.RenderPass{}
}
func (f *fakeOffscreenFrontend) RenderpassCreateDesc(desc *metadata.RenderPassConfig) (*metadata.RenderPass, error) {
	return &metadata.RenderPass{}, nil
}
func (f *fakeOffscreenFrontend) RenderpassDestroy(pass *metadata.RenderPass) { f.passesDestroyed++ }

func (f *fakeOffscreenFrontend) RenderTargetCreate(desc *metadata.RenderTargetConfig, pass *metadata.RenderPass, width, height uint32, syncToWindowSize bool) *metadata.RenderTarget {
	f.targetsCreated++
	f.lastCreateWidth, f.lastCreateHeight = width, height
	return &metadata.RenderTarget{}
}
func (f *fakeOffscreenFrontend) RenderTargetDestroy(target *metadata.RenderTarget) { f.targetsDestroyed++ }

func (f *fakeOffscreenFrontend) TransitionTextureLayout(tex *metadata.Texture, from, to metadata.RenderTargetAttachmentLoadOperation) {
}
func (f *fakeOffscreenFrontend) WaitIdle() { f.waitIdleCalls++ }

func (f *fakeOffscreenFrontend) BeginRenderPass(pass *metadata.RenderPass, target *metadata.RenderTarget) bool {
	return true
}
func (f *fakeOffscreenFrontend) EndRenderPass(pass *metadata.RenderPass) bool { return true }
func (f *fakeOffscreenFrontend) BindVertexBuffer(geometry *metadata.Geometry) {}
func (f *fakeOffscreenFrontend) BindIndexBuffer(geometry *metadata.Geometry)  {}
func (f *fakeOffscreenFrontend) DrawIndexed(indexCount, instanceCount, firstIndex, vertexOffset, firstInstance uint32) {
}
func (f *fakeOffscreenFrontend) DrawIndexedIndirect(buffer *metadata.RenderBuffer, offset uint64, drawCount uint32, stride uint32) {
}
func (f *fakeOffscreenFrontend) ApplyLightingGlobals(pipelineID uint32, viewPosition vmath.Vec3, ambient vmath.Vec4) bool {
	return true
}
func (f *fakeOffscreenFrontend) ApplyShadowGlobals(pipelineID uint32, shadow *renderer.ShadowFrameData) bool {
	return true
}

var _ renderer.Frontend = (*fakeOffscreenFrontend)(nil)

func newOffscreenTestLayer(t *testing.T, frontend *fakeOffscreenFrontend) (*Layer, *views.Layer) {
	t.Helper()
	vs, err := views.NewSystem(frontend, 800, 600, 8, 8)
	if err != nil {
		t.Fatalf("NewSystem: %v", err)
	}
	wl := NewLayer(Config{Frontend: frontend, ViewSystem: vs})
	viewLayer := &views.Layer{
		Width:  800,
		Height: 600,
		Passes: []*views.LayerPass{
			{RenderpassName: "world", Renderpass: &metadata.RenderPass{}, RenderTargets: []*metadata.RenderTarget{{}, {}}},
		},
	}
	return wl, viewLayer
}

func TestEnableOffscreenSwapsPassAndBroadcasts(t *testing.T) {
	frontend := &fakeOffscreenFrontend{attachmentCount: 2}
	wl, viewLayer := newOffscreenTestLayer(t, frontend)
	originalPass := viewLayer.Passes[0].Renderpass
	originalTargets := viewLayer.Passes[0].RenderTargets

	if _, err := wl.OnDataReceived(viewLayer, views.Message{Header: views.MessageHeader{Kind: views.WorldToggleOffscreen, Version: 1}}); err != nil {
		t.Fatalf("toggle offscreen: %v", err)
	}

	if !wl.offscreen {
		t.Fatalf("offscreen = false, want true after toggling on")
	}
	if frontend.targetsCreated != 2 {
		t.Fatalf("targetsCreated = %d, want 2 (one per window attachment)", frontend.targetsCreated)
	}
	if frontend.waitIdleCalls == 0 {
		t.Fatalf("WaitIdle was not called before reconfiguring render targets")
	}
	pass := viewLayer.Passes[0]
	if !pass.UseCustomRenderTargets {
		t.Fatalf("UseCustomRenderTargets = false, want true while offscreen")
	}
	if pass.Renderpass == originalPass {
		t.Fatalf("pass.Renderpass unchanged, want swapped to the offscreen renderpass")
	}
	if len(pass.RenderTargets) != 2 || pass.RenderTargets[0] == originalTargets[0] {
		t.Fatalf("pass.RenderTargets not swapped to the new offscreen targets")
	}
	if frontend.lastCreateWidth != 800 || frontend.lastCreateHeight != 600 {
		t.Fatalf("offscreen target size = (%d, %d), want layer's own (800, 600) fallback", frontend.lastCreateWidth, frontend.lastCreateHeight)
	}
}

func TestDisableOffscreenRestoresSavedPass(t *testing.T) {
	frontend := &fakeOffscreenFrontend{attachmentCount: 2}
	wl, viewLayer := newOffscreenTestLayer(t, frontend)
	originalPass := viewLayer.Passes[0].Renderpass
	originalTargets := viewLayer.Passes[0].RenderTargets

	if _, err := wl.OnDataReceived(viewLayer, views.Message{Header: views.MessageHeader{Kind: views.WorldToggleOffscreen, Version: 1}}); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if _, err := wl.OnDataReceived(viewLayer, views.Message{Header: views.MessageHeader{Kind: views.WorldToggleOffscreen, Version: 1}}); err != nil {
		t.Fatalf("disable: %v", err)
	}

	if wl.offscreen {
		t.Fatalf("offscreen = true, want false after toggling off")
	}
	pass := viewLayer.Passes[0]
	if pass.UseCustomRenderTargets {
		t.Fatalf("UseCustomRenderTargets = true, want false after disabling")
	}
	if pass.Renderpass != originalPass {
		t.Fatalf("pass.Renderpass not restored to the original renderpass")
	}
	if len(pass.RenderTargets) != len(originalTargets) {
		t.Fatalf("pass.RenderTargets not restored to the original targets")
	}
	if frontend.targetsDestroyed != 2 {
		t.Fatalf("targetsDestroyed = %d, want 2", frontend.targetsDestroyed)
	}
}

func TestResizeOffscreenWhileActiveRebuildsTargets(t *testing.T) {
	frontend := &fakeOffscreenFrontend{attachmentCount: 1}
	wl, viewLayer := newOffscreenTestLayer(t, frontend)

	if _, err := wl.OnDataReceived(viewLayer, views.Message{Header: views.MessageHeader{Kind: views.WorldToggleOffscreen, Version: 1}}); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if frontend.targetsCreated != 1 {
		t.Fatalf("targetsCreated = %d, want 1 before resize", frontend.targetsCreated)
	}

	payload := views.EncodeOffscreenSize(320, 240)
	if _, err := wl.OnDataReceived(viewLayer, views.Message{
		Header:  views.MessageHeader{Kind: views.WorldSetOffscreenSize, Version: 1, PayloadSize: uint16(len(payload))},
		Payload: payload,
	}); err != nil {
		t.Fatalf("resize: %v", err)
	}

	if !wl.offscreen {
		t.Fatalf("offscreen = false, want still true after resizing")
	}
	if frontend.targetsDestroyed != 1 {
		t.Fatalf("targetsDestroyed = %d, want 1 (old targets torn down before rebuilding)", frontend.targetsDestroyed)
	}
	if frontend.targetsCreated != 2 {
		t.Fatalf("targetsCreated = %d, want 2 (rebuilt at the new size)", frontend.targetsCreated)
	}
	if frontend.lastCreateWidth != 320 || frontend.lastCreateHeight != 240 {
		t.Fatalf("offscreen target size = (%d, %d), want (320, 240) after resize", frontend.lastCreateWidth, frontend.lastCreateHeight)
	}
}

func TestSetOffscreenSizeWhileOnscreenDoesNotEnable(t *testing.T) {
	frontend := &fakeOffscreenFrontend{attachmentCount: 1}
	wl, viewLayer := newOffscreenTestLayer(t, frontend)

	payload := views.EncodeOffscreenSize(320, 240)
	if _, err := wl.OnDataReceived(viewLayer, views.Message{
		Header:  views.MessageHeader{Kind: views.WorldSetOffscreenSize, Version: 1, PayloadSize: uint16(len(payload))},
		Payload: payload,
	}); err != nil {
		t.Fatalf("set size: %v", err)
	}

	if wl.offscreen {
		t.Fatalf("offscreen = true, want false: setting the size alone must not enable offscreen mode")
	}
	if frontend.targetsCreated != 0 {
		t.Fatalf("targetsCreated = %d, want 0", frontend.targetsCreated)
	}
}
