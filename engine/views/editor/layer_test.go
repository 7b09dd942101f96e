package editor

import (
	"testing"

	vmath "github.com/spaghettifunk/vkrview/engine/math"
	"github.com/spaghettifunk/vkrview/engine/renderer"
	"github.com/spaghettifunk/vkrview/engine/renderer/metadata"
	"github.com/spaghettifunk/vkrview/engine/views"
)

type nullFrontend struct{}

func (nullFrontend) WindowAttachmentCount() uint8                         { return 1 }
func (nullFrontend) WindowAttachmentGet(index uint8) *metadata.Texture    { return &metadata.Texture{} }
func (nullFrontend) DepthAttachmentGet() *metadata.Texture                { return &metadata.Texture{} }
func (nullFrontend) RenderpassGet(name string) *metadata.RenderPass       { return &metadata.RenderPass{} }
func (nullFrontend) RenderpassCreateDesc(desc *metadata.RenderPassConfig) (*metadata.RenderPass, error) {
	return &metadata.RenderPass{}, nil
}
func (nullFrontend) RenderpassDestroy(pass *metadata.RenderPass)                {}
func (nullFrontend) RenderTargetCreate(desc *metadata.RenderTargetConfig, pass *metadata.RenderPass, width, height uint32, syncToWindowSize bool) *metadata.RenderTarget {
	return &metadata.RenderTarget{}
}
func (nullFrontend) RenderTargetDestroy(target *metadata.RenderTarget) {}
func (nullFrontend) TransitionTextureLayout(tex *metadata.Texture, from, to metadata.RenderTargetAttachmentLoadOperation) {
}
func (nullFrontend) WaitIdle()                                                                 {}
func (nullFrontend) BeginRenderPass(pass *metadata.RenderPass, target *metadata.RenderTarget) bool { return true }
func (nullFrontend) EndRenderPass(pass *metadata.RenderPass) bool                               { return true }
func (nullFrontend) BindVertexBuffer(geometry *metadata.Geometry)                               {}
func (nullFrontend) BindIndexBuffer(geometry *metadata.Geometry)                                {}
func (nullFrontend) DrawIndexed(indexCount, instanceCount, firstIndex, vertexOffset, firstInstance uint32) {
}
func (nullFrontend) DrawIndexedIndirect(buffer *metadata.RenderBuffer, offset uint64, drawCount uint32, stride uint32) {
}
func (nullFrontend) ApplyLightingGlobals(pipelineID uint32, viewPosition vmath.Vec3, ambient vmath.Vec4) bool {
	return true
}
func (nullFrontend) ApplyShadowGlobals(pipelineID uint32, shadow *renderer.ShadowFrameData) bool {
	return true
}

var _ renderer.Frontend = nullFrontend{}

// recordingLayer captures every message dispatched to it, standing in
// for the world layer when testing the editor layer's notifications.
type recordingLayer struct {
	received []views.Message
}

func (r *recordingLayer) OnCreate(l *views.Layer) error  { return nil }
func (r *recordingLayer) OnAttach(l *views.Layer) error  { return nil }
func (r *recordingLayer) OnEnable(l *views.Layer) error  { return nil }
func (r *recordingLayer) OnDisable(l *views.Layer) error { return nil }
func (r *recordingLayer) OnDetach(l *views.Layer) error  { return nil }
func (r *recordingLayer) OnDestroy(l *views.Layer) error { return nil }
func (r *recordingLayer) OnResize(l *views.Layer, width, height uint32) {}
func (r *recordingLayer) OnUpdate(l *views.Layer, dt float64, input *views.InputState) bool {
	return false
}
func (r *recordingLayer) OnRender(l *views.Layer, pass *views.LayerPass, frameNumber, renderTargetIndex uint64) error {
	return nil
}
func (r *recordingLayer) OnDataReceived(l *views.Layer, msg views.Message) (*views.Response, error) {
	r.received = append(r.received, msg)
	return nil, nil
}

func TestEditorLayerResizeNotifiesWorldLayerOfOffscreenSize(t *testing.T) {
	vs, err := views.NewSystem(nullFrontend{}, 1280, 720, 8, 8)
	if err != nil {
		t.Fatalf("NewSystem: %v", err)
	}
	world := &recordingLayer{}
	worldHandle, err := vs.RegisterLayer(views.LayerConfig{
		Name:      "world",
		Width:     1280,
		Height:    720,
		Passes:    []views.LayerPassConfig{{RenderpassName: "world"}},
		Callbacks: world,
		Enabled:   true,
	})
	if err != nil {
		t.Fatalf("RegisterLayer(world): %v", err)
	}

	el := NewLayer(Config{ViewSystem: vs, WorldLayer: worldHandle, FitMode: FitContain, RenderScale: 1.0})
	el.OnResize(nil, 1280, 720)

	if len(world.received) != 1 {
		t.Fatalf("world layer received %d messages, want 1", len(world.received))
	}
	msg := world.received[0]
	if msg.Header.Kind != views.WorldSetOffscreenSize {
		t.Fatalf("message kind = %v, want WorldSetOffscreenSize", msg.Header.Kind)
	}
	w, h := views.DecodeOffscreenSize(msg.Payload)
	mapping := el.Mapping()
	if w != mapping.TargetWidth || h != mapping.TargetHeight {
		t.Fatalf("notified size = (%d, %d), want mapping's (%d, %d)", w, h, mapping.TargetWidth, mapping.TargetHeight)
	}
}

func TestEditorLayerResizeSameMappingDoesNotRenotify(t *testing.T) {
	vs, err := views.NewSystem(nullFrontend{}, 1280, 720, 8, 8)
	if err != nil {
		t.Fatalf("NewSystem: %v", err)
	}
	world := &recordingLayer{}
	worldHandle, err := vs.RegisterLayer(views.LayerConfig{
		Name:      "world",
		Width:     1280,
		Height:    720,
		Passes:    []views.LayerPassConfig{{RenderpassName: "world"}},
		Callbacks: world,
		Enabled:   true,
	})
	if err != nil {
		t.Fatalf("RegisterLayer(world): %v", err)
	}

	el := NewLayer(Config{ViewSystem: vs, WorldLayer: worldHandle, FitMode: FitContain, RenderScale: 1.0})
	el.OnResize(nil, 1280, 720)
	el.OnResize(nil, 1280, 720)

	if len(world.received) != 1 {
		t.Fatalf("world layer received %d messages across two identical resizes, want 1", len(world.received))
	}
}

func TestEditorLayerGetViewportMappingRespondsWithCurrentMapping(t *testing.T) {
	vs, err := views.NewSystem(nullFrontend{}, 1280, 720, 8, 8)
	if err != nil {
		t.Fatalf("NewSystem: %v", err)
	}
	world := &recordingLayer{}
	worldHandle, err := vs.RegisterLayer(views.LayerConfig{
		Name:      "world",
		Width:     1280,
		Height:    720,
		Passes:    []views.LayerPassConfig{{RenderpassName: "world"}},
		Callbacks: world,
		Enabled:   true,
	})
	if err != nil {
		t.Fatalf("RegisterLayer(world): %v", err)
	}

	el := NewLayer(Config{ViewSystem: vs, WorldLayer: worldHandle, FitMode: FitContain, RenderScale: 1.0})
	editorHandle, err := vs.RegisterLayer(views.LayerConfig{
		Name:      "editor",
		Width:     1280,
		Height:    720,
		Passes:    []views.LayerPassConfig{{RenderpassName: "editor"}},
		Callbacks: el,
		Enabled:   true,
	})
	if err != nil {
		t.Fatalf("RegisterLayer(editor): %v", err)
	}
	el.OnResize(nil, 1280, 720)

	rsp, err := vs.SendMsg(editorHandle, views.Message{
		Header: views.MessageHeader{Kind: views.EditorGetViewportMapping, Version: 1},
	})
	if err != nil {
		t.Fatalf("SendMsg(EditorGetViewportMapping): %v", err)
	}
	if rsp == nil {
		t.Fatal("response is nil")
	}
	got := decodeViewportMapping(rsp.Body)
	want := el.Mapping()
	if got != want {
		t.Fatalf("decoded mapping = %+v, want %+v", got, want)
	}
}
