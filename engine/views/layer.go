package views

import (
	"github.com/spaghettifunk/vkrview/engine/core"
	vmath "github.com/spaghettifunk/vkrview/engine/math"
	"github.com/spaghettifunk/vkrview/engine/renderer/metadata"
)

// LayerFlag is a bitset of application-defined flags consulted by
// BroadcastMsg's filter and by collaborator layers.
type LayerFlag uint32

// InputState is the per-frame input snapshot passed to on_update. A nil
// *InputState means "no input this frame" (either because a preceding
// layer consumed it, or because modal focus belongs to another layer).
type InputState struct {
	MouseX, MouseY         int32
	MouseDeltaX, MouseDeltaY int32
	WheelDelta             int8
}

// LayerCallbacks is the capability trait every layer implementation
// provides — a Go-native replacement for a vtable-over-user_data
// callback style.
type LayerCallbacks interface {
	OnCreate(l *Layer) error
	OnAttach(l *Layer) error
	OnEnable(l *Layer) error
	OnDisable(l *Layer) error
	OnDetach(l *Layer) error
	OnDestroy(l *Layer) error
	OnResize(l *Layer, width, height uint32)
	// OnUpdate returns whether the layer consumed the input this frame.
	OnUpdate(l *Layer, dt float64, input *InputState) bool
	OnRender(l *Layer, pass *LayerPass, frameNumber, renderTargetIndex uint64) error
	// OnDataReceived handles a dispatched message, optionally returning a response.
	OnDataReceived(l *Layer, msg Message) (*Response, error)
}

// Behavior extends a layer without subclassing.
type Behavior interface {
	OnAttach(l *Layer) error
	OnDetach(l *Layer) error
	OnUpdate(l *Layer, dt float64, input *InputState) bool
	OnRender(l *Layer, pass *LayerPass, frameNumber, renderTargetIndex uint64) error
	// OnDataReceived may write a response only if the layer did not.
	OnDataReceived(l *Layer, msg Message) (*Response, error)
}

type behaviorSlot struct {
	behavior Behavior
	active   bool
}

// LayerPassConfig is the registration-time description of one pass.
type LayerPassConfig struct {
	RenderpassName         string
	UseSwapchainColor      bool
	UseDepth               bool
	UseCustomRenderTargets bool
}

// LayerPass is a renderpass plus its render targets or custom
// attachments and per-image layouts, owned by a layer.
type LayerPass struct {
	RenderpassName         string
	UseSwapchainColor      bool
	UseDepth               bool
	UseCustomRenderTargets bool

	Renderpass          *metadata.RenderPass
	RenderTargets        []*metadata.RenderTarget // one per swapchain image, when not custom
	CustomColorAttachments []*metadata.Texture
	CustomColorLayouts     []metadata.RenderTargetAttachmentLoadOperation
}

// LayerConfig is the registration-time description passed to RegisterLayer.
type LayerConfig struct {
	Name       string
	Order      int32
	Width      uint32
	Height     uint32
	View       vmath.Mat4
	Projection vmath.Mat4
	Passes     []LayerPassConfig
	Callbacks  LayerCallbacks
	UserData   interface{}
	Enabled    bool
	Flags      LayerFlag
	SyncToWindow bool
}

// Layer is the named, ordered rendering unit the view system manages.
type Layer struct {
	Name       string
	Order      int32
	Width      uint32
	Height     uint32
	View       vmath.Mat4
	Projection vmath.Mat4

	Passes []*LayerPass

	Callbacks LayerCallbacks
	UserData  interface{}

	Enabled bool
	Flags   LayerFlag

	// behaviors is a per-layer generational pool: LayerBehaviorHandle is
	// scoped to the layer it was attached to.
	behaviors *core.HandlePool[behaviorSlot]

	Active       bool
	SyncToWindow bool

	insertionIndex int
}
