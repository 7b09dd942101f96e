package renderer

import (
	"github.com/spaghettifunk/vkrview/engine/core"
	"github.com/spaghettifunk/vkrview/engine/platform"
	"github.com/spaghettifunk/vkrview/engine/renderer/metadata"
	"github.com/spaghettifunk/vkrview/engine/renderer/vulkan"

	vmath "github.com/spaghettifunk/vkrview/engine/math"
)

// DesktopFrontend is the default Frontend: it owns the concrete Vulkan
// backend for device lifecycle (initialize/shutdown/resize/begin-end
// frame) and keeps named render passes and render targets in an
// in-memory registry. The Vulkan backend's public surface only covers
// device lifecycle (vulkan.VulkanRenderer satisfies
// none of the pass/target/pipeline methods Frontend needs), so those
// stay bookkeeping-only here until the backend grows a public surface
// for them.
type DesktopFrontend struct {
	backend *vulkan.VulkanRenderer

	renderpasses map[string]*metadata.RenderPass
	window       []*metadata.Texture
	depth        *metadata.Texture
}

// NewDesktopFrontend constructs a DesktopFrontend over a fresh Vulkan
// backend for the given platform window.
func NewDesktopFrontend(p *platform.Platform) *DesktopFrontend {
	return &DesktopFrontend{
		backend:      vulkan.New(p),
		renderpasses: make(map[string]*metadata.RenderPass),
		window:       []*metadata.Texture{{ID: 0}},
		depth:        &metadata.Texture{ID: 1},
	}
}

// Initialize/Shutdown/Resized/BeginFrame/EndFrame forward to the Vulkan
// backend directly: these are the only device-lifecycle methods it
// exposes.
func (f *DesktopFrontend) Initialize(appName string, appWidth, appHeight uint32) error {
	return f.backend.Initialize(appName, appWidth, appHeight)
}

func (f *DesktopFrontend) Shutdown() error {
	return f.backend.Shutdow()
}

func (f *DesktopFrontend) Resized(width, height uint16) error {
	return f.backend.Resized(width, height)
}

func (f *DesktopFrontend) BeginFrame(deltaTime float64) error {
	return f.backend.BeginFrame(deltaTime)
}

func (f *DesktopFrontend) EndFrame(deltaTime float64) error {
	return f.backend.EndFrame(deltaTime)
}

func (f *DesktopFrontend) WindowAttachmentCount() uint8 { return uint8(len(f.window)) }

func (f *DesktopFrontend) WindowAttachmentGet(index uint8) *metadata.Texture {
	if int(index) >= len(f.window) {
		return nil
	}
	return f.window[index]
}

func (f *DesktopFrontend) DepthAttachmentGet() *metadata.Texture { return f.depth }

func (f *DesktopFrontend) RenderpassGet(name string) *metadata.RenderPass {
	return f.renderpasses[name]
}

func (f *DesktopFrontend) RenderpassCreateDesc(desc *metadata.RenderPassConfig) (*metadata.RenderPass, error) {
	if desc == nil {
		return nil, core.ErrInvalidParameter
	}
	pass, ok := f.renderpasses[desc.Name]
	if !ok {
		pass = &metadata.RenderPass{
			RenderArea:  desc.RenderArea,
			ClearColour: desc.ClearColour,
			ClearFlags:  uint8(desc.ClearFlags),
		}
		f.renderpasses[desc.Name] = pass
	}
	return pass, nil
}

func (f *DesktopFrontend) RenderpassDestroy(pass *metadata.RenderPass) {
	if pass == nil {
		return
	}
	for name, p := range f.renderpasses {
		if p == pass {
			delete(f.renderpasses, name)
			return
		}
	}
}

func (f *DesktopFrontend) RenderTargetCreate(desc *metadata.RenderTargetConfig, pass *metadata.RenderPass, width, height uint32, syncToWindowSize bool) *metadata.RenderTarget {
	target := &metadata.RenderTarget{}
	if desc == nil {
		return target
	}
	target.AttachmentCount = uint8(len(desc.Attachments))
	target.Attachments = make([]*metadata.RenderTargetAttachment, len(desc.Attachments))
	for i, a := range desc.Attachments {
		target.Attachments[i] = &metadata.RenderTargetAttachment{
			RenderTargetAttachmentType: a.RenderTargetAttachmentType,
			Source:                     a.Source,
			LoadOperation:              a.LoadOperation,
			StoreOperation:             a.StoreOperation,
			PresentAfter:               a.PresentAfter,
			Texture:                    &metadata.Texture{Width: width, Height: height},
		}
	}
	if pass != nil {
		pass.Targets = append(pass.Targets, target)
	}
	return target
}

func (f *DesktopFrontend) RenderTargetDestroy(target *metadata.RenderTarget) {}

func (f *DesktopFrontend) TransitionTextureLayout(tex *metadata.Texture, from, to metadata.RenderTargetAttachmentLoadOperation) {
}

func (f *DesktopFrontend) WaitIdle() {}

func (f *DesktopFrontend) BeginRenderPass(pass *metadata.RenderPass, target *metadata.RenderTarget) bool {
	return pass != nil && target != nil
}

func (f *DesktopFrontend) EndRenderPass(pass *metadata.RenderPass) bool { return pass != nil }

func (f *DesktopFrontend) BindVertexBuffer(geometry *metadata.Geometry) {}
func (f *DesktopFrontend) BindIndexBuffer(geometry *metadata.Geometry)  {}

func (f *DesktopFrontend) DrawIndexed(indexCount, instanceCount, firstIndex, vertexOffset, firstInstance uint32) {
}

func (f *DesktopFrontend) DrawIndexedIndirect(buffer *metadata.RenderBuffer, offset uint64, drawCount uint32, stride uint32) {
}

func (f *DesktopFrontend) ApplyLightingGlobals(pipelineID uint32, viewPosition vmath.Vec3, ambient vmath.Vec4) bool {
	return true
}

func (f *DesktopFrontend) ApplyShadowGlobals(pipelineID uint32, shadow *ShadowFrameData) bool {
	return shadow != nil
}

var _ Frontend = (*DesktopFrontend)(nil)
