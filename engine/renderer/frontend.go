package renderer

import (
	vmath "github.com/spaghettifunk/vkrview/engine/math"
	"github.com/spaghettifunk/vkrview/engine/renderer/metadata"
)

// Frontend is the renderer-facing collaborator consumed by the view
// system, scene/render bridge, and world view layer. It is the seam
// the core depends on instead of the concrete Vulkan backend, so tests
// can substitute a fake.
type Frontend interface {
	WindowAttachmentCount() uint8
	WindowAttachmentGet(index uint8) *metadata.Texture
	DepthAttachmentGet() *metadata.Texture

	RenderpassGet(name string) *metadata.RenderPass
	RenderpassCreateDesc(desc *metadata.RenderPassConfig) (*metadata.RenderPass, error)
	RenderpassDestroy(pass *metadata.RenderPass)

	RenderTargetCreate(desc *metadata.RenderTargetConfig, pass *metadata.RenderPass, width, height uint32, syncToWindowSize bool) *metadata.RenderTarget
	RenderTargetDestroy(target *metadata.RenderTarget)

	TransitionTextureLayout(tex *metadata.Texture, from, to metadata.RenderTargetAttachmentLoadOperation)
	WaitIdle()

	BeginRenderPass(pass *metadata.RenderPass, target *metadata.RenderTarget) bool
	EndRenderPass(pass *metadata.RenderPass) bool

	BindVertexBuffer(geometry *metadata.Geometry)
	BindIndexBuffer(geometry *metadata.Geometry)
	DrawIndexed(indexCount, instanceCount, firstIndex, vertexOffset, firstInstance uint32)
	DrawIndexedIndirect(buffer *metadata.RenderBuffer, offset uint64, drawCount uint32, stride uint32)

	// ApplyLightingGlobals/ApplyShadowGlobals bind named uniforms for the
	// pipeline's domain ahead of a batch of draws.
	ApplyLightingGlobals(pipelineID uint32, viewPosition vmath.Vec3, ambient vmath.Vec4) bool
	ApplyShadowGlobals(pipelineID uint32, shadow *ShadowFrameData) bool
}

// ShadowFrameData is the response payload of a SHADOW_GET_FRAME_DATA
// message: cascade parameters and the shadow-map handle.
type ShadowFrameData struct {
	CascadeCount       int
	InverseMapSize     []float32
	SplitFar           []float32
	WorldUnitsPerTexel []float32
	ViewProjection     []vmath.Mat4
	DepthBias          float32
	SlopeBias          float32
	PCFRadius          int
	FadeRange          float32
	DebugFlags         uint32
	ShadowMap          uint32 // texture handle id; 0 if unavailable
}
