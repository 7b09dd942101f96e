package world

import (
	"encoding/binary"
	"math"

	"github.com/spaghettifunk/vkrview/engine/core"
	vmath "github.com/spaghettifunk/vkrview/engine/math"
	"github.com/spaghettifunk/vkrview/engine/renderer"
	"github.com/spaghettifunk/vkrview/engine/renderer/metadata"
	"github.com/spaghettifunk/vkrview/engine/views"
)

// Domain partitions the pipelines a world layer owns.
type Domain int

const (
	DomainOpaque Domain = iota
	DomainTransparent
	DomainOverlay
	DomainText
)

// PipelineResolver resolves a domain (and onscreen/offscreen mode) to a
// pipeline handle, and a material to a shader name — the pipeline
// registry and material system are interface contracts.
type PipelineResolver interface {
	ResolvePipeline(domain Domain, offscreen bool) (core.Handle, error)
	ShaderNameFor(binding *renderer.SubmeshBinding) string
	DefaultShaderName() string
}

// Config is the registration-time wiring for a world layer.
type Config struct {
	MeshManager     renderer.MeshManager
	Instances       renderer.InstanceBufferPool
	Indirect        renderer.IndirectDrawSystem
	Pipelines       PipelineResolver
	MDIAvailable    bool
	ShadowLayer     core.Handle
	ViewSystem      *views.System
	Frontend        renderer.Frontend
	OffscreenRenderpassName string
	CameraPosition  func() vmath.Vec3
	CameraViewProj  func() (view, projection vmath.Mat4)
	BoundingSphereOf BoundingSphere
	SkyboxLayer     core.Handle
	EditorLayer     core.Handle
	TextLayer       core.Handle

	// AmbientColor is passed through to Frontend.ApplyLightingGlobals
	// once per pipeline per frame.
	AmbientColor vmath.Vec4
}

// Layer is the World View Layer: the primary 3D pass plus its offscreen
// (editor viewport) variant.
type Layer struct {
	cfg Config

	batcher *Batcher

	boundPipeline  core.Handle
	globalsApplied map[uint32]bool
	appliedInstance map[core.Handle]bool
	currentCameraPos vmath.Vec3

	shadow        *renderer.ShadowFrameData
	shadowEnabled bool

	offscreen     bool
	offscreenSize struct{ width, height uint32 }
	offscreenTargets    []*metadata.RenderTarget
	offscreenPass       *metadata.RenderPass
	savedTargets        []*metadata.RenderTarget
	savedRenderpass     *metadata.RenderPass
}

func NewLayer(cfg Config) *Layer {
	return &Layer{
		cfg:             cfg,
		batcher:         NewBatcher(cfg.MDIAvailable),
		globalsApplied:  make(map[uint32]bool),
		appliedInstance: make(map[core.Handle]bool),
	}
}

func (l *Layer) OnCreate(layer *views.Layer) error  { return nil }
func (l *Layer) OnAttach(layer *views.Layer) error  { return nil }
func (l *Layer) OnEnable(layer *views.Layer) error  { return nil }
func (l *Layer) OnDisable(layer *views.Layer) error { return nil }
func (l *Layer) OnDetach(layer *views.Layer) error  { return nil }
func (l *Layer) OnDestroy(layer *views.Layer) error { return nil }

func (l *Layer) OnResize(layer *views.Layer, width, height uint32) {
	// A layer with an explicit offscreen size stays at editor-owned
	// dimensions; resize is a no-op while offscreen.
	if l.offscreen {
		return
	}
}

func (l *Layer) OnUpdate(layer *views.Layer, dt float64, input *views.InputState) bool {
	if input == nil {
		return false
	}
	// Camera control is not implemented: the layer never consumes input,
	// whether or not the mouse is captured.
	return false
}

// OnRender drives the per-frame sequence: shadow request, globals, draw
// collection/culling, batching, and issuance.
func (l *Layer) OnRender(layer *views.Layer, pass *views.LayerPass, frameNumber, renderTargetIndex uint64) error {
	if l.cfg.MeshManager == nil {
		return nil
	}

	l.requestShadowData()

	var frustum *vmath.Frustum
	if l.cfg.CameraViewProj != nil {
		view, proj := l.cfg.CameraViewProj()
		f := vmath.NewFrustumFromViewProjection(view, proj)
		frustum = &f
	}
	var cameraPos vmath.Vec3
	if l.cfg.CameraPosition != nil {
		cameraPos = l.cfg.CameraPosition()
	}
	l.currentCameraPos = cameraPos

	l.batcher.Reset()
	sphereOf := l.cfg.BoundingSphereOf
	if sphereOf == nil {
		sphereOf = func(int) (vmath.Vec3, float32, bool) { return vmath.Vec3{}, 0, false }
	}
	l.batcher.Collect(l.cfg.MeshManager, frustum, sphereOf, cameraPos)
	l.batcher.BuildOpaqueBatches()
	l.batcher.SortTransparent()

	for k := range l.globalsApplied {
		delete(l.globalsApplied, k)
	}
	for k := range l.appliedInstance {
		delete(l.appliedInstance, k)
	}

	l.issueOpaqueBatches()
	l.issueTransparent()

	return nil
}

func (l *Layer) OnDataReceived(layer *views.Layer, msg views.Message) (*views.Response, error) {
	switch msg.Header.Kind {
	case views.WorldSetOffscreenSize:
		w, h := views.DecodeOffscreenSize(msg.Payload)
		l.offscreenSize.width, l.offscreenSize.height = w, h
		if l.offscreen {
			return nil, l.resizeOffscreen(layer)
		}
		return nil, nil
	case views.WorldToggleOffscreen:
		if l.offscreen {
			return nil, l.disableOffscreen(layer)
		}
		return nil, l.enableOffscreen(layer)
	}
	return nil, nil
}

// requestShadowData sends SHADOW_GET_FRAME_DATA and records only whether a
// valid response came back; the body is not decoded, so l.shadow stays nil.
func (l *Layer) requestShadowData() {
	if !l.cfg.ShadowLayer.IsValid() || l.cfg.ViewSystem == nil {
		l.shadowEnabled = false
		return
	}
	rsp, err := l.cfg.ViewSystem.SendMsg(l.cfg.ShadowLayer, views.Message{
		Header: views.MessageHeader{Kind: views.ShadowGetFrameData, Version: 1},
	})
	if err != nil || rsp == nil || rsp.Header.Error != 0 {
		l.shadowEnabled = false
		return
	}
	// The response body's byte layout is owned by the shadow layer
	// implementation, treated here as an opaque collaborator; decoding
	// rsp.Body into a renderer.ShadowFrameData is its concern, not the
	// world layer's.
	l.shadowEnabled = true
}

func (l *Layer) applyGlobalsOnce(pipelineID uint32, cameraPos vmath.Vec3) {
	if l.globalsApplied[pipelineID] {
		return
	}
	l.globalsApplied[pipelineID] = true
	if l.cfg.Frontend == nil {
		return
	}
	l.cfg.Frontend.ApplyLightingGlobals(pipelineID, cameraPos, l.cfg.AmbientColor)
	if l.shadowEnabled && l.shadow != nil {
		l.cfg.Frontend.ApplyShadowGlobals(pipelineID, l.shadow)
	}
}

func (l *Layer) issueOpaqueBatches() {
	for _, batch := range l.batcher.OpaqueBatches {
		if l.cfg.Instances != nil {
			base, mapped, ok := l.cfg.Instances.Alloc(batch.CommandCount)
			if ok {
				l.writeInstances(mapped, l.batcher.Opaque[batch.FirstCommand:batch.FirstCommand+batch.CommandCount])
				l.cfg.Instances.FlushRange(base, batch.CommandCount)
				batch.FirstInstance = base
			}
		}

		if l.canUseIndirect(batch) {
			l.issueIndirectBatch(batch)
			continue
		}
		l.issuePerCommand(batch)
	}
}

func (l *Layer) canUseIndirect(batch Batch) bool {
	return l.cfg.MDIAvailable && l.cfg.Indirect != nil && l.cfg.Indirect.Remaining() >= batch.CommandCount
}

func (l *Layer) issueIndirectBatch(batch Batch) {
	l.applyGlobalsOnce(batch.Key.PipelineID, l.currentCameraPos)
	cmds := l.batcher.Opaque[batch.FirstCommand : batch.FirstCommand+batch.CommandCount]
	remaining := len(cmds)
	offset := 0
	for remaining > 0 {
		chunk := l.cfg.Indirect.Remaining()
		if chunk <= 0 {
			l.issuePerCommandRange(cmds[offset:])
			return
		}
		if chunk > remaining {
			chunk = remaining
		}
		base, mapped, ok := l.cfg.Indirect.Alloc(chunk)
		if !ok {
			l.issuePerCommandRange(cmds[offset : offset+chunk])
			offset += chunk
			remaining -= chunk
			continue
		}
		l.writeIndirectCommands(mapped, cmds[offset:offset+chunk], batch.FirstInstance+uint32(offset))
		l.cfg.Indirect.FlushRange(base, chunk)
		offset += chunk
		remaining -= chunk
	}
}

// indirectCommandStride is the encoded size of one IndirectDrawCommand:
// five uint32 fields.
const indirectCommandStride = 4 * 5

func (l *Layer) writeIndirectCommands(mapped []byte, cmds []DrawCommand, firstInstanceBase uint32) {
	for i, cmd := range cmds {
		off := i * indirectCommandStride
		if off+indirectCommandStride > len(mapped) {
			return
		}
		var indexCount, firstIndex, vertexOffset uint32
		if cmd.Binding != nil {
			indexCount = cmd.Binding.IndexCount
			firstIndex = cmd.Binding.FirstIndex
			vertexOffset = cmd.Binding.VertexOffset
		}
		binary.LittleEndian.PutUint32(mapped[off:off+4], indexCount)
		binary.LittleEndian.PutUint32(mapped[off+4:off+8], 1)
		binary.LittleEndian.PutUint32(mapped[off+8:off+12], firstIndex)
		binary.LittleEndian.PutUint32(mapped[off+12:off+16], vertexOffset)
		binary.LittleEndian.PutUint32(mapped[off+16:off+20], firstInstanceBase+uint32(i))
	}
}

func (l *Layer) issuePerCommand(batch Batch) {
	l.issuePerCommandRange(l.batcher.Opaque[batch.FirstCommand : batch.FirstCommand+batch.CommandCount])
}

func (l *Layer) issuePerCommandRange(cmds []DrawCommand) {
	if l.cfg.Frontend == nil {
		return
	}
	for _, cmd := range cmds {
		l.applyGlobalsOnce(cmd.Key.PipelineID, l.currentCameraPos)
		if cmd.Binding == nil || cmd.Binding.Geometry == nil {
			continue
		}
		l.cfg.Frontend.BindVertexBuffer(cmd.Binding.Geometry)
		l.cfg.Frontend.BindIndexBuffer(cmd.Binding.Geometry)
		l.cfg.Frontend.DrawIndexed(cmd.Binding.IndexCount, 1, cmd.Binding.FirstIndex, cmd.Binding.VertexOffset, 0)
	}
}

func (l *Layer) issueTransparent() {
	for i := range l.batcher.Transparent {
		cmd := l.batcher.Transparent[i : i+1]
		if l.cfg.Instances != nil {
			base, mapped, ok := l.cfg.Instances.Alloc(1)
			if ok {
				l.writeInstances(mapped, cmd)
				l.cfg.Instances.FlushRange(base, 1)
			}
		}
		l.issuePerCommandRange(cmd)
	}
}

// instanceDataStride is the encoded size of one instance record: a Mat4
// (16 float32) plus three uint32 words; InstanceData's Padding is not written.
const instanceDataStride = 16*4 + 4*3

func (l *Layer) writeInstances(mapped []byte, cmds []DrawCommand) {
	for i, cmd := range cmds {
		off := i * instanceDataStride
		if off+instanceDataStride > len(mapped) {
			return
		}
		for j, f := range cmd.Model.Data {
			binary.LittleEndian.PutUint32(mapped[off+j*4:off+j*4+4], math.Float32bits(f))
		}
		binary.LittleEndian.PutUint32(mapped[off+64:off+68], cmd.ObjectID)
		binary.LittleEndian.PutUint32(mapped[off+68:off+72], cmd.Key.MaterialID)
		binary.LittleEndian.PutUint32(mapped[off+72:off+76], 0)
	}
}

// enableOffscreen waits idle, builds one sampled (non-present)
// color+depth render target per swapchain image at the editor-owned
// size, swaps the layer's pass onto them, then broadcasts so the
// skybox/text layers rebuild against the new target.
func (l *Layer) enableOffscreen(layer *views.Layer) error {
	if l.offscreen {
		return nil
	}
	if l.cfg.Frontend == nil || l.cfg.ViewSystem == nil || len(layer.Passes) == 0 {
		return core.ErrInvalidParameter
	}

	width, height := l.offscreenSize.width, l.offscreenSize.height
	if width == 0 || height == 0 {
		width, height = layer.Width, layer.Height
	}

	l.cfg.Frontend.WaitIdle()

	pass := layer.Passes[0]
	renderpassName := l.cfg.OffscreenRenderpassName
	if renderpassName == "" {
		renderpassName = pass.RenderpassName
	}
	offscreenPass := l.cfg.Frontend.RenderpassGet(renderpassName)
	if offscreenPass == nil {
		return core.ErrRenderpassUnavailable
	}

	count := l.cfg.Frontend.WindowAttachmentCount()
	targets := make([]*metadata.RenderTarget, count)
	for i := uint8(0); i < count; i++ {
		desc := &metadata.RenderTargetConfig{Attachments: []*metadata.RenderTargetAttachmentConfig{
			{
				RenderTargetAttachmentType: metadata.RENDER_TARGET_ATTACHMENT_TYPE_COLOUR,
				Source:                     metadata.RENDER_TARGET_ATTACHMENT_SOURCE_DEFAULT,
				LoadOperation:              metadata.RENDER_TARGET_ATTACHMENT_LOAD_OPERATION_DONT_CARE,
				StoreOperation:             metadata.RENDER_TARGET_ATTACHMENT_STORE_OPERATION_STORE,
			},
			{
				RenderTargetAttachmentType: metadata.RENDER_TARGET_ATTACHMENT_TYPE_DEPTH,
				Source:                     metadata.RENDER_TARGET_ATTACHMENT_SOURCE_DEFAULT,
				LoadOperation:              metadata.RENDER_TARGET_ATTACHMENT_LOAD_OPERATION_DONT_CARE,
				StoreOperation:             metadata.RENDER_TARGET_ATTACHMENT_STORE_OPERATION_DONT_CARE,
			},
		}}
		targets[i] = l.cfg.Frontend.RenderTargetCreate(desc, offscreenPass, width, height, false)
	}

	l.savedRenderpass = pass.Renderpass
	l.savedTargets = pass.RenderTargets
	pass.Renderpass = offscreenPass
	pass.RenderTargets = targets
	pass.UseCustomRenderTargets = true

	l.offscreenPass = offscreenPass
	l.offscreenTargets = targets
	l.offscreenSize.width, l.offscreenSize.height = width, height
	l.offscreen = true

	l.notifyOffscreenStateChanged(true, width, height)
	return nil
}

// disableOffscreen tears the offscreen targets down and restores the
// swapchain-synced pass the layer started with.
func (l *Layer) disableOffscreen(layer *views.Layer) error {
	if !l.offscreen {
		return nil
	}
	if l.cfg.Frontend == nil || len(layer.Passes) == 0 {
		return core.ErrInvalidParameter
	}

	l.cfg.Frontend.WaitIdle()

	for _, rt := range l.offscreenTargets {
		if rt != nil {
			l.cfg.Frontend.RenderTargetDestroy(rt)
		}
	}
	if l.offscreenPass != nil && l.offscreenPass != l.savedRenderpass {
		l.cfg.Frontend.RenderpassDestroy(l.offscreenPass)
	}

	pass := layer.Passes[0]
	pass.Renderpass = l.savedRenderpass
	pass.RenderTargets = l.savedTargets
	pass.UseCustomRenderTargets = false

	l.offscreenTargets = nil
	l.offscreenPass = nil
	l.savedTargets = nil
	l.savedRenderpass = nil
	l.offscreen = false

	l.notifyOffscreenStateChanged(false, 0, 0)
	return nil
}

// resizeOffscreen rebuilds the offscreen targets in place when the
// editor viewport changes size while offscreen mode is already active.
func (l *Layer) resizeOffscreen(layer *views.Layer) error {
	savedRenderpass, savedTargets := l.savedRenderpass, l.savedTargets
	if err := l.disableOffscreenTargetsOnly(); err != nil {
		return err
	}
	l.offscreen = false
	if err := l.enableOffscreen(layer); err != nil {
		return err
	}
	l.savedRenderpass, l.savedTargets = savedRenderpass, savedTargets
	return nil
}

func (l *Layer) disableOffscreenTargetsOnly() error {
	if l.cfg.Frontend == nil {
		return core.ErrInvalidParameter
	}
	l.cfg.Frontend.WaitIdle()
	for _, rt := range l.offscreenTargets {
		if rt != nil {
			l.cfg.Frontend.RenderTargetDestroy(rt)
		}
	}
	l.offscreenTargets = nil
	return nil
}

// notifyOffscreenStateChanged broadcasts to every other layer (skybox,
// text, editor) so they can rebuild their own pipelines/targets against
// the new offscreen format.
func (l *Layer) notifyOffscreenStateChanged(enabled bool, width, height uint32) {
	payload := views.EncodeOffscreenState(enabled, width, height)
	_ = l.cfg.ViewSystem.BroadcastMsg(views.Message{
		Header: views.MessageHeader{
			Kind:        views.WorldOffscreenStateChanged,
			Version:     1,
			PayloadSize: uint16(len(payload)),
		},
		Payload: payload,
	}, 0)
}
