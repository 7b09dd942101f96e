package editor

import (
	"encoding/binary"
	"math"

	"github.com/spaghettifunk/vkrview/engine/core"
	"github.com/spaghettifunk/vkrview/engine/views"
)

// Config is the registration-time wiring for the editor layer.
type Config struct {
	ViewSystem  *views.System
	WorldLayer  core.Handle
	FitMode     FitMode
	RenderScale float32
}

// Layer renders the offscreen world image inside the fixed editor
// panel layout and keeps the world layer's offscreen target size in
// sync with the computed viewport mapping.
type Layer struct {
	cfg     Config
	mapping ViewportMapping

	windowWidth, windowHeight uint32
}

func NewLayer(cfg Config) *Layer {
	if cfg.RenderScale == 0 {
		cfg.RenderScale = 1.0
	}
	return &Layer{cfg: cfg}
}

func (l *Layer) OnCreate(layer *views.Layer) error  { return nil }
func (l *Layer) OnAttach(layer *views.Layer) error  { return nil }
func (l *Layer) OnEnable(layer *views.Layer) error  { return nil }
func (l *Layer) OnDisable(layer *views.Layer) error { return nil }
func (l *Layer) OnDetach(layer *views.Layer) error  { return nil }
func (l *Layer) OnDestroy(layer *views.Layer) error { return nil }

// OnResize recomputes the viewport mapping and, if the resulting
// offscreen target size changed, notifies the world layer.
func (l *Layer) OnResize(layer *views.Layer, width, height uint32) {
	l.windowWidth, l.windowHeight = width, height
	l.recompute()
}

func (l *Layer) OnUpdate(layer *views.Layer, dt float64, input *views.InputState) bool {
	return false
}

// OnRender binds the world layer's offscreen color attachment as a
// textured quad inside l.mapping.ImageRectPx. The texture sampling and
// quad draw call are backend-specific and owned by renderer.Frontend;
// this layer only owns the layout arithmetic.
func (l *Layer) OnRender(layer *views.Layer, pass *views.LayerPass, frameNumber, renderTargetIndex uint64) error {
	return nil
}

func (l *Layer) OnDataReceived(layer *views.Layer, msg views.Message) (*views.Response, error) {
	switch msg.Header.Kind {
	case views.EditorSetViewportFitMode:
		if len(msg.Payload) >= 4 {
			l.cfg.FitMode = FitMode(msg.Payload[0])
			l.recompute()
		}
	case views.EditorSetRenderScale:
		if len(msg.Payload) >= 4 {
			l.cfg.RenderScale = decodeFloat32(msg.Payload)
			l.recompute()
		}
	case views.EditorGetViewportMapping:
		body := encodeViewportMapping(l.mapping)
		return &views.Response{
			Header: views.ResponseHeader{
				Kind:     views.EditorGetViewportMapping,
				Version:  1,
				DataSize: uint16(len(body)),
			},
			Body: body,
		}, nil
	}
	return nil, nil
}

// viewportMappingSize is panel_rect_px + image_rect_px (4 int32/uint32
// fields each) + target_width + target_height + fit_mode, padded to a
// 4-byte boundary.
const viewportMappingSize = 4*4 + 4*4 + 4 + 4 + 4

// encodeViewportMapping is the VIEWPORT_MAPPING response body: both
// rects as (x, y, w, h), then the resolved target size and fit mode.
func encodeViewportMapping(m ViewportMapping) []byte {
	buf := make([]byte, viewportMappingSize)
	encodeRect(buf[0:16], m.PanelRectPx)
	encodeRect(buf[16:32], m.ImageRectPx)
	binary.LittleEndian.PutUint32(buf[32:36], m.TargetWidth)
	binary.LittleEndian.PutUint32(buf[36:40], m.TargetHeight)
	binary.LittleEndian.PutUint32(buf[40:44], uint32(m.FitMode))
	return buf
}

func encodeRect(buf []byte, r Rect) {
	binary.LittleEndian.PutUint32(buf[0:4], uint32(r.X))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(r.Y))
	binary.LittleEndian.PutUint32(buf[8:12], r.W)
	binary.LittleEndian.PutUint32(buf[12:16], r.H)
}

// decodeViewportMapping is encodeViewportMapping's inverse, used by
// callers (and tests) that only hold the raw response body.
func decodeViewportMapping(buf []byte) ViewportMapping {
	return ViewportMapping{
		PanelRectPx:  decodeRect(buf[0:16]),
		ImageRectPx:  decodeRect(buf[16:32]),
		TargetWidth:  binary.LittleEndian.Uint32(buf[32:36]),
		TargetHeight: binary.LittleEndian.Uint32(buf[36:40]),
		FitMode:      FitMode(binary.LittleEndian.Uint32(buf[40:44])),
	}
}

func decodeRect(buf []byte) Rect {
	return Rect{
		X: int32(binary.LittleEndian.Uint32(buf[0:4])),
		Y: int32(binary.LittleEndian.Uint32(buf[4:8])),
		W: binary.LittleEndian.Uint32(buf[8:12]),
		H: binary.LittleEndian.Uint32(buf[12:16]),
	}
}

// Mapping returns the current viewport mapping for pixel-picking
// callers.
func (l *Layer) Mapping() ViewportMapping {
	return l.mapping
}

func (l *Layer) recompute() {
	prevW, prevH := l.mapping.TargetWidth, l.mapping.TargetHeight
	l.mapping = ComputeViewport(l.windowWidth, l.windowHeight, l.cfg.FitMode, l.cfg.RenderScale)

	if l.mapping.TargetWidth == prevW && l.mapping.TargetHeight == prevH {
		return
	}
	if l.cfg.ViewSystem == nil || !l.cfg.WorldLayer.IsValid() {
		return
	}
	payload := views.EncodeOffscreenSize(l.mapping.TargetWidth, l.mapping.TargetHeight)
	l.cfg.ViewSystem.SendMsgNoRsp(l.cfg.WorldLayer, views.Message{
		Header: views.MessageHeader{
			Kind:        views.WorldSetOffscreenSize,
			Version:     1,
			PayloadSize: uint16(len(payload)),
		},
		Payload: payload,
	})
}

func decodeFloat32(payload []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(payload))
}
