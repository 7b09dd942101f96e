// Package views implements the View System (VS): a layer registry with
// handle-generation lifetime, ordered rendering, modal-input routing,
// per-layer typed message dispatch, and render-target construction tied
// to a swapchain.
package views

import (
	"encoding/binary"

	"github.com/spaghettifunk/vkrview/engine/core"
)

// MessageKind partitions the typed message protocol; the wire layout
// is bit-exact across every encode/decode pair.
type MessageKind uint32

const (
	UITextCreate  MessageKind = 100
	UITextUpdate  MessageKind = 101
	UITextDestroy MessageKind = 102

	WorldTextCreate        MessageKind = 200
	WorldTextUpdate        MessageKind = 201
	WorldTextSetTransform  MessageKind = 202
	WorldTextDestroy       MessageKind = 203
	WorldToggleOffscreen   MessageKind = 204
	WorldSetOffscreenSize  MessageKind = 205
	WorldOffscreenStateChanged MessageKind = 206

	EditorGetViewportMapping MessageKind = 300
	EditorSetViewportFitMode MessageKind = 301
	EditorSetRenderScale     MessageKind = 302

	ShadowGetFrameData MessageKind = 400
)

// MessageFlag bits.
type MessageFlag uint32

const (
	ExpectsResponse MessageFlag = 1
	DebugOnly       MessageFlag = 2
)

// HeaderSize is the 16-byte aligned header size: kind(4) + version(2) +
// payload_size(2) + flags(4) = 12 bytes, padded to 16 for alignment.
const HeaderSize = 16

// MessageHeader is the fixed header every message begins with.
type MessageHeader struct {
	Kind        MessageKind
	Version     uint16
	PayloadSize uint16
	Flags       MessageFlag
}

// Message is a contiguous record: header followed by its payload.
type Message struct {
	Header  MessageHeader
	Payload []byte
}

// EncodeHeader writes h in a bit-exact little-endian layout, so
// messages remain wire-compatible if they ever cross a process
// boundary.
func EncodeHeader(h MessageHeader) []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(h.Kind))
	binary.LittleEndian.PutUint16(buf[4:6], h.Version)
	binary.LittleEndian.PutUint16(buf[6:8], h.PayloadSize)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(h.Flags))
	return buf
}

func DecodeHeader(buf []byte) MessageHeader {
	return MessageHeader{
		Kind:        MessageKind(binary.LittleEndian.Uint32(buf[0:4])),
		Version:     binary.LittleEndian.Uint16(buf[4:6]),
		PayloadSize: binary.LittleEndian.Uint16(buf[6:8]),
		Flags:       MessageFlag(binary.LittleEndian.Uint32(buf[8:12])),
	}
}

// ResponseHeader begins every response; Error == 0 means success.
type ResponseHeader struct {
	Kind     MessageKind
	Version  uint16
	DataSize uint16
	Error    uint32
}

// Response is {rsp_header, body} beginning at offset 0 of the response
// buffer the caller supplied.
type Response struct {
	Header ResponseHeader
	Body   []byte
}

type messageMeta struct {
	Version     uint16
	PayloadSize uint16
}

// metaRegistry is consulted by ValidateMessage on every SendMsg and
// BroadcastMsg: kind/version/payload mismatches cause the handler not to be invoked.
var metaRegistry = map[MessageKind]messageMeta{
	UITextCreate:  {Version: 1, PayloadSize: 0}, // variable-size create payloads are validated by the handler itself
	UITextUpdate:  {Version: 1, PayloadSize: 0},
	UITextDestroy: {Version: 1, PayloadSize: 4},

	WorldTextCreate:       {Version: 1, PayloadSize: 0},
	WorldTextUpdate:       {Version: 1, PayloadSize: 0},
	WorldTextSetTransform: {Version: 1, PayloadSize: 0},
	WorldTextDestroy:      {Version: 1, PayloadSize: 4},
	WorldToggleOffscreen:  {Version: 1, PayloadSize: 0},
	WorldSetOffscreenSize: {Version: 1, PayloadSize: 8}, // {width:u32, height:u32}
	WorldOffscreenStateChanged: {Version: 1, PayloadSize: 9}, // {enabled:u8, width:u32, height:u32}

	EditorGetViewportMapping: {Version: 1, PayloadSize: 0},
	EditorSetViewportFitMode: {Version: 1, PayloadSize: 4},
	EditorSetRenderScale:     {Version: 1, PayloadSize: 4},

	ShadowGetFrameData: {Version: 1, PayloadSize: 0}, // response body carries ShadowFrameData; the shadow layer encodes it
}

// RegisterMessageKind lets a layer/behavior implementation declare its
// own message kinds (outside the builtin UI/World/Editor partitions)
// along with the version/payload_size ValidateMessage expects.
func RegisterMessageKind(kind MessageKind, version, payloadSize uint16) {
	metaRegistry[kind] = messageMeta{Version: version, PayloadSize: payloadSize}
}

// ValidateMessage implements header validation, run in every build: the
// header's kind must have registered metadata and version/payload size
// must match it. A zero PayloadSize in metadata means "variable size,
// validated by the handler" and always passes the size check.
func ValidateMessage(h MessageHeader) error {
	meta, ok := metaRegistry[h.Kind]
	if !ok {
		return core.ErrMessageValidationFailed
	}
	if meta.Version != h.Version {
		return core.ErrMessageValidationFailed
	}
	if meta.PayloadSize != 0 && meta.PayloadSize != h.PayloadSize {
		return core.ErrMessageValidationFailed
	}
	return nil
}

// EncodeOffscreenSize builds the WORLD_SET_OFFSCREEN_SIZE payload.
func EncodeOffscreenSize(width, height uint32) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf[0:4], width)
	binary.LittleEndian.PutUint32(buf[4:8], height)
	return buf
}

func DecodeOffscreenSize(payload []byte) (width, height uint32) {
	return binary.LittleEndian.Uint32(payload[0:4]), binary.LittleEndian.Uint32(payload[4:8])
}

// EncodeOffscreenState builds the WORLD_OFFSCREEN_STATE_CHANGED payload
// broadcast when the world layer enters or leaves offscreen mode, so
// the skybox and text layers know to rebuild against the new target
// format/size.
func EncodeOffscreenState(enabled bool, width, height uint32) []byte {
	buf := make([]byte, 9)
	if enabled {
		buf[0] = 1
	}
	binary.LittleEndian.PutUint32(buf[1:5], width)
	binary.LittleEndian.PutUint32(buf[5:9], height)
	return buf
}

func DecodeOffscreenState(payload []byte) (enabled bool, width, height uint32) {
	return payload[0] != 0, binary.LittleEndian.Uint32(payload[1:5]), binary.LittleEndian.Uint32(payload[5:9])
}
