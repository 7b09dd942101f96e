package views

import "testing"

func TestValidateMessageRejectsUnregisteredKind(t *testing.T) {
	err := ValidateMessage(MessageHeader{Kind: MessageKind(9999), Version: 1})
	if err == nil {
		t.Fatalf("ValidateMessage with unregistered kind: err = nil, want non-nil")
	}
}

func TestValidateMessageRejectsVersionMismatch(t *testing.T) {
	err := ValidateMessage(MessageHeader{Kind: WorldToggleOffscreen, Version: 2})
	if err == nil {
		t.Fatalf("ValidateMessage with wrong version: err = nil, want non-nil")
	}
}

func TestValidateMessageRejectsPayloadSizeMismatch(t *testing.T) {
	err := ValidateMessage(MessageHeader{Kind: WorldSetOffscreenSize, Version: 1, PayloadSize: 4})
	if err == nil {
		t.Fatalf("ValidateMessage with wrong payload size: err = nil, want non-nil")
	}
}

func TestValidateMessageAcceptsRegisteredExactMatch(t *testing.T) {
	err := ValidateMessage(MessageHeader{Kind: WorldSetOffscreenSize, Version: 1, PayloadSize: 8})
	if err != nil {
		t.Fatalf("ValidateMessage with matching header: err = %v, want nil", err)
	}
}

func TestValidateMessageVariablePayloadAlwaysPasses(t *testing.T) {
	// PayloadSize == 0 in the registry means "variable size, validated
	// by the handler" — any header PayloadSize must pass.
	err := ValidateMessage(MessageHeader{Kind: UITextCreate, Version: 1, PayloadSize: 200})
	if err != nil {
		t.Fatalf("ValidateMessage with variable-size registration: err = %v, want nil", err)
	}
}

func TestRegisterMessageKindAddsNewEntry(t *testing.T) {
	kind := MessageKind(987654)
	RegisterMessageKind(kind, 3, 12)
	if err := ValidateMessage(MessageHeader{Kind: kind, Version: 3, PayloadSize: 12}); err != nil {
		t.Fatalf("ValidateMessage after RegisterMessageKind: err = %v, want nil", err)
	}
	if err := ValidateMessage(MessageHeader{Kind: kind, Version: 1, PayloadSize: 12}); err == nil {
		t.Fatalf("ValidateMessage with stale version after registration: err = nil, want non-nil")
	}
}

func TestEncodeDecodeHeaderRoundtrip(t *testing.T) {
	h := MessageHeader{Kind: WorldTextCreate, Version: 1, PayloadSize: 42, Flags: ExpectsResponse}
	got := DecodeHeader(EncodeHeader(h))
	if got != h {
		t.Fatalf("DecodeHeader(EncodeHeader(h)) = %+v, want %+v", got, h)
	}
}

func TestEncodeDecodeOffscreenSizeRoundtrip(t *testing.T) {
	payload := EncodeOffscreenSize(1920, 1080)
	gotW, gotH := DecodeOffscreenSize(payload)
	if gotW != 1920 || gotH != 1080 {
		t.Fatalf("DecodeOffscreenSize = (%d, %d), want (1920, 1080)", gotW, gotH)
	}
}

func TestEncodeDecodeOffscreenStateRoundtrip(t *testing.T) {
	payload := EncodeOffscreenState(true, 640, 480)
	enabled, w, h := DecodeOffscreenState(payload)
	if !enabled || w != 640 || h != 480 {
		t.Fatalf("DecodeOffscreenState = (%v, %d, %d), want (true, 640, 480)", enabled, w, h)
	}

	payload = EncodeOffscreenState(false, 0, 0)
	enabled, w, h = DecodeOffscreenState(payload)
	if enabled || w != 0 || h != 0 {
		t.Fatalf("DecodeOffscreenState = (%v, %d, %d), want (false, 0, 0)", enabled, w, h)
	}
}
