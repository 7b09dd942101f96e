package scene

import "testing"

func TestEncodePickingIDLiteralValues(t *testing.T) {
	if got := EncodePickingID(PickingScene, 42); got != 43 {
		t.Fatalf("encode(SCENE, 42) = %d, want 43", got)
	}
	if got := EncodePickingID(PickingWorldText, 0); got != 0x4000_0001 {
		t.Fatalf("encode(WORLD_TEXT, 0) = %#x, want 0x4000_0001", got)
	}
	if got := EncodePickingID(PickingScene, PickingMaxValue+1); got != 0 {
		t.Fatalf("encode(kind, MAX_VALUE+1) = %d, want 0", got)
	}
}

func TestDecodePickingIDRoundtrip(t *testing.T) {
	kind, value, ok := DecodePickingID(43)
	if !ok || kind != PickingScene || value != 42 {
		t.Fatalf("decode(43) = (%d, %d, %v), want (SCENE, 42, true)", kind, value, ok)
	}

	kind, value, ok = DecodePickingID(0x4000_0001)
	if !ok || kind != PickingWorldText || value != 0 {
		t.Fatalf("decode(0x4000_0001) = (%d, %d, %v), want (WORLD_TEXT, 0, true)", kind, value, ok)
	}

	if _, _, ok := DecodePickingID(0); ok {
		t.Fatalf("decode(0) should be invalid")
	}
}

func TestEncodeDecodePickingIDRoundtripAllKinds(t *testing.T) {
	kinds := []PickingKind{PickingScene, PickingUIText, PickingWorldText, PickingLight, PickingGizmo}
	values := []uint32{0, 1, 42, PickingMaxValue}

	for _, k := range kinds {
		for _, v := range values {
			encoded := EncodePickingID(k, v)
			if encoded == 0 {
				t.Fatalf("encode(%d, %d) unexpectedly produced 0", k, v)
			}
			gotKind, gotValue, ok := DecodePickingID(encoded)
			if !ok || gotKind != k || gotValue != v {
				t.Fatalf("roundtrip(%d, %d) = (%d, %d, %v), want (%d, %d, true)", k, v, gotKind, gotValue, ok, k, v)
			}
		}
	}
}
