package core

import "testing"

func TestHandlePoolGenerationInvalidatesStaleHandle(t *testing.T) {
	p := NewHandlePool[string](4)

	h := p.Acquire("first")
	if !p.IsValid(h) {
		t.Fatalf("freshly acquired handle should be valid")
	}

	p.Release(h)
	if p.IsValid(h) {
		t.Fatalf("handle should be invalid after release")
	}

	h2 := p.Acquire("second")
	if h2.Id != h.Id {
		t.Fatalf("expected slot reuse: got id %d, want %d", h2.Id, h.Id)
	}
	if h2.Generation == h.Generation {
		t.Fatalf("expected generation bump on reuse: got %d, want != %d", h2.Generation, h.Generation)
	}
	if p.IsValid(h) {
		t.Fatalf("stale handle from before reuse must stay invalid")
	}
	if !p.IsValid(h2) {
		t.Fatalf("reused handle should be valid")
	}
}

func TestHandlePoolGetSetPtr(t *testing.T) {
	p := NewHandlePool[int](2)
	h := p.Acquire(10)

	if v, ok := p.Get(h); !ok || v != 10 {
		t.Fatalf("Get() = (%d, %v), want (10, true)", v, ok)
	}

	ptr, ok := p.GetPtr(h)
	if !ok {
		t.Fatalf("GetPtr() returned ok=false for valid handle")
	}
	*ptr = 20
	if v, _ := p.Get(h); v != 20 {
		t.Fatalf("mutation through GetPtr not observed: got %d, want 20", v)
	}

	if !p.Set(h, 30) {
		t.Fatalf("Set() returned false for valid handle")
	}
	if v, _ := p.Get(h); v != 30 {
		t.Fatalf("Set() not observed: got %d, want 30", v)
	}

	p.Release(h)
	if p.Set(h, 40) {
		t.Fatalf("Set() on stale handle should return false")
	}
}

func TestHandlePoolLenAndEach(t *testing.T) {
	p := NewHandlePool[int](4)
	a := p.Acquire(1)
	_ = p.Acquire(2)
	c := p.Acquire(3)
	p.Release(a)

	if got := p.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}

	seen := map[uint32]int{}
	p.Each(func(h Handle, payload *int) bool {
		seen[h.Id] = *payload
		return true
	})
	if len(seen) != 2 {
		t.Fatalf("Each() visited %d slots, want 2", len(seen))
	}
	if v, ok := seen[c.Id]; !ok || v != 3 {
		t.Fatalf("Each() missing released-then-kept slot: seen=%v", seen)
	}
	if _, ok := seen[a.Id]; ok {
		t.Fatalf("Each() should not visit released slot %d", a.Id)
	}
}

func TestInvalidHandleNeverValid(t *testing.T) {
	p := NewHandlePool[int](1)
	if p.IsValid(InvalidHandle) {
		t.Fatalf("InvalidHandle must never resolve as valid")
	}
	if _, ok := p.Get(InvalidHandle); ok {
		t.Fatalf("Get(InvalidHandle) should fail")
	}
}
