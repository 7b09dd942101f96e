package editor

import "testing"

func TestWindowToTargetPixelEdges(t *testing.T) {
	mapping := ViewportMapping{
		PanelRectPx:  Rect{X: 0, Y: 0, W: 800, H: 600},
		ImageRectPx:  Rect{X: 40, Y: 30, W: 720, H: 540},
		TargetWidth:  1280,
		TargetHeight: 720,
		FitMode:      FitContain,
	}

	tx, ty, ok := WindowToTargetPixel(mapping, 40, 30)
	if !ok || tx != 0 || ty != 0 {
		t.Fatalf("top-left = (%d, %d, %v), want (0, 0, true)", tx, ty, ok)
	}

	tx, ty, ok = WindowToTargetPixel(mapping, 40+719, 30+539)
	if !ok || tx != 1279 || ty != 719 {
		t.Fatalf("bottom-right = (%d, %d, %v), want (1279, 719, true)", tx, ty, ok)
	}

	if _, _, ok := WindowToTargetPixel(mapping, 0, 0); ok {
		t.Fatalf("point outside image rect should return ok=false")
	}
	if _, _, ok := WindowToTargetPixel(mapping, 40+720, 30); ok {
		t.Fatalf("point just past the right edge should return ok=false")
	}
}

func TestWindowToTargetPixelIdempotence(t *testing.T) {
	mapping := ViewportMapping{
		ImageRectPx:  Rect{X: 40, Y: 30, W: 720, H: 540},
		TargetWidth:  1280,
		TargetHeight: 720,
	}

	tl := mapping.ImageRectPx
	tx, ty, ok := WindowToTargetPixel(mapping, tl.X, tl.Y)
	if !ok || tx != 0 || ty != 0 {
		t.Fatalf("top-left mapping = (%d, %d, %v), want (0, 0, true)", tx, ty, ok)
	}

	brX := tl.X + int32(tl.W) - 1
	brY := tl.Y + int32(tl.H) - 1
	tx, ty, ok = WindowToTargetPixel(mapping, brX, brY)
	if !ok || tx != mapping.TargetWidth-1 || ty != mapping.TargetHeight-1 {
		t.Fatalf("bottom-right mapping = (%d, %d, %v), want (%d, %d, true)", tx, ty, ok, mapping.TargetWidth-1, mapping.TargetHeight-1)
	}
}

func TestWindowToTargetPixelDegenerateImageCollapsesToZero(t *testing.T) {
	mapping := ViewportMapping{
		ImageRectPx:  Rect{X: 0, Y: 0, W: 1, H: 1},
		TargetWidth:  10,
		TargetHeight: 10,
	}
	tx, ty, ok := WindowToTargetPixel(mapping, 0, 0)
	if !ok || tx != 0 || ty != 0 {
		t.Fatalf("1x1 image should collapse to (0, 0), got (%d, %d, %v)", tx, ty, ok)
	}
}

func TestComputeViewportUsesFixedPanelFractions(t *testing.T) {
	m := ComputeViewport(1000, 1000, FitStretch, 1.0)

	if m.PanelRectPx.W == 0 || m.PanelRectPx.H == 0 {
		t.Fatalf("expected a non-empty center panel, got %+v", m.PanelRectPx)
	}
	// left=18%, right=22%, gutter=8px each side: panel starts right of
	// left_panel+gutter and is narrower than the full window.
	if m.PanelRectPx.X <= 0 {
		t.Fatalf("panel should be offset from the window's left edge, got x=%d", m.PanelRectPx.X)
	}
	if m.PanelRectPx.W >= 1000 {
		t.Fatalf("panel width should be less than the window width, got %d", m.PanelRectPx.W)
	}
}

func TestComputeViewportStretchFillsPanel(t *testing.T) {
	m := ComputeViewport(1000, 1000, FitStretch, 1.0)
	if m.ImageRectPx != m.PanelRectPx {
		t.Fatalf("STRETCH image rect should equal the panel rect: got %+v, want %+v", m.ImageRectPx, m.PanelRectPx)
	}
}

func TestComputeViewportRenderScaleClamped(t *testing.T) {
	low := ComputeViewport(1000, 1000, FitStretch, 0.0)
	high := ComputeViewport(1000, 1000, FitStretch, 10.0)

	lowExpected := uint32(float64(low.PanelRectPx.W) * 0.25)
	if lowExpected == 0 {
		lowExpected = 1
	}
	if low.TargetWidth != lowExpected {
		t.Fatalf("render scale should clamp to 0.25: target width = %d, want %d", low.TargetWidth, lowExpected)
	}

	highExpected := uint32(float64(high.PanelRectPx.W) * 2.0)
	if high.TargetWidth != highExpected {
		t.Fatalf("render scale should clamp to 2.0: target width = %d, want %d", high.TargetWidth, highExpected)
	}
}
