// Package editor implements the Editor View Layer: a single textured
// quad presenting the world layer's offscreen render inside a fixed
// panel layout, plus the pure viewport-mapping arithmetic the layer
// and its tests both depend on.
package editor

// FitMode selects how the offscreen image is mapped into the editor's
// center panel.
type FitMode int

const (
	FitStretch FitMode = iota
	FitContain
)

// Rect is a pixel rectangle in (origin, extent) form.
type Rect struct {
	X, Y int32
	W, H uint32
}

func (r Rect) contains(x, y int32) bool {
	if r.W == 0 || r.H == 0 {
		return false
	}
	return x >= r.X && y >= r.Y && x < r.X+int32(r.W) && y < r.Y+int32(r.H)
}

// ViewportMapping is the layout snapshot recomputed whenever window
// size, fit mode, or render scale changes.
type ViewportMapping struct {
	PanelRectPx  Rect
	ImageRectPx  Rect
	TargetWidth  uint32
	TargetHeight uint32
	FitMode      FitMode
}

const gutterPx = 8

// panelFractions are fixed fractions of the window dimensions the
// surrounding editor chrome reserves.
const (
	topBarFraction     = 0.06
	bottomPanelFraction = 0.24
	leftPanelFraction   = 0.18
	rightPanelFraction  = 0.22
)

// ComputeViewport derives the center panel rect from window size and,
// from it plus fitMode/renderScale, the image rect and offscreen target
// resolution. renderScale is clamped to [0.25, 2.0].
//
// The width-availability check only subtracts the left/right panels and
// the two side gutters, not the top bar or bottom panel; the height
// check is symmetric using the top/bottom panels instead.
func ComputeViewport(windowWidth, windowHeight uint32, fitMode FitMode, renderScale float32) ViewportMapping {
	if renderScale < 0.25 {
		renderScale = 0.25
	}
	if renderScale > 2.0 {
		renderScale = 2.0
	}

	topBar := uint32(float64(windowHeight) * topBarFraction)
	bottomPanel := uint32(float64(windowHeight) * bottomPanelFraction)
	leftPanel := uint32(float64(windowWidth) * leftPanelFraction)
	rightPanel := uint32(float64(windowWidth) * rightPanelFraction)

	usedW := leftPanel + rightPanel + 2*gutterPx
	usedH := topBar + bottomPanel + 2*gutterPx

	var panelW, panelH uint32
	if windowWidth > usedW {
		panelW = windowWidth - usedW
	}
	if windowHeight > usedH {
		panelH = windowHeight - usedH
	}

	panel := Rect{
		X: int32(leftPanel + gutterPx),
		Y: int32(topBar + gutterPx),
		W: panelW,
		H: panelH,
	}

	targetW := uint32(float64(panelW) * float64(renderScale))
	targetH := uint32(float64(panelH) * float64(renderScale))
	if panelW > 0 && targetW == 0 {
		targetW = 1
	}
	if panelH > 0 && targetH == 0 {
		targetH = 1
	}

	return ViewportMapping{
		PanelRectPx:  panel,
		ImageRectPx:  imageRectFor(panel, targetW, targetH, fitMode),
		TargetWidth:  targetW,
		TargetHeight: targetH,
		FitMode:      fitMode,
	}
}

func imageRectFor(panel Rect, targetW, targetH uint32, fitMode FitMode) Rect {
	if fitMode == FitStretch || targetW == 0 || targetH == 0 || panel.W == 0 || panel.H == 0 {
		return panel
	}

	panelAspect := float64(panel.W) / float64(panel.H)
	targetAspect := float64(targetW) / float64(targetH)

	if targetAspect > panelAspect {
		w := panel.W
		h := uint32(float64(w) / targetAspect)
		return Rect{
			X: panel.X,
			Y: panel.Y + int32((panel.H-h)/2),
			W: w,
			H: h,
		}
	}
	h := panel.H
	w := uint32(float64(h) * targetAspect)
	return Rect{
		X: panel.X + int32((panel.W-w)/2),
		Y: panel.Y,
		W: w,
		H: h,
	}
}

// WindowToTargetPixel maps a window-space pixel inside the image rect
// to a target-space pixel, edge-to-edge, using u64 intermediate
// arithmetic to avoid overflow. Returns ok=false for points outside
// the image rect.
func WindowToTargetPixel(m ViewportMapping, wx, wy int32) (tx, ty uint32, ok bool) {
	if !m.ImageRectPx.contains(wx, wy) {
		return 0, 0, false
	}
	tx = edgeToEdge(uint64(wx-m.ImageRectPx.X), m.ImageRectPx.W, m.TargetWidth)
	ty = edgeToEdge(uint64(wy-m.ImageRectPx.Y), m.ImageRectPx.H, m.TargetHeight)
	return tx, ty, true
}

// edgeToEdge maps offset in [0, size-1] to [0, target-1] linearly;
// image_w==1 (or target==0) collapses to 0 rather than dividing by zero.
func edgeToEdge(offset uint64, size, target uint32) uint32 {
	if size <= 1 || target == 0 {
		return 0
	}
	return uint32(offset * uint64(target-1) / uint64(size-1))
}
