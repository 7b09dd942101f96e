package scene

import (
	"fmt"

	vmath "github.com/spaghettifunk/vkrview/engine/math"
	"github.com/spaghettifunk/vkrview/engine/renderer/metadata"
	"github.com/spaghettifunk/vkrview/engine/resources"
)

// CubeGeometryFactory is the default GeometryFactory: it hands out a
// unit-cube geometry description scaled to the requested dimensions,
// with IDs assigned sequentially. Vertex/index buffer upload is the
// frontend's job; this factory only produces the CPU-side description
// SetShape needs to register a mesh slot and attach a Shape component.
type CubeGeometryFactory struct {
	nextID uint32
}

func NewCubeGeometryFactory() *CubeGeometryFactory { return &CubeGeometryFactory{} }

func (f *CubeGeometryFactory) CreateCube(dimensions vmath.Vec3) (*metadata.Geometry, error) {
	f.nextID++
	half := vmath.NewVec3(dimensions.X/2, dimensions.Y/2, dimensions.Z/2)
	return &metadata.Geometry{
		ID:      f.nextID,
		Name:    fmt.Sprintf("cube_%d", f.nextID),
		Center:  vmath.NewVec3Zero(),
		Extents: vmath.Extents3D{Min: vmath.NewVec3(-half.X, -half.Y, -half.Z), Max: half},
	}, nil
}

// SimpleMaterialFactory is the default MaterialFactory: an in-memory
// name-keyed registry with flat-colored materials created on demand, no
// texture map resolution. A real asset pipeline would resolve `path` to
// a loaded texture; lacking one here, materials are colour-only.
type SimpleMaterialFactory struct {
	byName map[string]*resources.Material
	nextID uint32
	dflt   *resources.Material
}

func NewSimpleMaterialFactory() *SimpleMaterialFactory {
	f := &SimpleMaterialFactory{byName: make(map[string]*resources.Material)}
	f.dflt = f.newMaterial("default", vmath.NewVec4Create(1, 1, 1, 1))
	return f
}

func (f *SimpleMaterialFactory) newMaterial(name string, color vmath.Vec4) *resources.Material {
	f.nextID++
	mat := &resources.Material{
		ID:            f.nextID,
		DiffuseColour: color,
		Shininess:     32.0,
	}
	mat.Name[0] = name
	return mat
}

func (f *SimpleMaterialFactory) GetOrCreate(name, path string) (*resources.Material, error) {
	if name == "" {
		return f.Default(), nil
	}
	if mat, ok := f.byName[name]; ok {
		return mat, nil
	}
	mat := f.newMaterial(name, vmath.NewVec4Create(1, 1, 1, 1))
	f.byName[name] = mat
	return mat, nil
}

func (f *SimpleMaterialFactory) CreateColored(color vmath.Vec4) (*resources.Material, error) {
	return f.newMaterial(fmt.Sprintf("colored_%d", f.nextID+1), color), nil
}

func (f *SimpleMaterialFactory) Default() *resources.Material { return f.dflt }

var _ GeometryFactory = (*CubeGeometryFactory)(nil)
var _ MaterialFactory = (*SimpleMaterialFactory)(nil)

// textSlot is one live 3D text entry tracked by InMemoryWorldResources.
type textSlot struct {
	text  string
	cfg   Text3DConfig
	world vmath.Mat4
}

// InMemoryWorldResources is the default WorldResources: it keeps text
// slots and a computed world-space extent per slot (roughly
// proportional to glyph count and font size), with no actual glyph
// atlas — font rasterization belongs to a font system this module
// doesn't implement.
type InMemoryWorldResources struct {
	slots    []*textSlot
	freeList []int
}

func NewInMemoryWorldResources() *InMemoryWorldResources {
	return &InMemoryWorldResources{}
}

func (w *InMemoryWorldResources) CreateText3D(text string, cfg Text3DConfig, world vmath.Mat4) (int, float32, float32, error) {
	slot := &textSlot{text: text, cfg: cfg, world: world}
	width, height := textExtents(text, cfg.FontSize)

	if n := len(w.freeList); n > 0 {
		idx := w.freeList[n-1]
		w.freeList = w.freeList[:n-1]
		w.slots[idx] = slot
		return idx, width, height, nil
	}
	w.slots = append(w.slots, slot)
	return len(w.slots) - 1, width, height, nil
}

func (w *InMemoryWorldResources) UpdateText3D(slot int, text string, cfg Text3DConfig) error {
	if slot < 0 || slot >= len(w.slots) || w.slots[slot] == nil {
		return fmt.Errorf("scene: invalid text3d slot %d", slot)
	}
	w.slots[slot].text = text
	w.slots[slot].cfg = cfg
	return nil
}

func (w *InMemoryWorldResources) SetText3DTransform(slot int, world vmath.Mat4) error {
	if slot < 0 || slot >= len(w.slots) || w.slots[slot] == nil {
		return fmt.Errorf("scene: invalid text3d slot %d", slot)
	}
	w.slots[slot].world = world
	return nil
}

func (w *InMemoryWorldResources) DestroyText3D(slot int) error {
	if slot < 0 || slot >= len(w.slots) || w.slots[slot] == nil {
		return fmt.Errorf("scene: invalid text3d slot %d", slot)
	}
	w.slots[slot] = nil
	w.freeList = append(w.freeList, slot)
	return nil
}

// textExtents approximates a monospace glyph advance of 0.6*fontSize
// per character and a line height of fontSize, with no line-wrapping.
func textExtents(text string, fontSize float32) (width, height float32) {
	if fontSize <= 0 {
		fontSize = 16
	}
	return float32(len(text)) * fontSize * 0.6, fontSize
}

var _ WorldResources = (*InMemoryWorldResources)(nil)
