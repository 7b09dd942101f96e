package scene

import (
	vmath "github.com/spaghettifunk/vkrview/engine/math"
	"github.com/spaghettifunk/vkrview/engine/renderer/metadata"
	"github.com/spaghettifunk/vkrview/engine/resources"
)

// GeometryFactory is the narrow seam onto the geometry system consumed
// by SetShape: only cube shapes are specified.
type GeometryFactory interface {
	CreateCube(dimensions vmath.Vec3) (*metadata.Geometry, error)
}

// MaterialFactory is the narrow seam onto the material system consumed
// by set_shape: resolve or create a material by name, or a flat-colored
// default when none is named.
type MaterialFactory interface {
	GetOrCreate(name, path string) (*resources.Material, error)
	CreateColored(color vmath.Vec4) (*resources.Material, error)
	Default() *resources.Material
}

// Text3DConfig is the create/update payload for 3D text, forwarded to
// WorldResources rather than stored in the ECS.
type Text3DConfig struct {
	FontName string
	FontSize float32
	Color    vmath.Vec4
}

// WorldResources is the external service that owns glyph-atlas storage
// for 3D text; the scene stores only the returned slot id and computed
// world extents.
type WorldResources interface {
	CreateText3D(text string, cfg Text3DConfig, world vmath.Mat4) (slot int, worldWidth, worldHeight float32, err error)
	UpdateText3D(slot int, text string, cfg Text3DConfig) error
	SetText3DTransform(slot int, world vmath.Mat4) error
	DestroyText3D(slot int) error
}
