// Package scene implements the Scene/Render Bridge: an ECS-backed
// transform hierarchy, a dirty-driven synchronization step that pushes
// world matrices, visibility, and picking IDs into the renderer's mesh
// manager, and the render-id-to-entity bridge consumed by GPU picking.
package scene

import (
	"github.com/spaghettifunk/vkrview/engine/core"
	vmath "github.com/spaghettifunk/vkrview/engine/math"
	"github.com/yohamta/donburi"
)

// TransformFlag is the dirty/update bitset carried on SceneTransform.
type TransformFlag uint8

const (
	DirtyLocal TransformFlag = 1 << iota
	DirtyWorld
	DirtyHierarchy
	WorldUpdated
)

func (f TransformFlag) Has(bit TransformFlag) bool { return f&bit != 0 }

// NameData backs the SceneName component: identification/lookup only.
type NameData struct {
	Name string
}

// TransformData backs the SceneTransform component: a hierarchy node.
// Parent is the owning entity; HasParent distinguishes "no parent" from
// entity id zero, since donburi.Entity zero is itself meaningful.
type TransformData struct {
	Position vmath.Vec3
	Rotation vmath.Quaternion
	Scale    vmath.Vec3

	Parent    donburi.Entity
	HasParent bool

	Local vmath.Mat4
	World vmath.Mat4

	Flags TransformFlag
}

// MeshRendererData backs SceneMeshRenderer: renderable via the instance path.
type MeshRendererData struct {
	Instance core.Handle
}

type ShapeKind int

const (
	ShapeCube ShapeKind = iota
)

// ShapeData backs SceneShape: renderable via the mesh-slot path.
type ShapeData struct {
	Kind       ShapeKind
	Dimensions vmath.Vec3
	Color      vmath.Vec4
	MeshIndex  int
}

// VisibilityData backs SceneVisibility: per-entity visibility.
type VisibilityData struct {
	Visible       bool
	InheritParent bool
}

// RenderIDData backs SceneRenderId: the picking/bridge key. Never zero
// once assigned; unique within a scene.
type RenderIDData struct {
	ID uint32
}

// Text3DData backs SceneText3D: delegated to an external WorldResources
// service, the ECS only stores the slot id and computed world extents.
type Text3DData struct {
	TextIndex   int
	Dirty       bool
	WorldWidth  float32
	WorldHeight float32
}

// PointLightData backs ScenePointLight.
type PointLightData struct {
	Color     vmath.Vec4
	Intensity float32
	Range     float32
	Enabled   bool
}

// DirectionalLightData backs SceneDirectionalLight.
type DirectionalLightData struct {
	Direction vmath.Vec3
	Color     vmath.Vec4
	Intensity float32
}

var (
	Name             = donburi.NewComponentType[NameData]()
	Transform        = donburi.NewComponentType[TransformData]()
	MeshRenderer     = donburi.NewComponentType[MeshRendererData]()
	Shape            = donburi.NewComponentType[ShapeData]()
	Visibility       = donburi.NewComponentType[VisibilityData]()
	RenderID         = donburi.NewComponentType[RenderIDData]()
	Text3D           = donburi.NewComponentType[Text3DData]()
	PointLight       = donburi.NewComponentType[PointLightData]()
	DirectionalLight = donburi.NewComponentType[DirectionalLightData]()
)
