package scene

import (
	"testing"

	vmath "github.com/spaghettifunk/vkrview/engine/math"
	"github.com/yohamta/donburi"
)

func TestTransformHierarchyWorldMatrices(t *testing.T) {
	sc, err := NewScene(SceneConfig{})
	if err != nil {
		t.Fatalf("NewScene: %v", err)
	}

	root := sc.Spawn("root")
	child := sc.Spawn("child")
	sc.SetParent(child, root)

	sc.SetPosition(root, vmath.NewVec3(1, 0, 0))
	sc.SetPosition(child, vmath.NewVec3(0, 2, 0))

	sc.Update(0.016)

	rootWorld, ok := sc.WorldTransform(root)
	if !ok {
		t.Fatalf("WorldTransform(root) ok=false")
	}
	if rootWorld.Data[12] != 1 || rootWorld.Data[13] != 0 || rootWorld.Data[14] != 0 {
		t.Fatalf("root.world translation = (%v, %v, %v), want (1, 0, 0)", rootWorld.Data[12], rootWorld.Data[13], rootWorld.Data[14])
	}

	childWorld, ok := sc.WorldTransform(child)
	if !ok {
		t.Fatalf("WorldTransform(child) ok=false")
	}
	if childWorld.Data[12] != 1 || childWorld.Data[13] != 2 || childWorld.Data[14] != 0 {
		t.Fatalf("child.world translation = (%v, %v, %v), want (1, 2, 0)", childWorld.Data[12], childWorld.Data[13], childWorld.Data[14])
	}

	// Deferred propagation: moving the root alone must update the
	// child's world matrix in the same Update call.
	sc.SetPosition(root, vmath.NewVec3(10, 0, 0))
	sc.Update(0.016)

	rootWorld, _ = sc.WorldTransform(root)
	if rootWorld.Data[12] != 10 {
		t.Fatalf("root.world.x = %v, want 10", rootWorld.Data[12])
	}
	childWorld, _ = sc.WorldTransform(child)
	if childWorld.Data[12] != 10 || childWorld.Data[13] != 2 || childWorld.Data[14] != 0 {
		t.Fatalf("child.world translation after root move = (%v, %v, %v), want (10, 2, 0)", childWorld.Data[12], childWorld.Data[13], childWorld.Data[14])
	}
}

func TestTransformRootWithoutParentWorldEqualsLocal(t *testing.T) {
	sc, err := NewScene(SceneConfig{})
	if err != nil {
		t.Fatalf("NewScene: %v", err)
	}

	root := sc.Spawn("lone")
	sc.SetPosition(root, vmath.NewVec3(3, 4, 5))
	sc.Update(0.016)

	world, _ := sc.WorldTransform(root)
	local := donburi.Get[TransformData](sc.world.Entry(root)).Local
	if world != local {
		t.Fatalf("root with no parent: world != local")
	}
}
