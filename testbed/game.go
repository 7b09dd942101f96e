package testbed

import (
	"fmt"

	"github.com/spaghettifunk/vkrview/engine"
	"github.com/spaghettifunk/vkrview/engine/core"
	vmath "github.com/spaghettifunk/vkrview/engine/math"
	"github.com/spaghettifunk/vkrview/engine/renderer"
	"github.com/spaghettifunk/vkrview/engine/renderer/components"
	"github.com/spaghettifunk/vkrview/engine/scene"
	"github.com/spaghettifunk/vkrview/engine/views"
	"github.com/spaghettifunk/vkrview/engine/views/editor"
	"github.com/spaghettifunk/vkrview/engine/views/world"
)

const (
	maxViewLayers     = 8
	maxPassesPerLayer = 2
	meshPoolCapacity  = 256
	instanceRingSize  = 4096
	indirectRingSize  = 1024
	sceneArenaBytes   = 16 << 20
)

// TestGame is the example application driving the View System, the
// scene/render bridge, and the world/editor view layers end to end.
type TestGame struct {
	*engine.Game
}

// gameState is the testbed's private State payload, reached through
// engine.Game.State by every callback.
type gameState struct {
	width, height uint32

	frontend  *renderer.DesktopFrontend
	meshes    *renderer.MeshPool
	instances *renderer.InstanceRingPool
	indirect  *renderer.IndirectRingPool

	runtime *scene.SceneRuntime
	views   *views.System

	worldLayer  core.Handle
	editorLayer core.Handle

	camera *components.Camera
}

// NewTestGame wires the callback surface; every subsystem is built
// lazily in Initialize once ApplicationCreate has a live platform
// window to hand the frontend.
func NewTestGame() (*TestGame, error) {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: &engine.ApplicationConfig{
				StartPosX:   100,
				StartPosY:   100,
				StartWidth:  1280,
				StartHeight: 720,
				Name:        "vkrview testbed",
			},
			State: &gameState{
				camera: components.NewCamera(),
			},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg, nil
}

// Initialize constructs the renderer frontend, the scene runtime, the
// view system, and registers the world and editor layers. It runs
// after the platform window exists (ApplicationCreate calls it right
// after platform.Startup), so the frontend can bind to a real surface.
func (g *TestGame) Initialize() error {
	state := g.State.(*gameState)
	cfg := g.ApplicationConfig

	state.width, state.height = cfg.StartWidth, cfg.StartHeight
	state.camera.SetPosition(vmath.NewVec3(10.5, 5.0, 9.5))

	state.frontend = renderer.NewDesktopFrontend(engine.ApplicationPlatform())
	if err := state.frontend.Initialize(cfg.Name, cfg.StartWidth, cfg.StartHeight); err != nil {
		core.LogError("failed to initialize renderer frontend: %s", err)
		return err
	}

	state.meshes = renderer.NewMeshPool(meshPoolCapacity)
	state.instances = renderer.NewInstanceRingPool(instanceRingSize)
	state.indirect = renderer.NewIndirectRingPool(indirectRingSize)

	runtime, err := scene.NewSceneRuntime(scene.SceneRuntimeConfig{
		Frontend: state.frontend,
		Scene: scene.SceneConfig{
			MeshManager:    state.meshes,
			Geometries:     scene.NewCubeGeometryFactory(),
			Materials:      scene.NewSimpleMaterialFactory(),
			WorldResources: scene.NewInMemoryWorldResources(),
			ArenaBytes:     sceneArenaBytes,
		},
	})
	if err != nil {
		core.LogError("failed to create scene runtime: %s", err)
		return err
	}
	state.runtime = runtime

	vs, err := views.NewSystem(state.frontend, state.width, state.height, maxViewLayers, maxPassesPerLayer)
	if err != nil {
		core.LogError("failed to create view system: %s", err)
		return err
	}
	state.views = vs

	worldLayer := world.NewLayer(world.Config{
		MeshManager: state.meshes,
		Instances:   state.instances,
		Indirect:    state.indirect,
		Frontend:    state.frontend,
		CameraPosition: func() vmath.Vec3 { return state.camera.GetPosition() },
		CameraViewProj: func() (vmath.Mat4, vmath.Mat4) {
			aspect := float32(state.width) / float32(state.height)
			proj := vmath.NewMat4Perspective(0.78, aspect, 0.1, 1000.0)
			return state.camera.GetView(), proj
		},
		AmbientColor: vmath.NewVec4Create(0.25, 0.25, 0.25, 1.0),
	})

	worldHandle, err := vs.RegisterLayer(views.LayerConfig{
		Name:   "world",
		Order:  100,
		Width:  state.width,
		Height: state.height,
		Passes: []views.LayerPassConfig{{
			RenderpassName:    "Renderpass.Builtin.World",
			UseSwapchainColor: true,
			UseDepth:          true,
		}},
		Callbacks:    worldLayer,
		Enabled:      true,
		SyncToWindow: true,
	})
	if err != nil {
		core.LogError("failed to register world layer: %s", err)
		return err
	}
	state.worldLayer = worldHandle

	editorLayer := editor.NewLayer(editor.Config{
		ViewSystem: vs,
		WorldLayer: worldHandle,
		FitMode:    editor.FitContain,
	})

	editorHandle, err := vs.RegisterLayer(views.LayerConfig{
		Name:   "editor",
		Order:  200,
		Width:  state.width,
		Height: state.height,
		Passes: []views.LayerPassConfig{{
			RenderpassName:    "Renderpass.Builtin.UI",
			UseSwapchainColor: true,
		}},
		Callbacks:    editorLayer,
		Enabled:      true,
		SyncToWindow: true,
	})
	if err != nil {
		core.LogError("failed to register editor layer: %s", err)
		return err
	}
	state.editorLayer = editorHandle

	if err := vs.RebuildTargets(); err != nil {
		core.LogError("failed to build view system render targets: %s", err)
		return err
	}

	g.spawnTestEntities(state)

	core.EventRegister(core.EVENT_CODE_KEY_PRESSED, 0, g.gameOnKey)
	core.EventRegister(core.EVENT_CODE_KEY_RELEASED, 0, g.gameOnKey)

	return nil
}

// spawnTestEntities mirrors the teacher's original three-cube parent
// chain, now expressed as scene entities with shape components instead
// of hand-rolled metadata.Mesh instances.
func (g *TestGame) spawnTestEntities(state *gameState) {
	sc := state.runtime.Scene()

	cube1 := sc.Spawn("test_cube")
	_ = sc.SetShape(cube1, scene.ShapeCube, vmath.NewVec3(10, 10, 10), vmath.NewVec4Create(1, 1, 1, 1), "test_material", "")

	cube2 := sc.Spawn("test_cube_2")
	sc.SetPosition(cube2, vmath.NewVec3(10.0, 0.0, 1.0))
	_ = sc.SetShape(cube2, scene.ShapeCube, vmath.NewVec3(5, 5, 5), vmath.NewVec4Create(1, 1, 1, 1), "test_material", "")
	sc.SetParent(cube2, cube1)

	cube3 := sc.Spawn("test_cube_3")
	sc.SetPosition(cube3, vmath.NewVec3(5.0, 0.0, 1.0))
	_ = sc.SetShape(cube3, scene.ShapeCube, vmath.NewVec3(2, 2, 2), vmath.NewVec4Create(1, 1, 1, 1), "test_material", "")
	sc.SetParent(cube3, cube2)

	sc.FullSync()
}

var tempMoveSpeed float32 = 50.0

func (g *TestGame) Update(deltaTime float64) error {
	state := g.State.(*gameState)

	if core.InputIsKeyDown(core.KEY_A) || core.InputIsKeyDown(core.KEY_LEFT) {
		state.camera.Yaw(float32(1.0 * deltaTime))
	}
	if core.InputIsKeyDown(core.KEY_D) || core.InputIsKeyDown(core.KEY_RIGHT) {
		state.camera.Yaw(float32(-1.0 * deltaTime))
	}
	if core.InputIsKeyDown(core.KEY_W) {
		state.camera.MoveForward(tempMoveSpeed * float32(deltaTime))
	}
	if core.InputIsKeyDown(core.KEY_S) {
		state.camera.MoveBackward(tempMoveSpeed * float32(deltaTime))
	}
	if core.InputIsKeyDown(core.KEY_Q) {
		state.camera.MoveLeft(tempMoveSpeed * float32(deltaTime))
	}
	if core.InputIsKeyDown(core.KEY_E) {
		state.camera.MoveRight(tempMoveSpeed * float32(deltaTime))
	}
	if core.InputIsKeyDown(core.KEY_SPACE) {
		state.camera.MoveUp(tempMoveSpeed * float32(deltaTime))
	}
	if core.InputIsKeyDown(core.KEY_X) {
		state.camera.MoveDown(tempMoveSpeed * float32(deltaTime))
	}

	state.runtime.UpdateAndSync(deltaTime)

	input := &views.InputState{}
	input.MouseX, input.MouseY = core.InputGetMousePosition()
	state.views.UpdateAll(deltaTime, input)

	fps, frameTime := core.MetricsFrame()
	core.LogDebug("FPS: %5.1f(%4.1fms) Pos=[%7.3f %7.3f %7.3f]", fps, frameTime,
		state.camera.Position.X, state.camera.Position.Y, state.camera.Position.Z)

	return nil
}

func (g *TestGame) Render(deltaTime float64) error {
	state := g.State.(*gameState)
	state.views.DrawAll(deltaTime, 0)
	return nil
}

func (g *TestGame) OnResize(width, height uint32) error {
	state := g.State.(*gameState)
	state.width, state.height = width, height
	state.views.OnResize(width, height)
	if err := state.views.RebuildTargets(); err != nil {
		return fmt.Errorf("testbed: failed to rebuild render targets after resize: %w", err)
	}
	return nil
}

func (g *TestGame) Shutdown() error {
	state := g.State.(*gameState)
	if state.runtime != nil {
		state.runtime.Destroy()
	}
	if state.frontend != nil {
		return state.frontend.Shutdown()
	}
	return nil
}

func (g *TestGame) gameOnKey(code core.SystemEventCode, sender interface{}, listenerInst interface{}, context core.EventContext) bool {
	if code == core.EVENT_CODE_KEY_PRESSED {
		keyCode := context.Data.U16[0]
		if keyCode == uint16(core.KEY_ESCAPE) {
			core.EventFire(core.EVENT_CODE_APPLICATION_QUIT, 0, core.EventContext{})
			return true
		}
	}
	return false
}
