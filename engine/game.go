package engine

// Game is the composition root's callback surface: ApplicationCreate/Run
// drive it through Initialize/OnResize/Update/Render without knowing
// anything about what State actually holds (the View System, scene
// runtime, and world/editor layers in this module's case).
type Game struct {
	ApplicationConfig *ApplicationConfig
	State             interface{}
	FnInitialize      Initialize
	FnUpdate          Update
	FnRender          Render
	FnOnResize        OnResize
	FnShutdown        Shutdown
}

type Initialize func() error
type Update func(deltaTime float64) error
type Render func(deltaTime float64) error
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
