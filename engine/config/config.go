// Package config loads the tuning constants for the view system, scene,
// and world view layer from a TOML document, falling back to the
// defaults baked into the core when a field or the file is absent.
package config

import (
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/vkrview/engine/core"
)

// Config holds the capacity and sizing constants referenced throughout
// the view system, scene, and world view layer.
type Config struct {
	MaxLayers      int `toml:"max_layers"`
	MaxLayerPasses int `toml:"max_layer_passes"`
	MaxPointLights int `toml:"max_point_lights"`
	MaxTexts       int `toml:"max_texts"`

	// SceneArenaBytes is the typical per-scene arena size backing a
	// SceneRuntime; 2 MiB is a reasonable default for a single scene.
	SceneArenaBytes int `toml:"scene_arena_bytes"`

	InstanceRingCapacity int `toml:"instance_ring_capacity"`
	IndirectRingCapacity int `toml:"indirect_ring_capacity"`

	LogLevel string `toml:"log_level"`
}

// Default returns the baseline configuration used when no file is found.
func Default() *Config {
	return &Config{
		MaxLayers:            16,
		MaxLayerPasses:       4,
		MaxPointLights:       32,
		MaxTexts:             16,
		SceneArenaBytes:      2 << 20, // 2 MiB
		InstanceRingCapacity: 4096,
		IndirectRingCapacity: 1024,
		LogLevel:             "info",
	}
}

// Load reads path and overlays any fields present onto Default(). A
// missing file is not an error: callers get the defaults back.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			core.LogWarn("config file %s not found, using defaults", path)
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
