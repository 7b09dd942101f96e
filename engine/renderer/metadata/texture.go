package metadata

/** @brief The texture system configuration */
type TextureSystemConfig struct {
	/** @brief The maximum number of textures that can be loaded at once. */
	MaxTextureCount uint32
}

// Texture is the GPU-side view a RenderTargetAttachment binds: an
// internal image handle plus the dimensions/generation the view system
// and world layer need to create render targets and transition layouts.
// This is distinct from resources.Texture, the loaded asset (pixel
// data, filtering, repeat mode) that an offscreen attachment's contents
// ultimately come from; RenderTargetAttachment in this package named a
// `*Texture` field without the type ever being defined here, so this
// fills that gap rather than reusing the asset type two layers away.
type Texture struct {
	ID           uint32
	Width        uint32
	Height       uint32
	Generation   uint32
	Sampled      bool
	InternalData interface{}
}

const (
	/** @brief The default texture name. */
	DEFAULT_TEXTURE_NAME string = "default"
	/** @brief The default diffuse texture name. */
	DEFAULT_DIFFUSE_TEXTURE_NAME string = "default_DIFF"
	/** @brief The default specular texture name. */
	DEFAULT_SPECULAR_TEXTURE_NAME string = "default_SPEC"
	/** @brief The default normal texture name. */
	DEFAULT_NORMAL_TEXTURE_NAME string = "default_NORM"
)
