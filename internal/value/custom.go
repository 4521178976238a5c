package value

import (
	"github.com/google/uuid"

	"nucore/internal/types"
)

// Custom is a plugin-defined payload. The core never looks inside Payload;
// every behaviour is delegated to the CustomOps registered for Tag.
type Custom struct {
	Tag      string
	Declared types.Type // shapes the value promises to satisfy
	Payload  any
	Source   string // identity of the plugin that produced it, if any
	id       uuid.UUID
}

// NewCustom creates a custom payload with a fresh identity.
func NewCustom(tag string, declared types.Type, payload any) *Custom {
	return &Custom{Tag: tag, Declared: declared, Payload: payload, id: uuid.New()}
}

// ID is the instance identity used for equality when no comparator exists.
func (c *Custom) ID() uuid.UUID { return c.id }

// WithSource returns a copy attributed to src. The identity is kept: it is
// still the same value, now known to come from src.
func (c *Custom) WithSource(src string) *Custom {
	out := *c
	out.Source = src
	return &out
}

// WithID returns a copy carrying id, for decoders restoring an identity
// received over the wire.
func (c *Custom) WithID(id uuid.UUID) *Custom {
	out := *c
	out.id = id
	return &out
}

// CustomOps resolves custom-value behaviour by tag. The plugin registry is
// the production implementation; tests substitute their own.
type CustomOps interface {
	// CompareCustom orders two custom values of the same tag; ok is false
	// when no comparator is registered.
	CompareCustom(a, b *Custom) (ord Ordering, ok bool)
	// DisplayCustom renders c; ok is false when no display is registered.
	DisplayCustom(c *Custom) (text string, ok bool)
	// BaseValue reduces a custom value to a plain Value.
	BaseValue(v Value) (Value, error)
}
