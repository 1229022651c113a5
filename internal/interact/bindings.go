package interact

import (
	"fmt"
	"maps"
	"slices"

	"github.com/inamate/skycanvas/internal/shape"
)

// Bindings maps the input names a host produces ("cursor-down", "key-v")
// to controller operations.
type Bindings struct {
	ops map[string]Op
}

// DefaultBindings returns the standard mouse and key bindings.
func DefaultBindings() *Bindings {
	return &Bindings{ops: map[string]Op{
		"cursor-down": OpPointerDown,
		"cursor-move": OpPointerMove,
		"cursor-up":   OpPointerUp,
		"key-v":       OpAddVertex,
		"key-z":       OpRemoveVertex,
	}}
}

// Bind maps name to op, replacing any previous binding.
func (b *Bindings) Bind(name string, op Op) error {
	if op >= numOps {
		return fmt.Errorf("%w: unknown operation %d", shape.ErrConfiguration, op)
	}
	b.ops[name] = op
	return nil
}

// Unbind removes the binding for name.
func (b *Bindings) Unbind(name string) { delete(b.ops, name) }

// Lookup returns the operation bound to name.
func (b *Bindings) Lookup(name string) (Op, bool) {
	op, ok := b.ops[name]
	return op, ok
}

// Names returns the bound input names, sorted.
func (b *Bindings) Names() []string {
	return slices.Sorted(maps.Keys(b.ops))
}
