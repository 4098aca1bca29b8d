// Package image holds frozen module images: immutable embedded program
// byte images keyed by logical file name. The registry is a pure lookup
// table populated at process start by generated registration code and is
// read-only afterwards. A lookup miss is a broken export table, not a
// recoverable runtime condition.
package image

import (
	"fmt"
	"sort"

	"github.com/frostvm/bridge/errors"
)

// Frozen is a pre-parsed, embedded program unit baked into the binary,
// addressed by a logical file name instead of loaded from a filesystem.
// The byte contents are never mutated after registration.
type Frozen struct {
	Name  string
	bytes []byte
}

// Bytes returns the image contents. Callers must treat the slice as
// read-only; it is shared across all lookups for the process lifetime.
func (f *Frozen) Bytes() []byte {
	return f.bytes
}

// Size returns the image size in bytes.
func (f *Frozen) Size() int {
	return len(f.bytes)
}

// Registry is a lookup table of frozen images. The zero Registry is not
// usable; create one with NewRegistry.
type Registry struct {
	images map[string]*Frozen
	sealed bool
}

func NewRegistry() *Registry {
	return &Registry{images: make(map[string]*Frozen)}
}

// Register adds an image under its logical name. The bytes are copied so
// later mutation of the caller's slice cannot reach the registry.
// Duplicate names and empty images are registration faults.
func (r *Registry) Register(name string, bytes []byte) error {
	if r.sealed {
		return errors.Registration("registry is sealed")
	}
	if name == "" {
		return errors.Registration("image name cannot be empty")
	}
	if len(bytes) == 0 {
		return errors.Registration(fmt.Sprintf("image %q is empty", name))
	}
	if _, exists := r.images[name]; exists {
		return errors.Registration(fmt.Sprintf("image %q already registered", name))
	}

	frozen := make([]byte, len(bytes))
	copy(frozen, bytes)
	r.images[name] = &Frozen{Name: name, bytes: frozen}
	return nil
}

// Seal marks the registry read-only. Further Register calls fail.
func (r *Registry) Seal() {
	r.sealed = true
}

// Lookup returns the image registered under name.
func (r *Registry) Lookup(name string) (*Frozen, error) {
	img, ok := r.images[name]
	if !ok {
		return nil, errors.ImageNotFound(name)
	}
	return img, nil
}

// Has reports whether an image is registered under name.
func (r *Registry) Has(name string) bool {
	_, ok := r.images[name]
	return ok
}

// Names returns the registered logical names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.images))
	for name := range r.images {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry that generated image packages
// register into at init time.
func Default() *Registry {
	return defaultRegistry
}

// Register adds an image to the default registry. Intended for generated
// registration code running at init; a failure there is a build fault, so
// it panics rather than returning an error.
func Register(name string, bytes []byte) {
	if err := defaultRegistry.Register(name, bytes); err != nil {
		panic(err)
	}
}

// Lookup returns an image from the default registry.
func Lookup(name string) (*Frozen, error) {
	return defaultRegistry.Lookup(name)
}
