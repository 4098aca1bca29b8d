// Package dispatch resolves exported symbols to callables inside frozen
// module namespaces and invokes them under the host's zero-argument
// calling convention. Any condition raised along the way is translated
// into the host's success/abort contract at this boundary.
package dispatch

import (
	"fmt"
	"sort"

	"github.com/frostvm/bridge/errors"
	"github.com/frostvm/bridge/image"
)

// Binding maps an exported symbol to the (image logical name, in-module
// function name) pair it invokes.
type Binding struct {
	Image    string
	Function string
}

// Table is the static export table. It is built once by generated
// registration code and validated for completeness before any dispatch is
// accepted; an unregistered export is a registration fault, never a
// runtime condition.
type Table struct {
	bindings map[string]Binding
}

func NewTable() *Table {
	return &Table{bindings: make(map[string]Binding)}
}

// Bind registers one export. Duplicate symbols and empty names are
// registration faults.
func (t *Table) Bind(symbol, imageName, function string) error {
	if symbol == "" {
		return errors.Registration("export symbol cannot be empty")
	}
	if imageName == "" || function == "" {
		return errors.Registration(fmt.Sprintf("export %q has an empty binding target", symbol))
	}
	if _, exists := t.bindings[symbol]; exists {
		return errors.Registration(fmt.Sprintf("export %q already bound", symbol))
	}
	t.bindings[symbol] = Binding{Image: imageName, Function: function}
	return nil
}

// Lookup returns the binding for symbol.
func (t *Table) Lookup(symbol string) (Binding, bool) {
	b, ok := t.bindings[symbol]
	return b, ok
}

// Symbols returns all bound export symbols in sorted order.
func (t *Table) Symbols() []string {
	symbols := make([]string, 0, len(t.bindings))
	for s := range t.bindings {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}

// Validate checks every binding against the image registry. A binding
// whose image is not registered means the export table and the embedded
// images have drifted apart; that is a build fault surfaced before any
// dispatch is accepted.
func (t *Table) Validate(images *image.Registry) error {
	if len(t.bindings) == 0 {
		return errors.Registration("export table is empty")
	}
	for _, symbol := range t.Symbols() {
		b := t.bindings[symbol]
		if !images.Has(b.Image) {
			return errors.Registration(fmt.Sprintf(
				"export %q bound to unregistered image %q", symbol, b.Image))
		}
	}
	return nil
}
