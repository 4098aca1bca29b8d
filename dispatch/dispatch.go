package dispatch

import (
	"context"

	"go.uber.org/zap"

	bridge "github.com/frostvm/bridge"
	"github.com/frostvm/bridge/errors"
	"github.com/frostvm/bridge/host"
	"github.com/frostvm/bridge/image"
	"github.com/frostvm/bridge/interp"
)

// Dispatcher resolves export symbols through the static table and invokes
// the bound guest function. Each dispatch is one invocation: it boots its
// own interpreter, runs exactly one attempt, and tears everything down
// before returning. Nothing is cached across dispatches.
type Dispatcher struct {
	table  *Table
	images *image.Registry
}

// New validates the export table against the registry and returns a
// dispatcher. Validation failure here is the build-fault path: it happens
// before any dispatch is accepted.
func New(table *Table, images *image.Registry) (*Dispatcher, error) {
	if table == nil {
		return nil, errors.InvalidInput(errors.PhaseDispatch, "nil export table")
	}
	if images == nil {
		return nil, errors.InvalidInput(errors.PhaseDispatch, "nil image registry")
	}
	if err := table.Validate(images); err != nil {
		return nil, err
	}
	return &Dispatcher{table: table, images: images}, nil
}

// Symbols returns the dispatchable export symbols.
func (d *Dispatcher) Symbols() []string {
	return d.table.Symbols()
}

// Dispatch invokes the export bound to symbol against the given call
// context and returns the host-facing outcome. The guest's return value,
// if any, arrives through the context's value-return binding; every
// raised condition is translated into a Failure result. Side effects the
// guest committed through the binding table before a failure are the
// host's responsibility to discard.
func (d *Dispatcher) Dispatch(ctx context.Context, symbol string, hc *host.Context) bridge.CallResult {
	log := bridge.Logger().With(zap.String("symbol", symbol))

	// Export lookup happens before any module load or binding-table
	// interaction.
	binding, ok := d.table.Lookup(symbol)
	if !ok {
		log.Warn("export not found")
		return Translate(hc, errors.ExportNotFound(symbol))
	}

	ih, err := interp.New(ctx, d.images, hc)
	if err != nil {
		log.Error("interpreter bootstrap failed", zap.Error(err))
		return Translate(hc, err)
	}
	defer ih.Close(ctx)

	mod, err := ih.Resolve(ctx, binding.Image)
	if err != nil {
		log.Error("module load failed", zap.String("image", binding.Image), zap.Error(err))
		return Translate(hc, err)
	}

	fn := mod.ExportedFunction(binding.Function)
	if fn == nil {
		log.Error("symbol missing from module namespace",
			zap.String("image", binding.Image),
			zap.String("function", binding.Function))
		return Translate(hc, errors.SymbolNotFound(binding.Image, binding.Function))
	}

	// Exactly one attempt, zero arguments, no native return channel.
	if _, err := fn.Call(ctx); err != nil {
		log.Warn("invocation failed", zap.Error(err))
		return Translate(hc, errors.Runtime(symbol, err))
	}

	value, _ := hc.ReturnValue()
	log.Debug("invocation succeeded", zap.Int("return_bytes", len(value)))
	return bridge.Succeed(value)
}
