// Package interp owns the embedded interpreter for the span of one
// invocation. It boots a wazero runtime, installs the host binding table
// before any guest code can run, executes frozen image top-level code to
// produce loaded modules, and guarantees teardown on every exit path.
package interp

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	bridge "github.com/frostvm/bridge"
	"github.com/frostvm/bridge/errors"
	"github.com/frostvm/bridge/host"
	"github.com/frostvm/bridge/image"
)

// State tracks the interpreter host lifecycle.
type State int

const (
	Uninitialized State = iota
	Bootstrapped
	ModuleExecuting
	ModuleReady
	TornDown
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Bootstrapped:
		return "bootstrapped"
	case ModuleExecuting:
		return "module-executing"
	case ModuleReady:
		return "module-ready"
	case TornDown:
		return "torn-down"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Host is the interpreter host for a single invocation. It is not safe
// for concurrent use and must be closed on every exit path; the module
// namespace cache it owns never outlives it.
type Host struct {
	runtime wazero.Runtime
	images  *image.Registry
	hc      *host.Context
	modules map[string]api.Module
	state   State
}

// New boots an interpreter over the given image registry and call
// context. The binding table is installed before New returns, so by the
// time any module code runs every side-effecting call already routes
// through it. A bootstrap failure leaves no interpreter state behind.
func New(ctx context.Context, images *image.Registry, hc *host.Context) (*Host, error) {
	if images == nil {
		return nil, errors.InvalidInput(errors.PhaseBoot, "nil image registry")
	}

	r := wazero.NewRuntime(ctx)
	if _, err := host.Install(ctx, r, hc); err != nil {
		_ = r.Close(ctx)
		return nil, errors.Boot(err)
	}

	bridge.Logger().Debug("interpreter bootstrapped")

	return &Host{
		runtime: r,
		images:  images,
		hc:      hc,
		modules: make(map[string]api.Module),
		state:   Bootstrapped,
	}, nil
}

// State returns the current lifecycle state.
func (h *Host) State() State {
	return h.state
}

// Resolve produces the loaded module for a logical image name, executing
// the image's top-level code exactly once per invocation. A second
// resolve of the same name returns the cached namespace without
// re-executing anything.
func (h *Host) Resolve(ctx context.Context, name string) (api.Module, error) {
	switch h.state {
	case Bootstrapped, ModuleReady:
	case TornDown:
		return nil, errors.Lifecycle("resolve after teardown")
	default:
		return nil, errors.Lifecycle(fmt.Sprintf("resolve in state %s", h.state))
	}

	if mod, ok := h.modules[name]; ok {
		return mod, nil
	}

	img, err := h.images.Lookup(name)
	if err != nil {
		return nil, err
	}

	// Compilation validates the image before any guest code runs; a
	// corrupt image fails here, before the binding table sees a call.
	compiled, err := h.runtime.CompileModule(ctx, img.Bytes())
	if err != nil {
		return nil, errors.ModuleLoad(name, err)
	}

	h.state = ModuleExecuting
	mod, err := h.runtime.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(name))
	if err != nil {
		h.state = Bootstrapped
		return nil, errors.ModuleLoad(name, err)
	}
	h.state = ModuleReady
	h.modules[name] = mod

	bridge.Logger().Debug("module ready", zap.String("image", name))
	return mod, nil
}

// Close tears the interpreter down, releasing every loaded module. It is
// idempotent.
func (h *Host) Close(ctx context.Context) error {
	if h.state == TornDown {
		return nil
	}
	h.state = TornDown
	h.modules = nil
	return h.runtime.Close(ctx)
}
