package dispatch

import (
	goerrors "errors"

	"github.com/tetratelabs/wazero/sys"

	bridge "github.com/frostvm/bridge"
	"github.com/frostvm/bridge/host"
)

// Translate converts a raised condition into the host's failure contract.
// No Go error type crosses the bridge boundary: the host sees a single
// diagnostic message per failed invocation.
//
// A guest abort wins over everything else so its message reaches the host
// verbatim, no matter how the interpreter wrapped the panic on its way
// out.
func Translate(hc *host.Context, err error) bridge.CallResult {
	if hc != nil {
		if msg, aborted := hc.Aborted(); aborted {
			return bridge.Fail(msg)
		}
	}

	var abort *host.AbortError
	if goerrors.As(err, &abort) {
		return bridge.Fail(abort.Message)
	}

	var binding *host.BindingError
	if goerrors.As(err, &binding) {
		return bridge.Fail(binding.Error())
	}

	var exit *sys.ExitError
	if goerrors.As(err, &exit) {
		return bridge.Fail(exit.Error())
	}

	return bridge.Fail(err.Error())
}
