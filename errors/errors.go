package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in the invocation the error occurred
type Phase string

const (
	PhaseRegistry Phase = "registry" // frozen image registration and lookup
	PhaseBoot     Phase = "boot"     // interpreter bootstrap
	PhaseResolve  Phase = "resolve"  // module top-level execution
	PhaseDispatch Phase = "dispatch" // export table lookup
	PhaseInvoke   Phase = "invoke"   // guest function invocation
	PhaseHost     Phase = "host"     // host binding table calls
)

// Kind categorizes the error. The first five kinds are the host-visible
// failure taxonomy; the rest are registration-time fault classes.
type Kind string

const (
	KindExportNotFound Kind = "export_not_found"
	KindModuleLoad     Kind = "module_load"
	KindSymbolNotFound Kind = "symbol_not_found"
	KindRuntime        Kind = "runtime"
	KindHostBinding    Kind = "host_binding"

	KindRegistration Kind = "registration"
	KindInvalidInput Kind = "invalid_input"
	KindLifecycle    Kind = "lifecycle"
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Symbol string // export symbol or guest function name, if known
	Image  string // logical frozen image name, if known
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Image != "" {
		b.WriteString(" image ")
		b.WriteString(fmt.Sprintf("%q", e.Image))
	}
	if e.Symbol != "" {
		b.WriteString(" symbol ")
		b.WriteString(fmt.Sprintf("%q", e.Symbol))
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error on Phase and Kind
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Convenience constructors for the taxonomy

// ExportNotFound reports a dispatched symbol absent from the export table.
// It occurs before any module load or host-state interaction.
func ExportNotFound(symbol string) *Error {
	return &Error{
		Phase:  PhaseDispatch,
		Kind:   KindExportNotFound,
		Symbol: symbol,
		Detail: "export not registered",
	}
}

// ImageNotFound reports a frozen image missing from the registry. This is
// a broken export table, not a recoverable runtime condition.
func ImageNotFound(name string) *Error {
	return &Error{
		Phase:  PhaseRegistry,
		Kind:   KindModuleLoad,
		Image:  name,
		Detail: "frozen image not registered",
	}
}

// ModuleLoad reports a frozen image that failed to compile or whose
// top-level code raised during execution.
func ModuleLoad(image string, cause error) *Error {
	return &Error{
		Phase: PhaseResolve,
		Kind:  KindModuleLoad,
		Image: image,
		Cause: cause,
	}
}

// SymbolNotFound reports a bound function name absent from the resolved
// module namespace: the frozen image and the export table have drifted.
func SymbolNotFound(image, function string) *Error {
	return &Error{
		Phase:  PhaseInvoke,
		Kind:   KindSymbolNotFound,
		Image:  image,
		Symbol: function,
		Detail: "function not present in module namespace",
	}
}

// Runtime reports a condition raised by guest logic during invocation.
func Runtime(symbol string, cause error) *Error {
	return &Error{
		Phase:  PhaseInvoke,
		Kind:   KindRuntime,
		Symbol: symbol,
		Cause:  cause,
	}
}

// HostBinding reports a failed native call made by the interpreter. It
// propagates like a runtime failure.
func HostBinding(op string, detail string) *Error {
	return &Error{
		Phase:  PhaseHost,
		Kind:   KindHostBinding,
		Symbol: op,
		Detail: detail,
	}
}

// Boot reports an interpreter bootstrap failure.
func Boot(cause error) *Error {
	return &Error{
		Phase:  PhaseBoot,
		Kind:   KindModuleLoad,
		Detail: "interpreter bootstrap",
		Cause:  cause,
	}
}

// Registration reports an invalid export table or registry registration.
func Registration(detail string) *Error {
	return &Error{
		Phase:  PhaseRegistry,
		Kind:   KindRegistration,
		Detail: detail,
	}
}

// InvalidInput reports malformed caller input to a bridge API.
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Lifecycle reports an interpreter host used outside its legal state.
func Lifecycle(detail string) *Error {
	return &Error{
		Phase:  PhaseBoot,
		Kind:   KindLifecycle,
		Detail: detail,
	}
}

// Wrap wraps an existing error with bridge phase and kind context.
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
