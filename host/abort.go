package host

import "fmt"

// AbortError carries a guest panic out of the interpreter. The binding
// table raises it when the guest calls the abort primitive; the dispatch
// boundary translates it into the host trap, surfacing Message verbatim.
type AbortError struct {
	Message string
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("guest panic: %s", e.Message)
}

// BindingError reports a native binding call that failed, for example a
// guest pointer outside linear memory. It propagates like a runtime
// failure.
type BindingError struct {
	Op     string
	Detail string
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("host binding %s: %s", e.Op, e.Detail)
}
