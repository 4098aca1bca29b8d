// Package errors provides structured error types for the dispatch bridge.
//
// Errors are categorized by Phase (where in the invocation the error
// occurred) and Kind (the failure taxonomy surfaced to the host). The Error
// type carries the export symbol, the logical image name, and a cause chain.
//
// Use the convenience constructors for the taxonomy cases:
//
//	err := errors.ExportNotFound("foo_bar")
//	err := errors.ModuleLoad("betting_contract.wasm", cause)
//	err := errors.SymbolNotFound("betting_contract.wasm", "join_game")
//
// All errors implement the standard error interface and support
// errors.Is/As. Is matches on the Phase+Kind pair.
package errors
