package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name:     "export not found",
			err:      ExportNotFound("foo_bar"),
			contains: []string{"[dispatch]", "export_not_found", `"foo_bar"`},
		},
		{
			name:     "symbol not found carries image and function",
			err:      SymbolNotFound("betting_contract.wasm", "join_game"),
			contains: []string{"[invoke]", "symbol_not_found", `"betting_contract.wasm"`, `"join_game"`},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseResolve,
				Kind:  KindModuleLoad,
			},
			contains: []string{"[resolve]", "module_load"},
		},
		{
			name:     "error with cause",
			err:      ModuleLoad("game.wasm", errors.New("bad magic")),
			contains: []string{"[resolve]", "module_load", `"game.wasm"`, "caused by", "bad magic"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Runtime("resolve_game", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is did not find the cause")
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap did not return the cause")
	}
}

func TestError_Is(t *testing.T) {
	a := ExportNotFound("init")
	b := ExportNotFound("join_game")
	c := SymbolNotFound("game.wasm", "init")

	if !errors.Is(a, b) {
		t.Error("errors with same phase+kind should match")
	}
	if errors.Is(a, c) {
		t.Error("errors with different kind should not match")
	}
}

func TestError_As(t *testing.T) {
	wrapped := Wrap(PhaseInvoke, KindRuntime, ExportNotFound("x"), "outer")

	var inner *Error
	if !errors.As(wrapped, &inner) {
		t.Fatal("errors.As failed")
	}
	if inner.Kind != KindRuntime {
		t.Errorf("As returned inner error, want outermost: got kind %s", inner.Kind)
	}
}
