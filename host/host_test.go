package host

import (
	"context"
	goerrors "errors"
	"strings"
	"testing"

	"github.com/tetratelabs/wazero"

	"github.com/frostvm/bridge/errors"
	"github.com/frostvm/bridge/internal/wasmgen"
)

func TestMemStore(t *testing.T) {
	s := NewMemStore()

	if _, ok := s.Get([]byte("k")); ok {
		t.Error("Get on empty store reported a hit")
	}

	prior, evicted := s.Set([]byte("k"), []byte("v1"))
	if evicted || prior != nil {
		t.Errorf("first Set evicted %q", prior)
	}

	prior, evicted = s.Set([]byte("k"), []byte("v2"))
	if !evicted || string(prior) != "v1" {
		t.Errorf("second Set: prior=%q evicted=%v", prior, evicted)
	}

	v, ok := s.Get([]byte("k"))
	if !ok || string(v) != "v2" {
		t.Errorf("Get = %q, %v", v, ok)
	}

	prior, evicted = s.Remove([]byte("k"))
	if !evicted || string(prior) != "v2" {
		t.Errorf("Remove: prior=%q evicted=%v", prior, evicted)
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d after Remove", s.Len())
	}
}

func TestMemStore_CopiesValue(t *testing.T) {
	s := NewMemStore()
	v := []byte("abc")
	s.Set([]byte("k"), v)
	v[0] = 'x'

	got, _ := s.Get([]byte("k"))
	if string(got) != "abc" {
		t.Error("store shares backing array with caller")
	}
}

func TestMemStore_CopiesOnReturn(t *testing.T) {
	s := NewMemStore()
	s.Set([]byte("k"), []byte("abc"))

	got, _ := s.Get([]byte("k"))
	got[0] = 'x'
	again, _ := s.Get([]byte("k"))
	if string(again) != "abc" {
		t.Error("Get hands out the backing array")
	}

	prior, _ := s.Set([]byte("k"), []byte("def"))
	prior[0] = 'x'
	if again, _ = s.Get([]byte("k")); string(again) != "def" {
		t.Errorf("stored value = %q after mutating Set prior", again)
	}
}

func TestContext_ReturnValue(t *testing.T) {
	hc := NewContext(NewMemStore())

	if _, set := hc.ReturnValue(); set {
		t.Error("fresh context reports a return value")
	}

	hc.setReturn([]byte("first"))
	hc.setReturn([]byte("second"))

	v, set := hc.ReturnValue()
	if !set || string(v) != "second" {
		t.Errorf("ReturnValue = %q, %v; want later call to win", v, set)
	}
}

func TestContext_Registers(t *testing.T) {
	hc := NewContext(NewMemStore())

	if _, ok := hc.register(0); ok {
		t.Error("unset register reported data")
	}

	src := []byte("data")
	hc.setRegister(3, src)
	src[0] = 'x'

	got, ok := hc.register(3)
	if !ok || string(got) != "data" {
		t.Errorf("register(3) = %q, %v", got, ok)
	}
}

// buildEchoImage assembles a guest that copies its call input into storage
// under the key "in" and returns "ok" through value_return.
func buildEchoImage(t *testing.T) []byte {
	t.Helper()
	m := wasmgen.NewModule()
	m.Memory(1)

	input := mustImport(t, m, FnInput, wasmgen.FuncType{Params: []wasmgen.ValType{wasmgen.I64}})
	readReg := mustImport(t, m, FnReadRegister, wasmgen.FuncType{Params: []wasmgen.ValType{wasmgen.I64, wasmgen.I64}})
	regLen := mustImport(t, m, FnRegisterLen, wasmgen.FuncType{
		Params:  []wasmgen.ValType{wasmgen.I64},
		Results: []wasmgen.ValType{wasmgen.I64},
	})
	storageWrite := mustImport(t, m, FnStorageWrite, wasmgen.FuncType{
		Params:  []wasmgen.ValType{wasmgen.I64, wasmgen.I64, wasmgen.I64, wasmgen.I64, wasmgen.I64},
		Results: []wasmgen.ValType{wasmgen.I64},
	})
	valueReturn := mustImport(t, m, FnValueReturn, wasmgen.FuncType{Params: []wasmgen.ValType{wasmgen.I64, wasmgen.I64}})
	panicUTF8 := mustImport(t, m, FnPanicUTF8, wasmgen.FuncType{Params: []wasmgen.ValType{wasmgen.I64, wasmgen.I64}})

	m.Data(0, []byte("in"))
	m.Data(4, []byte("ok"))
	m.Data(8, []byte("boom"))

	const scratch = 256

	m.AddFunc(wasmgen.FuncType{}, wasmgen.Body(
		wasmgen.I64Const(0), wasmgen.Call(input),
		wasmgen.I64Const(0), wasmgen.I64Const(scratch), wasmgen.Call(readReg),
		wasmgen.I64Const(2), wasmgen.I64Const(0), // key "in"
		wasmgen.I64Const(0), wasmgen.Call(regLen), // value length
		wasmgen.I64Const(scratch), // value pointer
		wasmgen.I64Const(1),       // eviction register
		wasmgen.Call(storageWrite), wasmgen.Drop(),
		wasmgen.I64Const(2), wasmgen.I64Const(4), wasmgen.Call(valueReturn),
	), "echo_input")

	m.AddFunc(wasmgen.FuncType{}, wasmgen.Body(
		wasmgen.I64Const(4), wasmgen.I64Const(8), wasmgen.Call(panicUTF8),
	), "die")

	m.AddFunc(wasmgen.FuncType{}, wasmgen.Body(
		// 10 bytes starting past the single 64KiB page
		wasmgen.I64Const(10), wasmgen.I64Const(70000), wasmgen.Call(valueReturn),
	), "oob")

	m.AddFunc(wasmgen.FuncType{}, wasmgen.Body(
		// pointer past the 32-bit address space; would alias offset 4
		// if truncated
		wasmgen.I64Const(2), wasmgen.I64Const(1<<32+4), wasmgen.Call(valueReturn),
	), "far")

	bin, err := m.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return bin
}

func mustImport(t *testing.T, m *wasmgen.Module, name string, ft wasmgen.FuncType) uint32 {
	t.Helper()
	idx, err := m.ImportFunc(EnvModule, name, ft)
	if err != nil {
		t.Fatalf("ImportFunc(%s): %v", name, err)
	}
	return idx
}

func TestInstall_EndToEnd(t *testing.T) {
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	store := NewMemStore()
	hc := NewContext(store)
	hc.Input = []byte(`{"admin_id":"alice.test"}`)

	if _, err := Install(ctx, r, hc); err != nil {
		t.Fatalf("Install: %v", err)
	}

	mod, err := r.Instantiate(ctx, buildEchoImage(t))
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}

	if _, err := mod.ExportedFunction("echo_input").Call(ctx); err != nil {
		t.Fatalf("echo_input: %v", err)
	}

	stored, ok := store.Get([]byte("in"))
	if !ok || string(stored) != string(hc.Input) {
		t.Errorf("storage[in] = %q, want input %q", stored, hc.Input)
	}

	ret, set := hc.ReturnValue()
	if !set || string(ret) != "ok" {
		t.Errorf("ReturnValue = %q, %v", ret, set)
	}
}

func TestInstall_GuestPanicRecordsAbort(t *testing.T) {
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	hc := NewContext(NewMemStore())
	if _, err := Install(ctx, r, hc); err != nil {
		t.Fatalf("Install: %v", err)
	}

	mod, err := r.Instantiate(ctx, buildEchoImage(t))
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}

	_, err = mod.ExportedFunction("die").Call(ctx)
	if err == nil {
		t.Fatal("die returned without error")
	}

	msg, aborted := hc.Aborted()
	if !aborted || msg != "boom" {
		t.Errorf("Aborted = %q, %v; want %q", msg, aborted, "boom")
	}
}

func TestInstall_OutOfBoundsBindingCall(t *testing.T) {
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	hc := NewContext(NewMemStore())
	if _, err := Install(ctx, r, hc); err != nil {
		t.Fatalf("Install: %v", err)
	}

	mod, err := r.Instantiate(ctx, buildEchoImage(t))
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}

	_, err = mod.ExportedFunction("oob").Call(ctx)
	if err == nil {
		t.Fatal("oob returned without error")
	}
	if !strings.Contains(err.Error(), "out of bounds") {
		t.Errorf("error %q does not mention the bounds violation", err)
	}

	if _, aborted := hc.Aborted(); aborted {
		t.Error("binding failure must not look like a guest abort")
	}
}

// TestInstall_PointerPastAddressSpace: a 64-bit pointer beyond 2^32 must
// fail the binding call, not wrap around and read low memory. The "far"
// pointer sits 4 bytes past 2^32, over the data segment holding "ok".
func TestInstall_PointerPastAddressSpace(t *testing.T) {
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	hc := NewContext(NewMemStore())
	if _, err := Install(ctx, r, hc); err != nil {
		t.Fatalf("Install: %v", err)
	}

	mod, err := r.Instantiate(ctx, buildEchoImage(t))
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}

	_, err = mod.ExportedFunction("far").Call(ctx)
	if err == nil {
		t.Fatal("far returned without error")
	}
	if !strings.Contains(err.Error(), "out of bounds") {
		t.Errorf("error %q does not mention the bounds violation", err)
	}

	if v, set := hc.ReturnValue(); set {
		t.Errorf("truncated pointer produced a return value %q", v)
	}
	if _, aborted := hc.Aborted(); aborted {
		t.Error("binding failure must not look like a guest abort")
	}
}

func TestInstall_RequiresStore(t *testing.T) {
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	want := errors.InvalidInput(errors.PhaseHost, "")

	_, err := Install(ctx, r, &Context{})
	if err == nil {
		t.Error("Install accepted a context without store")
	} else if !goerrors.Is(err, want) {
		t.Errorf("missing-store error = %v, want phase %s kind %s", err, want.Phase, want.Kind)
	}

	_, err = Install(ctx, r, nil)
	if err == nil {
		t.Error("Install accepted a nil context")
	} else if !goerrors.Is(err, want) {
		t.Errorf("nil-context error = %v, want phase %s kind %s", err, want.Phase, want.Kind)
	}
}
