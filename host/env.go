package host

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	bridge "github.com/frostvm/bridge"
	"github.com/frostvm/bridge/errors"
)

// EnvModule is the wasm module name guest images import bindings from.
const EnvModule = "env"

// Binding names installed on the env module.
const (
	FnReadRegister   = "read_register"
	FnRegisterLen    = "register_len"
	FnInput          = "input"
	FnStorageWrite   = "storage_write"
	FnStorageRead    = "storage_read"
	FnStorageRemove  = "storage_remove"
	FnPredecessor    = "predecessor_account_id"
	FnCurrentAccount = "current_account_id"
	FnAttachedDepos  = "attached_deposit"
	FnBlockTimestamp = "block_timestamp"
	FnValueReturn    = "value_return"
	FnPanicUTF8      = "panic_utf8"
	FnLogUTF8        = "log_utf8"
)

// noRegister is returned by register_len when the register is unset.
const noRegister = math.MaxUint64

// Install instantiates the binding table as the "env" host module on r,
// closed over the given call context. It must run before any guest module
// is instantiated so that no module code can execute without the table.
func Install(ctx context.Context, r wazero.Runtime, hc *Context) (api.Closer, error) {
	if hc == nil {
		return nil, errors.InvalidInput(errors.PhaseHost, "nil host context")
	}
	if hc.Store == nil {
		return nil, errors.InvalidInput(errors.PhaseHost, "host context has no store")
	}

	var (
		i64  = api.ValueTypeI64
		none []api.ValueType
	)

	b := r.NewHostModuleBuilder(EnvModule)
	export := func(name string, params, results []api.ValueType, impl api.GoModuleFunc) {
		b = b.NewFunctionBuilder().
			WithGoModuleFunction(impl, params, results).
			Export(name)
	}

	export(FnReadRegister, []api.ValueType{i64, i64}, none,
		func(_ context.Context, m api.Module, stack []uint64) {
			id, ptr := stack[0], stack[1]
			data, ok := hc.register(id)
			if !ok {
				panic(&BindingError{Op: FnReadRegister, Detail: fmt.Sprintf("register %d is unset", id)})
			}
			writeGuest(FnReadRegister, m, ptr, data)
		})

	export(FnRegisterLen, []api.ValueType{i64}, []api.ValueType{i64},
		func(_ context.Context, _ api.Module, stack []uint64) {
			data, ok := hc.register(stack[0])
			if !ok {
				stack[0] = noRegister
				return
			}
			stack[0] = uint64(len(data))
		})

	export(FnInput, []api.ValueType{i64}, none,
		func(_ context.Context, _ api.Module, stack []uint64) {
			hc.setRegister(stack[0], hc.Input)
		})

	export(FnStorageWrite, []api.ValueType{i64, i64, i64, i64, i64}, []api.ValueType{i64},
		func(_ context.Context, m api.Module, stack []uint64) {
			key := readGuest(FnStorageWrite, m, stack[1], stack[0])
			value := readGuest(FnStorageWrite, m, stack[3], stack[2])
			prior, evicted := hc.Store.Set(key, value)
			if evicted {
				hc.setRegister(stack[4], prior)
				stack[0] = 1
				return
			}
			stack[0] = 0
		})

	export(FnStorageRead, []api.ValueType{i64, i64, i64}, []api.ValueType{i64},
		func(_ context.Context, m api.Module, stack []uint64) {
			key := readGuest(FnStorageRead, m, stack[1], stack[0])
			value, ok := hc.Store.Get(key)
			if !ok {
				stack[0] = 0
				return
			}
			hc.setRegister(stack[2], value)
			stack[0] = 1
		})

	export(FnStorageRemove, []api.ValueType{i64, i64, i64}, []api.ValueType{i64},
		func(_ context.Context, m api.Module, stack []uint64) {
			key := readGuest(FnStorageRemove, m, stack[1], stack[0])
			prior, evicted := hc.Store.Remove(key)
			if !evicted {
				stack[0] = 0
				return
			}
			hc.setRegister(stack[2], prior)
			stack[0] = 1
		})

	export(FnPredecessor, []api.ValueType{i64}, none,
		func(_ context.Context, _ api.Module, stack []uint64) {
			hc.setRegister(stack[0], []byte(hc.Predecessor))
		})

	export(FnCurrentAccount, []api.ValueType{i64}, none,
		func(_ context.Context, _ api.Module, stack []uint64) {
			hc.setRegister(stack[0], []byte(hc.CurrentAccount))
		})

	export(FnAttachedDepos, []api.ValueType{i64}, none,
		func(_ context.Context, m api.Module, stack []uint64) {
			// 16-byte little-endian u128; the high half is always zero here.
			var buf [16]byte
			binary.LittleEndian.PutUint64(buf[:8], hc.Deposit)
			writeGuest(FnAttachedDepos, m, stack[0], buf[:])
		})

	export(FnBlockTimestamp, nil, []api.ValueType{i64},
		func(_ context.Context, _ api.Module, stack []uint64) {
			stack[0] = hc.BlockTimestamp
		})

	export(FnValueReturn, []api.ValueType{i64, i64}, none,
		func(_ context.Context, m api.Module, stack []uint64) {
			hc.setReturn(readGuest(FnValueReturn, m, stack[1], stack[0]))
		})

	export(FnPanicUTF8, []api.ValueType{i64, i64}, none,
		func(_ context.Context, m api.Module, stack []uint64) {
			msg := string(readGuest(FnPanicUTF8, m, stack[1], stack[0]))
			hc.abort(msg)
			panic(&AbortError{Message: msg})
		})

	export(FnLogUTF8, []api.ValueType{i64, i64}, none,
		func(_ context.Context, m api.Module, stack []uint64) {
			line := string(readGuest(FnLogUTF8, m, stack[1], stack[0]))
			hc.appendLog(line)
			bridge.Logger().Debug("guest log", zap.String("line", line))
		})

	return b.Instantiate(ctx)
}

// checkRange rejects guest ranges that do not fit 32-bit linear memory
// addressing. Without it a ptr or length past 2^32 would truncate on the
// way into the memory API and alias low memory instead of trapping.
func checkRange(op string, ptr, length uint64) {
	if ptr > math.MaxUint32 || length > math.MaxUint32 || ptr+length > math.MaxUint32+1 {
		panic(&BindingError{Op: op, Detail: fmt.Sprintf("range out of bounds: ptr=%d len=%d", ptr, length)})
	}
}

// readGuest copies length bytes at ptr out of guest linear memory.
func readGuest(op string, m api.Module, ptr, length uint64) []byte {
	if length == 0 {
		return nil
	}
	checkRange(op, ptr, length)
	mem := m.Memory()
	if mem == nil {
		panic(&BindingError{Op: op, Detail: "module has no linear memory"})
	}
	view, ok := mem.Read(uint32(ptr), uint32(length))
	if !ok {
		panic(&BindingError{Op: op, Detail: fmt.Sprintf("read out of bounds: ptr=%d len=%d", ptr, length)})
	}
	out := make([]byte, len(view))
	copy(out, view)
	return out
}

// writeGuest copies data into guest linear memory at ptr.
func writeGuest(op string, m api.Module, ptr uint64, data []byte) {
	if len(data) == 0 {
		return
	}
	checkRange(op, ptr, uint64(len(data)))
	mem := m.Memory()
	if mem == nil {
		panic(&BindingError{Op: op, Detail: "module has no linear memory"})
	}
	if !mem.Write(uint32(ptr), data) {
		panic(&BindingError{Op: op, Detail: fmt.Sprintf("write out of bounds: ptr=%d len=%d", ptr, len(data))})
	}
}
