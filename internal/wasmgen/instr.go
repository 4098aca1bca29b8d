package wasmgen

// Opcodes used by generated bodies.
const (
	opUnreachable = 0x00
	opEnd         = 0x0b
	opCall        = 0x10
	opDrop        = 0x1a
	opI32Const    = 0x41
	opI64Const    = 0x42
)

// I32Const pushes a 32-bit constant.
func I32Const(v int32) []byte {
	return appendSleb([]byte{opI32Const}, int64(v))
}

// I64Const pushes a 64-bit constant.
func I64Const(v int64) []byte {
	return appendSleb([]byte{opI64Const}, v)
}

// Call invokes the function at funcIdx.
func Call(funcIdx uint32) []byte {
	return appendUleb([]byte{opCall}, uint64(funcIdx))
}

// Drop discards the top of the operand stack.
func Drop() []byte {
	return []byte{opDrop}
}

// Unreachable traps.
func Unreachable() []byte {
	return []byte{opUnreachable}
}

// Body concatenates instruction fragments into one function body.
func Body(instrs ...[]byte) []byte {
	var out []byte
	for _, in := range instrs {
		out = append(out, in...)
	}
	return out
}
