// Package wasmgen assembles small WebAssembly core modules programmatically.
// It covers just enough of the binary format to express frozen guest
// images: imported host functions, nullary exported functions built from a
// flat instruction stream, one linear memory, active data segments, and a
// start function for module top-level code.
//
// It is not a general-purpose assembler. Import all host functions before
// adding local functions so call indices stay stable.
package wasmgen

import (
	"fmt"
)

// ValType is a wasm value type byte.
type ValType byte

const (
	I32 ValType = 0x7f
	I64 ValType = 0x7e
	F32 ValType = 0x7d
	F64 ValType = 0x7c
)

// FuncType describes a function signature.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

func (ft FuncType) key() string {
	return fmt.Sprintf("%v->%v", ft.Params, ft.Results)
}

type funcImport struct {
	module  string
	name    string
	typeIdx uint32
}

type localFunc struct {
	typeIdx uint32
	body    []byte
	export  string
}

type dataSegment struct {
	offset uint32
	bytes  []byte
}

// Module accumulates sections and encodes them into a wasm binary.
type Module struct {
	types     []FuncType
	typeIdx   map[string]uint32
	imports   []funcImport
	funcs     []localFunc
	memPages  uint32
	hasMemory bool
	start     int32
	data      []dataSegment
	sealedImp bool
}

func NewModule() *Module {
	return &Module{
		typeIdx: make(map[string]uint32),
		start:   -1,
	}
}

func (m *Module) internType(ft FuncType) uint32 {
	key := ft.key()
	if idx, ok := m.typeIdx[key]; ok {
		return idx
	}
	idx := uint32(len(m.types))
	m.types = append(m.types, ft)
	m.typeIdx[key] = idx
	return idx
}

// ImportFunc declares a host function import and returns its function
// index. Must precede all AddFunc calls.
func (m *Module) ImportFunc(module, name string, ft FuncType) (uint32, error) {
	if m.sealedImp {
		return 0, fmt.Errorf("import %s.%s declared after local functions", module, name)
	}
	idx := uint32(len(m.imports))
	m.imports = append(m.imports, funcImport{
		module:  module,
		name:    name,
		typeIdx: m.internType(ft),
	})
	return idx, nil
}

// AddFunc defines a local function from a raw instruction body (without
// the trailing end opcode) and returns its function index. A non-empty
// export name exports it.
func (m *Module) AddFunc(ft FuncType, body []byte, export string) uint32 {
	m.sealedImp = true
	idx := uint32(len(m.imports) + len(m.funcs))
	m.funcs = append(m.funcs, localFunc{
		typeIdx: m.internType(ft),
		body:    body,
		export:  export,
	})
	return idx
}

// Memory declares a linear memory with the given minimum page count and
// exports it as "memory".
func (m *Module) Memory(minPages uint32) {
	m.hasMemory = true
	m.memPages = minPages
}

// SetStart marks funcIdx as the module start function. It runs once
// during instantiation, before any export is callable.
func (m *Module) SetStart(funcIdx uint32) {
	m.start = int32(funcIdx)
}

// Data adds an active data segment copied into memory 0 at offset during
// instantiation.
func (m *Module) Data(offset uint32, bytes []byte) {
	m.data = append(m.data, dataSegment{offset: offset, bytes: bytes})
}

// Section IDs.
const (
	secType   = 1
	secImport = 2
	secFunc   = 3
	secMemory = 5
	secExport = 7
	secStart  = 8
	secCode   = 10
	secData   = 11
)

// Export kinds.
const (
	kindFunc   = 0x00
	kindMemory = 0x02
)

// Encode produces the wasm binary.
func (m *Module) Encode() ([]byte, error) {
	if m.start >= 0 {
		ft, err := m.typeOfFunc(uint32(m.start))
		if err != nil {
			return nil, err
		}
		if len(ft.Params) != 0 || len(ft.Results) != 0 {
			return nil, fmt.Errorf("start function must have empty signature, has %v", ft)
		}
	}

	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

	// Type section
	if len(m.types) > 0 {
		var body []byte
		body = appendUleb(body, uint64(len(m.types)))
		for _, ft := range m.types {
			body = append(body, 0x60)
			body = appendUleb(body, uint64(len(ft.Params)))
			for _, p := range ft.Params {
				body = append(body, byte(p))
			}
			body = appendUleb(body, uint64(len(ft.Results)))
			for _, r := range ft.Results {
				body = append(body, byte(r))
			}
		}
		out = appendSection(out, secType, body)
	}

	// Import section
	if len(m.imports) > 0 {
		var body []byte
		body = appendUleb(body, uint64(len(m.imports)))
		for _, imp := range m.imports {
			body = appendName(body, imp.module)
			body = appendName(body, imp.name)
			body = append(body, kindFunc)
			body = appendUleb(body, uint64(imp.typeIdx))
		}
		out = appendSection(out, secImport, body)
	}

	// Function section
	if len(m.funcs) > 0 {
		var body []byte
		body = appendUleb(body, uint64(len(m.funcs)))
		for _, fn := range m.funcs {
			body = appendUleb(body, uint64(fn.typeIdx))
		}
		out = appendSection(out, secFunc, body)
	}

	// Memory section
	if m.hasMemory {
		var body []byte
		body = appendUleb(body, 1)
		body = append(body, 0x00) // min only
		body = appendUleb(body, uint64(m.memPages))
		out = appendSection(out, secMemory, body)
	}

	// Export section
	var exports []byte
	var exportCount uint64
	for i, fn := range m.funcs {
		if fn.export == "" {
			continue
		}
		exports = appendName(exports, fn.export)
		exports = append(exports, kindFunc)
		exports = appendUleb(exports, uint64(len(m.imports)+i))
		exportCount++
	}
	if m.hasMemory {
		exports = appendName(exports, "memory")
		exports = append(exports, kindMemory)
		exports = appendUleb(exports, 0)
		exportCount++
	}
	if exportCount > 0 {
		body := appendUleb(nil, exportCount)
		body = append(body, exports...)
		out = appendSection(out, secExport, body)
	}

	// Start section
	if m.start >= 0 {
		body := appendUleb(nil, uint64(m.start))
		out = appendSection(out, secStart, body)
	}

	// Code section
	if len(m.funcs) > 0 {
		var body []byte
		body = appendUleb(body, uint64(len(m.funcs)))
		for _, fn := range m.funcs {
			var entry []byte
			entry = appendUleb(entry, 0) // no locals
			entry = append(entry, fn.body...)
			entry = append(entry, opEnd)
			body = appendUleb(body, uint64(len(entry)))
			body = append(body, entry...)
		}
		out = appendSection(out, secCode, body)
	}

	// Data section
	if len(m.data) > 0 {
		var body []byte
		body = appendUleb(body, uint64(len(m.data)))
		for _, seg := range m.data {
			body = append(body, 0x00) // active, memory 0
			body = append(body, opI32Const)
			body = appendSleb(body, int64(int32(seg.offset)))
			body = append(body, opEnd)
			body = appendUleb(body, uint64(len(seg.bytes)))
			body = append(body, seg.bytes...)
		}
		out = appendSection(out, secData, body)
	}

	return out, nil
}

func (m *Module) typeOfFunc(funcIdx uint32) (FuncType, error) {
	if int(funcIdx) < len(m.imports) {
		return m.types[m.imports[funcIdx].typeIdx], nil
	}
	local := int(funcIdx) - len(m.imports)
	if local >= len(m.funcs) {
		return FuncType{}, fmt.Errorf("function index %d out of range", funcIdx)
	}
	return m.types[m.funcs[local].typeIdx], nil
}

func appendSection(dst []byte, id byte, body []byte) []byte {
	dst = append(dst, id)
	dst = appendUleb(dst, uint64(len(body)))
	return append(dst, body...)
}

func appendName(dst []byte, name string) []byte {
	dst = appendUleb(dst, uint64(len(name)))
	return append(dst, name...)
}
