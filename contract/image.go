// Package contract embeds the team-betting contract as a frozen module
// image and registers it, together with its generated export table, at
// process start. Every exported symbol is bound to one function inside
// the single logical image; all contract state flows through the host
// binding table.
package contract

import (
	"github.com/frostvm/bridge/host"
	"github.com/frostvm/bridge/image"
	"github.com/frostvm/bridge/internal/wasmgen"
)

// ImageName is the logical file name of the contract's frozen image.
const ImageName = "betting_contract.wasm"

// Guest scratch area for register copies, past the data segment.
const scratch = 4096

func init() {
	bin, err := BuildImage()
	if err != nil {
		panic(err)
	}
	image.Register(ImageName, bin)
}

// strtab packs guest string constants into one data segment.
type strtab struct {
	buf []byte
}

func (s *strtab) add(str string) (off, n int64) {
	off = int64(len(s.buf))
	s.buf = append(s.buf, str...)
	return off, int64(len(str))
}

// BuildImage assembles the contract's frozen image. The build is
// deterministic: the same source constants always produce identical
// image bytes.
func BuildImage() ([]byte, error) {
	m := wasmgen.NewModule()
	m.Memory(1)

	i64 := wasmgen.I64
	sig := func(params, results int) wasmgen.FuncType {
		var ft wasmgen.FuncType
		for i := 0; i < params; i++ {
			ft.Params = append(ft.Params, i64)
		}
		for i := 0; i < results; i++ {
			ft.Results = append(ft.Results, i64)
		}
		return ft
	}

	predecessor, err := m.ImportFunc(host.EnvModule, host.FnPredecessor, sig(1, 0))
	if err != nil {
		return nil, err
	}
	readRegister, err := m.ImportFunc(host.EnvModule, host.FnReadRegister, sig(2, 0))
	if err != nil {
		return nil, err
	}
	registerLen, err := m.ImportFunc(host.EnvModule, host.FnRegisterLen, sig(1, 1))
	if err != nil {
		return nil, err
	}
	storageWrite, err := m.ImportFunc(host.EnvModule, host.FnStorageWrite, sig(5, 1))
	if err != nil {
		return nil, err
	}
	storageRemove, err := m.ImportFunc(host.EnvModule, host.FnStorageRemove, sig(3, 1))
	if err != nil {
		return nil, err
	}
	valueReturn, err := m.ImportFunc(host.EnvModule, host.FnValueReturn, sig(2, 0))
	if err != nil {
		return nil, err
	}
	panicUTF8, err := m.ImportFunc(host.EnvModule, host.FnPanicUTF8, sig(2, 0))
	if err != nil {
		return nil, err
	}
	logUTF8, err := m.ImportFunc(host.EnvModule, host.FnLogUTF8, sig(2, 0))
	if err != nil {
		return nil, err
	}

	var tab strtab
	kOwner, nOwner := tab.add("owner")
	kGameState, nGameState := tab.add("game_state")
	kLastPlayer, nLastPlayer := tab.add("last_player")
	vWaiting, nWaiting := tab.add("waiting")
	rJoined, nJoined := tab.add(`"joined"`)
	rZero, nZero := tab.add(`"0"`)
	mAssert, nAssert := tab.add("assertion failed: game is not resolved")
	mLoaded, nLoaded := tab.add("betting contract image loaded")
	mInit, nInit := tab.add("game initialized")
	mReset, nReset := tab.add("game reset")
	mWithdraw, nWithdraw := tab.add("emergency withdraw requested")
	rMetadata, nMetadata := tab.add(`{"version":"0.1.0","link":"https://github.com/frostvm/bridge"}`)
	rABI, nABI := tab.add(`{"schema_version":"0.4.0","metadata":{"name":"team_betting"}}`)
	m.Data(0, tab.buf)

	logMsg := func(off, n int64) []byte {
		return wasmgen.Body(wasmgen.I64Const(n), wasmgen.I64Const(off), wasmgen.Call(logUTF8))
	}
	returns := func(off, n int64) []byte {
		return wasmgen.Body(wasmgen.I64Const(n), wasmgen.I64Const(off), wasmgen.Call(valueReturn))
	}
	writeConst := func(kOff, kLen, vOff, vLen int64) []byte {
		return wasmgen.Body(
			wasmgen.I64Const(kLen), wasmgen.I64Const(kOff),
			wasmgen.I64Const(vLen), wasmgen.I64Const(vOff),
			wasmgen.I64Const(1),
			wasmgen.Call(storageWrite), wasmgen.Drop(),
		)
	}
	// writePredecessor stores the caller account id under the given key,
	// staging it through register 0 and the scratch area.
	writePredecessor := func(kOff, kLen int64) []byte {
		return wasmgen.Body(
			wasmgen.I64Const(0), wasmgen.Call(predecessor),
			wasmgen.I64Const(0), wasmgen.I64Const(scratch), wasmgen.Call(readRegister),
			wasmgen.I64Const(kLen), wasmgen.I64Const(kOff),
			wasmgen.I64Const(0), wasmgen.Call(registerLen),
			wasmgen.I64Const(scratch),
			wasmgen.I64Const(1),
			wasmgen.Call(storageWrite), wasmgen.Drop(),
		)
	}

	start := m.AddFunc(sig(0, 0), logMsg(mLoaded, nLoaded), "")
	m.SetStart(start)

	m.AddFunc(sig(0, 0), wasmgen.Body(
		writePredecessor(kOwner, nOwner),
		writeConst(kGameState, nGameState, vWaiting, nWaiting),
		logMsg(mInit, nInit),
	), "init")

	m.AddFunc(sig(0, 0), writePredecessor(kOwner, nOwner), "change_owner")

	m.AddFunc(sig(0, 0), wasmgen.Body(
		writePredecessor(kLastPlayer, nLastPlayer),
		returns(rJoined, nJoined),
	), "join_game")

	m.AddFunc(sig(0, 0), wasmgen.Body(
		writeConst(kGameState, nGameState, vWaiting, nWaiting),
		wasmgen.I64Const(nLastPlayer), wasmgen.I64Const(kLastPlayer),
		wasmgen.I64Const(2),
		wasmgen.Call(storageRemove), wasmgen.Drop(),
		logMsg(mReset, nReset),
	), "reset_game")

	m.AddFunc(sig(0, 0), wasmgen.Body(
		wasmgen.I64Const(nAssert), wasmgen.I64Const(mAssert), wasmgen.Call(panicUTF8),
	), "resolve_game")

	m.AddFunc(sig(0, 0), returns(rZero, nZero), "claim_payout")
	m.AddFunc(sig(0, 0), returns(rZero, nZero), "get_payout_amount")
	m.AddFunc(sig(0, 0), returns(rZero, nZero), "get_players_count")
	m.AddFunc(sig(0, 0), logMsg(mWithdraw, nWithdraw), "emergency_withdraw")
	m.AddFunc(sig(0, 0), returns(rMetadata, nMetadata), "contract_source_metadata")
	m.AddFunc(sig(0, 0), returns(rABI, nABI), "__contract_abi")

	return m.Encode()
}
