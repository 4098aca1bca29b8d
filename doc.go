// Package bridge is a dispatch bridge between a sandboxed execution host
// and functions defined inside frozen guest module images baked into the
// binary.
//
// The host calls exports by name under a zero-argument calling convention.
// The bridge locates the embedded image, boots an embedded WebAssembly
// interpreter (wazero), installs the host binding table, runs the image's
// top-level code, resolves the bound function in the module's export
// namespace, invokes it, and translates the outcome into the host's
// success/abort contract. Return values travel through the value-return
// host call; failures travel through the abort host call as a single
// diagnostic message.
//
// Package layout:
//
//	bridge/              Root package: CallResult, logging hooks
//	├── errors/          Structured error types (phase + kind taxonomy)
//	├── image/           Frozen image registry (embedded module bytes)
//	├── host/            Host binding table, call context, in-memory store
//	├── interp/          Interpreter host lifecycle and module resolver
//	├── dispatch/        Export binding table and symbol dispatcher
//	├── contract/        An example frozen contract image and its exports
//	└── cmd/             frostrun invocation CLI, exportgen generator
//
// Quick start:
//
//	table := dispatch.NewTable()
//	_ = contract.Bind(table)
//
//	d, err := dispatch.New(table, image.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	hc := host.NewContext(host.NewMemStore())
//	hc.Predecessor = "alice.test"
//
//	res := d.Dispatch(ctx, "init", hc)
//	if res.Failed() {
//	    log.Fatal(res.Message)
//	}
//
// Execution is strictly single-threaded and synchronous: one invocation,
// one interpreter, one dispatch. Nothing the bridge creates outlives the
// call that created it.
package bridge
