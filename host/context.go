package host

// Context is the handle bundle giving the interpreter access to the
// binding table for the span of one call. It is borrowed by the bridge
// for a single invocation and never persisted beyond it.
//
// The register file follows the register-machine convention: binding
// calls that produce variable-length data place it in a numbered register
// and the guest copies it into its own memory with read_register.
type Context struct {
	Store Store

	// Call input and execution context, fixed by the host per call.
	Input          []byte
	Predecessor    string
	CurrentAccount string
	Deposit        uint64 // attached deposit, low 64 bits of the u128
	BlockTimestamp uint64 // nanoseconds

	registers map[uint64][]byte

	returnValue []byte
	returnSet   bool

	abortMessage string
	aborted      bool

	logs []string
}

// NewContext builds a call context over the given store.
func NewContext(store Store) *Context {
	return &Context{
		Store:     store,
		registers: make(map[uint64][]byte),
	}
}

func (c *Context) setRegister(id uint64, data []byte) {
	if c.registers == nil {
		c.registers = make(map[uint64][]byte)
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	c.registers[id] = stored
}

func (c *Context) register(id uint64) ([]byte, bool) {
	data, ok := c.registers[id]
	return data, ok
}

// setReturn records the value-return binding call. A later call within
// the same invocation replaces the earlier value.
func (c *Context) setReturn(value []byte) {
	stored := make([]byte, len(value))
	copy(stored, value)
	c.returnValue = stored
	c.returnSet = true
}

// ReturnValue reports the value the guest returned through the binding
// table, and whether it set one at all.
func (c *Context) ReturnValue() ([]byte, bool) {
	return c.returnValue, c.returnSet
}

func (c *Context) abort(message string) {
	c.abortMessage = message
	c.aborted = true
}

// Aborted reports the guest panic message if the abort binding fired.
// The message is surfaced to the host verbatim.
func (c *Context) Aborted() (string, bool) {
	return c.abortMessage, c.aborted
}

func (c *Context) appendLog(line string) {
	c.logs = append(c.logs, line)
}

// Logs returns the lines the guest emitted through the log binding, in
// order.
func (c *Context) Logs() []string {
	return c.logs
}
