package bridge

// Status tags the outcome of one dispatched invocation.
type Status int

const (
	// StatusSuccess means the guest function returned. The return value,
	// if the guest set one, was captured through the value-return host
	// call and is carried in CallResult.Value.
	StatusSuccess Status = iota

	// StatusFailure means the invocation terminated with a translated
	// failure. CallResult.Message carries the diagnostic surfaced to the
	// host abort call.
	StatusFailure
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// CallResult is the host-facing outcome of a dispatch. It is a value type:
// comparing two results from deterministic invocations with Equal is
// meaningful.
type CallResult struct {
	Status  Status
	Value   []byte // set only on success; nil when the guest returned nothing
	Message string // set only on failure
}

// Succeed builds a success result carrying the guest's return value.
func Succeed(value []byte) CallResult {
	return CallResult{Status: StatusSuccess, Value: value}
}

// Fail builds a failure result carrying the abort diagnostic.
func Fail(message string) CallResult {
	return CallResult{Status: StatusFailure, Message: message}
}

// Failed reports whether the invocation ended in the abort path.
func (r CallResult) Failed() bool {
	return r.Status == StatusFailure
}

// Equal reports whether two results are byte-for-byte identical outcomes.
func (r CallResult) Equal(other CallResult) bool {
	if r.Status != other.Status || r.Message != other.Message {
		return false
	}
	return string(r.Value) == string(other.Value)
}
