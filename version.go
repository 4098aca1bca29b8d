package bridge

// Bridge version information.
const (
	// Version is the bridge release version.
	Version = "0.1.0"
)
