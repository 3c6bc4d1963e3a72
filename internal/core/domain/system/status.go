package system

// Status is the dashboard status document. The security fields are display
// values only; nothing behind them is enforced.
type Status struct {
	DeviceAuthentication string            `json:"deviceAuthentication"`
	MemoryEncryption     string            `json:"memoryEncryption"`
	TheftProtection      string            `json:"theftProtection"`
	BiometricLock        string            `json:"biometricLock"`
	VMDetection          string            `json:"vmDetection"`
	RootAccess           string            `json:"rootAccess"`
	SessionLog           string            `json:"sessionLog"`
	APIs                 map[string]string `json:"apis"`
	Cache                CacheStatus       `json:"cache"`
}

type CacheStatus struct {
	Backend string `json:"backend"`
}

const (
	APIConnected    = "connected"
	APIDisconnected = "disconnected"
)
