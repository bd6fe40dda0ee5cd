package redis

const (
	keyPrefix     = "kb-refresh/"
	keyPrefixLock = keyPrefix + "locks/"

	// KeyPrefixRefreshLock is the key prefix for per-agent refresh run locks
	KeyPrefixRefreshLock = keyPrefixLock + "refresh/"
)
