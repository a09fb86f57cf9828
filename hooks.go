package stratacache

// Hooks are lightweight callbacks for high-signal events. Implementations
// MUST be cheap and non-blocking; the cache calls them on hot paths and from
// background workers.
type Hooks interface {
	// A key was evicted by a capacity-bounding strategy.
	// policy is one of "lru", "lfu", "fifo".
	CapacityEvicted(key, policy string)

	// A deferred durability write failed and the entry was re-queued.
	FlushError(key string, err error)

	// A background refresh of one key failed and was skipped.
	RefreshError(key string, err error)
}

// NopHooks is the default no-op.
type NopHooks struct{}

func (NopHooks) CapacityEvicted(string, string) {}
func (NopHooks) FlushError(string, error)       {}
func (NopHooks) RefreshError(string, error)     {}
