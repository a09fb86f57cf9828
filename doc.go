// Package stratacache implements a pluggable caching layer: a uniform
// storage contract (backend.Backend) combined with interchangeable
// consistency/durability policies (Strategy) and capacity-bounding eviction
// disciplines.
//
// Components:
//   - backend.Backend[V]: store contract (get/set/delete/exists/clear/keys/size/close).
//     Concrete stores implement backend.Raw and are wrapped by backend.Tracked,
//     which adds per-key metadata and lazy TTL expiry checked only on access.
//   - Strategy[V]: routes reads and writes between the cache and an
//     authoritative source. CacheAside, ReadThrough, WriteThrough, WriteBack
//     (deferred batched durability), RefreshAhead (proactive background
//     refresh) and TTL are provided, along with LRU/LFU/FIFO eviction
//     strategies that bound the backend's key set with a shadow index.
//   - Cache[V]/Manager: composes exactly one backend with one strategy under
//     a namespacing and locking discipline; the only surface application
//     code talks to directly.
//
// Keys:
//
//	<namespace>:<key_prefix>:<key> - empty segments are dropped
//
// Locking: every manager operation is serialized behind one instance-wide
// lock. Eviction strategies additionally guard their shadow index with their
// own lock so they stay correct without a manager; callers must always take
// the manager lock first and the strategy lock second.
package stratacache
