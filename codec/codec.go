// Package codec provides pluggable (de)serialization of cache values for
// backends that persist bytes (file, redis, bigcache).
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
