package driven

import "context"

// FastCache is the low-latency cache tier. Entries expire after a TTL
// enforced by the tier itself.
type FastCache interface {
	// Get returns the value stored under key.
	// The boolean is false on a miss or an expired entry.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key with the tier's TTL.
	Set(ctx context.Context, key string, value []byte) error

	// Close releases the tier's client resources.
	Close() error
}

// DurableCache is the persistent fallback tier. Entries do not expire.
type DurableCache interface {
	// Get returns the text cached under key.
	// The boolean is false when no usable entry exists.
	Get(key string) (string, bool, error)

	// Put stores text under key, recording the reference it came from.
	Put(key, reference, text string) error

	// Prune applies the tier's retention policy and returns the number of
	// entries removed.
	Prune() (int, error)
}
