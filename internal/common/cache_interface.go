package common

import "time"

// CacheInterface is implemented by the in-memory and the Redis cache
type CacheInterface interface {
	// Set stores a value in cache with the given key and duration
	Set(key string, value interface{}, duration time.Duration)

	// Get returns the value and true if found, nil and false otherwise.
	// Redis round-trips through JSON, so callers must accept decoded shapes.
	Get(key string) (interface{}, bool)

	Delete(key string)

	// DeletePrefix removes every key starting with prefix
	DeletePrefix(prefix string)

	// GetOrSet retrieves a value from cache, or loads it using the loader function if not found
	GetOrSet(key string, duration time.Duration, loader func() (any, error)) (interface{}, error)

	Close() error
}
