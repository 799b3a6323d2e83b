package common

import (
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// CacheService is the in-process cache used when Redis is not configured.
// Concurrent GetOrSet misses on one key share a single loader call.
type CacheService struct {
	cache  *cache.Cache
	flight singleflight.Group
}

var _ CacheInterface = (*CacheService)(nil)

func NewCacheService(defaultExpirationSeconds, cleanUpIntervalSeconds int) *CacheService {
	return &CacheService{
		cache: cache.New(
			time.Duration(defaultExpirationSeconds)*time.Second,
			time.Duration(cleanUpIntervalSeconds)*time.Second,
		),
	}
}

func (cs *CacheService) Set(key string, value interface{}, duration time.Duration) {
	cs.cache.Set(key, value, duration)
}

func (cs *CacheService) Get(key string) (interface{}, bool) {
	return cs.cache.Get(key)
}

func (cs *CacheService) Delete(key string) {
	cs.cache.Delete(key)
}

// DeletePrefix drops every key under prefix, e.g. all rendered forms
func (cs *CacheService) DeletePrefix(prefix string) {
	for key := range cs.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			cs.cache.Delete(key)
		}
	}
}

func (cs *CacheService) GetOrSet(key string, duration time.Duration, loader func() (any, error)) (interface{}, error) {
	if val, found := cs.cache.Get(key); found {
		return val, nil
	}

	val, err, _ := cs.flight.Do(key, func() (any, error) {
		if val, found := cs.cache.Get(key); found {
			return val, nil
		}
		val, err := loader()
		if err != nil {
			return nil, err
		}
		cs.cache.Set(key, val, duration)
		return val, nil
	})
	return val, err
}

func (cs *CacheService) Close() error {
	return nil
}
