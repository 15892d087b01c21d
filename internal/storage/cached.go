package storage

import (
	"context"
	"errors"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

var _ Store = (*CachedStore)(nil)

// CachedStore is a read-through / write-through cache in front of another store.
// Values larger than what freecache accepts are always read from the backing store.
type CachedStore struct {
	next  Store
	cache *freecache.Cache
}

func NewCachedStore(next Store, sizeMB int) *CachedStore {
	return &CachedStore{
		next:  next,
		cache: freecache.NewCache(sizeMB * 1024 * 1024),
	}
}

func (s *CachedStore) Get(ctx context.Context, key string) ([]byte, error) {
	if val, err := s.cache.Get([]byte(key)); err == nil {
		return val, nil
	}

	val, err := s.next.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	s.put(key, val)

	return val, nil
}

func (s *CachedStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.next.Set(ctx, key, value); err != nil {
		// the backing store state is unknown now
		s.cache.Del([]byte(key))
		return err
	}
	s.put(key, value)
	return nil
}

func (s *CachedStore) Delete(ctx context.Context, key string) error {
	s.cache.Del([]byte(key))
	return s.next.Delete(ctx, key)
}

func (s *CachedStore) put(key string, value []byte) {
	if err := s.cache.Set([]byte(key), value, 0); err != nil {
		// stale entry must not survive a failed refresh
		s.cache.Del([]byte(key))
		if errors.Is(err, freecache.ErrLargeEntry) {
			log.Debugf("cached store: value for [%s] too large to cache (%d bytes)", key, len(value))
			return
		}
		log.Warnf("cached store: set [%s]: %s", key, err)
	}
}

func (s *CachedStore) HitRate() float64 {
	return s.cache.HitRate()
}
