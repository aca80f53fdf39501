package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

const DefaultTTL = time.Hour

// Store is an in-memory key/value cache with per-entry expiry. Expired
// entries are invisible to Get and are removed by Sweep.
type Store struct {
	items *ttlcache.Cache[string, any]
	ttl   time.Duration
}

func New(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		items: ttlcache.New[string, any](
			ttlcache.WithTTL[string, any](ttl),
			ttlcache.WithDisableTouchOnHit[string, any](),
		),
		ttl: ttl,
	}
}

func (s *Store) TTL() time.Duration {
	return s.ttl
}

func (s *Store) Get(key string) (any, bool) {
	item := s.items.Get(key)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

func (s *Store) Set(key string, value any) {
	s.SetWithTTL(key, value, s.ttl)
}

func (s *Store) SetWithTTL(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = s.ttl
	}
	s.items.Set(key, value, ttl)
}

// Clear drops every entry and returns how many were held.
func (s *Store) Clear() int {
	n := s.items.Len()
	s.items.DeleteAll()
	return n
}

// Size returns the number of entries that have not expired yet.
func (s *Store) Size() int {
	n := 0
	for _, item := range s.items.Items() {
		if !item.IsExpired() {
			n++
		}
	}
	return n
}

// Sweep evicts expired entries and returns how many were removed.
func (s *Store) Sweep() int {
	before := s.items.Metrics().Evictions
	s.items.DeleteExpired()
	if n := s.items.Metrics().Evictions - before; n > 0 {
		return int(n)
	}
	return 0
}

// PageKey is the key under which a raw page body is stored.
func PageKey(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "page:" + hex.EncodeToString(hash[:])
}

// ResponseKey builds a deterministic key for a built response.
func ResponseKey(op string, params ...string) string {
	var sb strings.Builder
	sb.WriteString("resp:")
	sb.WriteString(op)
	for _, p := range params {
		sb.WriteByte('|')
		sb.WriteString(strings.TrimSpace(p))
	}
	return sb.String()
}
