package refetch

import (
	"context"
	"hash/fnv"
	"sort"
	"strings"
	"sync"
	"time"
)

const memoryStoreShards = 16

// MemoryStore is the default Store: a sharded in-process map with lazy TTL
// expiry. It is safe for concurrent use.
type MemoryStore struct {
	shards [memoryStoreShards]*memoryShard
}

type memoryShard struct {
	mu    sync.RWMutex
	store map[string]memoryEntry
}

type memoryEntry struct {
	value []byte
	// expiresAt is zero for entries without a TTL.
	expiresAt time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	for i := range s.shards {
		s.shards[i] = &memoryShard{store: make(map[string]memoryEntry)}
	}
	return s
}

func (s *MemoryStore) shard(key string) *memoryShard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return s.shards[h.Sum32()%memoryStoreShards]
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Get returns the value for key. Entries whose TTL has elapsed are removed
// and reported absent.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	shard := s.shard(key)
	now := time.Now()

	shard.mu.RLock()
	entry, exists := shard.store[key]
	shard.mu.RUnlock()

	if !exists {
		return nil, false, nil
	}
	if entry.expired(now) {
		shard.mu.Lock()
		if current, ok := shard.store[key]; ok && current.expired(now) {
			delete(shard.store, key)
		}
		shard.mu.Unlock()
		return nil, false, nil
	}
	return entry.value, true, nil
}

// Set stores value under key. A ttl of zero or less means no expiry.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	shard := s.shard(key)
	shard.mu.Lock()
	shard.store[key] = entry
	shard.mu.Unlock()
	return nil
}

// Delete removes key if present.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	shard := s.shard(key)
	shard.mu.Lock()
	delete(shard.store, key)
	shard.mu.Unlock()
	return nil
}

// Entries returns all live entries whose key begins with prefix, sorted by
// key. Expired entries are skipped but left for removal on their next Get.
func (s *MemoryStore) Entries(_ context.Context, prefix string) ([]Entry, error) {
	now := time.Now()
	var out []Entry
	for _, shard := range s.shards {
		shard.mu.RLock()
		for key, entry := range shard.store {
			if !strings.HasPrefix(key, prefix) || entry.expired(now) {
				continue
			}
			out = append(out, Entry{Key: key, Value: entry.value})
		}
		shard.mu.RUnlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
