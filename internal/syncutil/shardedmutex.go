// Package syncutil has small concurrency helpers used across the service.
package syncutil

import (
	"hash/fnv"
	"sync"
)

const shardCount = 256

// ShardedMutex serializes work per string key using a fixed pool of
// mutexes. Memory stays bounded no matter how many distinct keys appear;
// the trade-off is that two keys hashing to the same shard contend with
// each other.
type ShardedMutex struct {
	shards [shardCount]sync.Mutex
}

// Lock acquires the shard for key and returns the matching unlock func.
// Typical use: defer sm.Lock(userID)().
func (s *ShardedMutex) Lock(key string) func() {
	mu := s.shard(key)
	mu.Lock()
	return mu.Unlock
}

func (s *ShardedMutex) shard(key string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &s.shards[h.Sum32()%shardCount]
}
