package out

import (
	"context"
	"sort"
	"sync"

	"github.com/patrickmn/go-cache"

	sessionout "demoprep/internal/modules/session/port/out"
)

// MemorySubstrate keeps records in process memory only. Entries never expire.
type MemorySubstrate struct {
	mu    sync.Mutex
	cache *cache.Cache
	quota int64
}

func NewMemorySubstrate(quota int64) *MemorySubstrate {
	return &MemorySubstrate{cache: cache.New(cache.NoExpiration, 0), quota: quota}
}

var _ sessionout.Substrate = (*MemorySubstrate)(nil)

func (m *MemorySubstrate) Get(_ context.Context, key string) (string, bool, error) {
	if x, found := m.cache.Get(key); found {
		value, _ := x.(string)
		return value, true, nil
	}
	return "", false, nil
}

func (m *MemorySubstrate) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var used int64
	for k, item := range m.cache.Items() {
		if k == key {
			continue
		}
		v, _ := item.Object.(string)
		used += entrySize(k, v)
	}
	if err := checkQuota(m.quota, used, key, value); err != nil {
		return err
	}
	m.cache.Set(key, value, cache.NoExpiration)
	return nil
}

func (m *MemorySubstrate) Remove(_ context.Context, key string) error {
	m.cache.Delete(key)
	return nil
}

func (m *MemorySubstrate) Keys(_ context.Context) ([]string, error) {
	items := m.cache.Items()
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemorySubstrate) Quota() int64 { return m.quota }
