package token

import (
	"sync"

	"certledger/model"
)

// MemoryStore keeps token state in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	info     *model.TokenInfo
	balances map[string]uint64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{balances: make(map[string]uint64)}
}

func (m *MemoryStore) Info() (*model.TokenInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.info == nil {
		return nil, nil
	}
	info := *m.info
	return &info, nil
}

func (m *MemoryStore) PutInfo(info *model.TokenInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *info
	m.info = &stored
	return nil
}

func (m *MemoryStore) Balance(account string) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.balances[account], nil
}

func (m *MemoryStore) SetBalance(account string, amount uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[account] = amount
	return nil
}

// Sum returns the sum of all balances.
func (m *MemoryStore) Sum() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sum uint64
	for _, b := range m.balances {
		sum += b
	}
	return sum
}
