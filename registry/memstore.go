package registry

import (
	"sort"
	"sync"
	"time"

	"certledger/domainerrors"
	"certledger/model"
)

// MemoryStore keeps registry state in process memory. Certificates live in a slice
// where ID n is stored at position n-1.
type MemoryStore struct {
	mu             sync.RWMutex
	owner          string
	initializedAt  time.Time
	administrators map[string]model.AdministratorRecord
	paused         bool
	certificates   []model.Certificate
	byStudent      map[string][]uint64
}

// NewMemoryStore returns an empty, uninitialized store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		administrators: make(map[string]model.AdministratorRecord),
		byStudent:      make(map[string][]uint64),
	}
}

func (m *MemoryStore) Owner() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.owner, nil
}

func (m *MemoryStore) SetOwner(owner string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.owner = owner
	m.initializedAt = at
	return nil
}

func (m *MemoryStore) HasAdministrator(identity string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.administrators[identity]
	return ok, nil
}

func (m *MemoryStore) PutAdministrator(record *model.AdministratorRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.administrators[record.Identity] = *record
	return nil
}

func (m *MemoryStore) DeleteAdministrator(identity string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.administrators, identity)
	return nil
}

func (m *MemoryStore) Administrators() ([]*model.AdministratorRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	records := make([]*model.AdministratorRecord, 0, len(m.administrators))
	for _, rec := range m.administrators {
		rec := rec
		records = append(records, &rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Identity < records[j].Identity })
	return records, nil
}

func (m *MemoryStore) Paused() (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paused, nil
}

func (m *MemoryStore) SetPaused(paused bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = paused
	return nil
}

func (m *MemoryStore) Total() (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return uint64(len(m.certificates)), nil
}

func (m *MemoryStore) Append(cert *model.Certificate) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uint64(len(m.certificates)) + 1
	stored := *cert
	stored.ID = id
	m.certificates = append(m.certificates, stored)
	m.byStudent[stored.Student] = append(m.byStudent[stored.Student], id)
	cert.ID = id
	return id, nil
}

func (m *MemoryStore) Get(id uint64) (*model.Certificate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id == 0 || id > uint64(len(m.certificates)) {
		return nil, domainerrors.Newf(domainerrors.CodeNotFound, "certificate %d does not exist", id)
	}
	cert := m.certificates[id-1]
	return &cert, nil
}

func (m *MemoryStore) Invalidate(id uint64, revokedBy string, revokedAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id == 0 || id > uint64(len(m.certificates)) {
		return false, domainerrors.Newf(domainerrors.CodeNotFound, "certificate %d does not exist", id)
	}
	cert := &m.certificates[id-1]
	if !cert.Valid {
		return false, nil
	}
	cert.Valid = false
	cert.RevokedBy = revokedBy
	cert.RevokedAt = revokedAt
	return true, nil
}

func (m *MemoryStore) IDsFor(student string) ([]uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := m.byStudent[student]
	out := make([]uint64, len(ids))
	copy(out, ids)
	return out, nil
}

// EventLog is an in-memory Publisher that keeps every published event.
type EventLog struct {
	mu     sync.Mutex
	events []model.RegistryEvent
}

func (l *EventLog) Publish(event *model.RegistryEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, *event)
	return nil
}

// Events returns a copy of the published events in publication order.
func (l *EventLog) Events() []model.RegistryEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.RegistryEvent, len(l.events))
	copy(out, l.events)
	return out
}
