package registry

import (
	"time"

	"certledger/model"
)

// IdentityStore persists the owner and the administrator set.
type IdentityStore interface {
	// Owner returns the owner identity, or "" when the registry is not initialized.
	Owner() (string, error)
	SetOwner(owner string, at time.Time) error
	HasAdministrator(identity string) (bool, error)
	PutAdministrator(record *model.AdministratorRecord) error
	DeleteAdministrator(identity string) error
	// Administrators returns the administrator records ordered by identity.
	Administrators() ([]*model.AdministratorRecord, error)
}

// PauseStore persists the pause gate.
type PauseStore interface {
	Paused() (bool, error)
	SetPaused(paused bool) error
}

// LedgerStore persists the certificate ledger together with the student index.
type LedgerStore interface {
	// Total returns the number of certificates ever issued, which is also the highest ID.
	Total() (uint64, error)
	// Append assigns the next ID to cert, stores it and appends the ID to the
	// student's index entry in the same step.
	Append(cert *model.Certificate) (uint64, error)
	// Get returns a copy of the certificate, or a not_found error when id is outside [1, total].
	Get(id uint64) (*model.Certificate, error)
	// Invalidate marks the certificate revoked. It reports false when it was already revoked.
	Invalidate(id uint64, revokedBy string, revokedAt time.Time) (bool, error)
	// IDsFor returns the IDs issued to student in issuance order. Never nil.
	IDsFor(student string) ([]uint64, error)
}

// Store is the persistence port holding the state of exactly one registry.
type Store interface {
	IdentityStore
	PauseStore
	LedgerStore
}

// Clock returns the ledger's current time.
type Clock func() (time.Time, error)

// SystemClock reads the local wall clock in UTC.
func SystemClock() (time.Time, error) {
	return time.Now().UTC(), nil
}

// Publisher receives one event per committed state change.
type Publisher interface {
	Publish(event *model.RegistryEvent) error
}
