package model

import "time"

// RegistryState holds the singleton registry fields: the owner, the pause gate and the
// certificate counter.
type RegistryState struct {
	ObjectType        string    `json:"objectType"`        // "RegistryState"
	Owner             string    `json:"owner"`             // Set once at initialization
	Paused            bool      `json:"paused"`            // Blocks issuance while true
	TotalCertificates uint64    `json:"totalCertificates"` // Highest assigned certificate ID
	InitializedAt     time.Time `json:"initializedAt"`
}

// AdministratorRecord stores an identity granted administrator rights by the owner.
type AdministratorRecord struct {
	ObjectType string    `json:"objectType"` // "AdminFlag"
	Identity   string    `json:"identity"`
	AddedBy    string    `json:"addedBy"`
	AddedAt    time.Time `json:"addedAt"`
}

// Registry event names.
const (
	EventRegistryInitialized  = "RegistryInitialized"
	EventAdministratorAdded   = "AdministratorAdded"
	EventAdministratorRemoved = "AdministratorRemoved"
	EventRegistryPaused       = "RegistryPaused"
	EventRegistryUnpaused     = "RegistryUnpaused"
	EventCertificateIssued    = "CertificateIssued"
	EventCertificateRevoked   = "CertificateRevoked"
)

// RegistryEvent is published once per committed registry state change.
type RegistryEvent struct {
	Name          string    `json:"event"`
	Actor         string    `json:"actor"`                   // Identity that performed the change
	Target        string    `json:"target,omitempty"`        // Administrator identity, when relevant
	CertificateID uint64    `json:"certificateId,omitempty"` // Certificate ID, when relevant
	Student       string    `json:"student,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// CallerIdentity describes the identity submitting the current transaction.
type CallerIdentity struct {
	ID              string `json:"id"`
	MSPID           string `json:"mspId"`
	EnrollmentID    string `json:"enrollmentId"`
	IsOwner         bool   `json:"isOwner"`
	IsAdministrator bool   `json:"isAdministrator"`
}
