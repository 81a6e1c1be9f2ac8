package model

import "time"

// Certificate is a credential issued to a student. All fields except Valid and the
// revocation fields are fixed once the certificate is issued.
type Certificate struct {
	ObjectType         string    `json:"objectType"`         // "Certificate"
	ID                 uint64    `json:"id"`                 // Sequential, starts at 1, never reused
	Student            string    `json:"student"`            // Identity of the certificate holder
	StudentName        string    `json:"studentName"`        // Display name of the holder at issuance time
	CourseName         string    `json:"courseName"`         // Course or event the certificate attests
	CertificateHash    string    `json:"certificateHash"`    // Caller-supplied identifier of the credential artifact
	Description        string    `json:"description"`        // Free-form course description
	WorkloadHours      uint64    `json:"workloadHours"`      // Course workload in hours
	IssuingInstitution string    `json:"issuingInstitution"` // Institution named on the certificate
	IssuedAt           time.Time `json:"issuedAt"`           // Ledger time of issuance
	IssuedBy           string    `json:"issuedBy"`           // Identity of the issuing owner/administrator
	Valid              bool      `json:"valid"`              // true at issuance; false once revoked, never reset
	RevokedAt          time.Time `json:"revokedAt"`          // Zero until revoked
	RevokedBy          string    `json:"revokedBy"`          // Empty until revoked
}

// CertificatePage is the structure returned by paginated certificate listings.
type CertificatePage struct {
	Certificates []*Certificate `json:"certificates"`
	NextStartID  uint64         `json:"nextStartId"` // 0 when there are no more certificates
	FetchedCount int32          `json:"fetchedCount"`
	Total        uint64         `json:"total"`
}

// HistoryEntry represents one historical state of a certificate record.
type HistoryEntry struct {
	TxID      string    `json:"txId"`
	Timestamp time.Time `json:"timestamp"`
	IsDelete  bool      `json:"isDelete"`
	Valid     bool      `json:"valid"` // Validity flag recorded in that state
	Value     string    `json:"value"` // Raw JSON value of the certificate at that time
}
