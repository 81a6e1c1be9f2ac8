package contract

import (
	"certledger/registry"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// --- Lifecycle: Issuer Operations ---

// IssueCertificate records a new certificate for student and returns its ID.
func (s *CertificateContract) IssueCertificate(ctx contractapi.TransactionContextInterface,
	student, studentName, courseName, certificateHash, description string,
	workloadHours int, issuingInstitution string) (uint64, error) {

	logger.Infof("Chaincode Call: IssueCertificate for student '%s' (course '%s') by '%s'", student, courseName, MustGetCallerFullID(ctx))
	caller, err := s.callerID(ctx)
	if err != nil {
		return 0, err
	}
	reg, err := registryFor(ctx)
	if err != nil {
		return 0, err
	}
	return reg.IssueCertificate(caller, registry.IssueRequest{
		Student:            student,
		StudentName:        studentName,
		CourseName:         courseName,
		CertificateHash:    certificateHash,
		Description:        description,
		WorkloadHours:      workloadHours,
		IssuingInstitution: issuingInstitution,
	})
}

// RevokeCertificate marks certificate id invalid. It is permitted while the registry is paused.
func (s *CertificateContract) RevokeCertificate(ctx contractapi.TransactionContextInterface, id uint64) error {
	logger.Infof("Chaincode Call: RevokeCertificate for %d by '%s'", id, MustGetCallerFullID(ctx))
	caller, err := s.callerID(ctx)
	if err != nil {
		return err
	}
	reg, err := registryFor(ctx)
	if err != nil {
		return err
	}
	return reg.RevokeCertificate(caller, id)
}
