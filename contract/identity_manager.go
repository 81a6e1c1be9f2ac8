package contract

import (
	"errors"
	"fmt"
	"strings"

	"certledger/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric/common/flogging"
)

var idLogger = flogging.MustGetLogger("certledger.identitymanager")

const (
	enrollmentIDAttribute = "hf.EnrollmentID"
	unresolvedCaller      = "<unresolved caller>"
)

// IdentityManager resolves the transaction invoker from the client identity.
type IdentityManager struct {
	Ctx contractapi.TransactionContextInterface
}

// NewIdentityManager creates a new instance of IdentityManager.
func NewIdentityManager(ctx contractapi.TransactionContextInterface) *IdentityManager {
	return &IdentityManager{Ctx: ctx}
}

func isValidX509ID(id string) bool {
	return strings.HasPrefix(id, "x509::") || strings.HasPrefix(id, "eDUwOTo6") // "eDUwOTo6" is "x509::" base64 encoded
}

// GetCurrentIdentityFullID retrieves the full X.509 ID of the current transactor.
func (im *IdentityManager) GetCurrentIdentityFullID() (string, error) {
	clientIdentity := im.Ctx.GetClientIdentity()
	if clientIdentity == nil {
		return "", errors.New("client identity is nil from context")
	}
	id, err := clientIdentity.GetID()
	if err != nil {
		return "", fmt.Errorf("failed to get client identity ID from context: %w", err)
	}
	if id == "" {
		return "", errors.New("client identity ID from context is empty")
	}
	if !isValidX509ID(id) {
		idLogger.Warningf("Current client ID '%s' does not appear to be a standard X.509 format.", id)
	}
	return id, nil
}

// GetCurrentEnrollmentID returns the hf.EnrollmentID attribute, falling back to the MSP ID.
func (im *IdentityManager) GetCurrentEnrollmentID() (string, error) {
	clientIdentity := im.Ctx.GetClientIdentity()
	if clientIdentity == nil {
		return "", errors.New("client identity is nil from context for GetCurrentEnrollmentID")
	}
	enrollmentID, found, errAttr := clientIdentity.GetAttributeValue(enrollmentIDAttribute)
	if errAttr != nil {
		idLogger.Warningf("Error retrieving %s attribute: %v. Falling back to MSPID.", enrollmentIDAttribute, errAttr)
	}
	if found && enrollmentID != "" {
		return enrollmentID, nil
	}
	mspID, err := clientIdentity.GetMSPID()
	if err != nil {
		return "", fmt.Errorf("failed to get client MSPID as fallback for enrollment ID: %w", err)
	}
	if mspID == "" {
		return "", errors.New("failed to get client MSPID as fallback (MSPID is empty)")
	}
	idLogger.Debugf("%s not found in attributes, using MSPID '%s' as EnrollmentID.", enrollmentIDAttribute, mspID)
	return mspID, nil
}

// DescribeCaller reports the invoker's identity and its standing in the registry.
func (im *IdentityManager) DescribeCaller() (*model.CallerIdentity, error) {
	fullID, err := im.GetCurrentIdentityFullID()
	if err != nil {
		return nil, err
	}
	mspID, err := im.Ctx.GetClientIdentity().GetMSPID()
	if err != nil {
		return nil, fmt.Errorf("failed to get current caller's MSPID: %w", err)
	}
	enrollmentID, err := im.GetCurrentEnrollmentID()
	if err != nil {
		idLogger.Warningf("DescribeCaller: no enrollment ID for '%s': %v", fullID, err)
	}

	reg, err := registryFor(im.Ctx)
	if err != nil {
		return nil, err
	}
	owner, err := reg.Owner()
	if err != nil {
		return nil, err
	}
	isAdmin, err := reg.IsAdministrator(fullID)
	if err != nil {
		return nil, err
	}
	return &model.CallerIdentity{
		ID:              fullID,
		MSPID:           mspID,
		EnrollmentID:    enrollmentID,
		IsOwner:         owner != "" && owner == fullID,
		IsAdministrator: isAdmin,
	}, nil
}

// MustGetCallerFullID returns the invoker's full ID for log lines, or unresolvedCaller
// when the transaction carries no usable identity.
func MustGetCallerFullID(ctx contractapi.TransactionContextInterface) string {
	id, err := NewIdentityManager(ctx).GetCurrentIdentityFullID()
	if err != nil {
		idLogger.Debugf("MustGetCallerFullID: %v", err)
		return unresolvedCaller
	}
	return id
}
