package contract

import (
	"fmt"

	"certledger/domainerrors"
	"certledger/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric/common/flogging"
)

var logger = flogging.MustGetLogger("certledger.certificatecontract")

// Contract names as registered in the chaincode. Clients address transactions as
// "<ContractName>:<Transaction>".
const (
	CertificateContractName = "CertificateContract"
	TokenContractName       = "TokenContract"
)

// CertificateContract exposes the certificate registry as chaincode transactions.
// @contract:CertificateContract
type CertificateContract struct {
	contractapi.Contract
}

// NewCertificateContract returns the contract registered under CertificateContractName.
func NewCertificateContract() *CertificateContract {
	c := &CertificateContract{}
	c.Name = CertificateContractName
	return c
}

// Instantiate is called during chaincode instantiation.
func (s *CertificateContract) Instantiate(ctx contractapi.TransactionContextInterface) {
	logger.Info("CertificateContract Instantiated/Upgraded")
}

// callerID resolves the invoker. A missing identity is reported as unauthorized.
func (s *CertificateContract) callerID(ctx contractapi.TransactionContextInterface) (string, error) {
	id, err := NewIdentityManager(ctx).GetCurrentIdentityFullID()
	if err != nil {
		return "", domainerrors.Wrap(err, domainerrors.CodeUnauthorized, "failed to resolve caller identity")
	}
	return id, nil
}

// --- Identity ---

func (s *CertificateContract) GetCallerIdentity(ctx contractapi.TransactionContextInterface) (*model.CallerIdentity, error) {
	logger.Debug("Chaincode Call: GetCallerIdentity")
	identity, err := NewIdentityManager(ctx).DescribeCaller()
	if err != nil {
		return nil, fmt.Errorf("GetCallerIdentity: %w", err)
	}
	return identity, nil
}

func (s *CertificateContract) GetOwner(ctx contractapi.TransactionContextInterface) (string, error) {
	logger.Debug("Chaincode Call: GetOwner")
	reg, err := registryFor(ctx)
	if err != nil {
		return "", err
	}
	owner, err := reg.Owner()
	if err != nil {
		return "", err
	}
	if owner == "" {
		return "", domainerrors.New(domainerrors.CodeNotFound, "GetOwner: registry is not initialized")
	}
	return owner, nil
}

func (s *CertificateContract) IsAdministrator(ctx contractapi.TransactionContextInterface, identity string) (bool, error) {
	logger.Debugf("Chaincode Call: IsAdministrator for '%s'", identity)
	reg, err := registryFor(ctx)
	if err != nil {
		return false, err
	}
	return reg.IsAdministrator(identity)
}

func (s *CertificateContract) GetAdministrators(ctx contractapi.TransactionContextInterface) ([]*model.AdministratorRecord, error) {
	logger.Debug("Chaincode Call: GetAdministrators")
	reg, err := registryFor(ctx)
	if err != nil {
		return nil, err
	}
	return reg.Administrators()
}

func (s *CertificateContract) IsPaused(ctx contractapi.TransactionContextInterface) (bool, error) {
	logger.Debug("Chaincode Call: IsPaused")
	reg, err := registryFor(ctx)
	if err != nil {
		return false, err
	}
	return reg.IsPaused()
}
