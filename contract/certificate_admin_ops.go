package contract

import (
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// --- Lifecycle: Owner Operations ---

// InitLedger makes the invoker the registry owner. It fails once an owner exists.
func (s *CertificateContract) InitLedger(ctx contractapi.TransactionContextInterface) error {
	logger.Infof("Chaincode Call: InitLedger by '%s'", MustGetCallerFullID(ctx))
	caller, err := s.callerID(ctx)
	if err != nil {
		return err
	}
	reg, err := registryFor(ctx)
	if err != nil {
		return err
	}
	return reg.Initialize(caller)
}

func (s *CertificateContract) AddAdministrator(ctx contractapi.TransactionContextInterface, target string) error {
	logger.Infof("Chaincode Call: AddAdministrator for '%s' by '%s'", target, MustGetCallerFullID(ctx))
	caller, err := s.callerID(ctx)
	if err != nil {
		return err
	}
	reg, err := registryFor(ctx)
	if err != nil {
		return err
	}
	return reg.AddAdministrator(caller, target)
}

func (s *CertificateContract) RemoveAdministrator(ctx contractapi.TransactionContextInterface, target string) error {
	logger.Infof("Chaincode Call: RemoveAdministrator for '%s' by '%s'", target, MustGetCallerFullID(ctx))
	caller, err := s.callerID(ctx)
	if err != nil {
		return err
	}
	reg, err := registryFor(ctx)
	if err != nil {
		return err
	}
	return reg.RemoveAdministrator(caller, target)
}

func (s *CertificateContract) PauseContract(ctx contractapi.TransactionContextInterface) error {
	logger.Infof("Chaincode Call: PauseContract by '%s'", MustGetCallerFullID(ctx))
	caller, err := s.callerID(ctx)
	if err != nil {
		return err
	}
	reg, err := registryFor(ctx)
	if err != nil {
		return err
	}
	return reg.Pause(caller)
}

func (s *CertificateContract) UnpauseContract(ctx contractapi.TransactionContextInterface) error {
	logger.Infof("Chaincode Call: UnpauseContract by '%s'", MustGetCallerFullID(ctx))
	caller, err := s.callerID(ctx)
	if err != nil {
		return err
	}
	reg, err := registryFor(ctx)
	if err != nil {
		return err
	}
	return reg.Unpause(caller)
}
