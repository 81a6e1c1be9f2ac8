package contract

import (
	"certledger/domainerrors"
	"certledger/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// TokenContract exposes the token balance ledger. It shares the chaincode with
// CertificateContract but none of its keys.
// @contract:TokenContract
type TokenContract struct {
	contractapi.Contract
}

// NewTokenContract returns the contract registered under TokenContractName.
func NewTokenContract() *TokenContract {
	c := &TokenContract{}
	c.Name = TokenContractName
	return c
}

func (t *TokenContract) callerID(ctx contractapi.TransactionContextInterface) (string, error) {
	id, err := NewIdentityManager(ctx).GetCurrentIdentityFullID()
	if err != nil {
		return "", domainerrors.Wrap(err, domainerrors.CodeUnauthorized, "failed to resolve caller identity")
	}
	return id, nil
}

// InitToken creates the token and credits supply to the invoker.
func (t *TokenContract) InitToken(ctx contractapi.TransactionContextInterface, name, symbol string, supply uint64) error {
	logger.Infof("Chaincode Call: InitToken %s (%s) with supply %d by '%s'", name, symbol, supply, MustGetCallerFullID(ctx))
	caller, err := t.callerID(ctx)
	if err != nil {
		return err
	}
	ledger, err := tokenLedgerFor(ctx)
	if err != nil {
		return err
	}
	return ledger.Initialize(caller, name, symbol, supply)
}

func (t *TokenContract) Transfer(ctx contractapi.TransactionContextInterface, to string, amount uint64) error {
	logger.Infof("Chaincode Call: Transfer %d to '%s' by '%s'", amount, to, MustGetCallerFullID(ctx))
	caller, err := t.callerID(ctx)
	if err != nil {
		return err
	}
	ledger, err := tokenLedgerFor(ctx)
	if err != nil {
		return err
	}
	return ledger.Transfer(caller, to, amount)
}

func (t *TokenContract) BalanceOf(ctx contractapi.TransactionContextInterface, account string) (uint64, error) {
	logger.Debugf("Chaincode Call: BalanceOf '%s'", account)
	ledger, err := tokenLedgerFor(ctx)
	if err != nil {
		return 0, err
	}
	return ledger.BalanceOf(account)
}

func (t *TokenContract) TotalSupply(ctx contractapi.TransactionContextInterface) (uint64, error) {
	logger.Debug("Chaincode Call: TotalSupply")
	ledger, err := tokenLedgerFor(ctx)
	if err != nil {
		return 0, err
	}
	return ledger.TotalSupply()
}

func (t *TokenContract) GetTokenInfo(ctx contractapi.TransactionContextInterface) (*model.TokenInfo, error) {
	logger.Debug("Chaincode Call: GetTokenInfo")
	ledger, err := tokenLedgerFor(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.Info()
}
