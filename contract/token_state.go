package contract

import (
	"encoding/json"
	"fmt"
	"strconv"

	"certledger/model"

	"github.com/hyperledger/fabric-chaincode-go/shim"
)

const (
	tokenInfoKey      = "TokenInfo" // Plain key holding the TokenInfo singleton.
	balanceObjectType = "Balance"   // Attribute: account identity. Value: decimal balance.
)

// tokenState implements token.Store on top of the chaincode stub.
type tokenState struct {
	stub shim.ChaincodeStubInterface
}

func newTokenState(stub shim.ChaincodeStubInterface) *tokenState {
	return &tokenState{stub: stub}
}

func (t *tokenState) Info() (*model.TokenInfo, error) {
	infoBytes, err := t.stub.GetState(tokenInfoKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read token info: %w", err)
	}
	if infoBytes == nil {
		return nil, nil
	}
	var info model.TokenInfo
	if err := json.Unmarshal(infoBytes, &info); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token info: %w", err)
	}
	return &info, nil
}

func (t *tokenState) PutInfo(info *model.TokenInfo) error {
	infoBytes, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal token info: %w", err)
	}
	if err := t.stub.PutState(tokenInfoKey, infoBytes); err != nil {
		return fmt.Errorf("failed to save token info: %w", err)
	}
	return nil
}

func (t *tokenState) Balance(account string) (uint64, error) {
	key, err := t.stub.CreateCompositeKey(balanceObjectType, []string{account})
	if err != nil {
		return 0, fmt.Errorf("failed to create balance key: %w", err)
	}
	balanceBytes, err := t.stub.GetState(key)
	if err != nil {
		return 0, fmt.Errorf("failed to read balance of '%s': %w", account, err)
	}
	if balanceBytes == nil {
		return 0, nil
	}
	balance, err := strconv.ParseUint(string(balanceBytes), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse balance of '%s': %w", account, err)
	}
	return balance, nil
}

func (t *tokenState) SetBalance(account string, amount uint64) error {
	key, err := t.stub.CreateCompositeKey(balanceObjectType, []string{account})
	if err != nil {
		return fmt.Errorf("failed to create balance key: %w", err)
	}
	if err := t.stub.PutState(key, []byte(strconv.FormatUint(amount, 10))); err != nil {
		return fmt.Errorf("failed to save balance of '%s': %w", account, err)
	}
	return nil
}
