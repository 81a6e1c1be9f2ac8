package contract

import (
	"encoding/json"
	"fmt"
	"time"

	"certledger/model"
	"certledger/registry"
	"certledger/token"

	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// --- Core Helper Methods (used across multiple operations) ---

// txClock reads the transaction timestamp, which all endorsing peers agree on.
func txClock(stub shim.ChaincodeStubInterface) func() (time.Time, error) {
	return func() (time.Time, error) {
		ts, err := stub.GetTxTimestamp()
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to get transaction timestamp: %w", err)
		}
		return ts.AsTime().UTC(), nil
	}
}

// stubEvents publishes events through the transaction's chaincode event.
type stubEvents struct {
	stub shim.ChaincodeStubInterface
}

func (e stubEvents) Publish(event *model.RegistryEvent) error {
	return e.emit(event.Name, event)
}

func (e stubEvents) emit(eventName string, payload interface{}) error {
	eventBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload for '%s': %w", eventName, err)
	}
	if err := e.stub.SetEvent(eventName, eventBytes); err != nil {
		return fmt.Errorf("failed to set event '%s': %w", eventName, err)
	}
	logger.Debugf("Event '%s' emitted.", eventName)
	return nil
}

// tokenEvents adapts stubEvents to token.Publisher.
type tokenEvents struct {
	stubEvents
}

func (e tokenEvents) Publish(event *model.TokenEvent) error {
	return e.emit(event.Name, event)
}

// registryFor binds a registry to the world state of the current transaction.
func registryFor(ctx contractapi.TransactionContextInterface) (*registry.Registry, error) {
	stub := ctx.GetStub()
	return registry.New(newWorldState(stub),
		registry.WithClock(txClock(stub)),
		registry.WithPublisher(stubEvents{stub: stub}),
	)
}

// tokenLedgerFor binds a token ledger to the world state of the current transaction.
func tokenLedgerFor(ctx contractapi.TransactionContextInterface) (*token.Ledger, error) {
	stub := ctx.GetStub()
	return token.NewLedger(newTokenState(stub),
		token.WithClock(txClock(stub)),
		token.WithPublisher(tokenEvents{stubEvents{stub: stub}}),
	)
}
