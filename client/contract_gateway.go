package client

import (
	"context"
	"errors"
	"fmt"
)

// ContractInvoker is the transaction surface of a connected Fabric Gateway contract,
// as exposed by the fabric-gateway client's Contract type. Names passed through it
// carry the "<Contract>:<Transaction>" form so one chaincode contract handle serves
// both the certificate and token contracts.
type ContractInvoker interface {
	EvaluateTransaction(name string, args ...string) ([]byte, error)
	SubmitTransaction(name string, args ...string) ([]byte, error)
}

// ContractGateway adapts a ContractInvoker to Gateway.
type ContractGateway struct {
	contract ContractInvoker
}

var _ Gateway = (*ContractGateway)(nil)

// NewContractGateway wraps contract, typically obtained from a gateway network with
// GetContract("certledger").
func NewContractGateway(contract ContractInvoker) (*ContractGateway, error) {
	if contract == nil {
		return nil, errors.New("contract cannot be nil")
	}
	return &ContractGateway{contract: contract}, nil
}

func (g *ContractGateway) Evaluate(ctx context.Context, name string, args ...string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger.Debugf("Evaluating %s", name)
	result, err := g.contract.EvaluateTransaction(name, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate %s: %w", name, err)
	}
	return result, nil
}

func (g *ContractGateway) Submit(ctx context.Context, name string, args ...string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger.Debugf("Submitting %s", name)
	result, err := g.contract.SubmitTransaction(name, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to submit %s: %w", name, err)
	}
	return result, nil
}
