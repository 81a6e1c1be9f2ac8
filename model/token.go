package model

import "time"

// TokenInfo describes the fungible token managed by the token contract.
type TokenInfo struct {
	ObjectType    string    `json:"objectType"` // "TokenInfo"
	Name          string    `json:"name"`
	Symbol        string    `json:"symbol"`
	TotalSupply   uint64    `json:"totalSupply"`
	Minter        string    `json:"minter"` // Identity that initialized the token and received the supply
	InitializedAt time.Time `json:"initializedAt"`
}

// Token event names.
const (
	EventTokenInitialized  = "TokenInitialized"
	EventTokensTransferred = "TokensTransferred"
)

// TokenEvent is published for token initialization and transfers.
type TokenEvent struct {
	Name      string    `json:"event"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to"`
	Amount    uint64    `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}
