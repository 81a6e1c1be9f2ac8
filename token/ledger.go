// Package token implements the fungible token balance ledger that runs alongside the
// certificate registry.
package token

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"certledger/domainerrors"
	"certledger/model"

	"github.com/hyperledger/fabric/common/flogging"
)

var logger = flogging.MustGetLogger("certledger.token")

const (
	tokenInfoObjectType = "TokenInfo"
	maxNameLength       = 64
	maxSymbolLength     = 16
)

// Store persists the token description and account balances.
type Store interface {
	// Info returns nil when the token is not initialized.
	Info() (*model.TokenInfo, error)
	PutInfo(info *model.TokenInfo) error
	// Balance returns 0 for unknown accounts.
	Balance(account string) (uint64, error)
	SetBalance(account string, amount uint64) error
}

// Publisher receives one event per committed token state change.
type Publisher interface {
	Publish(event *model.TokenEvent) error
}

// Clock returns the ledger's current time.
type Clock func() (time.Time, error)

// Ledger moves token balances between accounts. The sum of all balances always equals
// the total supply.
type Ledger struct {
	store     Store
	clock     Clock
	publisher Publisher
}

// Option configures a Ledger.
type Option func(*Ledger)

func WithClock(clock Clock) Option {
	return func(l *Ledger) {
		l.clock = clock
	}
}

func WithPublisher(p Publisher) Option {
	return func(l *Ledger) {
		l.publisher = p
	}
}

// NewLedger creates a Ledger over store.
func NewLedger(store Store, opts ...Option) (*Ledger, error) {
	if store == nil {
		return nil, errors.New("token store cannot be nil")
	}
	l := &Ledger{store: store, clock: func() (time.Time, error) { return time.Now().UTC(), nil }}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Initialize creates the token and credits the whole supply to caller.
func (l *Ledger) Initialize(caller, name, symbol string, supply uint64) error {
	if strings.TrimSpace(caller) == "" {
		return domainerrors.New(domainerrors.CodeInvalidInput, "InitToken: caller identity cannot be empty")
	}
	if strings.TrimSpace(name) == "" || len(name) > maxNameLength {
		return domainerrors.Newf(domainerrors.CodeInvalidInput, "InitToken: name must be 1-%d characters", maxNameLength)
	}
	if strings.TrimSpace(symbol) == "" || len(symbol) > maxSymbolLength {
		return domainerrors.Newf(domainerrors.CodeInvalidInput, "InitToken: symbol must be 1-%d characters", maxSymbolLength)
	}
	existing, err := l.store.Info()
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "InitToken: failed to read token info")
	}
	if existing != nil {
		return domainerrors.Newf(domainerrors.CodeConflict, "InitToken: token '%s' is already initialized", existing.Symbol)
	}
	now, err := l.now()
	if err != nil {
		return err
	}
	info := &model.TokenInfo{
		ObjectType:    tokenInfoObjectType,
		Name:          name,
		Symbol:        symbol,
		TotalSupply:   supply,
		Minter:        caller,
		InitializedAt: now,
	}
	if err := l.store.PutInfo(info); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "InitToken: failed to save token info")
	}
	if err := l.store.SetBalance(caller, supply); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "InitToken: failed to credit minter")
	}
	logger.Infof("Token %s (%s) initialized with supply %d for '%s'.", name, symbol, supply, caller)
	l.publish(&model.TokenEvent{Name: model.EventTokenInitialized, To: caller, Amount: supply, Timestamp: now})
	return nil
}

// Transfer moves amount from caller to to. A zero amount or a self-transfer changes nothing.
func (l *Ledger) Transfer(caller, to string, amount uint64) error {
	if strings.TrimSpace(caller) == "" {
		return domainerrors.New(domainerrors.CodeUnauthorized, "Transfer: caller identity cannot be empty")
	}
	if err := model.ValidateIdentity("recipient", to); err != nil {
		return fmt.Errorf("Transfer: %w", err)
	}
	if _, err := l.Info(); err != nil {
		return fmt.Errorf("Transfer: %w", err)
	}
	if amount == 0 {
		logger.Infof("Transfer of 0 tokens from '%s' to '%s'. No action needed.", caller, to)
		return nil
	}
	fromBalance, err := l.store.Balance(caller)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "Transfer: failed to read sender balance")
	}
	if fromBalance < amount {
		return domainerrors.Newf(domainerrors.CodeInsufficientBalance,
			"Transfer: balance %d of '%s' is less than %d", fromBalance, caller, amount)
	}
	if caller == to {
		logger.Infof("Self-transfer of %d tokens by '%s'. No action needed.", amount, caller)
		return nil
	}
	toBalance, err := l.store.Balance(to)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "Transfer: failed to read recipient balance")
	}
	if toBalance > math.MaxUint64-amount {
		return domainerrors.Newf(domainerrors.CodeInvalidInput, "Transfer: balance of '%s' would overflow", to)
	}
	now, err := l.now()
	if err != nil {
		return err
	}
	if err := l.store.SetBalance(caller, fromBalance-amount); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "Transfer: failed to debit sender")
	}
	if err := l.store.SetBalance(to, toBalance+amount); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "Transfer: failed to credit recipient")
	}
	logger.Infof("Transferred %d tokens from '%s' to '%s'.", amount, caller, to)
	l.publish(&model.TokenEvent{Name: model.EventTokensTransferred, From: caller, To: to, Amount: amount, Timestamp: now})
	return nil
}

// BalanceOf returns the balance of account, 0 when it never held tokens.
func (l *Ledger) BalanceOf(account string) (uint64, error) {
	if err := model.ValidateIdentity("account", account); err != nil {
		return 0, fmt.Errorf("BalanceOf: %w", err)
	}
	balance, err := l.store.Balance(account)
	if err != nil {
		return 0, domainerrors.Wrap(err, domainerrors.CodeInternal, "BalanceOf: failed to read balance")
	}
	return balance, nil
}

// TotalSupply returns the fixed supply, or a not_found error before initialization.
func (l *Ledger) TotalSupply() (uint64, error) {
	info, err := l.Info()
	if err != nil {
		return 0, err
	}
	return info.TotalSupply, nil
}

// Info returns the token description, or a not_found error before initialization.
func (l *Ledger) Info() (*model.TokenInfo, error) {
	info, err := l.store.Info()
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to read token info")
	}
	if info == nil {
		return nil, domainerrors.New(domainerrors.CodeNotFound, "token is not initialized")
	}
	return info, nil
}

func (l *Ledger) now() (time.Time, error) {
	t, err := l.clock()
	if err != nil {
		return time.Time{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to read ledger time")
	}
	return t, nil
}

func (l *Ledger) publish(event *model.TokenEvent) {
	if l.publisher == nil {
		return
	}
	if err := l.publisher.Publish(event); err != nil {
		logger.Warningf("Failed to publish %s event: %v", event.Name, err)
	}
}
