// Package client wraps a Fabric gateway connection with typed calls to the certificate
// and token contracts. Read-only calls are retried on transient failures. Submits are
// only repeated after checking the ledger for the effect of the failed attempt.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"certledger/model"
	"certledger/registry"

	"github.com/hyperledger/fabric/common/flogging"
)

var logger = flogging.MustGetLogger("certledger.client")

// Contract names as registered by the chaincode.
const (
	certificateContract = "CertificateContract"
	tokenContract       = "TokenContract"
)

// ErrAmbiguousCommit is returned when a submit failed transiently and the ledger does
// not show whether it committed.
var ErrAmbiguousCommit = errors.New("transaction outcome unknown")

// Gateway evaluates and submits chaincode transactions. Names have the form
// "<Contract>:<Transaction>".
type Gateway interface {
	Evaluate(ctx context.Context, name string, args ...string) ([]byte, error)
	Submit(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Client issues typed registry and token calls through a Gateway.
type Client struct {
	gateway         Gateway
	maxTries        uint
	initialInterval time.Duration
	maxElapsedTime  time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithMaxTries bounds the attempts of a read-only call, the first one included.
func WithMaxTries(n uint) Option {
	return func(c *Client) {
		c.maxTries = n
	}
}

func WithInitialInterval(d time.Duration) Option {
	return func(c *Client) {
		c.initialInterval = d
	}
}

func WithMaxElapsedTime(d time.Duration) Option {
	return func(c *Client) {
		c.maxElapsedTime = d
	}
}

// New creates a Client over gateway.
func New(gateway Gateway, opts ...Option) (*Client, error) {
	if gateway == nil {
		return nil, errors.New("gateway cannot be nil")
	}
	c := &Client{
		gateway:         gateway,
		maxTries:        DefaultMaxTries,
		initialInterval: DefaultInitialInterval,
		maxElapsedTime:  DefaultMaxElapsedTime,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.maxTries == 0 {
		c.maxTries = 1
	}
	return c, nil
}

func certificateTx(name string) string { return certificateContract + ":" + name }
func tokenTx(name string) string { return tokenContract + ":" + name }

func parseUint(raw []byte) (uint64, error) {
	return strconv.ParseUint(strings.Trim(strings.TrimSpace(string(raw)), `"`), 10, 64)
}

func parseBool(raw []byte) (bool, error) {
	return strconv.ParseBool(strings.TrimSpace(string(raw)))
}

// --- Read-only calls ---

func (c *Client) GetCertificate(ctx context.Context, id uint64) (*model.Certificate, error) {
	raw, err := c.evaluate(ctx, certificateTx("GetCertificate"), strconv.FormatUint(id, 10))
	if err != nil {
		return nil, fmt.Errorf("GetCertificate: %w", err)
	}
	var cert model.Certificate
	if err := json.Unmarshal(raw, &cert); err != nil {
		return nil, fmt.Errorf("GetCertificate: failed to unmarshal certificate %d: %w", id, err)
	}
	return &cert, nil
}

func (c *Client) GetTotalCertificates(ctx context.Context) (uint64, error) {
	raw, err := c.evaluate(ctx, certificateTx("GetTotalCertificates"))
	if err != nil {
		return 0, fmt.Errorf("GetTotalCertificates: %w", err)
	}
	total, err := parseUint(raw)
	if err != nil {
		return 0, fmt.Errorf("GetTotalCertificates: failed to parse total: %w", err)
	}
	return total, nil
}

func (c *Client) GetCertificatesOfStudent(ctx context.Context, student string) ([]uint64, error) {
	raw, err := c.evaluate(ctx, certificateTx("GetCertificatesOfStudent"), student)
	if err != nil {
		return nil, fmt.Errorf("GetCertificatesOfStudent: %w", err)
	}
	ids := []uint64{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &ids); err != nil {
			return nil, fmt.Errorf("GetCertificatesOfStudent: failed to unmarshal ids: %w", err)
		}
	}
	return ids, nil
}

func (c *Client) ListCertificates(ctx context.Context, startID uint64, pageSize int) (*model.CertificatePage, error) {
	raw, err := c.evaluate(ctx, certificateTx("ListCertificates"), strconv.FormatUint(startID, 10), strconv.Itoa(pageSize))
	if err != nil {
		return nil, fmt.Errorf("ListCertificates: %w", err)
	}
	var page model.CertificatePage
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("ListCertificates: failed to unmarshal page: %w", err)
	}
	return &page, nil
}

func (c *Client) VerifyCertificate(ctx context.Context, id uint64, hash string) (bool, error) {
	raw, err := c.evaluate(ctx, certificateTx("VerifyCertificate"), strconv.FormatUint(id, 10), hash)
	if err != nil {
		return false, fmt.Errorf("VerifyCertificate: %w", err)
	}
	return parseBool(raw)
}

func (c *Client) IsPaused(ctx context.Context) (bool, error) {
	raw, err := c.evaluate(ctx, certificateTx("IsPaused"))
	if err != nil {
		return false, fmt.Errorf("IsPaused: %w", err)
	}
	return parseBool(raw)
}

func (c *Client) IsAdministrator(ctx context.Context, identity string) (bool, error) {
	raw, err := c.evaluate(ctx, certificateTx("IsAdministrator"), identity)
	if err != nil {
		return false, fmt.Errorf("IsAdministrator: %w", err)
	}
	return parseBool(raw)
}

func (c *Client) BalanceOf(ctx context.Context, account string) (uint64, error) {
	raw, err := c.evaluate(ctx, tokenTx("BalanceOf"), account)
	if err != nil {
		return 0, fmt.Errorf("BalanceOf: %w", err)
	}
	return parseUint(raw)
}

// --- Submits ---

// IssueCertificate submits an issuance. After a transient failure it looks for a
// certificate for the same student and hash issued above the total observed before the
// submit, and returns that ID instead of issuing a duplicate.
func (c *Client) IssueCertificate(ctx context.Context, req registry.IssueRequest) (uint64, error) {
	before, err := c.GetTotalCertificates(ctx)
	if err != nil {
		return 0, fmt.Errorf("IssueCertificate: failed to read total before submit: %w", err)
	}
	args := []string{
		req.Student, req.StudentName, req.CourseName, req.CertificateHash,
		req.Description, strconv.Itoa(req.WorkloadHours), req.IssuingInstitution,
	}

	raw, err := c.gateway.Submit(ctx, certificateTx("IssueCertificate"), args...)
	if err == nil {
		return parseUint(raw)
	}
	if !IsTransient(err) {
		return 0, fmt.Errorf("IssueCertificate: %w", err)
	}
	logger.Warningf("IssueCertificate for '%s' failed transiently: %v. Checking ledger before resubmitting.", req.Student, err)

	id, found, checkErr := c.findIssued(ctx, req, before)
	if checkErr != nil {
		return 0, fmt.Errorf("IssueCertificate: %w: %v (check failed: %v)", ErrAmbiguousCommit, err, checkErr)
	}
	if found {
		logger.Infof("IssueCertificate: certificate %d found on ledger; not resubmitting.", id)
		return id, nil
	}

	raw, err = c.gateway.Submit(ctx, certificateTx("IssueCertificate"), args...)
	if err != nil {
		if IsTransient(err) {
			return 0, fmt.Errorf("IssueCertificate: %w: %v", ErrAmbiguousCommit, err)
		}
		return 0, fmt.Errorf("IssueCertificate: %w", err)
	}
	return parseUint(raw)
}

func (c *Client) findIssued(ctx context.Context, req registry.IssueRequest, before uint64) (uint64, bool, error) {
	ids, err := c.GetCertificatesOfStudent(ctx, req.Student)
	if err != nil {
		return 0, false, err
	}
	for i := len(ids) - 1; i >= 0 && ids[i] > before; i-- {
		cert, err := c.GetCertificate(ctx, ids[i])
		if err != nil {
			return 0, false, err
		}
		if cert.CertificateHash == req.CertificateHash {
			return ids[i], true, nil
		}
	}
	return 0, false, nil
}

// RevokeCertificate submits a revocation. After a transient failure it resubmits only
// if the certificate is still valid.
func (c *Client) RevokeCertificate(ctx context.Context, id uint64) error {
	name := certificateTx("RevokeCertificate")
	arg := strconv.FormatUint(id, 10)
	_, err := c.gateway.Submit(ctx, name, arg)
	if err == nil {
		return nil
	}
	if !IsTransient(err) {
		return fmt.Errorf("RevokeCertificate: %w", err)
	}
	logger.Warningf("RevokeCertificate %d failed transiently: %v. Checking ledger before resubmitting.", id, err)

	cert, checkErr := c.GetCertificate(ctx, id)
	if checkErr != nil {
		return fmt.Errorf("RevokeCertificate: %w: %v (check failed: %v)", ErrAmbiguousCommit, err, checkErr)
	}
	if !cert.Valid {
		return nil
	}
	if _, err := c.gateway.Submit(ctx, name, arg); err != nil {
		return fmt.Errorf("RevokeCertificate: %w", err)
	}
	return nil
}

func (c *Client) AddAdministrator(ctx context.Context, target string) error {
	return c.submitIdempotent(ctx, certificateTx("AddAdministrator"), target)
}

func (c *Client) RemoveAdministrator(ctx context.Context, target string) error {
	return c.submitIdempotent(ctx, certificateTx("RemoveAdministrator"), target)
}

func (c *Client) PauseContract(ctx context.Context) error {
	return c.submitIdempotent(ctx, certificateTx("PauseContract"))
}

func (c *Client) UnpauseContract(ctx context.Context) error {
	return c.submitIdempotent(ctx, certificateTx("UnpauseContract"))
}

// submitIdempotent resubmits once after a transient failure. Only for transactions whose
// repetition is a no-op on the ledger.
func (c *Client) submitIdempotent(ctx context.Context, name string, args ...string) error {
	_, err := c.gateway.Submit(ctx, name, args...)
	if err == nil {
		return nil
	}
	if !IsTransient(err) {
		return fmt.Errorf("%s: %w", name, err)
	}
	logger.Warningf("%s failed transiently: %v. Resubmitting once.", name, err)
	if _, err := c.gateway.Submit(ctx, name, args...); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Transfer submits a token transfer. Transfers are never repeated: a transient failure
// is reported as ErrAmbiguousCommit and the caller must check balances.
func (c *Client) Transfer(ctx context.Context, to string, amount uint64) error {
	_, err := c.gateway.Submit(ctx, tokenTx("Transfer"), to, strconv.FormatUint(amount, 10))
	if err == nil {
		return nil
	}
	if IsTransient(err) {
		return fmt.Errorf("Transfer: %w: %v", ErrAmbiguousCommit, err)
	}
	return fmt.Errorf("Transfer: %w", err)
}
