package client

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	DefaultMaxTries        = 5
	DefaultInitialInterval = 200 * time.Millisecond
	DefaultMaxElapsedTime  = 5 * time.Second
)

// transientMessages are fragments of gateway errors that indicate the peer or orderer
// could not be reached, as opposed to a rejected transaction.
var transientMessages = []string{
	"connection reset",
	"connection refused",
	"broken pipe",
	"unavailable",
	"deadline exceeded",
	"deadlineexceeded",
	"transport is closing",
}

// IsTransient reports whether err is an infrastructure failure worth retrying.
// Errors returned by the chaincode itself are never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, fragment := range transientMessages {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

func (c *Client) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialInterval
	b.MaxInterval = c.maxElapsedTime
	return b
}

// evaluate runs a read-only transaction, retrying transient failures with bounded
// exponential backoff.
func (c *Client) evaluate(ctx context.Context, name string, args ...string) ([]byte, error) {
	operation := func() ([]byte, error) {
		result, err := c.gateway.Evaluate(ctx, name, args...)
		if err != nil {
			if IsTransient(err) {
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}
		return result, nil
	}
	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(c.maxTries),
		backoff.WithMaxElapsedTime(c.maxElapsedTime),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Warningf("Evaluate %s failed: %v. Retrying in %s.", name, err, next)
		}),
	)
}
