package common

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	// ErrServiceUnavailable indicates the remote service is not reachable
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrServiceOverloaded indicates the service answered 502/503/504/429
	ErrServiceOverloaded = errors.New("service overloaded")

	// ErrMaxRetriesExceeded indicates all retry attempts failed
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// RetryConfig holds retry/backoff configuration
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64
}

// DefaultRetryConfig is tuned for calls made while a user waits on a redirect
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     2,
		InitialBackoff: 200 * time.Millisecond,
		MaxBackoff:     2 * time.Second,
		BackoffFactor:  2.0,
	}
}

// ResilientHTTPClient retries idempotent requests on transport failures and
// overload status codes with exponential backoff
type ResilientHTTPClient struct {
	client *http.Client
	config RetryConfig
	logger *logrus.Logger
}

// NewResilientHTTPClient wraps client; a nil client means http.DefaultClient
func NewResilientHTTPClient(client *http.Client, config RetryConfig, logger *logrus.Logger) *ResilientHTTPClient {
	if client == nil {
		client = http.DefaultClient
	}
	if config.BackoffFactor < 1 {
		config.BackoffFactor = 1
	}
	return &ResilientHTTPClient{
		client: client,
		config: config,
		logger: logger,
	}
}

// Do sends the request built by newReq, rebuilding it for every attempt so
// bodies can be replayed. The caller closes the returned body.
func (c *ResilientHTTPClient) Do(ctx context.Context, operation string, newReq func(ctx context.Context) (*http.Request, error)) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := CalculateBackoff(attempt, c.config.InitialBackoff, c.config.MaxBackoff, c.config.BackoffFactor)
			c.logger.WithFields(logrus.Fields{
				"operation": operation,
				"attempt":   attempt,
				"backoff":   backoff.String(),
			}).Debug("Retrying request after backoff")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := newReq(ctx)
		if err != nil {
			return nil, err
		}

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = classifyError(err)
			c.logger.WithFields(logrus.Fields{
				"operation": operation,
				"attempt":   attempt + 1,
				"error":     err.Error(),
			}).Warn("Request failed, will retry")
			continue
		}

		if isRetryableStatusCode(resp.StatusCode) {
			lastErr = fmt.Errorf("%w: status %d", ErrServiceOverloaded, resp.StatusCode)
			resp.Body.Close()

			c.logger.WithFields(logrus.Fields{
				"operation":   operation,
				"attempt":     attempt + 1,
				"status_code": resp.StatusCode,
			}).Warn("Retryable status code, will retry")
			continue
		}

		return resp, nil
	}

	return nil, fmt.Errorf("%w after %d attempts: %w", ErrMaxRetriesExceeded, c.config.MaxRetries+1, lastErr)
}

// classifyError converts a transport error to a sentinel error
func classifyError(err error) error {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return fmt.Errorf("%w: DNS lookup failed: %v", ErrServiceUnavailable, err)
	}
	return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
}

func isRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		http.StatusTooManyRequests:
		return true
	default:
		return false
	}
}

// CalculateBackoff computes the backoff duration for a given attempt
func CalculateBackoff(attempt int, initial, max time.Duration, factor float64) time.Duration {
	if attempt <= 0 {
		return 0
	}
	backoff := float64(initial) * math.Pow(factor, float64(attempt-1))
	if time.Duration(backoff) > max {
		return max
	}
	return time.Duration(backoff)
}
