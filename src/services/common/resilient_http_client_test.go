package common

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetries(n int) RetryConfig {
	return RetryConfig{MaxRetries: n, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond, BackoffFactor: 2}
}

func getter(url string) func(ctx context.Context) (*http.Request, error) {
	return func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	}
}

func TestResilientHTTPClient_RetriesOverload(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewResilientHTTPClient(srv.Client(), fastRetries(3), logrus.New())
	resp, err := c.Do(context.Background(), "test", getter(srv.URL))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestResilientHTTPClient_GivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewResilientHTTPClient(srv.Client(), fastRetries(2), logrus.New())
	_, err := c.Do(context.Background(), "test", getter(srv.URL))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMaxRetriesExceeded)
	assert.ErrorIs(t, err, ErrServiceOverloaded)
	assert.Equal(t, int32(3), calls.Load())
}

func TestResilientHTTPClient_ClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewResilientHTTPClient(srv.Client(), fastRetries(3), logrus.New())
	resp, err := c.Do(context.Background(), "test", getter(srv.URL))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestResilientHTTPClient_UnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewResilientHTTPClient(nil, fastRetries(1), logrus.New())
	_, err := c.Do(context.Background(), "test", getter(url))
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestResilientHTTPClient_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cfg := RetryConfig{MaxRetries: 5, InitialBackoff: time.Hour, MaxBackoff: time.Hour, BackoffFactor: 1}
	c := NewResilientHTTPClient(srv.Client(), cfg, logrus.New())

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := c.Do(ctx, "test", getter(srv.URL))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCalculateBackoff(t *testing.T) {
	assert.Equal(t, time.Duration(0), CalculateBackoff(0, time.Second, time.Minute, 2))
	assert.Equal(t, time.Second, CalculateBackoff(1, time.Second, time.Minute, 2))
	assert.Equal(t, 4*time.Second, CalculateBackoff(3, time.Second, time.Minute, 2))
	assert.Equal(t, time.Minute, CalculateBackoff(10, time.Second, time.Minute, 2))
}
