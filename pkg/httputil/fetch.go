package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/cartoforce/pkg/errors"
)

// Defaults for [Fetch].
const (
	DefaultAttempts = 3
	DefaultDelay    = time.Second
	DefaultTimeout  = 30 * time.Second

	// MaxBodySize bounds a downloaded input.
	MaxBodySize = 256 << 20
)

// Fetcher downloads URLs with retries. Zero fields take the defaults.
type Fetcher struct {
	Client   *http.Client
	Attempts int
	Delay    time.Duration
}

// Fetch downloads url with the default fetcher.
func Fetch(ctx context.Context, url string) ([]byte, error) {
	return Fetcher{}.Fetch(ctx, url)
}

// IsURL reports whether s is an http or https URL.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Fetch downloads url and returns the body.
func (f Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	attempts := f.Attempts
	if attempts == 0 {
		attempts = DefaultAttempts
	}
	delay := f.Delay
	if delay == 0 {
		delay = DefaultDelay
	}

	var body []byte
	err := Retry(ctx, attempts, delay, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "request %s", url)
		}
		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &RetryableError{Err: err}
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return &RetryableError{Err: fmt.Errorf("get %s: %s", url, resp.Status)}
		case resp.StatusCode != http.StatusOK:
			return errors.New(errors.ErrCodeInvalidInput, "get %s: %s", url, resp.Status)
		}
		body, err = io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
		if err != nil {
			return &RetryableError{Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}
