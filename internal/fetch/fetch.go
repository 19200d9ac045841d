//-------------------------------------------------------------------------
//
// foodwh-etl
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package fetch downloads raw source datasets into the raw zone.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/foodwh/foodwh-etl/internal/config"
	"github.com/foodwh/foodwh-etl/internal/logging"
	"github.com/foodwh/foodwh-etl/internal/storage"
)

// Config configures a Client. Zero values get defaults: a 5 minute timeout,
// 3 retries and backoff from 500ms doubling up to 10s. A negative
// MaxRetries disables retries.
type Config struct {
	Timeout        time.Duration
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	UserAgent      string

	// Transport overrides the HTTP transport.
	Transport http.RoundTripper
}

// Client downloads datasets with retry on transient failures.
type Client struct {
	http           *http.Client
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	userAgent      string

	// sleep waits between attempts, returning early when ctx is done.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient constructs a Client, applying defaults for zero values.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	} else if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 500 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 10 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "foodwh-etl"
	}

	return &Client{
		http:           &http.Client{Timeout: cfg.Timeout, Transport: cfg.Transport},
		maxRetries:     cfg.MaxRetries,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		userAgent:      cfg.UserAgent,
		sleep:          sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// StatusError is a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// retryable reports whether an attempt that failed with err may succeed
// if repeated.
func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusTooManyRequests || se.StatusCode >= 500
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// Get downloads url and returns the body.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	backoff := c.initialBackoff
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			logging.Warn().
				Err(lastErr).
				Str("url", url).
				Int("attempt", attempt+1).
				Dur("backoff", backoff).
				Msg("Retrying download")
			if err := c.sleep(ctx, backoff); err != nil {
				return nil, err
			}
			backoff = min(backoff*2, c.maxBackoff)
		}

		data, err := c.get(ctx, url)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retryable(err) {
			break
		}
	}
	return nil, lastErr
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

// Result is one downloaded dataset.
type Result struct {
	Dataset string
	Key     string
	Size    int64
}

// Sources downloads every configured source with a URL (or only the named
// ones) into the raw zone of store. Datasets are fetched in name order and
// the first failure stops the run.
func Sources(ctx context.Context, c *Client, store storage.Store, cfg *config.Config, only ...string) ([]Result, error) {
	sources := cfg.Sources.Downloadable()
	if len(only) > 0 {
		selected := make(map[string]config.SourceConfig, len(only))
		for _, name := range only {
			src, ok := sources[name]
			if !ok {
				return nil, fmt.Errorf("source %q has no url configured", name)
			}
			selected[name] = src
		}
		sources = selected
	}

	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]Result, 0, len(names))
	for _, name := range names {
		src := sources[name]
		start := time.Now()

		data, err := c.Get(ctx, src.URL)
		if err != nil {
			return results, fmt.Errorf("fetch %s: %w", name, err)
		}
		key := cfg.Storage.RawKey(src.Key)
		if err := store.Put(ctx, key, data); err != nil {
			return results, fmt.Errorf("store %s: %w", name, err)
		}

		r := Result{Dataset: name, Key: key, Size: int64(len(data))}
		results = append(results, r)
		logging.Info().
			Str("dataset", name).
			Str("key", key).
			Int64("bytes", r.Size).
			Dur("elapsed", time.Since(start)).
			Msg("Source downloaded")
	}
	return results, nil
}
