// Package httpclient is the JSON-over-HTTP client shared by the content and
// partner adapters: client-side rate limiting, retries on 429 and transient
// 5xx honoring Retry-After, and sentinel errors for the statuses callers
// branch on.
package httpclient

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"placepage/internal/adapters/observability"
	"placepage/internal/domain"
)

const maxAttempts = 4

// Sentinels wrap the domain errors so errors.Is works against either.
var (
	ErrNotFound     = fmt.Errorf("http: %w", domain.ErrNotFound)
	ErrUnauthorized = fmt.Errorf("http: %w", domain.ErrUnauthorized)
	ErrForbidden    = fmt.Errorf("http: %w", domain.ErrForbidden)
)

type Options struct {
	Base string
	// Name labels metrics and the User-Agent.
	Name      string
	APIKey    string
	KeyHeader string
	RPS       int
	Timeout   time.Duration
}

type Client struct {
	base      string
	name      string
	key       string
	keyHeader string
	hc        *http.Client
	rl        *rate.Limiter
}

func New(o Options) (*Client, error) {
	if o.Base == "" {
		return nil, errors.New("base URL is required")
	}
	if o.RPS <= 0 {
		o.RPS = 5
	}
	if o.Timeout <= 0 {
		o.Timeout = 20 * time.Second
	}
	if o.KeyHeader == "" {
		o.KeyHeader = "X-API-Key"
	}
	if o.Name == "" {
		o.Name = "remote"
	}
	return &Client{
		base:      strings.TrimRight(o.Base, "/"),
		name:      o.Name,
		key:       o.APIKey,
		keyHeader: o.KeyHeader,
		hc:        &http.Client{Timeout: o.Timeout},
		rl:        rate.NewLimiter(rate.Limit(o.RPS), o.RPS),
	}, nil
}

// GetFirst tries paths in order and returns on the first success. Only a
// 404 moves on to the next path.
func (c *Client) GetFirst(ctx context.Context, op string, paths []string, out any) error {
	var last error
	for _, p := range paths {
		if err := c.Get(ctx, op, p, out); err != nil {
			if errors.Is(err, ErrNotFound) {
				last = err
				continue
			}
			return err
		}
		return nil
	}
	if last != nil {
		return last
	}
	return errors.New("no candidate URL succeeded")
}

// Get fetches base+path and decodes the JSON body into out. op names the
// call in metrics.
func (c *Client) Get(ctx context.Context, op, path string, out any) error {
	start := time.Now()
	status := 0 // 0 = no response
	defer func() { observability.ObserveExternal(c.name, op, status, time.Since(start)) }()

	if err := c.rl.Wait(ctx); err != nil {
		return err
	}
	url := c.base + path

	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		if c.key != "" {
			req.Header.Set(c.keyHeader, c.key)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "placepage-"+c.name+"/1.0")

		resp, err := c.hc.Do(req)
		if err == nil {
			status = resp.StatusCode
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < maxAttempts-1 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}

		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated, http.StatusAccepted:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return err

		case http.StatusNoContent:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil

		case http.StatusNotFound:
			resp.Body.Close()
			return ErrNotFound

		case http.StatusUnauthorized:
			resp.Body.Close()
			return ErrUnauthorized

		case http.StatusForbidden:
			resp.Body.Close()
			return ErrForbidden

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < maxAttempts-1 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}
	return lastErr
}

// sleepCtx waits for d or returns false once ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After as seconds or an HTTP date; 0 if absent.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 200ms per attempt with up to 50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
