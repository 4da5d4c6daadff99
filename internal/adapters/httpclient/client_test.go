package httpclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"placepage/internal/adapters/httpclient"
	"placepage/internal/domain"
)

func newClient(t *testing.T, url string) *httpclient.Client {
	t.Helper()
	cl, err := httpclient.New(httpclient.Options{Base: url, Name: "test", APIKey: "k", RPS: 100})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	return cl
}

func TestGet_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != "k" {
			t.Errorf("api key header missing")
		}
		switch atomic.AddInt32(&hits, 1) {
		case 1:
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
		case 2:
			w.WriteHeader(http.StatusBadGateway)
		default:
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "b1"})
		}
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var got map[string]any
	if err := newClient(t, ts.URL).Get(ctx, "property", "/x", &got); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got["id"] != "b1" {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if n := atomic.LoadInt32(&hits); n != 3 {
		t.Fatalf("expected 3 calls, got %d", n)
	}
}

func TestGet_StatusSentinels(t *testing.T) {
	cases := map[int]error{
		http.StatusNotFound:     domain.ErrNotFound,
		http.StatusUnauthorized: domain.ErrUnauthorized,
		http.StatusForbidden:    domain.ErrForbidden,
	}
	for code, want := range cases {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))
		var out map[string]any
		err := newClient(t, ts.URL).Get(context.Background(), "op", "/", &out)
		ts.Close()
		if !errors.Is(err, want) {
			t.Fatalf("status %d: expected %v, got %v", code, want, err)
		}
	}
}

func TestGetFirst_FallsThroughOnlyOn404(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/modern":
			http.NotFound(w, r)
		case "/legacy":
			_ = json.NewEncoder(w).Encode(map[string]string{"v": "legacy"})
		case "/locked":
			w.WriteHeader(http.StatusForbidden)
		}
	}))
	defer ts.Close()
	cl := newClient(t, ts.URL)

	var out map[string]string
	if err := cl.GetFirst(context.Background(), "op", []string{"/modern", "/legacy"}, &out); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out["v"] != "legacy" {
		t.Fatalf("expected legacy payload, got %+v", out)
	}

	err := cl.GetFirst(context.Background(), "op", []string{"/locked", "/legacy"}, &out)
	if !errors.Is(err, httpclient.ErrForbidden) {
		t.Fatalf("expected forbidden to stop the walk, got %v", err)
	}
}

func TestNew_RequiresBase(t *testing.T) {
	if _, err := httpclient.New(httpclient.Options{}); err == nil {
		t.Fatalf("expected error without base URL")
	}
}
