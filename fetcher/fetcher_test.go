package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestFetchRetriesOnServerError(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := New(zap.NewNop(), Options{DomainDelay: time.Millisecond})
	resp, err := client.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Body) != "ok" {
		t.Errorf("expected body %q, got %q", "ok", resp.Body)
	}
	if got := attempts.Load(); got != 2 {
		t.Errorf("expected 2 attempts, got %d", got)
	}
}

func TestFetchClientErrorIsTypedAndNotRetried(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := New(zap.NewNop(), Options{DomainDelay: time.Millisecond})
	_, err := client.Fetch(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	var fetchErr *Error
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if fetchErr.Status != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", fetchErr.Status)
	}
	if fetchErr.Temporary() {
		t.Error("404 should not be temporary")
	}
	if got := attempts.Load(); got != 1 {
		t.Errorf("expected 1 attempt, got %d", got)
	}
}

func TestDomainDelaySharedAcrossCallers(t *testing.T) {
	var (
		mu    sync.Mutex
		times []time.Time
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		times = append(times, time.Now())
		mu.Unlock()
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	delay := 120 * time.Millisecond
	client := New(zap.NewNop(), Options{DomainDelay: delay})

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := client.Fetch(context.Background(), server.URL); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if len(times) != 3 {
		t.Fatalf("expected 3 requests, got %d", len(times))
	}
	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < len(times); i++ {
		if gap := times[i].Sub(times[i-1]); gap < delay-20*time.Millisecond {
			t.Errorf("request %d arrived %v after previous, want at least %v", i, gap, delay)
		}
	}
}

func TestAcquireCancelledContext(t *testing.T) {
	client := New(zap.NewNop(), Options{DomainDelay: time.Minute})
	ctx, cancel := context.WithCancel(context.Background())

	// First acquire reserves the slot; the second must wait a minute and
	// should give up when the context is cancelled.
	if err := client.acquire(ctx, "example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cancel()
	if err := client.acquire(ctx, "example.com"); err == nil {
		t.Fatal("expected context error")
	}
}

func TestFetchImage(t *testing.T) {
	testCases := []struct {
		name        string
		contentType string
		wantErr     bool
		wantType    string
	}{
		{"jpeg", "image/jpeg", false, "image/jpeg"},
		{"jpeg with charset", "image/jpeg; charset=binary", false, "image/jpeg"},
		{"html body", "text/html; charset=utf-8", true, ""},
		{"no content type", "", false, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tc.contentType != "" {
					w.Header().Set("Content-Type", tc.contentType)
				} else {
					w.Header()["Content-Type"] = nil
				}
				w.Write([]byte{0xff, 0xd8, 0xff})
			}))
			defer server.Close()

			client := New(zap.NewNop(), Options{DomainDelay: time.Millisecond})
			body, ct, err := client.FetchImage(context.Background(), server.URL)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ct != tc.wantType {
				t.Errorf("expected content type %q, got %q", tc.wantType, ct)
			}
			if len(body) == 0 {
				t.Error("expected body bytes")
			}
		})
	}
}

func TestDomainOf(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "https://www.Example.com/path", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := domainOf(req.URL); got != "example.com" {
		t.Errorf("expected example.com, got %q", got)
	}
}
