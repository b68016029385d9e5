package httpds

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"pivot/internal/datasource"
)

var _ datasource.Source = (*Source)(nil)

// flaky fails the first n requests with status, then serves body.
func flaky(n int32, status int, body string) (*httptest.Server, *int32) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) <= n {
			w.WriteHeader(status)
			return
		}
		io.WriteString(w, body)
	}))
	return srv, &hits
}

func fastConfig(retries int) Config {
	return Config{MaxRetries: retries, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}
}

func TestSourceOpen(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		failures int32
		status   int
		retries  int
		wantBody string
		wantErr  string
		wantHits int32
	}{
		{name: "first try", wantBody: "a,1\n", wantHits: 1},
		{name: "retries 503", failures: 2, status: http.StatusServiceUnavailable, retries: 2, wantBody: "a,1\n", wantHits: 3},
		{name: "retries 429", failures: 1, status: http.StatusTooManyRequests, retries: 1, wantBody: "a,1\n", wantHits: 2},
		{name: "retries exhausted", failures: 5, status: http.StatusBadGateway, retries: 1, wantErr: "status 502", wantHits: 2},
		{name: "404 is not retried", failures: 5, status: http.StatusNotFound, retries: 3, wantErr: "status 404", wantHits: 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv, hits := flaky(tt.failures, tt.status, "a,1\n")
			defer srv.Close()

			rc, err := New(srv.URL, fastConfig(tt.retries)).Open(context.Background())
			if got := atomic.LoadInt32(hits); got != tt.wantHits {
				t.Errorf("hits = %d, want %d", got, tt.wantHits)
			}
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Open() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer rc.Close()
			b, err := io.ReadAll(rc)
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			if string(b) != tt.wantBody {
				t.Fatalf("body = %q, want %q", b, tt.wantBody)
			}
		})
	}
}

func TestSourceOpen_SendsHeaders(t *testing.T) {
	t.Parallel()

	var got atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.Header.Get("Authorization"))
	}))
	defer srv.Close()

	cfg := Config{Header: http.Header{"Authorization": []string{"Bearer t0k"}}}
	rc, err := New(srv.URL, cfg).Open(context.Background())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	rc.Close()
	if got.Load() != "Bearer t0k" {
		t.Fatalf("Authorization = %v, want Bearer t0k", got.Load())
	}
}

func TestSourceOpen_CanceledDuringBackoff(t *testing.T) {
	t.Parallel()

	srv, _ := flaky(100, http.StatusServiceUnavailable, "")
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	cfg := Config{MaxRetries: 10, InitialBackoff: time.Second, MaxBackoff: time.Second}
	_, err := New(srv.URL, cfg).Open(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Open() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestBackoff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n    int
		want time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{3, 800 * time.Millisecond},
		{4, time.Second},
		{30, time.Second},
	}
	for _, tt := range tests {
		if got := backoff(100*time.Millisecond, tt.n, time.Second); got != tt.want {
			t.Errorf("backoff(n=%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestIsURL(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]bool{
		"http://host/data.csv":  true,
		"HTTPS://host/data.csv": true,
		"-":                     false,
		"data/http.csv":         false,
		"ftp://host/x":          false,
	} {
		if got := IsURL(in); got != want {
			t.Errorf("IsURL(%q) = %v, want %v", in, got, want)
		}
	}
}
