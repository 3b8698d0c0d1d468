package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPTransportDoSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Test", "1")
		w.WriteHeader(200)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tr := NewHTTPTransport(nil)
	resp, err := tr.Do(context.Background(), Request{Method: "GET", URL: srv.URL, Headers: http.Header{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != 200 || string(resp.Body) != `{"ok":true}` {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Headers.Get("X-Test") != "1" {
		t.Fatal("expected response headers to be populated")
	}
}

func TestHTTPTransportDoNon2xxIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
	}))
	defer srv.Close()

	tr := NewHTTPTransport(nil)
	resp, err := tr.Do(context.Background(), Request{Method: "GET", URL: srv.URL, Headers: http.Header{}})
	if err != nil {
		t.Fatalf("expected 404 to be a Response, not an error: %v", err)
	}
	if resp.Status != 404 {
		t.Fatalf("expected status 404, got %d", resp.Status)
	}
}
