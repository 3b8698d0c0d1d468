package config

import "testing"

func TestNewAcceptsDefaults(t *testing.T) {
	if _, err := New(Defaults()); err != nil {
		t.Fatalf("unexpected error validating defaults: %v", err)
	}
}

func TestNewRejectsNonHTTPSBaseURL(t *testing.T) {
	cfg := Defaults()
	cfg.APIBaseURL = "http://api.example-music-service.com/v1"
	if _, err := New(cfg); err == nil {
		t.Fatal("expected non-HTTPS base URL to be rejected")
	}
}

func TestNewAllowsHTTPLocalhost(t *testing.T) {
	cfg := Defaults()
	cfg.APIBaseURL = "http://localhost:8080/v1"
	if _, err := New(cfg); err != nil {
		t.Fatalf("expected localhost HTTP to be allowed, got %v", err)
	}
}

func TestNewRejectsProtectedHeader(t *testing.T) {
	cfg := Defaults()
	cfg.CustomHeaders = map[string]string{"Authorization": "Bearer x"}
	if _, err := New(cfg); err == nil {
		t.Fatal("expected protected header override to be rejected")
	}
}

func TestNewRejectsNewlineInHeaderName(t *testing.T) {
	cfg := Defaults()
	cfg.CustomHeaders = map[string]string{"X-Bad\r\nInjected": "1"}
	if _, err := New(cfg); err == nil {
		t.Fatal("expected header name with newline to be rejected")
	}
}

func TestNewRejectsZeroTimeout(t *testing.T) {
	cfg := Defaults()
	cfg.RequestTimeout = 0
	if _, err := New(cfg); err == nil {
		t.Fatal("expected zero request timeout to be rejected")
	}
}

func TestValidationIsIdempotent(t *testing.T) {
	first, err := New(Defaults())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := New(first)
	if err != nil {
		t.Fatalf("unexpected error on second validation: %v", err)
	}
	if first.APIBaseURL != second.APIBaseURL || first.RequestTimeout != second.RequestTimeout {
		t.Fatal("expected validate(validate(c)) == validate(c)")
	}
}

func TestMergeHeadersRightBiased(t *testing.T) {
	base := map[string]string{"X-A": "1", "X-B": "2"}
	override := map[string]string{"X-B": "override", "X-C": "3"}
	merged := MergeHeaders(base, override)

	if merged["X-A"] != "1" || merged["X-B"] != "override" || merged["X-C"] != "3" {
		t.Fatalf("unexpected merge result: %#v", merged)
	}
}

func TestMergeHeadersCommutativeWhenDisjoint(t *testing.T) {
	base := map[string]string{"X-A": "1"}
	override := map[string]string{"X-B": "2"}

	ab := MergeHeaders(base, override)
	ba := MergeHeaders(override, base)

	if ab["X-A"] != ba["X-A"] || ab["X-B"] != ba["X-B"] {
		t.Fatal("expected disjoint merges to commute")
	}
}
