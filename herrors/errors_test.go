package herrors

import "testing"

func TestRetryClassification(t *testing.T) {
	cases := []struct {
		name      string
		err       Classifiable
		retryable bool
		strategy  Strategy
	}{
		{"invalid request", &InvalidRequest{Reason: "bad limit"}, false, StrategyNone},
		{"auth 401-style denial", &AuthFailure{Kind: KindAuthorizationDenied, Code: "access_denied"}, false, StrategyNone},
		{"auth endpoint 5xx", &AuthFailure{Kind: KindTokenEndpointHTTP, Status: 503}, true, StrategyRetryTransient},
		{"auth endpoint 4xx", &AuthFailure{Kind: KindTokenEndpointHTTP, Status: 400}, false, StrategyNone},
		{"rate limited", &RateLimited{RetryAfter: 2}, true, StrategyRetryRateLimit},
		{"http 500", &HTTPError{Status: 500}, true, StrategyRetryTransient},
		{"http 404", &HTTPError{Status: 404}, false, StrategyNone},
		{"network failure", &NetworkFailure{Detail: errCause}, true, StrategyRetryTransient},
		{"decode failure", &UnexpectedResponse{Cause: errCause}, false, StrategyNone},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.err.Retryable(); got != tc.retryable {
				t.Errorf("Retryable() = %v, want %v", got, tc.retryable)
			}
			if got := tc.err.Strategy(); got != tc.strategy {
				t.Errorf("Strategy() = %v, want %v", got, tc.strategy)
			}
		})
	}
}

var errCause = &testErr{"boom"}

type testErr struct{ msg string }

func (e *testErr) Error() string { return e.msg }

func TestTokenStorageErrorUnwrap(t *testing.T) {
	wrapped := &TokenStorageError{Cause: errCause}
	if wrapped.Unwrap() != errCause {
		t.Fatal("expected Unwrap to return the cause")
	}
}
