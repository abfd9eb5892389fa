package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iho/lnstable/internal/infrastructure/auth"
	"github.com/iho/lnstable/internal/infrastructure/metrics"
)

func TestAuth(t *testing.T) {
	tokens := auth.NewJWTManager("test-secret", time.Hour)
	valid, _, err := tokens.Generate("satoshi1")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	expired, _, err := auth.NewJWTManager("test-secret", -time.Minute).Generate("satoshi1")
	if err != nil {
		t.Fatalf("generate expired token: %v", err)
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
		outcome    string
	}{
		{name: "valid", header: "Bearer " + valid, wantStatus: http.StatusOK, outcome: "ok"},
		{name: "lowercase scheme", header: "bearer " + valid, wantStatus: http.StatusOK, outcome: "ok"},
		{name: "missing", header: "", wantStatus: http.StatusUnauthorized, outcome: "missing"},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized, outcome: "malformed"},
		{name: "garbage", header: "Bearer not-a-jwt", wantStatus: http.StatusUnauthorized, outcome: "invalid"},
		{name: "expired", header: "Bearer " + expired, wantStatus: http.StatusUnauthorized, outcome: "expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := metrics.New(prometheus.NewRegistry())
			var gotUser string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser, _ = UsernameFromContext(r.Context())
			})

			req := httptest.NewRequest(http.MethodGet, "/api/balance", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			Auth(tokens, m)(next).ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}
			if tt.wantStatus == http.StatusOK && gotUser != "satoshi1" {
				t.Fatalf("expected username in context, got %q", gotUser)
			}
			if got := testutil.ToFloat64(m.AuthAttempts.WithLabelValues(tt.outcome)); got != 1 {
				t.Fatalf("expected one %q auth attempt, got %v", tt.outcome, got)
			}
		})
	}
}

func TestUsernameFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := UsernameFromContext(req.Context()); ok {
		t.Fatalf("expected no username")
	}
	if _, ok := UsernameFromContext(WithUsername(req.Context(), "")); ok {
		t.Fatalf("empty username should not count as authenticated")
	}
}
