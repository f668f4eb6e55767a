package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func signed(t *testing.T, secret string, exp time.Time, method jwt.SigningMethod) string {
	t.Helper()
	tok := jwt.NewWithClaims(method, jwt.RegisteredClaims{
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestRequireAuth(t *testing.T) {
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name   string
		secret string
		header string
		want   int
	}{
		{"missing header", "", "", http.StatusUnauthorized},
		{"wrong scheme", "", "Basic abc", http.StatusUnauthorized},
		{"empty bearer", "", "Bearer   ", http.StatusUnauthorized},
		{"opaque token without secret", "", "Bearer anything", http.StatusOK},
		{"lowercase scheme", "", "bearer anything", http.StatusOK},
		{"opaque token with secret", "s3cret", "Bearer anything", http.StatusUnauthorized},
		{"valid jwt", "s3cret", "Bearer " + signed(t, "s3cret", future, jwt.SigningMethodHS256), http.StatusOK},
		{"jwt signed with other key", "s3cret", "Bearer " + signed(t, "other", future, jwt.SigningMethodHS256), http.StatusUnauthorized},
		{"expired jwt", "s3cret", "Bearer " + signed(t, "s3cret", time.Now().Add(-time.Hour), jwt.SigningMethodHS256), http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/leads", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			RequireAuth(tt.secret)(okHandler()).ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/leads/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/leads/{id}", "404"))
	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/leads/"+id, nil))
	}
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/leads/{id}", "404"))

	assert.Equal(t, 2.0, after-before)
}

func TestRecordLeadIngested(t *testing.T) {
	before := testutil.ToFloat64(leadsIngested.WithLabelValues("meta_ads"))
	RecordLeadIngested("meta_ads")
	assert.Equal(t, 1.0, testutil.ToFloat64(leadsIngested.WithLabelValues("meta_ads"))-before)
}
