package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kailas-cloud/fedsearch/internal/domain/search/scope"
)

const testSecret = "test-secret"

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// principalRecorder captures the principal the middleware stored.
func principalRecorder(got *scope.Principal) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func signToken(t *testing.T, method jwt.SigningMethod, key any, claims Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func userClaims(tenant string) Claims {
	return Claims{
		TenantID: tenant,
		UserID:   "u1",
		Roles:    []string{"USER"},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "fedsearch",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func bearer(tok string) string { return "Bearer " + tok }

func TestAuthMiddleware_ValidToken(t *testing.T) {
	var got scope.Principal
	handler := BearerAuthMiddleware(AuthConfig{Secret: testSecret})(principalRecorder(&got))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search/quick", http.NoBody)
	req.Header.Set("Authorization", bearer(signToken(t, jwt.SigningMethodHS256, []byte(testSecret), userClaims("t1"))))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want %d", rr.Code, http.StatusOK)
	}
	if got.TenantID != "t1" || got.UserID != "u1" || !slices.Equal(got.Roles, []string{"USER"}) {
		t.Errorf("principal = %+v", got)
	}
}

func TestAuthMiddleware_AdminClaim(t *testing.T) {
	var got scope.Principal
	handler := BearerAuthMiddleware(AuthConfig{Secret: testSecret})(principalRecorder(&got))

	claims := userClaims("")
	claims.Admin = true
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/search", http.NoBody)
	req.Header.Set("Authorization", bearer(signToken(t, jwt.SigningMethodHS256, []byte(testSecret), claims)))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want %d", rr.Code, http.StatusOK)
	}
	if !got.IsAdmin() {
		t.Errorf("principal = %+v, want admin", got)
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	expired := userClaims("t1")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	wrongIssuer := userClaims("t1")
	wrongIssuer.Issuer = "someone-else"

	tests := []struct {
		name    string
		header  string
		wantMsg string
	}{
		{"missing header", "", "missing authorization header"},
		{"basic scheme", "Basic dXNlcjpwYXNz", "authorization header must use Bearer scheme"},
		{"garbage token", "Bearer not-a-jwt", "invalid token"},
		{"wrong key", bearer(signToken(t, jwt.SigningMethodHS256, []byte("other"), userClaims("t1"))), "invalid token"},
		{"wrong alg", bearer(signToken(t, jwt.SigningMethodHS512, []byte(testSecret), userClaims("t1"))), "invalid token"},
		{"expired", bearer(signToken(t, jwt.SigningMethodHS256, []byte(testSecret), expired)), "token expired"},
		{"wrong issuer", bearer(signToken(t, jwt.SigningMethodHS256, []byte(testSecret), wrongIssuer)), "invalid token"},
		{"no tenant", bearer(signToken(t, jwt.SigningMethodHS256, []byte(testSecret), userClaims(""))), "invalid token"},
	}

	handler := BearerAuthMiddleware(AuthConfig{Secret: testSecret, Issuer: "fedsearch"})(okHandler())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/search/quick", http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("got %d, want %d", rr.Code, http.StatusUnauthorized)
			}
			var errResp ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
				t.Fatalf("decode error response: %v", err)
			}
			if errResp.Code != CodeUnauthorized || errResp.Message != tt.wantMsg {
				t.Errorf("error = %+v, want %s %q", errResp, CodeUnauthorized, tt.wantMsg)
			}
		})
	}
}

func TestAuthMiddleware_ExemptPaths(t *testing.T) {
	handler := BearerAuthMiddleware(AuthConfig{Secret: testSecret})(okHandler())

	for _, path := range []string{"/health", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("%s: got %d, want %d", path, rr.Code, http.StatusOK)
		}
	}
}

func TestAuthMiddleware_DisabledReadsHeaders(t *testing.T) {
	var got scope.Principal
	handler := BearerAuthMiddleware(AuthConfig{})(principalRecorder(&got))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search/quick", http.NoBody)
	req.Header.Set(HeaderTenantID, "t9")
	req.Header.Set(HeaderUserID, "dev")
	req.Header.Set(HeaderRoles, "USER, ROLE_ADMIN,")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want %d", rr.Code, http.StatusOK)
	}
	if got.TenantID != "t9" || got.UserID != "dev" || !slices.Equal(got.Roles, []string{"USER", "ROLE_ADMIN"}) {
		t.Errorf("principal = %+v", got)
	}
}

func TestPrincipalFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	if p := PrincipalFromContext(req.Context()); p.TenantID != "" || p.IsAdmin() {
		t.Errorf("principal = %+v, want zero", p)
	}
}
