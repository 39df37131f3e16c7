package chi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/fedsearch/internal/domain/search/scope"
	"github.com/kailas-cloud/fedsearch/internal/logger"
)

// exemptPaths are routes that bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// Headers trusted for identity only while token verification is disabled.
const (
	HeaderTenantID = "X-Tenant-ID"
	HeaderUserID   = "X-User-ID"
	HeaderRoles    = "X-Roles"
)

var (
	errMissingToken = errors.New("missing authorization header")
	errBadScheme    = errors.New("authorization header must use Bearer scheme")
	errInvalidToken = errors.New("invalid token")
	errExpiredToken = errors.New("token expired")
)

// Claims is the bearer token payload mapped onto scope.Principal.
type Claims struct {
	TenantID string   `json:"tenant_id"`
	UserID   string   `json:"user_id"`
	Roles    []string `json:"roles,omitempty"`
	Admin    bool     `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

// Principal converts verified claims into the caller identity.
func (c *Claims) Principal() scope.Principal {
	return scope.Principal{
		UserID:   c.UserID,
		TenantID: c.TenantID,
		Roles:    c.Roles,
		Admin:    c.Admin,
	}
}

// AuthConfig configures bearer token verification.
type AuthConfig struct {
	Secret string
	Issuer string
}

type principalKey struct{}

// ContextWithPrincipal stores the caller identity in ctx.
func ContextWithPrincipal(ctx context.Context, p scope.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the caller identity, or the zero Principal
// (which every search path rejects) when none was stored.
func PrincipalFromContext(ctx context.Context) scope.Principal {
	p, _ := ctx.Value(principalKey{}).(scope.Principal)
	return p
}

// BearerAuthMiddleware verifies HS256 bearer tokens and stores the resulting
// principal in the request context. With an empty secret the identity is read
// from the X-Tenant-ID, X-User-ID and X-Roles headers instead.
func BearerAuthMiddleware(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if cfg.Secret == "" {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), headerPrincipal(r))))
			})
		}

		parser := newParser(cfg)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := parser.parse(r.Header.Get("Authorization"))
			if err != nil {
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, err.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), claims.Principal())))
		})
	}
}

// withPrincipal stores p and tags the request logger with the caller.
func withPrincipal(ctx context.Context, p scope.Principal) context.Context {
	ctx = logger.WithFields(ctx, zap.String("tenant_id", p.TenantID), zap.String("user_id", p.UserID))
	return ContextWithPrincipal(ctx, p)
}

type tokenParser struct {
	secret []byte
	parser *jwt.Parser
}

func newParser(cfg AuthConfig) *tokenParser {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	return &tokenParser{secret: []byte(cfg.Secret), parser: jwt.NewParser(opts...)}
}

func (p *tokenParser) parse(header string) (*Claims, error) {
	if header == "" {
		return nil, errMissingToken
	}
	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(header, bearerPrefix) {
		return nil, errBadScheme
	}

	claims := &Claims{}
	token, err := p.parser.ParseWithClaims(header[len(bearerPrefix):], claims, func(*jwt.Token) (any, error) {
		return p.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errExpiredToken
		}
		return nil, errInvalidToken
	}
	if !token.Valid || (claims.TenantID == "" && !claims.Principal().IsAdmin()) {
		return nil, errInvalidToken
	}
	return claims, nil
}

func headerPrincipal(r *http.Request) scope.Principal {
	p := scope.Principal{
		TenantID: r.Header.Get(HeaderTenantID),
		UserID:   r.Header.Get(HeaderUserID),
	}
	if roles := r.Header.Get(HeaderRoles); roles != "" {
		for _, role := range strings.Split(roles, ",") {
			if role = strings.TrimSpace(role); role != "" {
				p.Roles = append(p.Roles, role)
			}
		}
	}
	return p
}
