// Package scope derives the per-request security boundary from the caller identity.
package scope

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/fedsearch/internal/domain"
)

// RoleAdmin is the role granting access to the cross-tenant search path.
const RoleAdmin = "ADMIN"

// Principal is the verified caller identity supplied by the transport.
type Principal struct {
	UserID   string
	TenantID string
	Roles    []string
	Admin    bool
}

// IsAdmin reports whether the principal holds the admin flag or role.
func (p Principal) IsAdmin() bool {
	if p.Admin {
		return true
	}
	for _, r := range p.Roles {
		r = strings.TrimPrefix(strings.ToUpper(r), "ROLE_")
		if r == RoleAdmin {
			return true
		}
	}
	return false
}

// Scope is the security boundary applied to every executor of one request.
// The zero value is invalid: it neither restricts to a tenant nor grants
// unrestricted access, and executors refuse it.
type Scope struct {
	tenantID     string
	unrestricted bool
}

// TenantScoped restricts a request to one tenant.
func TenantScoped(tenantID string) Scope { return Scope{tenantID: tenantID} }

// Unrestricted is the admin scope with no tenant filter.
func Unrestricted() Scope { return Scope{unrestricted: true} }

// IsValid reports whether the scope was built by a constructor.
func (s Scope) IsValid() bool { return s.unrestricted || s.tenantID != "" }

// IsUnrestricted reports whether no tenant filter applies.
func (s Scope) IsUnrestricted() bool { return s.unrestricted }

// TenantID returns the tenant for tenant-scoped requests.
func (s Scope) TenantID() (string, bool) {
	if s.unrestricted || s.tenantID == "" {
		return "", false
	}
	return s.tenantID, true
}

// Permits reports whether a document owned by tenantID may be returned.
func (s Scope) Permits(tenantID string) bool {
	if s.unrestricted {
		return true
	}
	return s.tenantID != "" && s.tenantID == tenantID
}

func (s Scope) String() string {
	switch {
	case s.unrestricted:
		return "unrestricted"
	case s.tenantID != "":
		return "tenant:" + s.tenantID
	default:
		return "invalid"
	}
}

// Resolve derives the scope for the regular search path. It always yields a
// tenant scope, regardless of the principal's roles.
func Resolve(p Principal) (Scope, error) {
	if p.TenantID == "" {
		return Scope{}, fmt.Errorf("%w: principal has no tenant", domain.ErrAccessDenied)
	}
	return TenantScoped(p.TenantID), nil
}

// ResolveAdmin derives the scope for the admin path. Non-admins are rejected
// before any scope exists.
func ResolveAdmin(p Principal) (Scope, error) {
	if !p.IsAdmin() {
		return Scope{}, fmt.Errorf("%w: admin role required", domain.ErrAccessDenied)
	}
	return Unrestricted(), nil
}
