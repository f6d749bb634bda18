package auth

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Role is a user's access role. Wire values match the persisted enum.
type Role string

const (
	RoleUser      Role = "user"
	RolePatient   Role = "paciente"
	RoleAttendant Role = "atendente"
	RoleManager   Role = "gerente"
	RoleAdmin     Role = "admin"
)

// Tier is an ordered authorization level. Every operation is gated by the
// lowest tier allowed to call it; a role meets a tier when its own tier is
// equal or higher.
type Tier int

const (
	TierPublic Tier = iota
	TierAuthenticated
	TierAttendant
	TierManager
)

func (t Tier) String() string {
	switch t {
	case TierAuthenticated:
		return "authenticated"
	case TierAttendant:
		return "attendant"
	case TierManager:
		return "manager"
	default:
		return "public"
	}
}

// Tier maps a role to its authorization tier. Unknown roles get the
// authenticated tier: a valid token is still a logged-in user.
func (r Role) Tier() Tier {
	switch r {
	case RoleAttendant:
		return TierAttendant
	case RoleManager, RoleAdmin:
		return TierManager
	default:
		return TierAuthenticated
	}
}

// Meets reports whether the role's tier is at or above the required tier.
func (r Role) Meets(required Tier) bool {
	return r.Tier() >= required
}

// ValidAssignableRole reports whether s is a role a manager may assign.
// Admin is deliberately excluded from the assignable set.
func ValidAssignableRole(s string) bool {
	switch Role(s) {
	case RolePatient, RoleAttendant, RoleManager:
		return true
	}
	return false
}

// Principal is the resolved caller: the users row behind the token subject.
type Principal struct {
	ID     int64
	OpenID string
	Role   Role
}

const principalKey contextKey = "auth_principal"

// WithPrincipal returns a context carrying the resolved caller.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext retrieves the resolved caller, or nil.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey).(*Principal)
	return p
}

// RequireTier returns middleware that rejects callers below the required
// tier with 403 before the handler body runs. The denial is terminal for
// the call and produces no side effects.
func RequireTier(required Tier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := PrincipalFromContext(c.Request().Context())
			if p == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}
			if !p.Role.Meets(required) {
				return echo.NewHTTPError(http.StatusForbidden,
					"required tier: "+required.String())
			}
			return next(c)
		}
	}
}
