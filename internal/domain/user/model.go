package user

import (
	"time"

	"github.com/caremsg/caremsg/internal/platform/auth"
)

// User maps to the users table. OpenID is the identity provider subject;
// one row per subject, created lazily on first authenticated request.
type User struct {
	ID           int64      `db:"id" json:"id"`
	OpenID       string     `db:"open_id" json:"open_id"`
	Name         string     `db:"name" json:"name"`
	Email        *string    `db:"email" json:"email,omitempty"`
	LoginMethod  *string    `db:"login_method" json:"login_method,omitempty"`
	Role         auth.Role  `db:"role" json:"role"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
	LastSignedIn *time.Time `db:"last_signed_in" json:"last_signed_in,omitempty"`
}

// Principal converts the row into the request-scoped caller identity.
func (u *User) Principal() *auth.Principal {
	return &auth.Principal{ID: u.ID, OpenID: u.OpenID, Role: u.Role}
}
