package user

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no users row matches the lookup.
var ErrNotFound = errors.New("user not found")

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByOpenID(ctx context.Context, openID string) (*User, error)
	// UpdateSignIn refreshes profile fields from token claims and stamps
	// last_signed_in.
	UpdateSignIn(ctx context.Context, u *User) error
	UpdateRole(ctx context.Context, id int64, role string) error
	ListAttendants(ctx context.Context, limit, offset int) ([]*User, int, error)
}
