package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/caremsg/caremsg/internal/platform/auth"
)

// ErrInvalidRole is returned when a role change names a role managers
// may not assign.
var ErrInvalidRole = errors.New("invalid role")

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Resolve maps a token subject to its users row, inserting the row on
// first sight. The stored role is authoritative after creation; claims
// only seed the initial row.
func (s *Service) Resolve(ctx context.Context, claims *auth.Claims) (*User, error) {
	openID := claims.Subject
	if openID == "" {
		return nil, fmt.Errorf("token has no subject")
	}

	u, err := s.repo.GetByOpenID(ctx, openID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	role := auth.RolePatient
	if claims.Role != "" {
		role = auth.Role(claims.Role)
	}
	u = &User{
		OpenID: openID,
		Name:   claims.Name,
		Role:   role,
	}
	if claims.Email != "" {
		u.Email = &claims.Email
	}
	if claims.LoginMethod != "" {
		u.LoginMethod = &claims.LoginMethod
	}
	if err := s.repo.Create(ctx, u); err != nil {
		// Concurrent first requests can race the insert; the winner's
		// row is the one we want.
		if existing, getErr := s.repo.GetByOpenID(ctx, openID); getErr == nil {
			return existing, nil
		}
		return nil, err
	}
	return u, nil
}

// Login resolves the caller and refreshes profile fields and
// last_signed_in from the token claims.
func (s *Service) Login(ctx context.Context, claims *auth.Claims) (*User, error) {
	u, err := s.Resolve(ctx, claims)
	if err != nil {
		return nil, err
	}
	if claims.Name != "" {
		u.Name = claims.Name
	}
	if claims.Email != "" {
		u.Email = &claims.Email
	}
	if claims.LoginMethod != "" {
		u.LoginMethod = &claims.LoginMethod
	}
	if err := s.repo.UpdateSignIn(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// ListAttendants returns attendant users. Storage failures degrade to an
// empty listing.
func (s *Service) ListAttendants(ctx context.Context, limit, offset int) ([]*User, int, error) {
	users, total, err := s.repo.ListAttendants(ctx, limit, offset)
	if err != nil {
		s.logger.Warn().Err(err).Msg("list attendants unavailable, returning empty")
		return []*User{}, 0, nil
	}
	return users, total, nil
}

func (s *Service) UpdateRole(ctx context.Context, id int64, role string) error {
	if !auth.ValidAssignableRole(role) {
		return fmt.Errorf("%w: %s", ErrInvalidRole, role)
	}
	return s.repo.UpdateRole(ctx, id, role)
}
