package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// ErrUnavailable wraps storage failures on write paths; handlers surface
// it as 503.
var ErrUnavailable = errors.New("storage unavailable")

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// ListChannels returns active channels. Storage failures degrade to an
// empty listing.
func (s *Service) ListChannels(ctx context.Context) ([]*Channel, error) {
	channels, err := s.repo.ListActiveChannels(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("list channels unavailable, returning empty")
		return []*Channel{}, nil
	}
	if channels == nil {
		channels = []*Channel{}
	}
	return channels, nil
}

func (s *Service) CreateChannel(ctx context.Context, ch *Channel) error {
	if ch.Name == "" {
		return fmt.Errorf("name is required")
	}
	if ch.Identifier == "" {
		return fmt.Errorf("identifier is required")
	}
	if err := s.repo.CreateChannel(ctx, ch); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// ListQuickReplies returns active quick replies ordered by category and
// title. Storage failures degrade to an empty listing.
func (s *Service) ListQuickReplies(ctx context.Context) ([]*QuickReply, error) {
	replies, err := s.repo.ListActiveQuickReplies(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("list quick replies unavailable, returning empty")
		return []*QuickReply{}, nil
	}
	if replies == nil {
		replies = []*QuickReply{}
	}
	return replies, nil
}

func (s *Service) CreateQuickReply(ctx context.Context, qr *QuickReply) error {
	if qr.Title == "" {
		return fmt.Errorf("title is required")
	}
	if qr.Content == "" {
		return fmt.Errorf("content is required")
	}
	if qr.CreatedBy == 0 {
		return fmt.Errorf("created_by is required")
	}
	if err := s.repo.CreateQuickReply(ctx, qr); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *Service) DeactivateQuickReply(ctx context.Context, id int64) error {
	err := s.repo.DeactivateQuickReply(ctx, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}
