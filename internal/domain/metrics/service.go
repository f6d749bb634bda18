package metrics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrUnavailable wraps storage failures on write paths; handlers
	// surface it as 503.
	ErrUnavailable = errors.New("storage unavailable")

	// ErrMissingRange is returned when a metrics query has no date range.
	ErrMissingRange = errors.New("start and end dates are required")
)

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Upsert writes an attendant's daily rollup, replacing any existing row
// for the same day in a single statement.
func (s *Service) Upsert(ctx context.Context, m *AttendanceMetric) error {
	if m.AttendantID == 0 {
		return fmt.Errorf("attendant_id is required")
	}
	if m.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	// Normalize to the day; the column is a DATE
	m.Date = m.Date.Truncate(24 * time.Hour)
	if err := s.repo.Upsert(ctx, m); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// ListByAttendant returns one attendant's rollups for the range, newest
// first. Storage failures degrade to an empty listing.
func (s *Service) ListByAttendant(ctx context.Context, attendantID int64, start, end time.Time) ([]*AttendanceMetric, error) {
	if start.IsZero() || end.IsZero() {
		return nil, ErrMissingRange
	}
	result, err := s.repo.ListByAttendant(ctx, attendantID, start, end)
	if err != nil {
		s.logger.Warn().Err(err).Int64("attendant_id", attendantID).
			Msg("metrics unavailable, returning empty")
		return []*AttendanceMetric{}, nil
	}
	if result == nil {
		result = []*AttendanceMetric{}
	}
	return result, nil
}

// ListOverall returns rollups across all attendants for the range.
func (s *Service) ListOverall(ctx context.Context, start, end time.Time) ([]*AttendanceMetric, error) {
	if start.IsZero() || end.IsZero() {
		return nil, ErrMissingRange
	}
	result, err := s.repo.ListOverall(ctx, start, end)
	if err != nil {
		s.logger.Warn().Err(err).Msg("overall metrics unavailable, returning empty")
		return []*AttendanceMetric{}, nil
	}
	if result == nil {
		result = []*AttendanceMetric{}
	}
	return result, nil
}
