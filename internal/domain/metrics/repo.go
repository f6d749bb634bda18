package metrics

import (
	"context"
	"time"
)

type Repository interface {
	// Upsert inserts the metric row or atomically replaces the existing
	// one for the same (attendant_id, date).
	Upsert(ctx context.Context, m *AttendanceMetric) error
	ListByAttendant(ctx context.Context, attendantID int64, start, end time.Time) ([]*AttendanceMetric, error)
	ListOverall(ctx context.Context, start, end time.Time) ([]*AttendanceMetric, error)
}
