package metrics

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/caremsg/caremsg/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const metricCols = `id, attendant_id, date, total_conversations, resolved_conversations,
	average_response_time, total_messages, created_at`

func (r *repoPG) Upsert(ctx context.Context, m *AttendanceMetric) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO attendance_metrics
			(attendant_id, date, total_conversations, resolved_conversations,
			 average_response_time, total_messages)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (attendant_id, date) DO UPDATE SET
			total_conversations = EXCLUDED.total_conversations,
			resolved_conversations = EXCLUDED.resolved_conversations,
			average_response_time = EXCLUDED.average_response_time,
			total_messages = EXCLUDED.total_messages
		RETURNING id, created_at`,
		m.AttendantID, m.Date, m.TotalConversations, m.ResolvedConversations,
		m.AverageResponseTime, m.TotalMessages,
	).Scan(&m.ID, &m.CreatedAt)
}

func (r *repoPG) ListByAttendant(ctx context.Context, attendantID int64, start, end time.Time) ([]*AttendanceMetric, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+metricCols+` FROM attendance_metrics
		WHERE attendant_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date DESC`,
		attendantID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMetrics(rows)
}

func (r *repoPG) ListOverall(ctx context.Context, start, end time.Time) ([]*AttendanceMetric, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+metricCols+` FROM attendance_metrics
		WHERE date BETWEEN $1 AND $2
		ORDER BY date DESC`,
		start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMetrics(rows)
}

func collectMetrics(rows pgx.Rows) ([]*AttendanceMetric, error) {
	var result []*AttendanceMetric
	for rows.Next() {
		var m AttendanceMetric
		if err := rows.Scan(&m.ID, &m.AttendantID, &m.Date, &m.TotalConversations,
			&m.ResolvedConversations, &m.AverageResponseTime, &m.TotalMessages,
			&m.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &m)
	}
	return result, rows.Err()
}
