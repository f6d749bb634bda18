package metrics

import "time"

// AttendanceMetric maps to the attendance_metrics table. One row per
// attendant per day; an upsert replaces the whole value set.
type AttendanceMetric struct {
	ID                    int64     `db:"id" json:"id"`
	AttendantID           int64     `db:"attendant_id" json:"attendant_id"`
	Date                  time.Time `db:"date" json:"date"`
	TotalConversations    int       `db:"total_conversations" json:"total_conversations"`
	ResolvedConversations int       `db:"resolved_conversations" json:"resolved_conversations"`
	AverageResponseTime   int       `db:"average_response_time" json:"average_response_time"`
	TotalMessages         int       `db:"total_messages" json:"total_messages"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
}
