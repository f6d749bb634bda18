package messaging

import (
	"time"

	"github.com/caremsg/caremsg/internal/platform/auth"
)

// Conversation statuses. Open conversations are unassigned work;
// in_progress means an attendant owns the thread.
const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusClosed     = "closed"
)

// Conversation priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Message sender types. "system" is never produced by the API; it exists
// for rows written by out-of-band tooling.
const (
	SenderPatient   = "paciente"
	SenderAttendant = "atendente"
	SenderSystem    = "system"
)

// Note types for attendant-only conversation notes.
const (
	NoteGeneral     = "general"
	NoteAppointment = "appointment"
	NoteExam        = "exam"
	NoteFollowup    = "followup"
)

var validStatuses = map[string]bool{
	StatusOpen:       true,
	StatusInProgress: true,
	StatusResolved:   true,
	StatusClosed:     true,
}

var validPriorities = map[string]bool{
	PriorityLow:    true,
	PriorityMedium: true,
	PriorityHigh:   true,
	PriorityUrgent: true,
}

var validNoteTypes = map[string]bool{
	NoteGeneral:     true,
	NoteAppointment: true,
	NoteExam:        true,
	NoteFollowup:    true,
}

// SenderTypeForRole maps the caller's role to the persisted sender type.
// Managers and admins answering a thread count as attendants.
func SenderTypeForRole(r auth.Role) string {
	switch r {
	case auth.RoleAttendant, auth.RoleManager, auth.RoleAdmin:
		return SenderAttendant
	default:
		return SenderPatient
	}
}

// Conversation maps to the conversations table.
type Conversation struct {
	ID          int64      `db:"id" json:"id"`
	PatientID   int64      `db:"patient_id" json:"patient_id"`
	AttendantID *int64     `db:"attendant_id" json:"attendant_id,omitempty"`
	ChannelID   int64      `db:"channel_id" json:"channel_id"`
	Status      string     `db:"status" json:"status"`
	Priority    string     `db:"priority" json:"priority"`
	Subject     *string    `db:"subject" json:"subject,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
	ClosedAt    *time.Time `db:"closed_at" json:"closed_at,omitempty"`
}

// Message maps to the messages table.
type Message struct {
	ID             int64     `db:"id" json:"id"`
	ConversationID int64     `db:"conversation_id" json:"conversation_id"`
	SenderID       int64     `db:"sender_id" json:"sender_id"`
	SenderType     string    `db:"sender_type" json:"sender_type"`
	Content        string    `db:"content" json:"content"`
	IsRead         bool      `db:"is_read" json:"is_read"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// ConversationNote maps to the conversation_notes table.
type ConversationNote struct {
	ID             int64     `db:"id" json:"id"`
	ConversationID int64     `db:"conversation_id" json:"conversation_id"`
	AttendantID    int64     `db:"attendant_id" json:"attendant_id"`
	Note           string    `db:"note" json:"note"`
	NoteType       string    `db:"note_type" json:"note_type"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
