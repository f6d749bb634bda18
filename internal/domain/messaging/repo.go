package messaging

import (
	"context"
	"errors"
)

// ErrConversationNotFound is returned when no conversations row matches.
var ErrConversationNotFound = errors.New("conversation not found")

type Repository interface {
	CreateConversation(ctx context.Context, conv *Conversation) error
	GetConversation(ctx context.Context, id int64) (*Conversation, error)
	ListByPatient(ctx context.Context, patientID int64) ([]*Conversation, error)
	ListByAttendant(ctx context.Context, attendantID int64) ([]*Conversation, error)
	ListAll(ctx context.Context, limit, offset int) ([]*Conversation, int, error)
	ListOpen(ctx context.Context) ([]*Conversation, error)
	// Assign sets attendant_id and status in one unconditional UPDATE.
	// Concurrent assignments are last-write-wins.
	Assign(ctx context.Context, id, attendantID int64) error
	UpdateStatus(ctx context.Context, id int64, status string, stampClosed bool) error
	// TouchConversation advances updated_at; called alongside every
	// message insert, in the same transaction.
	TouchConversation(ctx context.Context, id int64) error

	CreateMessage(ctx context.Context, msg *Message) error
	ListMessages(ctx context.Context, conversationID int64) ([]*Message, error)
	MarkMessagesRead(ctx context.Context, conversationID int64) (int64, error)

	CreateNote(ctx context.Context, note *ConversationNote) error
	ListNotes(ctx context.Context, conversationID int64) ([]*ConversationNote, error)
}
