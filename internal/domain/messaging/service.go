package messaging

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/caremsg/caremsg/internal/platform/auth"
	"github.com/caremsg/caremsg/internal/platform/db"
)

var (
	// ErrUnavailable wraps storage failures on write paths; handlers
	// surface it as 503.
	ErrUnavailable = errors.New("storage unavailable")

	ErrEmptyContent    = errors.New("content must not be empty")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidNoteType = errors.New("invalid note type")
	ErrEmptyNote       = errors.New("note must not be empty")
)

type Service struct {
	repo   Repository
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

func NewService(repo Repository, pool *pgxpool.Pool, logger zerolog.Logger) *Service {
	return &Service{repo: repo, pool: pool, logger: logger}
}

// inTx runs fn inside a transaction when a pool is attached. Repositories
// pick the transaction up from the context.
func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.pool == nil {
		return fn(ctx)
	}
	return db.WithTx(ctx, s.pool, fn)
}

// CreateConversation opens a new thread for a patient. Every conversation
// starts open and unassigned.
func (s *Service) CreateConversation(ctx context.Context, conv *Conversation) error {
	if conv.PatientID == 0 {
		return fmt.Errorf("patient_id is required")
	}
	if conv.ChannelID == 0 {
		return fmt.Errorf("channel_id is required")
	}
	if conv.Priority == "" {
		conv.Priority = PriorityMedium
	}
	if !validPriorities[conv.Priority] {
		return fmt.Errorf("%w: %s", ErrInvalidPriority, conv.Priority)
	}
	conv.Status = StatusOpen
	conv.AttendantID = nil
	if err := s.repo.CreateConversation(ctx, conv); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *Service) GetConversation(ctx context.Context, id int64) (*Conversation, error) {
	conv, err := s.repo.GetConversation(ctx, id)
	if err != nil {
		if errors.Is(err, ErrConversationNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return conv, nil
}

// ListMine returns the caller's conversations as a patient, most recently
// active first. Storage failures degrade to an empty listing.
func (s *Service) ListMine(ctx context.Context, patientID int64) ([]*Conversation, error) {
	convs, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("patient_id", patientID).
			Msg("list conversations unavailable, returning empty")
		return []*Conversation{}, nil
	}
	if convs == nil {
		convs = []*Conversation{}
	}
	return convs, nil
}

// ListAssigned returns conversations assigned to an attendant.
func (s *Service) ListAssigned(ctx context.Context, attendantID int64) ([]*Conversation, error) {
	convs, err := s.repo.ListByAttendant(ctx, attendantID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("attendant_id", attendantID).
			Msg("list assigned conversations unavailable, returning empty")
		return []*Conversation{}, nil
	}
	if convs == nil {
		convs = []*Conversation{}
	}
	return convs, nil
}

// ListAll returns every conversation for supervision views.
func (s *Service) ListAll(ctx context.Context, limit, offset int) ([]*Conversation, int, error) {
	convs, total, err := s.repo.ListAll(ctx, limit, offset)
	if err != nil {
		s.logger.Warn().Err(err).Msg("list all conversations unavailable, returning empty")
		return []*Conversation{}, 0, nil
	}
	if convs == nil {
		convs = []*Conversation{}
	}
	return convs, total, nil
}

// ListOpen returns the unassigned queue, newest first.
func (s *Service) ListOpen(ctx context.Context) ([]*Conversation, error) {
	convs, err := s.repo.ListOpen(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("open queue unavailable, returning empty")
		return []*Conversation{}, nil
	}
	if convs == nil {
		convs = []*Conversation{}
	}
	return convs, nil
}

// Assign hands a conversation to an attendant and moves it to
// in_progress. The update is unconditional: assigning over an existing
// attendant, or to a closed thread, simply overwrites. Concurrent
// assignments are last-write-wins.
func (s *Service) Assign(ctx context.Context, id, attendantID int64) error {
	if attendantID == 0 {
		return fmt.Errorf("attendant_id is required")
	}
	if err := s.repo.Assign(ctx, id, attendantID); err != nil {
		if errors.Is(err, ErrConversationNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// UpdateStatus sets any of the four statuses without transition
// validation. Resolved and closed stamp closed_at; moving a thread back
// to open or in_progress leaves the old closed_at in place.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) error {
	if !validStatuses[status] {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
	stampClosed := status == StatusResolved || status == StatusClosed
	if err := s.repo.UpdateStatus(ctx, id, status, stampClosed); err != nil {
		if errors.Is(err, ErrConversationNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// SendMessage appends a message to an existing conversation. The sender
// type comes from the caller's role, never from the request body. The
// insert and the parent updated_at touch commit together.
func (s *Service) SendMessage(ctx context.Context, conversationID, senderID int64, role auth.Role, content string) (*Message, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}
	if _, err := s.repo.GetConversation(ctx, conversationID); err != nil {
		if errors.Is(err, ErrConversationNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	msg := &Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		SenderType:     SenderTypeForRole(role),
		Content:        content,
	}
	err := s.inTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.CreateMessage(txCtx, msg); err != nil {
			return err
		}
		return s.repo.TouchConversation(txCtx, conversationID)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return msg, nil
}

// ListMessages returns a conversation's messages oldest first. Storage
// failures degrade to an empty listing.
func (s *Service) ListMessages(ctx context.Context, conversationID int64) ([]*Message, error) {
	msgs, err := s.repo.ListMessages(ctx, conversationID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("conversation_id", conversationID).
			Msg("list messages unavailable, returning empty")
		return []*Message{}, nil
	}
	if msgs == nil {
		msgs = []*Message{}
	}
	return msgs, nil
}

// MarkMessagesRead flags every unread message in the conversation as
// read. Repeating the call is a no-op. No reader identity is tracked.
func (s *Service) MarkMessagesRead(ctx context.Context, conversationID int64) (int64, error) {
	n, err := s.repo.MarkMessagesRead(ctx, conversationID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return n, nil
}

// CreateNote attaches an internal attendant note to a conversation.
func (s *Service) CreateNote(ctx context.Context, note *ConversationNote) error {
	if note.Note == "" {
		return ErrEmptyNote
	}
	if note.NoteType == "" {
		note.NoteType = NoteGeneral
	}
	if !validNoteTypes[note.NoteType] {
		return fmt.Errorf("%w: %s", ErrInvalidNoteType, note.NoteType)
	}
	if _, err := s.repo.GetConversation(ctx, note.ConversationID); err != nil {
		if errors.Is(err, ErrConversationNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := s.repo.CreateNote(ctx, note); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// ListNotes returns a conversation's notes newest first.
func (s *Service) ListNotes(ctx context.Context, conversationID int64) ([]*ConversationNote, error) {
	notes, err := s.repo.ListNotes(ctx, conversationID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("conversation_id", conversationID).
			Msg("list notes unavailable, returning empty")
		return []*ConversationNote{}, nil
	}
	if notes == nil {
		notes = []*ConversationNote{}
	}
	return notes, nil
}
