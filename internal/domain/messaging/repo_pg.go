package messaging

import (
	"context"
	"errors"

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

const convCols = `id, patient_id, attendant_id, channel_id, status, priority, subject,
	created_at, updated_at, closed_at`

func (r *repoPG) CreateConversation(ctx context.Context, conv *Conversation) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO conversations (patient_id, channel_id, status, priority, subject)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		conv.PatientID, conv.ChannelID, conv.Status, conv.Priority, conv.Subject,
	).Scan(&conv.ID, &conv.CreatedAt, &conv.UpdatedAt)
}

func (r *repoPG) GetConversation(ctx context.Context, id int64) (*Conversation, error) {
	return scanConv(r.conn(ctx).QueryRow(ctx,
		`SELECT `+convCols+` FROM conversations WHERE id = $1`, id))
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID int64) ([]*Conversation, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+convCols+` FROM conversations WHERE patient_id = $1 ORDER BY updated_at DESC`,
		patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectConvs(rows)
}

func (r *repoPG) ListByAttendant(ctx context.Context, attendantID int64) ([]*Conversation, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+convCols+` FROM conversations WHERE attendant_id = $1 ORDER BY updated_at DESC`,
		attendantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectConvs(rows)
}

func (r *repoPG) ListAll(ctx context.Context, limit, offset int) ([]*Conversation, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM conversations`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+convCols+` FROM conversations ORDER BY updated_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	convs, err := collectConvs(rows)
	if err != nil {
		return nil, 0, err
	}
	return convs, total, nil
}

func (r *repoPG) ListOpen(ctx context.Context) ([]*Conversation, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+convCols+` FROM conversations WHERE status = 'open' ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectConvs(rows)
}

func (r *repoPG) Assign(ctx context.Context, id, attendantID int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE conversations
		SET attendant_id = $2, status = 'in_progress', updated_at = NOW()
		WHERE id = $1`,
		id, attendantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConversationNotFound
	}
	return nil
}

func (r *repoPG) UpdateStatus(ctx context.Context, id int64, status string, stampClosed bool) error {
	var (
		tag pgconn.CommandTag
		err error
	)
	if stampClosed {
		tag, err = r.conn(ctx).Exec(ctx, `
			UPDATE conversations
			SET status = $2, closed_at = NOW(), updated_at = NOW()
			WHERE id = $1`, id, status)
	} else {
		// closed_at is never cleared once stamped
		tag, err = r.conn(ctx).Exec(ctx, `
			UPDATE conversations
			SET status = $2, updated_at = NOW()
			WHERE id = $1`, id, status)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConversationNotFound
	}
	return nil
}

func (r *repoPG) TouchConversation(ctx context.Context, id int64) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE conversations SET updated_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *repoPG) CreateMessage(ctx context.Context, msg *Message) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO messages (conversation_id, sender_id, sender_type, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_read, created_at`,
		msg.ConversationID, msg.SenderID, msg.SenderType, msg.Content,
	).Scan(&msg.ID, &msg.IsRead, &msg.CreatedAt)
}

func (r *repoPG) ListMessages(ctx context.Context, conversationID int64) ([]*Message, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, conversation_id, sender_id, sender_type, content, is_read, created_at
		FROM messages WHERE conversation_id = $1 ORDER BY created_at`,
		conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.SenderType,
			&m.Content, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, &m)
	}
	return msgs, rows.Err()
}

func (r *repoPG) MarkMessagesRead(ctx context.Context, conversationID int64) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE messages SET is_read = TRUE WHERE conversation_id = $1 AND NOT is_read`,
		conversationID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *repoPG) CreateNote(ctx context.Context, note *ConversationNote) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO conversation_notes (conversation_id, attendant_id, note, note_type)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		note.ConversationID, note.AttendantID, note.Note, note.NoteType,
	).Scan(&note.ID, &note.CreatedAt)
}

func (r *repoPG) ListNotes(ctx context.Context, conversationID int64) ([]*ConversationNote, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, conversation_id, attendant_id, note, note_type, created_at
		FROM conversation_notes WHERE conversation_id = $1 ORDER BY created_at DESC`,
		conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []*ConversationNote
	for rows.Next() {
		var n ConversationNote
		if err := rows.Scan(&n.ID, &n.ConversationID, &n.AttendantID,
			&n.Note, &n.NoteType, &n.CreatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, &n)
	}
	return notes, rows.Err()
}

func scanConv(row pgx.Row) (*Conversation, error) {
	var c Conversation
	err := row.Scan(&c.ID, &c.PatientID, &c.AttendantID, &c.ChannelID, &c.Status,
		&c.Priority, &c.Subject, &c.CreatedAt, &c.UpdatedAt, &c.ClosedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func collectConvs(rows pgx.Rows) ([]*Conversation, error) {
	var convs []*Conversation
	for rows.Next() {
		var c Conversation
		if err := rows.Scan(&c.ID, &c.PatientID, &c.AttendantID, &c.ChannelID, &c.Status,
			&c.Priority, &c.Subject, &c.CreatedAt, &c.UpdatedAt, &c.ClosedAt); err != nil {
			return nil, err
		}
		convs = append(convs, &c)
	}
	return convs, rows.Err()
}
