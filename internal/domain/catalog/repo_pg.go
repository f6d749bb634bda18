package catalog

import (
	"context"

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

func (r *repoPG) ListActiveChannels(ctx context.Context) ([]*Channel, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, name, identifier, active, created_at
		FROM channels WHERE active ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectChannels(rows)
}

func collectChannels(rows pgx.Rows) ([]*Channel, error) {
	var channels []*Channel
	for rows.Next() {
		var ch Channel
		if err := rows.Scan(&ch.ID, &ch.Name, &ch.Identifier, &ch.Active, &ch.CreatedAt); err != nil {
			return nil, err
		}
		channels = append(channels, &ch)
	}
	return channels, rows.Err()
}

func (r *repoPG) CreateChannel(ctx context.Context, ch *Channel) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO channels (name, identifier)
		VALUES ($1, $2)
		RETURNING id, active, created_at`,
		ch.Name, ch.Identifier,
	).Scan(&ch.ID, &ch.Active, &ch.CreatedAt)
}

func (r *repoPG) ListActiveQuickReplies(ctx context.Context) ([]*QuickReply, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, title, content, category, created_by, active, created_at, updated_at
		FROM quick_replies WHERE active ORDER BY category, title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectQuickReplies(rows)
}

func collectQuickReplies(rows pgx.Rows) ([]*QuickReply, error) {
	var replies []*QuickReply
	for rows.Next() {
		var qr QuickReply
		if err := rows.Scan(&qr.ID, &qr.Title, &qr.Content, &qr.Category,
			&qr.CreatedBy, &qr.Active, &qr.CreatedAt, &qr.UpdatedAt); err != nil {
			return nil, err
		}
		replies = append(replies, &qr)
	}
	return replies, rows.Err()
}

func (r *repoPG) CreateQuickReply(ctx context.Context, qr *QuickReply) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO quick_replies (title, content, category, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, active, created_at, updated_at`,
		qr.Title, qr.Content, qr.Category, qr.CreatedBy,
	).Scan(&qr.ID, &qr.Active, &qr.CreatedAt, &qr.UpdatedAt)
}

func (r *repoPG) DeactivateQuickReply(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE quick_replies SET active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
