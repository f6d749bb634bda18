package catalog

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no row matches the lookup.
var ErrNotFound = errors.New("not found")

type Repository interface {
	ListActiveChannels(ctx context.Context) ([]*Channel, error)
	CreateChannel(ctx context.Context, ch *Channel) error

	ListActiveQuickReplies(ctx context.Context) ([]*QuickReply, error)
	CreateQuickReply(ctx context.Context, qr *QuickReply) error
	DeactivateQuickReply(ctx context.Context, id int64) error
}
