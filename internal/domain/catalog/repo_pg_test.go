package catalog

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// brokenRows yields a fixed number of rows and then reports a read error,
// simulating a connection dropping mid result set.
type brokenRows struct {
	rowsLeft int
	readErr  error
}

func (r *brokenRows) Close()                                       {}
func (r *brokenRows) Err() error                                   { return r.readErr }
func (r *brokenRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *brokenRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *brokenRows) Scan(dest ...any) error                       { return nil }
func (r *brokenRows) Values() ([]any, error)                       { return nil, nil }
func (r *brokenRows) RawValues() [][]byte                          { return nil }
func (r *brokenRows) Conn() *pgx.Conn                              { return nil }

func (r *brokenRows) Next() bool {
	if r.rowsLeft == 0 {
		return false
	}
	r.rowsLeft--
	return true
}

func TestCollectChannels_SurfacesReadError(t *testing.T) {
	readErr := errors.New("unexpected EOF")
	_, err := collectChannels(&brokenRows{rowsLeft: 1, readErr: readErr})
	if !errors.Is(err, readErr) {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestCollectQuickReplies_SurfacesReadError(t *testing.T) {
	readErr := errors.New("unexpected EOF")
	_, err := collectQuickReplies(&brokenRows{rowsLeft: 1, readErr: readErr})
	if !errors.Is(err, readErr) {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestCollectChannels_CleanEnd(t *testing.T) {
	channels, err := collectChannels(&brokenRows{rowsLeft: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(channels) != 2 {
		t.Errorf("collected %d channels, want 2", len(channels))
	}
}
