package catalog

import (
	"context"
	"errors"
	"os"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// -- Mock Repository --

type mockRepo struct {
	channels map[int64]*Channel
	replies  map[int64]*QuickReply
	nextID   int64
	fail     bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		channels: make(map[int64]*Channel),
		replies:  make(map[int64]*QuickReply),
		nextID:   1,
	}
}

func (m *mockRepo) ListActiveChannels(_ context.Context) ([]*Channel, error) {
	if m.fail {
		return nil, errors.New("connection refused")
	}
	var result []*Channel
	for _, ch := range m.channels {
		if ch.Active {
			result = append(result, ch)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockRepo) CreateChannel(_ context.Context, ch *Channel) error {
	if m.fail {
		return errors.New("connection refused")
	}
	ch.ID = m.nextID
	m.nextID++
	ch.Active = true
	ch.CreatedAt = time.Now()
	m.channels[ch.ID] = ch
	return nil
}

func (m *mockRepo) ListActiveQuickReplies(_ context.Context) ([]*QuickReply, error) {
	if m.fail {
		return nil, errors.New("connection refused")
	}
	var result []*QuickReply
	for _, qr := range m.replies {
		if qr.Active {
			result = append(result, qr)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		ci, cj := "", ""
		if result[i].Category != nil {
			ci = *result[i].Category
		}
		if result[j].Category != nil {
			cj = *result[j].Category
		}
		if ci != cj {
			return ci < cj
		}
		return result[i].Title < result[j].Title
	})
	return result, nil
}

func (m *mockRepo) CreateQuickReply(_ context.Context, qr *QuickReply) error {
	if m.fail {
		return errors.New("connection refused")
	}
	qr.ID = m.nextID
	m.nextID++
	qr.Active = true
	qr.CreatedAt = time.Now()
	qr.UpdatedAt = time.Now()
	m.replies[qr.ID] = qr
	return nil
}

func (m *mockRepo) DeactivateQuickReply(_ context.Context, id int64) error {
	if m.fail {
		return errors.New("connection refused")
	}
	qr, ok := m.replies[id]
	if !ok {
		return ErrNotFound
	}
	qr.Active = false
	return nil
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	return NewService(repo, zerolog.New(os.Stderr)), repo
}

// -- Tests --

func TestListChannels_ActiveOnly(t *testing.T) {
	svc, repo := newTestService()
	repo.CreateChannel(context.Background(), &Channel{Name: "WhatsApp", Identifier: "whatsapp"})
	inactive := &Channel{Name: "Telegram", Identifier: "telegram"}
	repo.CreateChannel(context.Background(), inactive)
	inactive.Active = false

	channels, err := svc.ListChannels(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(channels) != 1 {
		t.Fatalf("expected 1 active channel, got %d", len(channels))
	}
	if channels[0].Name != "WhatsApp" {
		t.Errorf("expected WhatsApp, got %s", channels[0].Name)
	}
}

func TestListChannels_DegradesToEmpty(t *testing.T) {
	svc, repo := newTestService()
	repo.fail = true

	channels, err := svc.ListChannels(context.Background())
	if err != nil {
		t.Fatalf("expected degraded read, got error: %v", err)
	}
	if channels == nil || len(channels) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", channels)
	}
}

func TestCreateChannel_RequiresFields(t *testing.T) {
	svc, _ := newTestService()

	if err := svc.CreateChannel(context.Background(), &Channel{Identifier: "x"}); err == nil {
		t.Error("expected error for missing name")
	}
	if err := svc.CreateChannel(context.Background(), &Channel{Name: "X"}); err == nil {
		t.Error("expected error for missing identifier")
	}
}

func TestCreateChannel_StorageFailure(t *testing.T) {
	svc, repo := newTestService()
	repo.fail = true

	err := svc.CreateChannel(context.Background(), &Channel{Name: "X", Identifier: "x"})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestListQuickReplies_OrderedByCategoryThenTitle(t *testing.T) {
	svc, repo := newTestService()
	cat := "saudacao"
	repo.CreateQuickReply(context.Background(), &QuickReply{Title: "Bom dia", Content: "Bom dia!", Category: &cat, CreatedBy: 1})
	repo.CreateQuickReply(context.Background(), &QuickReply{Title: "Adeus", Content: "Até logo!", Category: &cat, CreatedBy: 1})

	replies, err := svc.ListQuickReplies(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(replies) != 2 {
		t.Fatalf("expected 2 replies, got %d", len(replies))
	}
	if replies[0].Title != "Adeus" {
		t.Errorf("expected Adeus first, got %s", replies[0].Title)
	}
}

func TestListQuickReplies_ExcludesInactive(t *testing.T) {
	svc, repo := newTestService()
	qr := &QuickReply{Title: "Old", Content: "old", CreatedBy: 1}
	repo.CreateQuickReply(context.Background(), qr)
	svc.DeactivateQuickReply(context.Background(), qr.ID)

	replies, _ := svc.ListQuickReplies(context.Background())
	if len(replies) != 0 {
		t.Errorf("expected deactivated reply hidden, got %d", len(replies))
	}
}

func TestCreateQuickReply_RequiresFields(t *testing.T) {
	svc, _ := newTestService()

	if err := svc.CreateQuickReply(context.Background(), &QuickReply{Content: "x", CreatedBy: 1}); err == nil {
		t.Error("expected error for missing title")
	}
	if err := svc.CreateQuickReply(context.Background(), &QuickReply{Title: "x", CreatedBy: 1}); err == nil {
		t.Error("expected error for missing content")
	}
	if err := svc.CreateQuickReply(context.Background(), &QuickReply{Title: "x", Content: "y"}); err == nil {
		t.Error("expected error for missing created_by")
	}
}

func TestDeactivateQuickReply_NotFound(t *testing.T) {
	svc, _ := newTestService()

	err := svc.DeactivateQuickReply(context.Background(), 999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeactivateQuickReply_Idempotent(t *testing.T) {
	svc, repo := newTestService()
	qr := &QuickReply{Title: "T", Content: "C", CreatedBy: 1}
	repo.CreateQuickReply(context.Background(), qr)

	if err := svc.DeactivateQuickReply(context.Background(), qr.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Deactivating an already inactive reply is still a success
	if err := svc.DeactivateQuickReply(context.Background(), qr.ID); err != nil {
		t.Fatalf("expected idempotent deactivate, got %v", err)
	}
}
