package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/dto"
	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultImage = "https://bot.example.com/assets/default_post.png"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Report{}, &models.Message{}, &models.Post{}))
	return db
}

type fakeGateway struct {
	mu         sync.Mutex
	sent       []dto.SendRequest
	failTo     map[string]bool
	profile    *dto.Profile
	profileErr error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{failTo: map[string]bool{}}
}

func (g *fakeGateway) Send(_ context.Context, req dto.SendRequest) (*dto.SendResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failTo[req.Recipient.ID] {
		return nil, errors.New("send failed")
	}
	g.sent = append(g.sent, req)
	return &dto.SendResponse{RecipientID: req.Recipient.ID, MessageID: "mid"}, nil
}

func (g *fakeGateway) Profile(_ context.Context, id string) (*dto.Profile, error) {
	if g.profileErr != nil {
		return nil, g.profileErr
	}
	if g.profile != nil {
		return g.profile, nil
	}
	return &dto.Profile{ID: id}, nil
}

func (g *fakeGateway) reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = nil
}

func (g *fakeGateway) to(id string) []dto.SendRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []dto.SendRequest
	for _, r := range g.sent {
		if r.Recipient.ID == id {
			out = append(out, r)
		}
	}
	return out
}

func (g *fakeGateway) texts(id string) []string {
	var out []string
	for _, r := range g.to(id) {
		if r.Message != nil && r.Message.Text != "" {
			out = append(out, r.Message.Text)
		}
	}
	return out
}

type harness struct {
	db    *gorm.DB
	store *GormStore
	gw    *fakeGateway
	conv  *Conversation
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := newTestDB(t)
	store := NewGormStore(db)
	gw := newFakeGateway()
	conv := NewConversation(store, gw, ConversationConfig{
		ServerURL:           "https://bot.example.com",
		DefaultPostImageURL: defaultImage,
		LatestPostLimit:     10,
	})
	conv.pick = func(int) int { return 0 }
	return &harness{db: db, store: store, gw: gw, conv: conv}
}

func (h *harness) seedUser(t *testing.T, id, role string) {
	t.Helper()
	require.NoError(t, h.db.Create(&models.User{FacebookID: id, Role: role}).Error)
}

func (h *harness) user(t *testing.T, id string) models.User {
	t.Helper()
	var u models.User
	require.NoError(t, h.db.First(&u, "facebook_id = ?", id).Error)
	return u
}

func (h *harness) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.db.Model(model).Count(&n).Error)
	return n
}

func (h *harness) text(sender, text string) *TurnResult {
	return h.conv.Handle(context.Background(), dto.MessagingEvent{
		Sender:  dto.Party{ID: sender},
		Message: &dto.InboundMessage{MID: "m-" + text, Text: text},
	})
}

func (h *harness) image(sender, url string) *TurnResult {
	return h.conv.Handle(context.Background(), dto.MessagingEvent{
		Sender: dto.Party{ID: sender},
		Message: &dto.InboundMessage{
			MID:         "m-" + url,
			Attachments: []dto.Attachment{{Type: "image", Payload: dto.AttachmentPayload{URL: url}}},
		},
	})
}

func (h *harness) postback(sender, payload string) *TurnResult {
	return h.conv.Handle(context.Background(), dto.MessagingEvent{
		Sender:   dto.Party{ID: sender},
		Postback: &dto.Postback{Payload: payload},
	})
}

// failingStore breaks selected operations of an otherwise working store.
type failingStore struct {
	Store
	failInsert bool
	failEnsure bool
}

var errDBDown = errors.New("database is down")

func (s *failingStore) InsertMessage(ctx context.Context, reportID uint, text, msgType string) error {
	if s.failInsert {
		return errDBDown
	}
	return s.Store.InsertMessage(ctx, reportID, text, msgType)
}

func (s *failingStore) EnsureUser(ctx context.Context, id string) (*models.User, error) {
	if s.failEnsure {
		return nil, errDBDown
	}
	return s.Store.EnsureUser(ctx, id)
}
