package services

import (
	"context"
	"testing"

	"github.com/ahmetcoskunkizilkaya/advocate-bot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureUserKeepsExistingRole(t *testing.T) {
	ctx := context.Background()
	store := NewGormStore(newTestDB(t))

	u, err := store.EnsureUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, u.Role)

	require.NoError(t, store.SetRole(ctx, "u1", models.RoleModerator))

	u, err = store.EnsureUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleModerator, u.Role)
}

func TestUpdateUnknownUser(t *testing.T) {
	store := NewGormStore(newTestDB(t))

	err := store.SetReporting(context.Background(), "ghost", 3)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.GetUser(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReportsAndMessages(t *testing.T) {
	ctx := context.Background()
	store := NewGormStore(newTestDB(t))

	first, err := store.CreateReport(ctx, "u1", models.ReportTypeSex)
	require.NoError(t, err)
	second, err := store.CreateReport(ctx, "u1", models.ReportTypeEvent)
	require.NoError(t, err)
	_, err = store.CreateReport(ctx, "u2", models.ReportTypeNews)
	require.NoError(t, err)

	latest, err := store.LatestReport(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	_, err = store.LatestReport(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.InsertMessage(ctx, first.ID, "one", models.MessageTypeText))
	require.NoError(t, store.InsertMessage(ctx, first.ID, "https://img/x.png", models.MessageTypeImage))
	require.NoError(t, store.InsertMessage(ctx, second.ID, "other", models.MessageTypeText))

	msgs, err := store.ReportMessages(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "one", msgs[0].Text)
	assert.Equal(t, models.MessageTypeImage, msgs[1].Type)

	got, err := store.GetReport(ctx, first.ID)
	require.NoError(t, err)
	assert.Len(t, got.Messages, 2)

	page, total, err := store.ListReports(ctx, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 2)
	assert.Greater(t, page[0].ID, page[1].ID)

	_, err = store.GetReport(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLatestPostsSkipsDrafts(t *testing.T) {
	ctx := context.Background()
	store := NewGormStore(newTestDB(t))

	draft, err := store.CreatePost(ctx, "mod")
	require.NoError(t, err)
	title := "draft"
	draft.Title = &title
	require.NoError(t, store.SavePost(ctx, draft))

	for _, name := range []string{"a", "b"} {
		p, err := store.CreatePost(ctx, "mod")
		require.NoError(t, err)
		link, desc, img := "https://x/"+name, "d", "https://img/"+name
		p.Title, p.Link, p.Description, p.ImageURL = &name, &link, &desc, &img
		require.NoError(t, store.SavePost(ctx, p))
	}

	posts, err := store.LatestPosts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "b", *posts[0].Title)
	assert.Equal(t, "a", *posts[1].Title)

	posts, err = store.LatestPosts(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}
