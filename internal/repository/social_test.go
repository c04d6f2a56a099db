package repository

import (
	"context"
	"testing"
	"time"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSocialRepository_FollowToggleEdges(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSocialRepository(db)
	ctx := context.Background()

	reader := seedAuthor(t, db, "Reader", "reader")
	writer := seedAuthor(t, db, "Writer", "writer")

	following, err := repo.IsFollowing(ctx, reader.ID, writer.ID)
	require.NoError(t, err)
	assert.False(t, following)

	inserted, err := repo.InsertFollow(ctx, reader.ID, writer.ID)
	require.NoError(t, err)
	assert.True(t, inserted)

	// The second insert hits the unique pair index; no error, no new row.
	inserted, err = repo.InsertFollow(ctx, reader.ID, writer.ID)
	require.NoError(t, err)
	assert.False(t, inserted)

	var count int64
	db.Model(&models.Follow{}).Count(&count)
	assert.EqualValues(t, 1, count)

	deleted, err := repo.DeleteFollow(ctx, reader.ID, writer.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.DeleteFollow(ctx, reader.ID, writer.ID)
	require.NoError(t, err)
	assert.False(t, deleted, "deleting an absent edge is idempotent")
}

func TestSocialRepository_FollowDirectionality(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSocialRepository(db)
	ctx := context.Background()

	a := seedAuthor(t, db, "A", "a")
	b := seedAuthor(t, db, "B", "b")

	_, err := repo.InsertFollow(ctx, a.ID, b.ID)
	require.NoError(t, err)

	following, err := repo.IsFollowing(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, following, "follow edges are directed")
}

func TestSocialRepository_ListFollowed(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSocialRepository(db)
	ctx := context.Background()

	reader := seedAuthor(t, db, "Reader", "reader")
	zara := seedAuthor(t, db, "Zara", "zara")
	// Alias overrides the name for ordering.
	adam := seedAuthor(t, db, "Walter", "walter")
	adam.AliasName = "Adam"
	require.NoError(t, db.Save(adam).Error)
	seedAuthor(t, db, "Unfollowed", "unfollowed")

	seedPost(t, db, zara.ID, postSpec{slug: "zaras-post", views: 7})

	for _, id := range []uint{zara.ID, adam.ID} {
		_, err := repo.InsertFollow(ctx, reader.ID, id)
		require.NoError(t, err)
	}

	followed, err := repo.ListFollowed(ctx, reader.ID)
	require.NoError(t, err)
	require.Len(t, followed, 2)
	assert.Equal(t, "walter", followed[0].Slug)
	assert.Equal(t, "zara", followed[1].Slug)
	assert.EqualValues(t, 1, followed[1].PostCount)
	assert.EqualValues(t, 7, followed[1].TotalViews)
}

func TestSocialRepository_SaveToggleEdges(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSocialRepository(db)
	ctx := context.Background()

	reader := seedAuthor(t, db, "Reader", "reader")
	writer := seedAuthor(t, db, "Writer", "writer")
	seedPost(t, db, writer.ID, postSpec{slug: "keeper"})

	inserted, err := repo.InsertSave(ctx, reader.ID, "keeper")
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.InsertSave(ctx, reader.ID, "keeper")
	require.NoError(t, err)
	assert.False(t, inserted)

	saved, err := repo.IsSaved(ctx, reader.ID, "keeper")
	require.NoError(t, err)
	assert.True(t, saved)

	deleted, err := repo.DeleteSave(ctx, reader.ID, "keeper")
	require.NoError(t, err)
	assert.True(t, deleted)

	saved, err = repo.IsSaved(ctx, reader.ID, "keeper")
	require.NoError(t, err)
	assert.False(t, saved)
}

func TestSocialRepository_ListSaved(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSocialRepository(db)
	ctx := context.Background()

	reader := seedAuthor(t, db, "Reader", "reader")
	writer := seedAuthor(t, db, "Writer", "writer")
	seedPost(t, db, writer.ID, postSpec{slug: "first-saved"})
	seedPost(t, db, writer.ID, postSpec{slug: "second-saved"})

	base := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&models.SavedPost{
		UserID: reader.ID, PostSlug: "first-saved", CreatedAt: base,
	}).Error)
	require.NoError(t, db.Create(&models.SavedPost{
		UserID: reader.ID, PostSlug: "second-saved", CreatedAt: base.Add(time.Hour),
	}).Error)
	// An edge pointing at a vanished post must never surface.
	require.NoError(t, db.Create(&models.SavedPost{
		UserID: reader.ID, PostSlug: "gone-post", CreatedAt: base.Add(2 * time.Hour),
	}).Error)

	posts, err := repo.ListSaved(ctx, reader.ID)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	// Most recently saved first, regardless of publish date.
	assert.Equal(t, "second-saved", posts[0].Slug)
	assert.Equal(t, "first-saved", posts[1].Slug)
	assert.Equal(t, "Writer", posts[0].Author.Name)
	require.NotNil(t, posts[0].SavedAt)
	assert.True(t, posts[0].SavedAt.After(*posts[1].SavedAt))
}

// A post pulled back to draft disappears from readers' lists; the save edge
// stays, so re-publishing restores it.
func TestSocialRepository_ListSavedExcludesUnpublished(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSocialRepository(db)
	postRepo := NewPostRepository(db)
	ctx := context.Background()

	reader := seedAuthor(t, db, "Reader", "reader")
	writer := seedAuthor(t, db, "Writer", "writer")
	seedPost(t, db, writer.ID, postSpec{slug: "retracted"})

	inserted, err := repo.InsertSave(ctx, reader.ID, "retracted")
	require.NoError(t, err)
	require.True(t, inserted)

	posts, err := repo.ListSaved(ctx, reader.ID)
	require.NoError(t, err)
	require.Len(t, posts, 1)

	// The author retracts the post.
	owned, err := postRepo.GetOwnedBySlug(ctx, "retracted", writer.ID)
	require.NoError(t, err)
	owned.Status = models.PostStatusDraft
	require.NoError(t, postRepo.Update(ctx, owned))

	posts, err = repo.ListSaved(ctx, reader.ID)
	require.NoError(t, err)
	assert.Empty(t, posts)

	owned.Status = models.PostStatusPublished
	require.NoError(t, postRepo.Update(ctx, owned))

	posts, err = repo.ListSaved(ctx, reader.ID)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}
