package repository

import (
	"context"
	"testing"

	"craftery/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "maker", "maker@example.com")
	post := &models.Post{
		Title:        "Paper lantern",
		Category:     "paper",
		Description:  "a folded lantern",
		Materials:    "paper, glue",
		Instructions: "fold and glue",
		UserID:       user.ID,
	}
	require.NoError(t, repo.Create(ctx, post))
	require.NotZero(t, post.ID)

	got, err := repo.GetByID(ctx, post.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "Paper lantern", got.Title)
	assert.Equal(t, user.ID, got.UserID)
	assert.Equal(t, "maker", got.User.Username)
	assert.Zero(t, got.FavoritesCount)
}

func TestPostGetAbsent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)

	_, err := repo.GetByID(context.Background(), 404, 0)
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestPostListByCategory(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "maker", "maker@example.com")
	createTestPost(t, db, user.ID, "Crane", "paper")
	createTestPost(t, db, user.ID, "Boat", "paper")
	createTestPost(t, db, user.ID, "Bowl", "pottery")

	paper, err := repo.ListByCategory(ctx, "paper", 0)
	require.NoError(t, err)
	assert.Len(t, paper, 2)

	pottery, err := repo.ListByCategory(ctx, "pottery", 0)
	require.NoError(t, err)
	assert.Len(t, pottery, 1)

	empty, err := repo.ListByCategory(ctx, "metal", 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestPostListByUserInsertionOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "maker", "maker@example.com")
	first := createTestPost(t, db, user.ID, "First", "paper")
	second := createTestPost(t, db, user.ID, "Second", "paper")
	third := createTestPost(t, db, user.ID, "Third", "wood")

	posts, err := repo.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, []uint{first.ID, second.ID, third.ID}, []uint{posts[0].ID, posts[1].ID, posts[2].ID})
}

func TestPostSearchSubstring(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "maker", "maker@example.com")
	createTestPost(t, db, user.ID, "Origami crane", "paper")
	createTestPost(t, db, user.ID, "Clay bowl", "pottery")

	byTitle, err := repo.Search(ctx, "CRANE", 0)
	require.NoError(t, err)
	require.Len(t, byTitle, 1)
	assert.Equal(t, "Origami crane", byTitle[0].Title)

	byDescription, err := repo.Search(ctx, "test craft", 0)
	require.NoError(t, err)
	assert.Len(t, byDescription, 2)

	none, err := repo.Search(ctx, "submarine", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPostFavoritedFlagAndCount(t *testing.T) {
	db := setupTestDB(t)
	postRepo := NewPostRepository(db)
	favRepo := NewFavoriteRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice", "alice@example.com")
	bob := createTestUser(t, db, "bob", "bob@example.com")
	post := createTestPost(t, db, alice.ID, "Crane", "paper")

	require.NoError(t, favRepo.Add(ctx, alice.ID, post.ID))
	require.NoError(t, favRepo.Add(ctx, bob.ID, post.ID))

	forAlice, err := postRepo.GetByID(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, forAlice.FavoritesCount)
	assert.True(t, forAlice.Favorited)

	anonymous, err := postRepo.GetByID(ctx, post.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, anonymous.FavoritesCount)
	assert.False(t, anonymous.Favorited)
}

func TestPostUpdate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "maker", "maker@example.com")
	post := createTestPost(t, db, user.ID, "Crane", "paper")

	post.Title = "Paper crane"
	post.ImageURL = "http://images.local/crane.webp"
	require.NoError(t, repo.Update(ctx, post))

	got, err := repo.GetByID(ctx, post.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "Paper crane", got.Title)
	assert.Equal(t, "http://images.local/crane.webp", got.ImageURL)
}

func TestPostDeleteClearsFavorites(t *testing.T) {
	db := setupTestDB(t)
	postRepo := NewPostRepository(db)
	favRepo := NewFavoriteRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice", "alice@example.com")
	bob := createTestUser(t, db, "bob", "bob@example.com")
	post := createTestPost(t, db, alice.ID, "Crane", "paper")
	kept := createTestPost(t, db, alice.ID, "Boat", "paper")

	require.NoError(t, favRepo.Add(ctx, alice.ID, post.ID))
	require.NoError(t, favRepo.Add(ctx, bob.ID, post.ID))
	require.NoError(t, favRepo.Add(ctx, bob.ID, kept.ID))

	require.NoError(t, postRepo.Delete(ctx, post.ID))

	// No dangling references: every favorite of the deleted post is gone,
	// favorites of other posts are untouched.
	var count int64
	require.NoError(t, db.Model(&models.Favorite{}).Where("post_id = ?", post.ID).Count(&count).Error)
	assert.Zero(t, count)

	bobFavorites, err := favRepo.ListPostsByUser(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, bobFavorites, 1)
	assert.Equal(t, kept.ID, bobFavorites[0].ID)
}

func TestPostDeleteAbsent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)

	err := repo.Delete(context.Background(), 404)
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}
