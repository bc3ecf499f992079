package repository

import (
	"context"

	"craftery/internal/cache"
	"craftery/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FavoriteRepository persists the user↔post favorite relation. Each relation
// is a single row, so adding or removing a favorite is one atomic statement;
// there is no second document to get out of sync.
type FavoriteRepository interface {
	Add(ctx context.Context, userID, postID uint) error
	Remove(ctx context.Context, userID, postID uint) error
	IsFavorited(ctx context.Context, userID, postID uint) (bool, error)
	ListPostsByUser(ctx context.Context, userID uint) ([]*models.Post, error)
	UserIDsByPost(ctx context.Context, postID uint) ([]uint, error)
}

type favoriteRepository struct {
	db *gorm.DB
}

// NewFavoriteRepository creates a new favorite repository
func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

// Add records the favorite. Inserting an existing pair is a no-op, which
// makes the operation idempotent under concurrent or repeated calls.
func (r *favoriteRepository) Add(ctx context.Context, userID, postID uint) error {
	fav := models.Favorite{UserID: userID, PostID: postID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&fav).Error
	if err != nil {
		return models.NewStoreError(err)
	}
	// The cached anonymous view carries the favorites count.
	cache.Invalidate(ctx, cache.PostKey(postID))
	return nil
}

// Remove deletes the favorite. Removing an absent pair succeeds (set
// semantics: removal is a no-op on absence).
func (r *favoriteRepository) Remove(ctx context.Context, userID, postID uint) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Favorite{}).Error
	if err != nil {
		return models.NewStoreError(err)
	}
	cache.Invalidate(ctx, cache.PostKey(postID))
	return nil
}

func (r *favoriteRepository) IsFavorited(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Favorite{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	if err != nil {
		return false, models.NewStoreError(err)
	}
	return count > 0, nil
}

// ListPostsByUser resolves a user's favorites to full posts for display.
func (r *favoriteRepository) ListPostsByUser(ctx context.Context, userID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select("posts.*, (SELECT COUNT(*) FROM favorites f WHERE f.post_id = posts.id) as favorites_count").
		Joins("JOIN favorites ON favorites.post_id = posts.id").
		Where("favorites.user_id = ?", userID).
		Preload("User").
		Order("favorites.created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, models.NewStoreError(err)
	}
	for _, p := range posts {
		p.Favorited = true
	}
	return posts, nil
}

// UserIDsByPost is the inverse view: every user who favorited the post.
func (r *favoriteRepository) UserIDsByPost(ctx context.Context, postID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Favorite{}).
		Where("post_id = ?", postID).
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, models.NewStoreError(err)
	}
	return ids, nil
}
