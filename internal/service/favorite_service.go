package service

import (
	"context"
	"log/slog"

	"craftery/internal/middleware"
	"craftery/internal/models"
	"craftery/internal/repository"
)

// FavoriteService coordinates the user↔post favorite relation. All reads are
// computed from the favorites table, so the user-side and post-side views can
// never disagree.
type FavoriteService struct {
	favoriteRepo repository.FavoriteRepository
	postRepo     repository.PostRepository
}

// FavoritesView is what a user sees on their favorites page: the posts they
// favorited plus the posts they authored.
type FavoritesView struct {
	Favorites []*models.Post `json:"favorites"`
	Authored  []*models.Post `json:"authored"`
}

func NewFavoriteService(favoriteRepo repository.FavoriteRepository, postRepo repository.PostRepository) *FavoriteService {
	return &FavoriteService{favoriteRepo: favoriteRepo, postRepo: postRepo}
}

// Add marks the post as a favorite of the user. Favoriting a post twice is a
// no-op; favoriting a missing post is NotFound.
func (s *FavoriteService) Add(ctx context.Context, userID, postID uint) (*models.Post, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return nil, err
	}

	if err := s.favoriteRepo.Add(ctx, userID, postID); err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "favorite added",
		slog.Uint64("post_id", uint64(postID)))
	return s.postRepo.GetByID(ctx, postID, userID)
}

// Remove unmarks the favorite unconditionally: removing a favorite that was
// never added succeeds, and so does removing one whose post is already gone
// (deletion cleans up favorite rows, so there is nothing left to unmark).
// The refreshed post is returned when it still exists, nil otherwise.
func (s *FavoriteService) Remove(ctx context.Context, userID, postID uint) (*models.Post, error) {
	if err := s.favoriteRepo.Remove(ctx, userID, postID); err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "favorite removed",
		slog.Uint64("post_id", uint64(postID)))

	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		if appErr, ok := err.(*models.AppError); ok && appErr.Code == models.CodeNotFound {
			return nil, nil
		}
		return nil, err
	}
	return post, nil
}

// View assembles the user's favorites page data: favorited posts newest
// first, authored posts in creation order.
func (s *FavoriteService) View(ctx context.Context, userID uint) (*FavoritesView, error) {
	favorites, err := s.favoriteRepo.ListPostsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	authored, err := s.postRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &FavoritesView{Favorites: favorites, Authored: authored}, nil
}
