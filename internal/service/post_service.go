package service

import (
	"context"
	"log/slog"
	"strings"

	"craftery/internal/middleware"
	"craftery/internal/models"
	"craftery/internal/repository"
)

// PostService owns the craft post lifecycle. Ownership is fixed at creation
// and only the owner may edit or delete a post.
type PostService struct {
	postRepo repository.PostRepository
}

// PostInput carries the post form fields. ImageURL is empty when the request
// did not include a new upload.
type PostInput struct {
	Title        string
	Category     string
	Description  string
	Materials    string
	Instructions string
	ImageURL     string
}

func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{postRepo: postRepo}
}

func (s *PostService) Create(ctx context.Context, userID uint, in PostInput) (*models.Post, error) {
	if err := validatePostInput(in); err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:        in.Title,
		Category:     in.Category,
		Description:  in.Description,
		Materials:    in.Materials,
		Instructions: in.Instructions,
		ImageURL:     in.ImageURL,
		UserID:       userID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "post created",
		slog.Uint64("post_id", uint64(post.ID)),
		slog.String("category", post.Category))
	return s.postRepo.GetByID(ctx, post.ID, userID)
}

// Get returns one post with its favorites count and, when currentUserID is
// set, whether that user favorited it.
func (s *PostService) Get(ctx context.Context, id, currentUserID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id, currentUserID)
}

// Edit replaces the post's fields. When the request carries no new image the
// stored image URL is kept as-is.
func (s *PostService) Edit(ctx context.Context, userID, postID uint, in PostInput) (*models.Post, error) {
	if err := validatePostInput(in); err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, models.NewForbiddenError("You can only edit your own posts")
	}

	post.Title = in.Title
	post.Category = in.Category
	post.Description = in.Description
	post.Materials = in.Materials
	post.Instructions = in.Instructions
	if in.ImageURL != "" {
		post.ImageURL = in.ImageURL
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID, userID)
}

// Delete removes the post and all favorites pointing at it.
func (s *PostService) Delete(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID, 0)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return models.NewForbiddenError("You can only delete your own posts")
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}
	middleware.Logger.InfoContext(ctx, "post deleted", slog.Uint64("post_id", uint64(postID)))
	return nil
}

func (s *PostService) List(ctx context.Context, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.postRepo.List(ctx, limit, offset, currentUserID)
}

func (s *PostService) ListByCategory(ctx context.Context, category string, currentUserID uint) ([]*models.Post, error) {
	if category == "" {
		return nil, models.NewValidationError("Category is required")
	}
	return s.postRepo.ListByCategory(ctx, category, currentUserID)
}

// Search finds posts whose title or description contains the query,
// case-insensitively. A blank query deliberately matches nothing rather than
// the whole corpus; browsing everything is what List is for.
func (s *PostService) Search(ctx context.Context, query string, currentUserID uint) ([]*models.Post, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*models.Post{}, nil
	}
	return s.postRepo.Search(ctx, query, currentUserID)
}

func validatePostInput(in PostInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return models.NewValidationError("Title is required")
	}
	if strings.TrimSpace(in.Category) == "" {
		return models.NewValidationError("Category is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return models.NewValidationError("Description is required")
	}
	return nil
}
