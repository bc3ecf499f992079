package server

import (
	"io"
	"strconv"
	"strings"

	"craftery/internal/models"
	"craftery/internal/service"

	"github.com/gofiber/fiber/v2"
)

type postRequest struct {
	Title        string `json:"title" form:"title"`
	Category     string `json:"category" form:"category"`
	Description  string `json:"description" form:"description"`
	Materials    string `json:"materials" form:"materials"`
	Instructions string `json:"instructions" form:"instructions"`
}

func parsePostID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, models.NewValidationError("Invalid post ID")
	}
	return uint(id), nil
}

func (s *Server) postInput(c *fiber.Ctx) (service.PostInput, error) {
	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return service.PostInput{}, models.NewValidationError("Invalid request body")
	}

	in := service.PostInput{
		Title:        strings.TrimSpace(req.Title),
		Category:     strings.TrimSpace(req.Category),
		Description:  req.Description,
		Materials:    req.Materials,
		Instructions: req.Instructions,
	}
	if url, ok := c.Locals("imageURL").(string); ok {
		in.ImageURL = url
	}
	return in, nil
}

// ImageUpload processes an optional multipart "image" file before the post
// handlers run. On success the stored image's URL is available in
// c.Locals("imageURL"); requests without a file pass through untouched.
func (s *Server) ImageUpload() fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("image")
		if err != nil {
			// No file in the request.
			return c.Next()
		}

		if s.images == nil {
			return models.RespondWithAppError(c,
				models.NewStoreError(fiber.NewError(fiber.StatusServiceUnavailable, "image storage unavailable")))
		}

		file, err := fileHeader.Open()
		if err != nil {
			return models.RespondWithAppError(c, models.NewValidationError("Could not read uploaded file"))
		}
		defer file.Close()

		content, err := io.ReadAll(file)
		if err != nil {
			return models.RespondWithAppError(c, models.NewValidationError("Could not read uploaded file"))
		}

		url, err := s.images.Upload(c.UserContext(), fileHeader.Filename, content)
		if err != nil {
			return models.RespondWithAppError(c, err)
		}

		c.Locals("imageURL", url)
		return c.Next()
	}
}

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	posts, err := s.posts.List(c.UserContext(), limit, offset, currentUserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}

// SearchPosts handles GET /api/posts/search?q=
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	posts, err := s.posts.Search(c.UserContext(), c.Query("q"), currentUserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}

// GetPostsByCategory handles GET /api/posts/category/:category
func (s *Server) GetPostsByCategory(c *fiber.Ctx) error {
	posts, err := s.posts.ListByCategory(c.UserContext(), c.Params("category"), currentUserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}

// GetPost handles GET /api/posts/:id. The detail view also carries the ids
// of every user who favorited the post; both that list and the post's own
// favorited flag are read from the same favorites table.
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parsePostID(c)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	post, err := s.posts.Get(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	favoritedBy, err := s.favoriteRepo.UserIDsByPost(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"post": post, "favorited_by": favoritedBy})
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	in, err := s.postInput(c)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	post, err := s.posts.Create(c.UserContext(), currentUserID(c), in)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"post": post})
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := parsePostID(c)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	in, err := s.postInput(c)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	post, err := s.posts.Edit(c.UserContext(), currentUserID(c), id, in)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"post": post})
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parsePostID(c)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	if err := s.posts.Delete(c.UserContext(), currentUserID(c), id); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted"})
}
