package server

import (
	"craftery/internal/models"

	"github.com/gofiber/fiber/v2"
)

// FavoritePost handles POST /api/posts/:id/favorite
func (s *Server) FavoritePost(c *fiber.Ctx) error {
	id, err := parsePostID(c)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	post, err := s.favorites.Add(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"post": post})
}

// UnfavoritePost handles DELETE /api/posts/:id/favorite
func (s *Server) UnfavoritePost(c *fiber.Ctx) error {
	id, err := parsePostID(c)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	post, err := s.favorites.Remove(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if post == nil {
		return c.JSON(fiber.Map{"message": "Favorite removed"})
	}
	return c.JSON(fiber.Map{"post": post})
}

// GetMyFavorites handles GET /api/users/me/favorites
func (s *Server) GetMyFavorites(c *fiber.Ctx) error {
	view, err := s.favorites.View(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(view)
}
