package server

import (
	"craftery/internal/models"
	"craftery/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Signup handles POST /api/auth/signup. A successful signup creates the
// account only; the client logs in separately.
func (s *Server) Signup(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithAppError(c, models.NewValidationError("Invalid request body"))
	}

	user, err := s.auth.Signup(c.UserContext(), service.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Account created, please log in",
		"user":    user,
	})
}

// Login handles POST /api/auth/login. On success the session token is set as
// an HTTP-only cookie; the response body carries the user only.
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithAppError(c, models.NewValidationError("Invalid request body"))
	}

	user, token, err := s.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	s.setSessionCookie(c, token)
	return c.JSON(fiber.Map{"user": user})
}

// Logout handles POST /api/auth/logout. The cookie is cleared only after the
// server-side session is gone; if the store fails the client keeps its cookie
// and sees the error.
func (s *Server) Logout(c *fiber.Ctx) error {
	token := c.Cookies(sessionCookie)

	if err := s.auth.Logout(c.UserContext(), token); err != nil {
		return models.RespondWithAppError(c, err)
	}

	s.clearSessionCookie(c)
	return c.JSON(fiber.Map{"message": "Logged out"})
}
