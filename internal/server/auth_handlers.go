package server

import (
	"devconnect/internal/middleware"
	"devconnect/internal/service"

	"github.com/gofiber/fiber/v2"
)

type tokenResponse struct {
	Token string `json:"token"`
}

// Register handles POST /api/users
// @Summary Register an account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body registerRequest true "Registration"
// @Success 200 {object} tokenResponse
// @Failure 400 {object} models.ValidationErrorResponse
// @Router /users [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := parseBody(c, &req); err != nil {
		return respondServiceError(c, err)
	}

	token, err := s.accountService.Register(c.UserContext(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(tokenResponse{Token: token})
}

// Login handles POST /api/auth
// @Summary Authenticate and get a token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body loginRequest true "Credentials"
// @Success 200 {object} tokenResponse
// @Failure 400 {object} models.ValidationErrorResponse
// @Router /auth [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return respondServiceError(c, err)
	}

	token, err := s.accountService.Login(c.UserContext(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(tokenResponse{Token: token})
}

// GetAuthAccount handles GET /api/auth
// @Summary Current account
// @Tags auth
// @Produce json
// @Security TokenAuth
// @Success 200 {object} models.Account
// @Failure 401 {object} models.ErrorResponse
// @Router /auth [get]
func (s *Server) GetAuthAccount(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return respondServiceError(c, err)
	}
	account, err := s.accountService.Me(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(account)
}

// Logout handles POST /api/auth/logout
// @Summary Revoke the current token
// @Tags auth
// @Produce json
// @Security TokenAuth
// @Success 200 {object} models.ErrorResponse
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.accountService.Logout(c.UserContext(), middleware.CurrentIdentity(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"msg": "Logged out"})
}
