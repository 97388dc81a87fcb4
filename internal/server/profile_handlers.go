package server

import (
	"log/slog"

	"devconnect/internal/featureflags"
	"devconnect/internal/middleware"
	"devconnect/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/profile/me
// @Summary Caller's profile
// @Tags profile
// @Produce json
// @Security TokenAuth
// @Success 200 {object} models.Profile
// @Failure 400 {object} models.ErrorResponse
// @Router /profile/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return respondServiceError(c, err)
	}
	profile, err := s.profileService.GetMine(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(profile)
}

// UpsertProfile handles POST /api/profile
// @Summary Create or update the caller's profile
// @Description Only supplied fields change on update.
// @Tags profile
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param request body profileRequest true "Profile fields"
// @Success 200 {object} models.Profile
// @Failure 400 {object} models.ValidationErrorResponse
// @Router /profile [post]
func (s *Server) UpsertProfile(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return respondServiceError(c, err)
	}
	var req profileRequest
	if err := parseBody(c, &req); err != nil {
		return respondServiceError(c, err)
	}

	profile, _, err := s.profileService.Upsert(c.UserContext(), userID, req.input())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(profile)
}

// GetProfiles handles GET /api/profile
// @Summary All profiles
// @Tags profile
// @Produce json
// @Success 200 {array} models.Profile
// @Router /profile [get]
func (s *Server) GetProfiles(c *fiber.Ctx) error {
	profiles, err := s.profileService.List(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(profiles)
}

// GetProfileByUser handles GET /api/profile/user/:user_id
// @Summary Profile by account id
// @Tags profile
// @Produce json
// @Param user_id path string true "Account id"
// @Success 200 {object} models.Profile
// @Failure 400 {object} models.ErrorResponse
// @Router /profile/user/{user_id} [get]
func (s *Server) GetProfileByUser(c *fiber.Ctx) error {
	profile, err := s.profileService.GetByUser(c.UserContext(), c.Params("user_id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(profile)
}

// DeleteAccount handles DELETE /api/profile
// @Summary Delete the caller's posts, profile and account
// @Tags profile
// @Produce json
// @Security TokenAuth
// @Success 200 {object} models.ErrorResponse
// @Router /profile [delete]
func (s *Server) DeleteAccount(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return respondServiceError(c, err)
	}
	if err := s.profileService.DeleteAccountCascade(c.UserContext(), userID); err != nil {
		return respondServiceError(c, err)
	}
	// Revoke the caller's token along with the account.
	if err := s.accountService.Logout(c.UserContext(), middleware.CurrentIdentity(c)); err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "token revocation after account delete failed",
			slog.String("user_id", userID), slog.String("error", err.Error()))
	}
	return c.JSON(fiber.Map{"msg": "User deleted"})
}

// AddExperience handles PUT /api/profile/experience
// @Summary Add an experience entry
// @Tags profile
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param request body experienceRequest true "Experience"
// @Success 200 {object} models.Profile
// @Failure 400 {object} models.ValidationErrorResponse
// @Router /profile/experience [put]
func (s *Server) AddExperience(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return respondServiceError(c, err)
	}
	var req experienceRequest
	if err := parseBody(c, &req); err != nil {
		return respondServiceError(c, err)
	}
	in, err := req.input()
	if err != nil {
		return respondServiceError(c, err)
	}

	profile, err := s.profileService.AddExperience(c.UserContext(), userID, in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(profile)
}

// DeleteExperience handles DELETE /api/profile/experience/:exp_id
// @Summary Remove an experience entry
// @Tags profile
// @Produce json
// @Security TokenAuth
// @Param exp_id path string true "Experience id"
// @Success 200 {object} models.Profile
// @Failure 404 {object} models.ErrorResponse
// @Router /profile/experience/{exp_id} [delete]
func (s *Server) DeleteExperience(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return respondServiceError(c, err)
	}
	profile, err := s.profileService.RemoveExperience(c.UserContext(), userID, c.Params("exp_id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(profile)
}

// AddEducation handles PUT /api/profile/education
// @Summary Add an education entry
// @Tags profile
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param request body educationRequest true "Education"
// @Success 200 {object} models.Profile
// @Failure 400 {object} models.ValidationErrorResponse
// @Router /profile/education [put]
func (s *Server) AddEducation(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return respondServiceError(c, err)
	}
	var req educationRequest
	if err := parseBody(c, &req); err != nil {
		return respondServiceError(c, err)
	}
	in, err := req.input()
	if err != nil {
		return respondServiceError(c, err)
	}

	profile, err := s.profileService.AddEducation(c.UserContext(), userID, in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(profile)
}

// DeleteEducation handles DELETE /api/profile/education/:edu_id
// @Summary Remove an education entry
// @Tags profile
// @Produce json
// @Security TokenAuth
// @Param edu_id path string true "Education id"
// @Success 200 {object} models.Profile
// @Failure 404 {object} models.ErrorResponse
// @Router /profile/education/{edu_id} [delete]
func (s *Server) DeleteEducation(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return respondServiceError(c, err)
	}
	profile, err := s.profileService.RemoveEducation(c.UserContext(), userID, c.Params("edu_id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(profile)
}

// GetGitHubRepos handles GET /api/profile/github/:username
// @Summary A GitHub user's five oldest repositories
// @Tags profile
// @Produce json
// @Param username path string true "GitHub username"
// @Success 200 {array} object
// @Failure 404 {object} models.ErrorResponse
// @Router /profile/github/{username} [get]
func (s *Server) GetGitHubRepos(c *fiber.Ctx) error {
	if !s.featureFlags.EnabledGlobally(featureflags.GitHubLookup) {
		return respondServiceError(c, models.NewNotFoundError("GitHub lookup is disabled"))
	}
	repos, err := s.githubService.Repos(c.UserContext(), c.Params("username"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(repos)
}
