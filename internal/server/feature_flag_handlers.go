package server

import "github.com/gofiber/fiber/v2"

// GetFeatureFlags handles GET /api/auth/features
// @Summary Configured flags and their state for the caller
// @Tags auth
// @Produce json
// @Security TokenAuth
// @Success 200 {object} map[string]any
// @Router /auth/features [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	if s.featureFlags == nil {
		return c.JSON(fiber.Map{
			"raw":       map[string]string{},
			"evaluated": map[string]bool{},
		})
	}

	userID, _ := currentUser(c)
	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(userID),
	})
}
