package server

import (
	"log/slog"

	"devconnect/internal/middleware"
	"devconnect/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// requireUpgrade rejects plain HTTP requests to websocket routes.
func (s *Server) requireUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return models.RespondWithError(c, fiber.StatusUpgradeRequired,
			models.NewValidationError("Websocket upgrade required"))
	}
	return c.Next()
}

// FeedWebsocketHandler streams feed events to an authenticated account.
// Authentication is handled by route middleware and userID is read from
// connection locals.
// @Summary Live feed of post activity
// @Tags realtime
// @Security TokenAuth
// @Param token query string false "Token, when headers cannot be set"
// @Success 101
// @Failure 426 {object} models.ValidationErrorResponse
// @Router /ws [get]
func (s *Server) FeedWebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("userID").(string)
		if userID == "" {
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			middleware.Logger.Warn("feed websocket rejected",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}
		defer s.hub.UnregisterClient(client)

		go client.WritePump()
		client.ReadPump()
	})
}
