package server

import (
	"forum/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// requireFeed rejects feed requests when Redis is down or the request is not an upgrade.
func (s *Server) requireFeed(c *fiber.Ctx) error {
	if s.hub == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Realtime feed unavailable")
	}
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

// CommunityFeedHandler streams community_created events to the connected client.
func (s *Server) CommunityFeedHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		client, err := s.hub.Register(conn)
		if err != nil {
			middleware.Logger.Warn("websocket register failed", "error", err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}
		defer s.hub.UnregisterClient(client)

		middleware.Logger.Info("community feed client connected",
			"client_id", client.ID, "clients", s.hub.Count())

		go client.WritePump()
		client.ReadPump()
	})
}
