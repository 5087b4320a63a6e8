package api

import (
	"context"

	user "github.com/example/blog-realtime-demo/domain/user"
	"github.com/example/blog-realtime-demo/modules/live"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// wsHandshake authenticates a live connection before it is upgraded.
func (m *APIModule) wsHandshake(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	identity, err := m.live.Handshake(c.UserContext(), wsCredential(c))
	if err != nil {
		m.logger.Debug("Rejected live handshake", "ip", c.IP(), "error", err)
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "A valid access token is required",
		})
	}

	c.Locals(IdentityKey, identity)
	return c.Next()
}

// wsCredential reads the bearer header, falling back to the token query
// parameter for browsers that cannot set headers on upgrade requests.
func wsCredential(c *fiber.Ctx) string {
	if token, ok := bearerToken(c.Get(fiber.HeaderAuthorization)); ok {
		return token
	}
	return c.Query("token")
}

// handleWebSocket serves one authenticated live connection.
func (m *APIModule) handleWebSocket(conn *websocket.Conn) {
	identity, ok := conn.Locals(IdentityKey).(user.Identity)
	if !ok {
		_ = conn.Close()
		return
	}

	ctx := context.Background()
	client := m.live.Connect(ctx, identity)

	written := make(chan struct{})
	go m.writeFrames(conn, client, written)
	defer func() {
		m.live.Disconnect(ctx, client)
		<-written
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				m.logger.Debug("Live client closed connection", "clientID", client.ID)
			} else {
				m.logger.Debug("Live read error", "clientID", client.ID, "error", err)
			}
			return
		}
		m.live.Dispatch(ctx, client, raw)
	}
}

// writeFrames is the only writer on conn. It returns when the client's queue
// is closed or a write fails.
func (m *APIModule) writeFrames(conn *websocket.Conn, client *live.Client, done chan<- struct{}) {
	defer close(done)

	for frame := range client.Send() {
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			m.logger.Debug("Live write error", "clientID", client.ID, "error", err)
			_ = conn.Close()
			return
		}
	}
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
