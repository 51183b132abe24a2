package ws

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"grwcomm/internal/middleware"
	"grwcomm/internal/observability"
	"grwcomm/internal/repositories"
)

// ConversationWebSocketHandler streams conversation events to both
// participants of a peer/category scope.
type ConversationWebSocketHandler struct {
	hub        *Hub
	reportRepo repositories.ReportRepository
	jwtSecret  string
}

// NewConversationWebSocketHandler constructs the handler.
func NewConversationWebSocketHandler(hub *Hub, reportRepo repositories.ReportRepository, jwtSecret string) *ConversationWebSocketHandler {
	return &ConversationWebSocketHandler{hub: hub, reportRepo: reportRepo, jwtSecret: jwtSecret}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades the connection and registers the client in the room
// for (caller, peer, category).
func (h *ConversationWebSocketHandler) Handle(c *gin.Context) {
	peerID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	ctx, span := otel.Tracer("grwcomm/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := c.GetHeader("Authorization")
	if token == "" {
		token = c.Query("token")
	} else {
		parts := strings.SplitN(token, " ", 2)
		if len(parts) == 2 {
			token = parts[1]
		}
	}

	claims, err := middleware.ParseToken(h.jwtSecret, token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	userID := claims.UserID
	if userID == peerID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot open conversation with yourself"})
		return
	}

	blocked, err := h.reportRepo.IsBlocked(ctx, userID, peerID)
	if err != nil || blocked {
		c.JSON(http.StatusForbidden, gin.H{"error": "conversation unavailable"})
		return
	}

	var categoryID *int
	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
			return
		}
		categoryID = &id
	}
	key := ConversationKey(userID, peerID, categoryID)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	h.hub.AddClient(key, conn, info)

	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")

	go h.readLoop(key, conn)
}

// readLoop drains client frames until the peer disconnects. Inbound
// frames carry no commands; sends go through the HTTP API.
func (h *ConversationWebSocketHandler) readLoop(key string, conn *websocket.Conn) {
	defer func() {
		h.hub.RemoveClient(key, conn)
		conn.Close()
		observability.DecWSActive()
		observability.IncWSEvent("ws_disconnect")
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
