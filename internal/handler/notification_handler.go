package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/joyhomes/service-booking/internal/common/auth"
	"github.com/joyhomes/service-booking/internal/common/middleware"
	"github.com/joyhomes/service-booking/internal/common/response"
	"github.com/joyhomes/service-booking/internal/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced by the API gateway
	},
}

// NotificationHandler serves the realtime notification socket and presence.
type NotificationHandler struct {
	hub        *realtime.Hub
	jwtManager *auth.JWTManager
	logger     *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(hub *realtime.Hub, jwtManager *auth.JWTManager, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{hub: hub, jwtManager: jwtManager, logger: logger}
}

// RegisterRoutes registers the websocket endpoint and the presence API.
func (h *NotificationHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/ws/notifications", h.Connect)

	notifications := r.Group("/api/notifications")
	notifications.Use(
		middleware.AuthMiddleware(h.jwtManager),
		middleware.RequirePermission(auth.PermNotificationPeople),
	)
	{
		notifications.GET("/online", h.OnlineUsers)
	}
}

// Connect handles GET /ws/notifications?token=... Browsers cannot set headers
// on a websocket handshake, so the access token travels in the query string.
func (h *NotificationHandler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Unauthorized(c, "Thiếu token xác thực")
		return
	}
	claims, err := h.jwtManager.ValidateToken(token)
	if err != nil {
		response.Unauthorized(c, "Token không hợp lệ hoặc đã hết hạn")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	h.hub.ServeWS(conn, claims.UserID, claims.Role)
}

// OnlineUsers handles GET /api/notifications/online.
func (h *NotificationHandler) OnlineUsers(c *gin.Context) {
	response.Success(c, gin.H{"users": h.hub.OnlineUsers()})
}
