package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/joyhomes/service-booking/internal/application"
	"github.com/joyhomes/service-booking/internal/common/auth"
	"github.com/joyhomes/service-booking/internal/common/middleware"
	"github.com/joyhomes/service-booking/internal/common/response"
)

// DashboardHandler handles management dashboard requests.
type DashboardHandler struct {
	service *application.BookingService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(service *application.BookingService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// RegisterRoutes registers dashboard routes.
func (h *DashboardHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	dashboard := r.Group("/api/dashboard")
	dashboard.Use(middleware.AuthMiddleware(jwtManager), middleware.RequirePermission(auth.PermDashboardView))
	{
		dashboard.GET("/bookings", h.BookingStats)
	}
}

// BookingStats handles GET /api/dashboard/bookings.
func (h *DashboardHandler) BookingStats(c *gin.Context) {
	stats, err := h.service.GetDashboardStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}
