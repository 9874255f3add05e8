package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/joyhomes/service-booking/internal/application"
	"github.com/joyhomes/service-booking/internal/common/auth"
	"github.com/joyhomes/service-booking/internal/common/middleware"
	"github.com/joyhomes/service-booking/internal/common/response"
)

// DocumentHandler handles HTTP requests for booking documents.
type DocumentHandler struct {
	service *application.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(service *application.DocumentService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

// RegisterRoutes registers document routes under a booking.
func (h *DocumentHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	docs := r.Group("/api/bookings/:id/documents")
	docs.Use(middleware.AuthMiddleware(jwtManager))
	{
		docs.POST("", middleware.RequirePermission(auth.PermDocumentUpload), h.UploadDocument)
		docs.GET("", middleware.RequirePermission(auth.PermBookingView), h.ListDocuments)
	}
}

// UploadDocument handles POST /api/bookings/:id/documents.
func (h *DocumentHandler) UploadDocument(c *gin.Context) {
	bookingID, ok := parseID(c, "booking")
	if !ok {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req application.UploadDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.service.UploadDocument(c.Request.Context(), actor, bookingID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListDocuments handles GET /api/bookings/:id/documents.
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	bookingID, ok := parseID(c, "booking")
	if !ok {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	result, err := h.service.GetBookingDocuments(c.Request.Context(), actor, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
