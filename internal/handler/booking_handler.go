package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joyhomes/service-booking/internal/application"
	"github.com/joyhomes/service-booking/internal/common/auth"
	"github.com/joyhomes/service-booking/internal/common/middleware"
	"github.com/joyhomes/service-booking/internal/common/response"
	ledgerDomain "github.com/joyhomes/service-booking/internal/domain/ledger"
)

// PATCH /api/bookings/:id actions.
const (
	actionApprove        = "approve"
	actionCancel         = "cancel"
	actionAddDeposit     = "add_deposit"
	actionAddPayment     = "add_payment"
	actionAddRefund      = "add_refund"
	actionUpdateStatus   = "update_status"
	actionPaymentSummary = "payment_summary"
	actionNextStatuses   = "next_statuses"
)

// actionPermissions maps each PATCH action to the capability it requires.
var actionPermissions = map[string]auth.Permission{
	actionApprove:        auth.PermBookingApprove,
	actionCancel:         auth.PermBookingCancel,
	actionAddDeposit:     auth.PermTransactionCreate,
	actionAddPayment:     auth.PermTransactionCreate,
	actionAddRefund:      auth.PermTransactionCreate,
	actionUpdateStatus:   auth.PermBookingStatus,
	actionPaymentSummary: auth.PermBookingView,
	actionNextStatuses:   auth.PermBookingView,
	"":                   auth.PermBookingUpdate,
}

// patchBookingRequest is the union of every PATCH action payload.
type patchBookingRequest struct {
	Action         string  `json:"action"`
	Reason         string  `json:"reason" binding:"max=1000"`
	Status         string  `json:"status"`
	ContractNumber *string `json:"contractNumber" binding:"omitempty,max=50"`
	Notes          *string `json:"notes" binding:"omitempty,max=2000"`
	Amount         int64   `json:"amount" binding:"gte=0"`
	PaymentMethod  string  `json:"paymentMethod" binding:"max=50"`
	Reference      string  `json:"reference" binding:"max=100"`
	AgreedPrice    *int64  `json:"agreedPrice" binding:"omitempty,gt=0"`
}

type cancelTransactionRequest struct {
	Reason string `json:"reason" binding:"required,max=1000"`
}

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	bookings := r.Group("/api/bookings")
	bookings.Use(authMW)
	{
		bookings.GET("", middleware.RequirePermission(auth.PermBookingView), h.ListBookings)
		bookings.POST("", middleware.RequirePermission(auth.PermBookingCreate), h.CreateBooking)
		bookings.GET("/:id", middleware.RequirePermission(auth.PermBookingView), h.GetBooking)
		bookings.PATCH("/:id", h.PatchBooking)
		bookings.GET("/:id/transactions", middleware.RequirePermission(auth.PermBookingView), h.ListTransactions)
	}

	transactions := r.Group("/api/transactions")
	transactions.Use(authMW)
	{
		transactions.POST("/:id/cancel", middleware.RequirePermission(auth.PermTransactionCancel), h.CancelTransaction)
	}
}

// CreateBooking handles POST /api/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListBookings handles GET /api/bookings. SALES callers only see their own bookings.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	page, limit := parsePagination(c)
	q := application.ListBookingsQuery{
		Search: c.Query("search"),
		Status: c.Query("status"),
		Page:   page,
		Limit:  limit,
		Stats:  c.Query("stats") == "true",
	}
	if raw := c.Query("projectId"); raw != "" {
		projectID, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "projectId không hợp lệ")
			return
		}
		q.ProjectID = &projectID
	}

	result, err := h.service.ListBookings(c.Request.Context(), actor, q)
	if err != nil {
		response.Error(c, err)
		return
	}

	if q.Stats {
		response.PaginatedWithMeta(c, result.Items, result.Total, result.Page, result.Limit, gin.H{"stats": result.Stats})
		return
	}
	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetBooking handles GET /api/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, ok := parseID(c, "booking")
	if !ok {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), actor, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// PatchBooking handles PATCH /api/bookings/:id, dispatching on the action field.
func (h *BookingHandler) PatchBooking(c *gin.Context) {
	bookingID, ok := parseID(c, "booking")
	if !ok {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req patchBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	action := strings.ToLower(strings.TrimSpace(req.Action))

	perm, known := actionPermissions[action]
	if !known {
		response.BadRequest(c, "Hành động không hợp lệ: "+req.Action)
		return
	}
	if !auth.Can(actor.Role, perm) {
		response.Forbidden(c, "Bạn không có quyền thực hiện thao tác này")
		return
	}

	ctx := c.Request.Context()
	var (
		result interface{}
		err    error
	)
	switch action {
	case actionApprove:
		result, err = h.service.ApproveBooking(ctx, actor, bookingID)
	case actionCancel:
		result, err = h.service.CancelBooking(ctx, actor, bookingID, req.Reason)
	case actionAddDeposit, actionAddPayment, actionAddRefund:
		result, err = h.service.AddTransaction(ctx, actor, bookingID, application.AddTransactionRequest{
			Type:          transactionTypeFor(action),
			Amount:        req.Amount,
			PaymentMethod: req.PaymentMethod,
			Notes:         deref(req.Notes),
			Reference:     req.Reference,
		})
	case actionUpdateStatus:
		notes := deref(req.Notes)
		if notes == "" {
			notes = req.Reason
		}
		result, err = h.service.UpdateStatus(ctx, actor, bookingID, application.UpdateStatusRequest{
			Status:         req.Status,
			ContractNumber: deref(req.ContractNumber),
			Notes:          notes,
		})
	case actionPaymentSummary:
		result, err = h.service.GetPaymentSummary(ctx, actor, bookingID)
	case actionNextStatuses:
		result, err = h.service.GetNextStatuses(ctx, actor, bookingID)
	default:
		result, err = h.service.UpdateBooking(ctx, actor, bookingID, application.UpdateBookingRequest{
			AgreedPrice:    req.AgreedPrice,
			Notes:          req.Notes,
			ContractNumber: req.ContractNumber,
		})
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListTransactions handles GET /api/bookings/:id/transactions.
func (h *BookingHandler) ListTransactions(c *gin.Context) {
	bookingID, ok := parseID(c, "booking")
	if !ok {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	result, err := h.service.GetTransactions(c.Request.Context(), actor, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CancelTransaction handles POST /api/transactions/:id/cancel.
func (h *BookingHandler) CancelTransaction(c *gin.Context) {
	transactionID, ok := parseID(c, "transaction")
	if !ok {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req cancelTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.service.CancelTransaction(c.Request.Context(), actor, transactionID, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

func transactionTypeFor(action string) string {
	switch action {
	case actionAddDeposit:
		return string(ledgerDomain.TypeDeposit)
	case actionAddRefund:
		return string(ledgerDomain.TypeRefund)
	default:
		return string(ledgerDomain.TypePayment)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// actorFrom reads the authenticated identity, writing a 401 when it is missing.
func actorFrom(c *gin.Context) (application.Actor, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Chưa xác thực")
		return application.Actor{}, false
	}
	role, ok := middleware.GetUserRole(c)
	if !ok {
		response.Unauthorized(c, "Chưa xác thực")
		return application.Actor{}, false
	}
	return application.Actor{UserID: userID, Role: role}, true
}

func parseID(c *gin.Context, entity string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid "+entity+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}
