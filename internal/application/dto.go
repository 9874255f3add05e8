package application

import (
	"time"

	"github.com/google/uuid"

	"github.com/joyhomes/service-booking/internal/common/auth"
	"github.com/joyhomes/service-booking/internal/common/domain"
	bookingDomain "github.com/joyhomes/service-booking/internal/domain/booking"
	customerDomain "github.com/joyhomes/service-booking/internal/domain/customer"
	documentDomain "github.com/joyhomes/service-booking/internal/domain/document"
	ledgerDomain "github.com/joyhomes/service-booking/internal/domain/ledger"
	propertyDomain "github.com/joyhomes/service-booking/internal/domain/property"
	"github.com/joyhomes/service-booking/internal/domain/reference"
)

// SystemUserID is recorded as the creator of entries booked by background consumers.
var SystemUserID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// Actor is the authenticated caller of a use case.
type Actor struct {
	UserID uuid.UUID
	Role   auth.Role
}

// SystemActor is used for entries created from consumed events.
func SystemActor() Actor {
	return Actor{UserID: SystemUserID, Role: auth.RoleAdmin}
}

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	CustomerID    uuid.UUID `json:"customerId" binding:"required"`
	PropertyID    uuid.UUID `json:"propertyId" binding:"required"`
	AgreedPrice   int64     `json:"agreedPrice" binding:"required,gt=0"`
	DepositAmount int64     `json:"depositAmount" binding:"gte=0"`
	Notes         string    `json:"notes" binding:"max=2000"`
}

// UpdateStatusRequest holds an explicit status change.
type UpdateStatusRequest struct {
	Status         string `json:"status" binding:"required"`
	ContractNumber string `json:"contractNumber" binding:"max=50"`
	Notes          string `json:"notes" binding:"max=1000"`
}

// UpdateBookingRequest holds a generic field update. Nil fields are left unchanged.
type UpdateBookingRequest struct {
	AgreedPrice    *int64  `json:"agreedPrice" binding:"omitempty,gt=0"`
	Notes          *string `json:"notes" binding:"omitempty,max=2000"`
	ContractNumber *string `json:"contractNumber" binding:"omitempty,max=50"`
}

// AddTransactionRequest holds a new ledger entry.
type AddTransactionRequest struct {
	Type          string `json:"type"`
	Amount        int64  `json:"amount" binding:"required,gt=0"`
	PaymentMethod string `json:"paymentMethod" binding:"max=50"`
	Notes         string `json:"notes" binding:"max=1000"`
	Reference     string `json:"reference" binding:"max=100"`
}

// ListBookingsQuery holds the listing filters.
type ListBookingsQuery struct {
	Search    string
	Status    string
	ProjectID *uuid.UUID
	Page      int
	Limit     int
	Stats     bool
}

// CustomerSummary is the customer part of a booking response.
type CustomerSummary struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"fullName"`
	Phone    string    `json:"phone"`
	Email    string    `json:"email,omitempty"`
}

// PropertySummary is the property part of a booking response.
type PropertySummary struct {
	ID     uuid.UUID `json:"id"`
	Code   string    `json:"code"`
	Title  string    `json:"title"`
	Price  int64     `json:"price"`
	Area   float64   `json:"area"`
	Status string    `json:"status"`
}

// ProjectSummary is the project part of a booking response.
type ProjectSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// UserSummary is the sales agent part of a booking response.
type UserSummary struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"fullName"`
	Email    string    `json:"email,omitempty"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID               uuid.UUID        `json:"id"`
	Code             string           `json:"code"`
	PropertyID       uuid.UUID        `json:"propertyId"`
	ProjectID        uuid.UUID        `json:"projectId"`
	CustomerID       uuid.UUID        `json:"customerId"`
	UserID           uuid.UUID        `json:"userId"`
	AgreedPrice      int64            `json:"agreedPrice"`
	DepositAmount    int64            `json:"depositAmount"`
	DepositDate      *time.Time       `json:"depositDate,omitempty"`
	CommissionRate   float64          `json:"commissionRate"`
	CommissionAmount int64            `json:"commissionAmount"`
	Currency         string           `json:"currency"`
	Status           string           `json:"status"`
	ContractNumber   string           `json:"contractNumber,omitempty"`
	ContractDate     *time.Time       `json:"contractDate,omitempty"`
	Notes            string           `json:"notes,omitempty"`
	CancelledAt      *time.Time       `json:"cancelledAt,omitempty"`
	Version          int64            `json:"version"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
	Customer         *CustomerSummary `json:"customer,omitempty"`
	Property         *PropertySummary `json:"property,omitempty"`
	Project          *ProjectSummary  `json:"project,omitempty"`
	User             *UserSummary     `json:"user,omitempty"`
}

// TransactionDTO is the response representation of a ledger entry.
type TransactionDTO struct {
	ID            uuid.UUID  `json:"id"`
	BookingID     uuid.UUID  `json:"bookingId"`
	Type          string     `json:"type"`
	Amount        int64      `json:"amount"`
	Status        string     `json:"status"`
	PaymentMethod string     `json:"paymentMethod,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	Reference     string     `json:"reference,omitempty"`
	CreatedBy     uuid.UUID  `json:"createdBy"`
	CancelledAt   *time.Time `json:"cancelledAt,omitempty"`
	CancelReason  string     `json:"cancelReason,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// TransactionResult is returned by AddTransaction.
type TransactionResult struct {
	Transaction TransactionDTO `json:"transaction"`
	Booking     BookingDTO     `json:"booking"`
}

// BookingListResult is a page of bookings, with counts by status on request.
type BookingListResult struct {
	Items []BookingDTO
	Total int64
	Page  int
	Limit int
	Stats map[string]int64
}

// DashboardStatsDTO holds aggregate figures for the management dashboard.
type DashboardStatsDTO struct {
	TotalBookings int64            `json:"totalBookings"`
	ByStatus      map[string]int64 `json:"byStatus"`
	LedgerTotals  map[string]int64 `json:"ledgerTotals"`
}

// CustomerDTO is the response representation of a customer.
type CustomerDTO struct {
	ID         uuid.UUID  `json:"id"`
	FullName   string     `json:"fullName"`
	Phone      string     `json:"phone"`
	Email      string     `json:"email,omitempty"`
	IDNumber   string     `json:"idNumber,omitempty"`
	AssignedTo *uuid.UUID `json:"assignedTo,omitempty"`
	Version    int64      `json:"version"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// DocumentDTO is the response representation of a booking document.
type DocumentDTO struct {
	ID         uuid.UUID `json:"id"`
	BookingID  uuid.UUID `json:"bookingId"`
	UploadedBy uuid.UUID `json:"uploadedBy"`
	Type       string    `json:"type"`
	URL        string    `json:"url"`
	Caption    string    `json:"caption,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// --- Mappers ---

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:               bk.ID(),
		Code:             bk.Code(),
		PropertyID:       bk.PropertyID(),
		ProjectID:        bk.ProjectID(),
		CustomerID:       bk.CustomerID(),
		UserID:           bk.UserID(),
		AgreedPrice:      bk.AgreedPrice(),
		DepositAmount:    bk.DepositAmount(),
		DepositDate:      bk.DepositDate(),
		CommissionRate:   bk.CommissionRate(),
		CommissionAmount: bk.CommissionAmount(),
		Currency:         domain.CurrencyVND,
		Status:           string(bk.Status()),
		ContractNumber:   bk.ContractNumber(),
		ContractDate:     bk.ContractDate(),
		Notes:            bk.Notes(),
		CancelledAt:      bk.CancelledAt(),
		Version:          bk.Version(),
		CreatedAt:        bk.CreatedAt(),
		UpdatedAt:        bk.UpdatedAt(),
	}
}

func toTransactionDTO(tx *ledgerDomain.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:            tx.ID(),
		BookingID:     tx.BookingID(),
		Type:          string(tx.Type()),
		Amount:        tx.Amount(),
		Status:        string(tx.Status()),
		PaymentMethod: tx.PaymentMethod(),
		Notes:         tx.Notes(),
		Reference:     tx.Reference(),
		CreatedBy:     tx.CreatedBy(),
		CancelledAt:   tx.CancelledAt(),
		CancelReason:  tx.CancelReason(),
		CreatedAt:     tx.CreatedAt(),
	}
}

func toCustomerDTO(c *customerDomain.Customer) CustomerDTO {
	return CustomerDTO{
		ID:         c.ID(),
		FullName:   c.FullName(),
		Phone:      c.Phone(),
		Email:      c.Email(),
		IDNumber:   c.IDNumber(),
		AssignedTo: c.AssignedTo(),
		Version:    c.Version(),
		CreatedAt:  c.CreatedAt(),
		UpdatedAt:  c.UpdatedAt(),
	}
}

func toDocumentDTO(d *documentDomain.BookingDocument) DocumentDTO {
	return DocumentDTO{
		ID:         d.ID(),
		BookingID:  d.BookingID(),
		UploadedBy: d.UploadedBy(),
		Type:       string(d.Type()),
		URL:        d.URL(),
		Caption:    d.Caption(),
		CreatedAt:  d.CreatedAt(),
	}
}

func toPropertySummary(p *propertyDomain.Property) *PropertySummary {
	return &PropertySummary{
		ID:     p.ID(),
		Code:   p.Code(),
		Title:  p.Title(),
		Price:  p.Price(),
		Area:   p.Area(),
		Status: string(p.Status()),
	}
}

func toCustomerSummary(c *customerDomain.Customer) *CustomerSummary {
	return &CustomerSummary{ID: c.ID(), FullName: c.FullName(), Phone: c.Phone(), Email: c.Email()}
}

func toProjectSummary(p *reference.Project) *ProjectSummary {
	return &ProjectSummary{ID: p.ID, Name: p.Name}
}

func toUserSummary(u *reference.User) *UserSummary {
	return &UserSummary{ID: u.ID, FullName: u.FullName, Email: u.Email}
}
