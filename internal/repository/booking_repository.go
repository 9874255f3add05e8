package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/joyhomes/service-booking/internal/common/database"
	"github.com/joyhomes/service-booking/internal/common/domain"
	bookingDomain "github.com/joyhomes/service-booking/internal/domain/booking"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Code             string     `gorm:"uniqueIndex;not null;size:20"`
	PropertyID       uuid.UUID  `gorm:"type:uuid;index;not null"`
	ProjectID        uuid.UUID  `gorm:"type:uuid;index;not null"`
	CustomerID       uuid.UUID  `gorm:"type:uuid;index;not null"`
	UserID           uuid.UUID  `gorm:"type:uuid;index;not null"`
	AgreedPrice      int64      `gorm:"not null"`
	DepositAmount    int64      `gorm:"not null;default:0"`
	DepositDate      *time.Time `gorm:""`
	CommissionRate   float64    `gorm:"not null"`
	CommissionAmount int64      `gorm:"not null"`
	Status           string     `gorm:"not null;size:20;index"`
	ContractNumber   string     `gorm:"size:50"`
	ContractDate     *time.Time `gorm:""`
	Notes            string     `gorm:"size:2000"`
	CancelledAt      *time.Time `gorm:""`
	Version          int64      `gorm:"not null;default:1"`
	CreatedAt        time.Time  `gorm:"not null;index"`
	UpdatedAt        time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByCode retrieves a booking by its human-readable code.
func (r *GormBookingRepository) FindByCode(ctx context.Context, code string) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("booking", code)
		}
		return nil, fmt.Errorf("failed to find booking by code: %w", err)
	}
	return toDomainBooking(&model)
}

// List retrieves bookings matching the filter, newest first.
func (r *GormBookingRepository) List(ctx context.Context, filter bookingDomain.ListFilter) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (filter.Page - 1) * filter.Limit
	if err := r.filtered(ctx, filter).
		Select("bookings.*").
		Order("bookings.created_at DESC").
		Offset(offset).
		Limit(filter.Limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bk, err := toDomainBooking(&models[i])
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = bk
	}
	return bookings, total, nil
}

func (r *GormBookingRepository) filtered(ctx context.Context, filter bookingDomain.ListFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&BookingModel{})

	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		like := "%" + search + "%"
		q = q.Joins("LEFT JOIN customers ON customers.id = bookings.customer_id").
			Joins("LEFT JOIN properties ON properties.id = bookings.property_id").
			Where("LOWER(bookings.code) LIKE ? OR LOWER(customers.full_name) LIKE ? OR customers.phone LIKE ? OR LOWER(properties.code) LIKE ?",
				like, like, like, like)
	}
	if filter.Status != "" {
		q = q.Where("bookings.status = ?", string(filter.Status))
	}
	if filter.ProjectID != nil {
		q = q.Where("bookings.project_id = ?", *filter.ProjectID)
	}
	if filter.UserID != nil {
		q = q.Where("bookings.user_id = ?", *filter.UserID)
	}
	return q
}

// CountByStatus returns booking counts grouped by status.
func (r *GormBookingRepository) CountByStatus(ctx context.Context, userID *uuid.UUID) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	q := r.db.WithContext(ctx).Model(&BookingModel{})
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}

	var results []statusCount
	if err := q.Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64, len(bookingDomain.AllStatuses))
	for _, s := range bookingDomain.AllStatuses {
		counts[string(s)] = 0
	}
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// HasActiveForProperty reports whether a non-terminal booking holds the property.
func (r *GormBookingRepository) HasActiveForProperty(ctx context.Context, propertyID uuid.UUID) (bool, error) {
	active := bookingDomain.ActiveStatuses()
	statuses := make([]string, len(active))
	for i, s := range active {
		statuses[i] = string(s)
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("property_id = ? AND status IN ?", propertyID, statuses).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check active bookings: %w", err)
	}
	return count > 0, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	if err := r.db.WithContext(ctx).Create(toBookingModel(bk)).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return domain.NewConflictError("Mã booking đã tồn tại, vui lòng thử lại")
		}
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	// IncrementVersion was called before Update, so the stored row must carry version-1.
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"agreed_price":      model.AgreedPrice,
			"deposit_amount":    model.DepositAmount,
			"deposit_date":      model.DepositDate,
			"commission_amount": model.CommissionAmount,
			"status":            model.Status,
			"contract_number":   model.ContractNumber,
			"contract_date":     model.ContractDate,
			"notes":             model.Notes,
			"cancelled_at":      model.CancelledAt,
			"version":           model.Version,
			"updated_at":        model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("Booking đã được cập nhật bởi người khác, vui lòng tải lại")
	}
	return nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
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

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.Code,
		m.PropertyID,
		m.ProjectID,
		m.CustomerID,
		m.UserID,
		m.AgreedPrice,
		m.DepositAmount,
		m.DepositDate,
		m.CommissionRate,
		m.CommissionAmount,
		status,
		m.ContractNumber,
		m.ContractDate,
		m.Notes,
		m.CancelledAt,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
