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
	customerDomain "github.com/joyhomes/service-booking/internal/domain/customer"
)

// CustomerModel is the GORM model for the customers table.
type CustomerModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	FullName   string     `gorm:"size:150;not null"`
	Phone      string     `gorm:"size:20;not null;uniqueIndex"`
	Email      string     `gorm:"size:150"`
	IDNumber   string     `gorm:"size:20"`
	AssignedTo *uuid.UUID `gorm:"type:uuid;index"`
	Version    int64      `gorm:"not null;default:1"`
	CreatedAt  time.Time  `gorm:"not null"`
	UpdatedAt  time.Time  `gorm:"not null"`
}

func (CustomerModel) TableName() string { return "customers" }

// GormCustomerRepository implements CustomerRepository using GORM.
type GormCustomerRepository struct {
	db *gorm.DB
}

func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*customerDomain.Customer, error) {
	var model CustomerModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("khách hàng", id.String())
		}
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	return toCustomerDomain(&model), nil
}

func (r *GormCustomerRepository) ExistsByPhone(ctx context.Context, phone string, excludeID *uuid.UUID) (bool, error) {
	q := r.db.WithContext(ctx).Model(&CustomerModel{}).Where("phone = ?", phone)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check customer phone: %w", err)
	}
	return count > 0, nil
}

func (r *GormCustomerRepository) List(ctx context.Context, filter customerDomain.ListFilter) ([]*customerDomain.Customer, int64, error) {
	q := r.db.WithContext(ctx).Model(&CustomerModel{})
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		like := "%" + search + "%"
		q = q.Where("LOWER(full_name) LIKE ? OR phone LIKE ? OR LOWER(email) LIKE ?", like, like, like)
	}
	if filter.AssignedTo != nil {
		q = q.Where("assigned_to = ?", *filter.AssignedTo)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
	}

	var models []CustomerModel
	if err := q.Order("created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}

	customers := make([]*customerDomain.Customer, len(models))
	for i := range models {
		customers[i] = toCustomerDomain(&models[i])
	}
	return customers, total, nil
}

func (r *GormCustomerRepository) Save(ctx context.Context, c *customerDomain.Customer) error {
	if err := r.db.WithContext(ctx).Create(toCustomerModel(c)).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return domain.NewConflictError(fmt.Sprintf("Số điện thoại %s đã được đăng ký", c.Phone()))
		}
		return fmt.Errorf("failed to save customer: %w", err)
	}
	return nil
}

func (r *GormCustomerRepository) Update(ctx context.Context, c *customerDomain.Customer) error {
	result := r.db.WithContext(ctx).
		Model(&CustomerModel{}).
		Where("id = ? AND version = ?", c.ID(), c.Version()-1).
		Updates(map[string]interface{}{
			"full_name":  c.FullName(),
			"phone":      c.Phone(),
			"email":      c.Email(),
			"id_number":  c.IDNumber(),
			"version":    c.Version(),
			"updated_at": c.UpdatedAt(),
		})
	if result.Error != nil {
		if database.IsUniqueViolation(result.Error) {
			return domain.NewConflictError(fmt.Sprintf("Số điện thoại %s đã được đăng ký", c.Phone()))
		}
		return fmt.Errorf("failed to update customer: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("Khách hàng đã được cập nhật bởi người khác, vui lòng tải lại")
	}
	return nil
}

func toCustomerModel(c *customerDomain.Customer) *CustomerModel {
	return &CustomerModel{
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

func toCustomerDomain(m *CustomerModel) *customerDomain.Customer {
	return customerDomain.Reconstruct(
		m.ID, m.FullName, m.Phone, m.Email, m.IDNumber, m.AssignedTo,
		m.Version, m.CreatedAt, m.UpdatedAt,
	)
}
