package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/joyhomes/service-booking/internal/common/database"
	"github.com/joyhomes/service-booking/internal/common/domain"
	propertyDomain "github.com/joyhomes/service-booking/internal/domain/property"
)

// PropertyModel is the GORM model for the properties table.
type PropertyModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code      string    `gorm:"uniqueIndex;not null;size:50"`
	ProjectID uuid.UUID `gorm:"type:uuid;index;not null"`
	Title     string    `gorm:"size:255"`
	Price     int64     `gorm:"not null;default:0"`
	Area      float64   `gorm:"not null;default:0"`
	Status    string    `gorm:"not null;size:20;index"`
	Version   int64     `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (PropertyModel) TableName() string { return "properties" }

// GormPropertyRepository implements PropertyRepository using GORM.
type GormPropertyRepository struct {
	db *gorm.DB
}

func NewGormPropertyRepository(db *gorm.DB) *GormPropertyRepository {
	return &GormPropertyRepository{db: db}
}

func (r *GormPropertyRepository) FindByID(ctx context.Context, id uuid.UUID) (*propertyDomain.Property, error) {
	var model PropertyModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("bất động sản", id.String())
		}
		return nil, fmt.Errorf("failed to find property: %w", err)
	}
	return toPropertyDomain(&model), nil
}

func (r *GormPropertyRepository) Save(ctx context.Context, p *propertyDomain.Property) error {
	if err := r.db.WithContext(ctx).Create(toPropertyModel(p)).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return domain.NewConflictError(fmt.Sprintf("Mã bất động sản %s đã tồn tại", p.Code()))
		}
		return fmt.Errorf("failed to save property: %w", err)
	}
	return nil
}

// Update persists the status change. The row must still carry version-1.
func (r *GormPropertyRepository) Update(ctx context.Context, p *propertyDomain.Property) error {
	result := r.db.WithContext(ctx).
		Model(&PropertyModel{}).
		Where("id = ? AND version = ?", p.ID(), p.Version()-1).
		Updates(map[string]interface{}{
			"title":      p.Title(),
			"price":      p.Price(),
			"status":     string(p.Status()),
			"version":    p.Version(),
			"updated_at": p.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update property: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("Bất động sản đã được cập nhật bởi giao dịch khác, vui lòng thử lại")
	}
	return nil
}

func toPropertyModel(p *propertyDomain.Property) *PropertyModel {
	return &PropertyModel{
		ID:        p.ID(),
		Code:      p.Code(),
		ProjectID: p.ProjectID(),
		Title:     p.Title(),
		Price:     p.Price(),
		Area:      p.Area(),
		Status:    string(p.Status()),
		Version:   p.Version(),
		CreatedAt: p.CreatedAt(),
		UpdatedAt: p.UpdatedAt(),
	}
}

func toPropertyDomain(m *PropertyModel) *propertyDomain.Property {
	return propertyDomain.Reconstruct(
		m.ID, m.Code, m.ProjectID, m.Title, m.Price, m.Area,
		propertyDomain.Status(m.Status), m.Version, m.CreatedAt, m.UpdatedAt,
	)
}
