package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/joyhomes/service-booking/internal/common/domain"
	"github.com/joyhomes/service-booking/internal/domain/reference"
)

// ProjectModel is the read copy of a CRM project.
type ProjectModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name           string    `gorm:"size:255;not null"`
	CommissionRate *float64  `gorm:""`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

func (ProjectModel) TableName() string { return "projects" }

// UserModel is the read copy of a CRM staff member.
type UserModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	FullName  string    `gorm:"size:150;not null"`
	Email     string    `gorm:"size:150;uniqueIndex"`
	Role      string    `gorm:"size:20;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (UserModel) TableName() string { return "users" }

// GormReferenceRepository reads projects and users.
type GormReferenceRepository struct {
	db *gorm.DB
}

func NewGormReferenceRepository(db *gorm.DB) *GormReferenceRepository {
	return &GormReferenceRepository{db: db}
}

func (r *GormReferenceRepository) FindProject(ctx context.Context, id uuid.UUID) (*reference.Project, error) {
	var m ProjectModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("dự án", id.String())
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return &reference.Project{ID: m.ID, Name: m.Name, CommissionRate: m.CommissionRate}, nil
}

func (r *GormReferenceRepository) FindUser(ctx context.Context, id uuid.UUID) (*reference.User, error) {
	var m UserModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("nhân viên", id.String())
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &reference.User{ID: m.ID, FullName: m.FullName, Email: m.Email, Role: m.Role}, nil
}
