package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	documentDomain "github.com/joyhomes/service-booking/internal/domain/document"
)

// BookingDocumentModel is the GORM model for the booking_documents table.
type BookingDocumentModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingID  uuid.UUID `gorm:"type:uuid;index;not null"`
	UploadedBy uuid.UUID `gorm:"type:uuid;not null"`
	Type       string    `gorm:"size:20;not null"`
	URL        string    `gorm:"size:1000;not null"`
	Caption    string    `gorm:"size:255"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name.
func (BookingDocumentModel) TableName() string {
	return "booking_documents"
}

// GormDocumentRepository implements DocumentRepository.
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository.
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// Save persists a new booking document.
func (r *GormDocumentRepository) Save(ctx context.Context, doc *documentDomain.BookingDocument) error {
	model := BookingDocumentModel{
		ID:         doc.ID(),
		BookingID:  doc.BookingID(),
		UploadedBy: doc.UploadedBy(),
		Type:       string(doc.Type()),
		URL:        doc.URL(),
		Caption:    doc.Caption(),
		CreatedAt:  doc.CreatedAt(),
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to save booking document: %w", err)
	}
	return nil
}

// FindByBookingID retrieves all documents for a booking.
func (r *GormDocumentRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*documentDomain.BookingDocument, error) {
	var models []BookingDocumentModel
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find booking documents: %w", err)
	}

	docs := make([]*documentDomain.BookingDocument, len(models))
	for i, m := range models {
		docs[i] = documentDomain.Reconstruct(m.ID, m.BookingID, m.UploadedBy, documentDomain.DocumentType(m.Type), m.URL, m.Caption, m.CreatedAt)
	}
	return docs, nil
}
