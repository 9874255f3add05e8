package document

import (
	"context"

	"github.com/google/uuid"
)

// DocumentRepository defines persistence operations for booking documents.
type DocumentRepository interface {
	Save(ctx context.Context, doc *BookingDocument) error
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*BookingDocument, error)
}
