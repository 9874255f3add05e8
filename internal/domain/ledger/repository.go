package ledger

import (
	"context"

	"github.com/google/uuid"
)

// TransactionRepository defines the persistence contract for ledger entries.
type TransactionRepository interface {
	// FindByID retrieves an entry by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// FindByBookingID retrieves all entries of a booking, oldest first.
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*Transaction, error)

	// ExistsByReference reports whether an entry with the external reference exists.
	ExistsByReference(ctx context.Context, reference string) (bool, error)

	// TotalsByType sums CONFIRMED amounts by type across all bookings.
	TotalsByType(ctx context.Context) (map[string]int64, error)

	// Save persists a new entry.
	Save(ctx context.Context, tx *Transaction) error

	// UpdateStatus persists a cancellation.
	UpdateStatus(ctx context.Context, tx *Transaction) error
}
