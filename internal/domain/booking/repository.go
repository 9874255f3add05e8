package booking

import (
	"context"

	"github.com/google/uuid"
)

// ListFilter narrows a booking listing.
type ListFilter struct {
	Search    string
	Status    BookingStatus
	ProjectID *uuid.UUID
	// UserID scopes the listing to one sales agent's bookings.
	UserID *uuid.UUID
	Page   int
	Limit  int
}

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByCode retrieves a booking by its human-readable code.
	FindByCode(ctx context.Context, code string) (*Booking, error)

	// List retrieves bookings matching the filter with pagination.
	List(ctx context.Context, filter ListFilter) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status, optionally scoped to one agent.
	CountByStatus(ctx context.Context, userID *uuid.UUID) (map[string]int64, error)

	// HasActiveForProperty reports whether a non-terminal booking holds the property.
	HasActiveForProperty(ctx context.Context, propertyID uuid.UUID) (bool, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, booking *Booking) error
}
