package property

import (
	"context"

	"github.com/google/uuid"
)

// PropertyRepository defines the persistence contract for properties.
type PropertyRepository interface {
	// FindByID retrieves a property by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Property, error)

	// Save persists a new property.
	Save(ctx context.Context, p *Property) error

	// Update persists changes with optimistic locking.
	Update(ctx context.Context, p *Property) error
}
