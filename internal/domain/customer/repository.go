package customer

import (
	"context"

	"github.com/google/uuid"
)

// ListFilter narrows a customer listing.
type ListFilter struct {
	Search     string
	AssignedTo *uuid.UUID
	Page       int
	Limit      int
}

// CustomerRepository defines persistence operations for customers.
type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	ExistsByPhone(ctx context.Context, phone string, excludeID *uuid.UUID) (bool, error)
	List(ctx context.Context, filter ListFilter) ([]*Customer, int64, error)
	Save(ctx context.Context, c *Customer) error
	Update(ctx context.Context, c *Customer) error
}
