// Package reference holds read models owned by other CRM services.
package reference

import (
	"context"

	"github.com/google/uuid"
)

// Project is a real-estate project. CommissionRate is nil when the project
// uses the default rate.
type Project struct {
	ID             uuid.UUID
	Name           string
	CommissionRate *float64
}

// User is a CRM staff member.
type User struct {
	ID       uuid.UUID
	FullName string
	Email    string
	Role     string
}

// Repository reads reference data.
type Repository interface {
	FindProject(ctx context.Context, id uuid.UUID) (*Project, error)
	FindUser(ctx context.Context, id uuid.UUID) (*User, error)
}
