package property

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the availability of an inventory unit.
type Status string

const (
	StatusAvailable   Status = "AVAILABLE"
	StatusHold        Status = "HOLD"
	StatusBooked      Status = "BOOKED"
	StatusSold        Status = "SOLD"
	StatusUnavailable Status = "UNAVAILABLE"
)

// IsValid returns true if the status is recognized.
func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusHold, StatusBooked, StatusSold, StatusUnavailable:
		return true
	}
	return false
}

// Property is an inventory unit (apartment, villa, land lot) within a project.
type Property struct {
	id        uuid.UUID
	code      string
	projectID uuid.UUID
	title     string
	price     int64
	area      float64
	status    Status
	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewProperty creates an AVAILABLE property.
func NewProperty(code string, projectID uuid.UUID, title string, price int64, area float64) (*Property, error) {
	if code == "" {
		return nil, fmt.Errorf("property code is required")
	}
	if projectID == uuid.Nil {
		return nil, fmt.Errorf("project ID is required")
	}
	if price < 0 {
		return nil, fmt.Errorf("property price cannot be negative")
	}

	now := time.Now().UTC()
	return &Property{
		id:        uuid.New(),
		code:      code,
		projectID: projectID,
		title:     title,
		price:     price,
		area:      area,
		status:    StatusAvailable,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds a Property from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	code string,
	projectID uuid.UUID,
	title string,
	price int64,
	area float64,
	status Status,
	version int64,
	createdAt, updatedAt time.Time,
) *Property {
	return &Property{
		id:        id,
		code:      code,
		projectID: projectID,
		title:     title,
		price:     price,
		area:      area,
		status:    status,
		version:   version,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (p *Property) ID() uuid.UUID        { return p.id }
func (p *Property) Code() string         { return p.code }
func (p *Property) ProjectID() uuid.UUID { return p.projectID }
func (p *Property) Title() string        { return p.title }
func (p *Property) Price() int64         { return p.price }
func (p *Property) Area() float64        { return p.area }
func (p *Property) Status() Status       { return p.status }
func (p *Property) Version() int64       { return p.version }
func (p *Property) CreatedAt() time.Time { return p.createdAt }
func (p *Property) UpdatedAt() time.Time { return p.updatedAt }

// IsReservable reports whether a new booking may be placed on the property.
// HOLD is accepted; callers must still check that no active booking holds it.
func (p *Property) IsReservable() bool {
	return p.status == StatusAvailable || p.status == StatusHold
}

// SetStatus changes the availability status. It reports whether anything changed.
func (p *Property) SetStatus(status Status) (bool, error) {
	if !status.IsValid() {
		return false, fmt.Errorf("invalid property status: %s", status)
	}
	if p.status == status {
		return false, nil
	}
	p.status = status
	p.updatedAt = time.Now().UTC()
	return true, nil
}

// IncrementVersion bumps the version for optimistic locking.
func (p *Property) IncrementVersion() {
	p.version++
	p.updatedAt = time.Now().UTC()
}
