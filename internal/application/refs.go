package application

import (
	"context"

	"github.com/google/uuid"

	"github.com/joyhomes/service-booking/internal/common/domain"
	bookingDomain "github.com/joyhomes/service-booking/internal/domain/booking"
	customerDomain "github.com/joyhomes/service-booking/internal/domain/customer"
	propertyDomain "github.com/joyhomes/service-booking/internal/domain/property"
	"github.com/joyhomes/service-booking/internal/domain/reference"
)

// refLoader joins bookings with their customer, property, project and user.
// Lookups are memoised for the lifetime of one request.
type refLoader struct {
	st         Stores
	customers  map[uuid.UUID]*customerDomain.Customer
	properties map[uuid.UUID]*propertyDomain.Property
	projects   map[uuid.UUID]*reference.Project
	users      map[uuid.UUID]*reference.User
}

func newRefLoader(st Stores) *refLoader {
	return &refLoader{
		st:         st,
		customers:  make(map[uuid.UUID]*customerDomain.Customer),
		properties: make(map[uuid.UUID]*propertyDomain.Property),
		projects:   make(map[uuid.UUID]*reference.Project),
		users:      make(map[uuid.UUID]*reference.User),
	}
}

// enrich builds the booking response. Missing reference rows are left out.
func (l *refLoader) enrich(ctx context.Context, bk *bookingDomain.Booking) (BookingDTO, error) {
	dto := toBookingDTO(bk)

	c, err := lookup(ctx, l.customers, bk.CustomerID(), l.st.Customers.FindByID)
	if err != nil {
		return dto, err
	}
	if c != nil {
		dto.Customer = toCustomerSummary(c)
	}

	p, err := lookup(ctx, l.properties, bk.PropertyID(), l.st.Properties.FindByID)
	if err != nil {
		return dto, err
	}
	if p != nil {
		dto.Property = toPropertySummary(p)
	}

	pr, err := lookup(ctx, l.projects, bk.ProjectID(), l.st.References.FindProject)
	if err != nil {
		return dto, err
	}
	if pr != nil {
		dto.Project = toProjectSummary(pr)
	}

	u, err := lookup(ctx, l.users, bk.UserID(), l.st.References.FindUser)
	if err != nil {
		return dto, err
	}
	if u != nil {
		dto.User = toUserSummary(u)
	}
	return dto, nil
}

func lookup[T any](
	ctx context.Context,
	cache map[uuid.UUID]*T,
	id uuid.UUID,
	find func(context.Context, uuid.UUID) (*T, error),
) (*T, error) {
	if v, ok := cache[id]; ok {
		return v, nil
	}
	v, err := find(ctx, id)
	if err != nil && !domain.IsNotFound(err) {
		return nil, err
	}
	if err != nil {
		v = nil
	}
	cache[id] = v
	return v, nil
}
