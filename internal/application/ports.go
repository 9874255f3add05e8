package application

import (
	"context"
	"time"

	"github.com/joyhomes/service-booking/internal/common/kafka"
	bookingDomain "github.com/joyhomes/service-booking/internal/domain/booking"
	customerDomain "github.com/joyhomes/service-booking/internal/domain/customer"
	documentDomain "github.com/joyhomes/service-booking/internal/domain/document"
	ledgerDomain "github.com/joyhomes/service-booking/internal/domain/ledger"
	propertyDomain "github.com/joyhomes/service-booking/internal/domain/property"
	"github.com/joyhomes/service-booking/internal/domain/reference"
)

// Stores groups the repositories bound to one database handle. Inside
// UnitOfWork.Within every store shares the same transaction.
type Stores struct {
	Bookings     bookingDomain.BookingRepository
	Properties   propertyDomain.PropertyRepository
	Transactions ledgerDomain.TransactionRepository
	Customers    customerDomain.CustomerRepository
	Documents    documentDomain.DocumentRepository
	References   reference.Repository
}

// UnitOfWork runs a group of repository calls atomically.
type UnitOfWork interface {
	// Stores returns repositories outside any transaction.
	Stores() Stores

	// Within runs fn in one database transaction. Returning an error rolls it back.
	Within(ctx context.Context, fn func(Stores) error) error
}

// EventPublisher delivers CloudEvents to a topic.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// StatsCache caches booking counts by status per listing scope.
type StatsCache interface {
	Get(ctx context.Context, scope string) (map[string]int64, bool, error)
	Set(ctx context.Context, scope string, counts map[string]int64, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}
