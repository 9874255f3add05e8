package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/joyhomes/service-booking/internal/application"
)

// Models lists every GORM model owned by the service, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&ProjectModel{},
		&UserModel{},
		&CustomerModel{},
		&PropertyModel{},
		&BookingModel{},
		&TransactionModel{},
		&BookingDocumentModel{},
	}
}

// GormUnitOfWork binds the repositories to a GORM handle.
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a new GormUnitOfWork.
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// Stores returns repositories that run outside any transaction.
func (u *GormUnitOfWork) Stores() application.Stores {
	return storesFor(u.db)
}

// Within runs fn in one database transaction.
func (u *GormUnitOfWork) Within(ctx context.Context, fn func(application.Stores) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(storesFor(tx))
	})
}

func storesFor(db *gorm.DB) application.Stores {
	return application.Stores{
		Bookings:     NewGormBookingRepository(db),
		Properties:   NewGormPropertyRepository(db),
		Transactions: NewGormTransactionRepository(db),
		Customers:    NewGormCustomerRepository(db),
		Documents:    NewGormDocumentRepository(db),
		References:   NewGormReferenceRepository(db),
	}
}
