package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/joyhomes/service-booking/internal/application"
	"github.com/joyhomes/service-booking/internal/common/domain"
	bookingDomain "github.com/joyhomes/service-booking/internal/domain/booking"
	customerDomain "github.com/joyhomes/service-booking/internal/domain/customer"
	ledgerDomain "github.com/joyhomes/service-booking/internal/domain/ledger"
	propertyDomain "github.com/joyhomes/service-booking/internal/domain/property"
	"github.com/joyhomes/service-booking/internal/repository"
	"github.com/joyhomes/service-booking/internal/testutil"
)

type fixture struct {
	db     *gorm.DB
	uow    *repository.GormUnitOfWork
	stores application.Stores
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t, repository.Models()...)
	uow := repository.NewGormUnitOfWork(db)
	return fixture{db: db, uow: uow, stores: uow.Stores()}
}

func (f fixture) property(t *testing.T, code string) *propertyDomain.Property {
	t.Helper()
	p, err := propertyDomain.NewProperty(code, uuid.New(), "Căn hộ "+code, 3_000_000_000, 72.5)
	require.NoError(t, err)
	require.NoError(t, f.stores.Properties.Save(context.Background(), p))
	return p
}

func (f fixture) customer(t *testing.T, name, phone string) *customerDomain.Customer {
	t.Helper()
	c, err := customerDomain.NewCustomer(name, phone, "", "", nil)
	require.NoError(t, err)
	require.NoError(t, f.stores.Customers.Save(context.Background(), c))
	return c
}

func (f fixture) booking(t *testing.T, p *propertyDomain.Property, c *customerDomain.Customer, userID uuid.UUID) *bookingDomain.Booking {
	t.Helper()
	bk, err := bookingDomain.NewBooking(bookingDomain.NewBookingParams{
		PropertyID:     p.ID(),
		ProjectID:      p.ProjectID(),
		CustomerID:     c.ID(),
		UserID:         userID,
		AgreedPrice:    p.Price(),
		CommissionRate: 2,
	})
	require.NoError(t, err)
	require.NoError(t, f.stores.Bookings.Save(context.Background(), bk))
	return bk
}

func TestBookingRepository_RoundTrip(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	bk := f.booking(t, f.property(t, "A-0101"), f.customer(t, "Lê Văn C", "0903000111"), uuid.New())

	got, err := f.stores.Bookings.FindByID(ctx, bk.ID())
	require.NoError(t, err)
	assert.Equal(t, bk.Code(), got.Code())
	assert.Equal(t, bookingDomain.StatusPending, got.Status())
	assert.Equal(t, int64(60_000_000), got.CommissionAmount())

	byCode, err := f.stores.Bookings.FindByCode(ctx, bk.Code())
	require.NoError(t, err)
	assert.Equal(t, bk.ID(), byCode.ID())

	_, err = f.stores.Bookings.FindByID(ctx, uuid.New())
	assert.True(t, domain.IsNotFound(err))
}

func TestBookingRepository_UpdateVersionConflict(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	bk := f.booking(t, f.property(t, "A-0102"), f.customer(t, "Phạm D", "0903000222"), uuid.New())

	first, err := f.stores.Bookings.FindByID(ctx, bk.ID())
	require.NoError(t, err)
	second, err := f.stores.Bookings.FindByID(ctx, bk.ID())
	require.NoError(t, err)

	require.NoError(t, first.Approve())
	first.IncrementVersion()
	require.NoError(t, f.stores.Bookings.Update(ctx, first))

	require.NoError(t, second.Cancel("khách đổi ý"))
	second.IncrementVersion()
	err = f.stores.Bookings.Update(ctx, second)
	assert.True(t, domain.HasCode(err, domain.CodeConflict))

	stored, err := f.stores.Bookings.FindByID(ctx, bk.ID())
	require.NoError(t, err)
	assert.Equal(t, bookingDomain.StatusApproved, stored.Status())
}

func TestBookingRepository_ListFilters(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	agent := uuid.New()
	other := uuid.New()

	an := f.customer(t, "Nguyễn An", "0911000001")
	binh := f.customer(t, "Trần Bình", "0911000002")
	f.booking(t, f.property(t, "SKY-01"), an, agent)
	b2 := f.booking(t, f.property(t, "SKY-02"), binh, agent)
	f.booking(t, f.property(t, "RIV-01"), binh, other)

	all, total, err := f.stores.Bookings.List(ctx, bookingDomain.ListFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, int64(3), total)

	_, total, err = f.stores.Bookings.List(ctx, bookingDomain.ListFilter{Search: "sky-", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, total, err = f.stores.Bookings.List(ctx, bookingDomain.ListFilter{Search: "0911000002", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	mine, total, err := f.stores.Bookings.List(ctx, bookingDomain.ListFilter{UserID: &agent, Search: "bình", Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, b2.ID(), mine[0].ID())

	page2, total, err := f.stores.Bookings.List(ctx, bookingDomain.ListFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page2, 1)

	_, total, err = f.stores.Bookings.List(ctx, bookingDomain.ListFilter{Status: bookingDomain.StatusApproved, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestBookingRepository_CountAndActive(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	agent := uuid.New()
	p := f.property(t, "B-0301")
	c := f.customer(t, "Võ E", "0903000333")

	bk := f.booking(t, p, c, agent)
	active, err := f.stores.Bookings.HasActiveForProperty(ctx, p.ID())
	require.NoError(t, err)
	assert.True(t, active)

	require.NoError(t, bk.Cancel("hết nhu cầu"))
	bk.IncrementVersion()
	require.NoError(t, f.stores.Bookings.Update(ctx, bk))

	active, err = f.stores.Bookings.HasActiveForProperty(ctx, p.ID())
	require.NoError(t, err)
	assert.False(t, active)

	f.booking(t, p, c, uuid.New())
	counts, err := f.stores.Bookings.CountByStatus(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts["CANCELLED"])
	assert.Equal(t, int64(1), counts["PENDING"])
	assert.Equal(t, int64(0), counts["COMPLETED"])

	scoped, err := f.stores.Bookings.CountByStatus(ctx, &agent)
	require.NoError(t, err)
	assert.Equal(t, int64(0), scoped["PENDING"])
	assert.Equal(t, int64(1), scoped["CANCELLED"])
}

func TestTransactionRepository(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	bookingID := uuid.New()

	deposit, err := ledgerDomain.NewTransaction(ledgerDomain.NewTransactionParams{
		BookingID: bookingID, Type: ledgerDomain.TypeDeposit, Amount: 100_000_000,
		PaymentMethod: "BANK_TRANSFER", Reference: "VCB-001", CreatedBy: uuid.New(),
	})
	require.NoError(t, err)
	require.NoError(t, f.stores.Transactions.Save(ctx, deposit))

	payment, err := ledgerDomain.NewTransaction(ledgerDomain.NewTransactionParams{
		BookingID: bookingID, Type: ledgerDomain.TypePayment, Amount: 50_000_000, CreatedBy: uuid.New(),
	})
	require.NoError(t, err)
	require.NoError(t, f.stores.Transactions.Save(ctx, payment))

	exists, err := f.stores.Transactions.ExistsByReference(ctx, "VCB-001")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, payment.Cancel("nhập nhầm"))
	require.NoError(t, f.stores.Transactions.UpdateStatus(ctx, payment))
	assert.True(t, domain.HasCode(f.stores.Transactions.UpdateStatus(ctx, payment), domain.CodeConflict))

	entries, err := f.stores.Transactions.FindByBookingID(ctx, bookingID)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	totals, err := f.stores.Transactions.TotalsByType(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(100_000_000), totals["DEPOSIT"])
	assert.Equal(t, int64(0), totals["PAYMENT"])
}

func TestCustomerRepository(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	c := f.customer(t, "Đặng F", "0903000444")

	dup, err := customerDomain.NewCustomer("Khác", "0903000444", "", "", nil)
	require.NoError(t, err)
	assert.True(t, domain.HasCode(f.stores.Customers.Save(ctx, dup), domain.CodeConflict))

	exists, err := f.stores.Customers.ExistsByPhone(ctx, "0903000444", nil)
	require.NoError(t, err)
	assert.True(t, exists)
	id := c.ID()
	exists, err = f.stores.Customers.ExistsByPhone(ctx, "0903000444", &id)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, c.Update("Đặng Văn F", "", "", ""))
	require.NoError(t, f.stores.Customers.Update(ctx, c))

	list, total, err := f.stores.Customers.List(ctx, customerDomain.ListFilter{Search: "văn f", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, int64(2), list[0].Version())
}

func TestUnitOfWork_RollsBackOnError(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	p := f.property(t, "C-0501")
	boom := errors.New("boom")

	err := f.uow.Within(ctx, func(s application.Stores) error {
		fresh, err := s.Properties.FindByID(ctx, p.ID())
		require.NoError(t, err)
		_, err = fresh.SetStatus(propertyDomain.StatusHold)
		require.NoError(t, err)
		fresh.IncrementVersion()
		require.NoError(t, s.Properties.Update(ctx, fresh))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	stored, err := f.stores.Properties.FindByID(ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, propertyDomain.StatusAvailable, stored.Status())
	assert.Equal(t, int64(1), stored.Version())
}

func TestReferenceRepository(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	rate := 2.5
	project := repository.ProjectModel{ID: uuid.New(), Name: "Sky Garden", CommissionRate: &rate, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, f.db.Create(&project).Error)

	got, err := f.stores.References.FindProject(ctx, project.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CommissionRate)
	assert.Equal(t, 2.5, *got.CommissionRate)

	_, err = f.stores.References.FindUser(ctx, uuid.New())
	assert.True(t, domain.IsNotFound(err))
}
