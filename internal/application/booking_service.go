package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joyhomes/service-booking/internal/common/domain"
	"github.com/joyhomes/service-booking/internal/common/kafka"
	"github.com/joyhomes/service-booking/internal/contracts"
	bookingDomain "github.com/joyhomes/service-booking/internal/domain/booking"
	ledgerDomain "github.com/joyhomes/service-booking/internal/domain/ledger"
	propertyDomain "github.com/joyhomes/service-booking/internal/domain/property"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// BookingService is the application service orchestrating booking use cases.
// Every mutation runs in one unit of work; events are published after commit.
type BookingService struct {
	uow       UnitOfWork
	publisher EventPublisher
	stats     StatsCache
	statsTTL  time.Duration
	logger    *zap.Logger
}

// NewBookingService creates a new BookingService. publisher and stats may be nil.
func NewBookingService(
	uow UnitOfWork,
	publisher EventPublisher,
	stats StatsCache,
	statsTTL time.Duration,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		uow:       uow,
		publisher: publisher,
		stats:     stats,
		statsTTL:  statsTTL,
		logger:    logger,
	}
}

// CreateBooking reserves a property for a customer and puts the property on HOLD.
func (s *BookingService) CreateBooking(ctx context.Context, actor Actor, req CreateBookingRequest) (*BookingDTO, error) {
	var created *bookingDomain.Booking
	err := s.uow.Within(ctx, func(st Stores) error {
		if _, err := st.Customers.FindByID(ctx, req.CustomerID); err != nil {
			return err
		}
		prop, err := st.Properties.FindByID(ctx, req.PropertyID)
		if err != nil {
			return err
		}
		if !prop.IsReservable() {
			return domain.NewBusinessRuleError("Bất động sản không khả dụng")
		}
		if prop.Status() == propertyDomain.StatusHold {
			held, err := st.Bookings.HasActiveForProperty(ctx, prop.ID())
			if err != nil {
				return err
			}
			if held {
				return domain.NewBusinessRuleError("Bất động sản không khả dụng")
			}
		}

		var projectRate *float64
		project, err := st.References.FindProject(ctx, prop.ProjectID())
		switch {
		case err == nil:
			projectRate = project.CommissionRate
		case !domain.IsNotFound(err):
			return err
		}

		bk, err := bookingDomain.NewBooking(bookingDomain.NewBookingParams{
			PropertyID:     prop.ID(),
			ProjectID:      prop.ProjectID(),
			CustomerID:     req.CustomerID,
			UserID:         actor.UserID,
			AgreedPrice:    req.AgreedPrice,
			DepositAmount:  req.DepositAmount,
			CommissionRate: bookingDomain.ResolveCommissionRate(projectRate),
			Notes:          req.Notes,
		})
		if err != nil {
			return err
		}
		if err := st.Bookings.Save(ctx, bk); err != nil {
			return err
		}
		if err := syncPropertyStatus(ctx, st, bk); err != nil {
			return err
		}
		created = bk
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking created",
		zap.String("booking_id", created.ID().String()),
		zap.String("code", created.Code()),
		zap.String("user_id", actor.UserID.String()),
	)
	s.afterCommit(ctx, contracts.BookingCreated, created, actor, "", nil)
	return s.detailed(ctx, created)
}

// ApproveBooking moves a PENDING booking to APPROVED; the property becomes BOOKED.
func (s *BookingService) ApproveBooking(ctx context.Context, actor Actor, bookingID uuid.UUID) (*BookingDTO, error) {
	var previous bookingDomain.BookingStatus
	bk, err := s.mutate(ctx, bookingID, func(_ Stores, bk *bookingDomain.Booking) error {
		previous = bk.Status()
		return bk.Approve()
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, contracts.BookingApproved, bk, actor, previous, nil)
	return s.detailed(ctx, bk)
}

// CancelBooking cancels a non-terminal booking; the property becomes AVAILABLE.
func (s *BookingService) CancelBooking(ctx context.Context, actor Actor, bookingID uuid.UUID, reason string) (*BookingDTO, error) {
	var previous bookingDomain.BookingStatus
	bk, err := s.mutate(ctx, bookingID, func(_ Stores, bk *bookingDomain.Booking) error {
		previous = bk.Status()
		return bk.Cancel(reason)
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, contracts.BookingCancelled, bk, actor, previous, func(evt *contracts.BookingEvent) {
		evt.Reason = strings.TrimSpace(reason)
	})
	return s.detailed(ctx, bk)
}

// UpdateStatus applies an explicit status change validated against the transition table.
func (s *BookingService) UpdateStatus(ctx context.Context, actor Actor, bookingID uuid.UUID, req UpdateStatusRequest) (*BookingDTO, error) {
	target, err := bookingDomain.ParseBookingStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if err != nil {
		return nil, domain.NewValidationError(fmt.Sprintf("Trạng thái không hợp lệ: %s", req.Status))
	}

	var previous bookingDomain.BookingStatus
	bk, err := s.mutate(ctx, bookingID, func(_ Stores, bk *bookingDomain.Booking) error {
		previous = bk.Status()
		return bk.TransitionTo(target, req.ContractNumber, req.Notes)
	})
	if err != nil {
		return nil, err
	}

	eventType := contracts.BookingStatusChanged
	if target == bookingDomain.StatusCancelled {
		eventType = contracts.BookingCancelled
	}
	s.afterCommit(ctx, eventType, bk, actor, previous, func(evt *contracts.BookingEvent) {
		evt.Reason = strings.TrimSpace(req.Notes)
	})
	return s.detailed(ctx, bk)
}

// UpdateBooking applies a generic field update. SALES may only touch their own bookings.
func (s *BookingService) UpdateBooking(ctx context.Context, actor Actor, bookingID uuid.UUID, req UpdateBookingRequest) (*BookingDTO, error) {
	bk, err := s.mutate(ctx, bookingID, func(_ Stores, bk *bookingDomain.Booking) error {
		if err := ensureCanView(actor, bk); err != nil {
			return err
		}
		return bk.UpdateDetails(req.AgreedPrice, req.Notes, req.ContractNumber)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking updated",
		zap.String("booking_id", bk.ID().String()),
		zap.Int64("version", bk.Version()),
	)
	return s.detailed(ctx, bk)
}

// AddTransaction records a CONFIRMED ledger entry on any existing booking,
// terminal ones included. A DEPOSIT increments the booking's deposit total and
// advances an APPROVED booking to DEPOSITED.
func (s *BookingService) AddTransaction(ctx context.Context, actor Actor, bookingID uuid.UUID, req AddTransactionRequest) (*TransactionResult, error) {
	txType := ledgerDomain.TransactionType(strings.ToUpper(strings.TrimSpace(req.Type)))

	var (
		entry    *ledgerDomain.Transaction
		updated  *bookingDomain.Booking
		previous bookingDomain.BookingStatus
	)
	err := s.uow.Within(ctx, func(st Stores) error {
		bk, err := st.Bookings.FindByID(ctx, bookingID)
		if err != nil {
			return err
		}
		previous = bk.Status()

		tx, err := ledgerDomain.NewTransaction(ledgerDomain.NewTransactionParams{
			BookingID:     bk.ID(),
			Type:          txType,
			Amount:        req.Amount,
			PaymentMethod: req.PaymentMethod,
			Notes:         req.Notes,
			Reference:     req.Reference,
			CreatedBy:     actor.UserID,
		})
		if err != nil {
			return err
		}
		if tx.Reference() != "" {
			dup, err := st.Transactions.ExistsByReference(ctx, tx.Reference())
			if err != nil {
				return err
			}
			if dup {
				return domain.NewConflictError(fmt.Sprintf("Giao dịch %s đã được ghi nhận", tx.Reference()))
			}
		}
		if err := st.Transactions.Save(ctx, tx); err != nil {
			return err
		}

		if tx.Type() == ledgerDomain.TypeDeposit {
			advanced, err := bk.ApplyDeposit(tx.Amount())
			if err != nil {
				return err
			}
			bk.IncrementVersion()
			if err := st.Bookings.Update(ctx, bk); err != nil {
				return err
			}
			// A released property may already be held by another booking.
			if advanced {
				if err := syncPropertyStatus(ctx, st, bk); err != nil {
					return err
				}
			}
		}

		entry = tx
		updated = bk
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transaction added",
		zap.String("booking_id", updated.ID().String()),
		zap.String("transaction_id", entry.ID().String()),
		zap.String("type", string(entry.Type())),
		zap.Int64("amount", entry.Amount()),
	)
	s.afterCommit(ctx, contracts.BookingTransactionAdded, updated, actor, previous, withTransaction(entry))

	detail, err := s.detailed(ctx, updated)
	if err != nil {
		return nil, err
	}
	return &TransactionResult{Transaction: toTransactionDTO(entry), Booking: *detail}, nil
}

// CancelTransaction soft-cancels a ledger entry. A cancelled DEPOSIT is taken
// off the booking's deposit total; the booking status is left as it is.
func (s *BookingService) CancelTransaction(ctx context.Context, actor Actor, transactionID uuid.UUID, reason string) (*TransactionDTO, error) {
	var (
		entry   *ledgerDomain.Transaction
		updated *bookingDomain.Booking
	)
	err := s.uow.Within(ctx, func(st Stores) error {
		tx, err := st.Transactions.FindByID(ctx, transactionID)
		if err != nil {
			return err
		}
		if err := tx.Cancel(reason); err != nil {
			return err
		}
		bk, err := st.Bookings.FindByID(ctx, tx.BookingID())
		if err != nil {
			return err
		}
		if err := st.Transactions.UpdateStatus(ctx, tx); err != nil {
			return err
		}

		if tx.Type() == ledgerDomain.TypeDeposit {
			bk.ReverseDeposit(tx.Amount())
			bk.IncrementVersion()
			if err := st.Bookings.Update(ctx, bk); err != nil {
				return err
			}
		}

		entry = tx
		updated = bk
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transaction cancelled",
		zap.String("transaction_id", entry.ID().String()),
		zap.String("booking_id", updated.ID().String()),
	)
	s.afterCommit(ctx, contracts.BookingTransactionCancelled, updated, actor, "", func(evt *contracts.BookingEvent) {
		withTransaction(entry)(evt)
		evt.Reason = entry.CancelReason()
	})

	result := toTransactionDTO(entry)
	return &result, nil
}

// GetPaymentSummary aggregates the CONFIRMED ledger entries of a booking.
func (s *BookingService) GetPaymentSummary(ctx context.Context, actor Actor, bookingID uuid.UUID) (*ledgerDomain.PaymentSummary, error) {
	st := s.uow.Stores()
	bk, err := st.Bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := ensureCanView(actor, bk); err != nil {
		return nil, err
	}

	entries, err := st.Transactions.FindByBookingID(ctx, bk.ID())
	if err != nil {
		return nil, err
	}
	summary := ledgerDomain.Summarize(bk.AgreedPrice(), bk.CommissionAmount(), bk.CommissionRate(), entries)
	return &summary, nil
}

// GetTransactions lists the ledger entries of a booking, oldest first.
func (s *BookingService) GetTransactions(ctx context.Context, actor Actor, bookingID uuid.UUID) ([]TransactionDTO, error) {
	st := s.uow.Stores()
	bk, err := st.Bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := ensureCanView(actor, bk); err != nil {
		return nil, err
	}

	entries, err := st.Transactions.FindByBookingID(ctx, bk.ID())
	if err != nil {
		return nil, err
	}
	dtos := make([]TransactionDTO, len(entries))
	for i, tx := range entries {
		dtos[i] = toTransactionDTO(tx)
	}
	return dtos, nil
}

// GetNextStatuses returns the statuses the booking may move to.
func (s *BookingService) GetNextStatuses(ctx context.Context, actor Actor, bookingID uuid.UUID) ([]string, error) {
	bk, err := s.uow.Stores().Bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := ensureCanView(actor, bk); err != nil {
		return nil, err
	}

	next := bk.Status().NextStatuses()
	out := make([]string, len(next))
	for i, st := range next {
		out[i] = string(st)
	}
	return out, nil
}

// GetBooking retrieves a single booking. SALES may only read their own bookings.
func (s *BookingService) GetBooking(ctx context.Context, actor Actor, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.uow.Stores().Bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := ensureCanView(actor, bk); err != nil {
		return nil, err
	}
	return s.detailed(ctx, bk)
}

// ListBookings returns a filtered page of bookings, scoped to the caller for SALES.
func (s *BookingService) ListBookings(ctx context.Context, actor Actor, q ListBookingsQuery) (*BookingListResult, error) {
	page, limit := normalizePage(q.Page, q.Limit)

	filter := bookingDomain.ListFilter{
		Search:    q.Search,
		ProjectID: q.ProjectID,
		Page:      page,
		Limit:     limit,
	}
	if q.Status != "" {
		status, err := bookingDomain.ParseBookingStatus(strings.ToUpper(q.Status))
		if err != nil {
			return nil, domain.NewValidationError(fmt.Sprintf("Trạng thái không hợp lệ: %s", q.Status))
		}
		filter.Status = status
	}
	if !actor.Role.SeesEverything() {
		userID := actor.UserID
		filter.UserID = &userID
	}

	st := s.uow.Stores()
	bookings, total, err := st.Bookings.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	refs := newRefLoader(st)
	items := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dto, err := refs.enrich(ctx, bk)
		if err != nil {
			return nil, err
		}
		items[i] = dto
	}

	result := &BookingListResult{Items: items, Total: total, Page: page, Limit: limit}
	if q.Stats {
		stats, err := s.countByStatus(ctx, filter.UserID)
		if err != nil {
			return nil, err
		}
		result.Stats = stats
	}
	return result, nil
}

// ResolveBookingCode returns the id of the booking with the given code.
func (s *BookingService) ResolveBookingCode(ctx context.Context, code string) (uuid.UUID, error) {
	bk, err := s.uow.Stores().Bookings.FindByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return uuid.Nil, err
	}
	return bk.ID(), nil
}

// GetDashboardStats returns booking counts and ledger totals for management.
func (s *BookingService) GetDashboardStats(ctx context.Context) (*DashboardStatsDTO, error) {
	counts, err := s.countByStatus(ctx, nil)
	if err != nil {
		return nil, err
	}
	totals, err := s.uow.Stores().Transactions.TotalsByType(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger totals: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}
	return &DashboardStatsDTO{TotalBookings: total, ByStatus: counts, LedgerTotals: totals}, nil
}

// --- Helpers ---

// mutate loads a booking, applies fn, persists it with a version check and
// brings the property in line with the new status, all in one transaction.
func (s *BookingService) mutate(
	ctx context.Context,
	bookingID uuid.UUID,
	fn func(st Stores, bk *bookingDomain.Booking) error,
) (*bookingDomain.Booking, error) {
	var out *bookingDomain.Booking
	err := s.uow.Within(ctx, func(st Stores) error {
		bk, err := st.Bookings.FindByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := fn(st, bk); err != nil {
			return err
		}
		bk.IncrementVersion()
		if err := st.Bookings.Update(ctx, bk); err != nil {
			return err
		}
		if err := syncPropertyStatus(ctx, st, bk); err != nil {
			return err
		}
		out = bk
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func syncPropertyStatus(ctx context.Context, st Stores, bk *bookingDomain.Booking) error {
	prop, err := st.Properties.FindByID(ctx, bk.PropertyID())
	if err != nil {
		return err
	}
	changed, err := prop.SetStatus(bk.PropertyStatus())
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	prop.IncrementVersion()
	return st.Properties.Update(ctx, prop)
}

func (s *BookingService) countByStatus(ctx context.Context, userID *uuid.UUID) (map[string]int64, error) {
	scope := "all"
	if userID != nil {
		scope = "user:" + userID.String()
	}

	if s.stats != nil {
		cached, ok, err := s.stats.Get(ctx, scope)
		if err != nil {
			s.logger.Warn("stats cache read failed", zap.String("scope", scope), zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	counts, err := s.uow.Stores().Bookings.CountByStatus(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.stats != nil {
		if err := s.stats.Set(ctx, scope, counts, s.statsTTL); err != nil {
			s.logger.Warn("stats cache write failed", zap.String("scope", scope), zap.Error(err))
		}
	}
	return counts, nil
}

func (s *BookingService) detailed(ctx context.Context, bk *bookingDomain.Booking) (*BookingDTO, error) {
	dto, err := newRefLoader(s.uow.Stores()).enrich(ctx, bk)
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

// afterCommit drops cached stats and publishes the booking event. Failures
// are logged; the committed state is never rolled back.
func (s *BookingService) afterCommit(
	ctx context.Context,
	eventType string,
	bk *bookingDomain.Booking,
	actor Actor,
	previous bookingDomain.BookingStatus,
	decorate func(*contracts.BookingEvent),
) {
	if s.stats != nil {
		if err := s.stats.Invalidate(ctx); err != nil {
			s.logger.Warn("stats cache invalidation failed", zap.Error(err))
		}
	}

	evt := contracts.BookingEvent{
		BookingID:      bk.ID(),
		BookingCode:    bk.Code(),
		PropertyID:     bk.PropertyID(),
		ProjectID:      bk.ProjectID(),
		CustomerID:     bk.CustomerID(),
		SalesUserID:    bk.UserID(),
		ActorID:        actor.UserID,
		PreviousStatus: string(previous),
		Status:         string(bk.Status()),
		PropertyStatus: string(bk.PropertyStatus()),
		AgreedPrice:    bk.AgreedPrice(),
		DepositAmount:  bk.DepositAmount(),
		OccurredAt:     time.Now().UTC(),
	}
	if decorate != nil {
		decorate(&evt)
	}
	s.publishEvent(ctx, contracts.TopicBookingEvents, eventType, bk.ID().String(), evt)
}

func (s *BookingService) publishEvent(ctx context.Context, topic, eventType, key string, data interface{}) {
	if s.publisher == nil {
		return
	}
	cloudEvent, err := kafka.NewCloudEvent(contracts.Source, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}
	cloudEvent.Subject = key

	if err := s.publisher.PublishEvent(ctx, topic, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

func withTransaction(tx *ledgerDomain.Transaction) func(*contracts.BookingEvent) {
	return func(evt *contracts.BookingEvent) {
		id := tx.ID()
		evt.TransactionID = &id
		evt.TxType = string(tx.Type())
		evt.Amount = tx.Amount()
	}
}

func ensureCanView(actor Actor, bk *bookingDomain.Booking) error {
	if actor.Role.SeesEverything() || bk.UserID() == actor.UserID {
		return nil
	}
	return domain.NewForbiddenError("Bạn không có quyền truy cập booking này")
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}
