package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joyhomes/service-booking/internal/common/domain"
	"github.com/joyhomes/service-booking/internal/domain/property"
)

const bookingCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Booking is the aggregate root for the reservation of one property by one customer.
type Booking struct {
	id         uuid.UUID
	code       string
	propertyID uuid.UUID
	projectID  uuid.UUID
	customerID uuid.UUID
	userID     uuid.UUID

	agreedPrice      int64
	depositAmount    int64
	depositDate      *time.Time
	commissionRate   float64
	commissionAmount int64

	status         BookingStatus
	contractNumber string
	contractDate   *time.Time
	notes          string
	cancelledAt    *time.Time

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBookingParams holds the inputs for NewBooking.
type NewBookingParams struct {
	PropertyID     uuid.UUID
	ProjectID      uuid.UUID
	CustomerID     uuid.UUID
	UserID         uuid.UUID
	AgreedPrice    int64
	DepositAmount  int64
	CommissionRate float64
	Notes          string
}

// generateBookingCode creates a booking code in the format "BK-XXXXXX".
func generateBookingCode() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(bookingCodeChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking code: %w", err)
		}
		result[i] = bookingCodeChars[n.Int64()]
	}
	return "BK-" + string(result), nil
}

// NewBooking creates a new Booking aggregate with status=PENDING.
func NewBooking(p NewBookingParams) (*Booking, error) {
	if p.PropertyID == uuid.Nil {
		return nil, domain.NewValidationError("Bất động sản là bắt buộc")
	}
	if p.CustomerID == uuid.Nil {
		return nil, domain.NewValidationError("Khách hàng là bắt buộc")
	}
	if p.UserID == uuid.Nil {
		return nil, domain.NewValidationError("Nhân viên phụ trách là bắt buộc")
	}
	if p.AgreedPrice <= 0 {
		return nil, domain.NewValidationError("Giá thỏa thuận phải lớn hơn 0")
	}
	if p.DepositAmount < 0 || p.DepositAmount > p.AgreedPrice {
		return nil, domain.NewValidationError("Số tiền đặt cọc không hợp lệ")
	}
	if p.CommissionRate < 0 || p.CommissionRate > 100 {
		return nil, domain.NewValidationError("Tỷ lệ hoa hồng không hợp lệ")
	}

	code, err := generateBookingCode()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Booking{
		id:               uuid.New(),
		code:             code,
		propertyID:       p.PropertyID,
		projectID:        p.ProjectID,
		customerID:       p.CustomerID,
		userID:           p.UserID,
		agreedPrice:      p.AgreedPrice,
		depositAmount:    p.DepositAmount,
		commissionRate:   p.CommissionRate,
		commissionAmount: CalculateCommission(p.AgreedPrice, p.CommissionRate),
		status:           StatusPending,
		notes:            strings.TrimSpace(p.Notes),
		version:          1,
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	code string,
	propertyID, projectID, customerID, userID uuid.UUID,
	agreedPrice, depositAmount int64,
	depositDate *time.Time,
	commissionRate float64,
	commissionAmount int64,
	status BookingStatus,
	contractNumber string,
	contractDate *time.Time,
	notes string,
	cancelledAt *time.Time,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:               id,
		code:             code,
		propertyID:       propertyID,
		projectID:        projectID,
		customerID:       customerID,
		userID:           userID,
		agreedPrice:      agreedPrice,
		depositAmount:    depositAmount,
		depositDate:      depositDate,
		commissionRate:   commissionRate,
		commissionAmount: commissionAmount,
		status:           status,
		contractNumber:   contractNumber,
		contractDate:     contractDate,
		notes:            notes,
		cancelledAt:      cancelledAt,
		version:          version,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// Code returns the human-readable booking code.
func (b *Booking) Code() string { return b.code }

// PropertyID returns the reserved property.
func (b *Booking) PropertyID() uuid.UUID { return b.propertyID }

// ProjectID returns the property's project.
func (b *Booking) ProjectID() uuid.UUID { return b.projectID }

// CustomerID returns the buying customer.
func (b *Booking) CustomerID() uuid.UUID { return b.customerID }

// UserID returns the sales agent who created the booking.
func (b *Booking) UserID() uuid.UUID { return b.userID }

// AgreedPrice returns the agreed sale price in VND.
func (b *Booking) AgreedPrice() int64 { return b.agreedPrice }

// DepositAmount returns the deposit collected so far in VND.
func (b *Booking) DepositAmount() int64 { return b.depositAmount }

// DepositDate returns when the booking first became DEPOSITED.
func (b *Booking) DepositDate() *time.Time { return b.depositDate }

// CommissionRate returns the commission percentage fixed at creation.
func (b *Booking) CommissionRate() float64 { return b.commissionRate }

// CommissionAmount returns the commission owed at the last recompute.
func (b *Booking) CommissionAmount() int64 { return b.commissionAmount }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// ContractNumber returns the sale contract number, if contracted.
func (b *Booking) ContractNumber() string { return b.contractNumber }

// ContractDate returns when the contract was recorded.
func (b *Booking) ContractDate() *time.Time { return b.contractDate }

// Notes returns the free-form notes, including cancellation reasons.
func (b *Booking) Notes() string { return b.notes }

// CancelledAt returns when the booking was cancelled.
func (b *Booking) CancelledAt() *time.Time { return b.cancelledAt }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// PropertyStatus returns the property status mirroring this booking's stage.
func (b *Booking) PropertyStatus() property.Status {
	return PropertyStatusFor(b.status)
}

// PropertyStatusFor maps a booking status to the status its property must carry.
func PropertyStatusFor(s BookingStatus) property.Status {
	switch s {
	case StatusPending:
		return property.StatusHold
	case StatusApproved, StatusDeposited, StatusContracted:
		return property.StatusBooked
	case StatusCompleted:
		return property.StatusSold
	default:
		return property.StatusAvailable
	}
}

// --- Behavior ---

// Approve transitions the booking from PENDING to APPROVED.
func (b *Booking) Approve() error {
	if b.status != StatusPending {
		return domain.NewBusinessRuleError(
			fmt.Sprintf("Chỉ có thể duyệt booking ở trạng thái %s (hiện tại: %s)", StatusPending, b.status),
		)
	}
	b.status = StatusApproved
	b.updatedAt = time.Now().UTC()
	return nil
}

// Cancel transitions the booking to CANCELLED, appending the reason to notes.
func (b *Booking) Cancel(reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return domain.NewValidationError("Vui lòng nhập lý do hủy")
	}
	if !b.status.CanBeCancelled() {
		return domain.NewInvalidStateError(string(b.status), string(StatusCancelled))
	}
	now := time.Now().UTC()
	b.status = StatusCancelled
	b.notes = appendNote(b.notes, "[Hủy] "+reason)
	b.cancelledAt = &now
	b.updatedAt = now
	return nil
}

// TransitionTo applies an explicit status change validated against the
// transition table. CONTRACTED requires a contract number; CANCELLED and
// REFUNDED require a reason in notes.
func (b *Booking) TransitionTo(target BookingStatus, contractNumber, notes string) error {
	if !target.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("Trạng thái không hợp lệ: %s", target))
	}
	if !b.status.CanTransitionTo(target) {
		return domain.NewInvalidStateError(string(b.status), string(target))
	}

	notes = strings.TrimSpace(notes)
	contractNumber = strings.TrimSpace(contractNumber)
	now := time.Now().UTC()

	switch target {
	case StatusContracted:
		if contractNumber == "" {
			return domain.NewValidationError("Vui lòng nhập số hợp đồng")
		}
		b.contractNumber = contractNumber
		b.contractDate = &now
	case StatusDeposited:
		if b.depositDate == nil {
			b.depositDate = &now
		}
	case StatusCancelled:
		if notes == "" {
			return domain.NewValidationError("Vui lòng nhập lý do hủy")
		}
		b.cancelledAt = &now
		notes = "[Hủy] " + notes
	case StatusRefunded:
		if notes == "" {
			return domain.NewValidationError("Vui lòng nhập lý do hoàn tiền")
		}
		notes = "[Hoàn tiền] " + notes
	}

	if notes != "" {
		b.notes = appendNote(b.notes, notes)
	}
	b.status = target
	b.updatedAt = now
	return nil
}

// EnsureMutable returns an error when the booking has reached a terminal state.
func (b *Booking) EnsureMutable() error {
	if b.status.IsTerminal() {
		return domain.NewBusinessRuleError(
			fmt.Sprintf("Booking %s đã ở trạng thái %s, không thể thay đổi", b.code, b.status),
		)
	}
	return nil
}

// ApplyDeposit adds a confirmed deposit in any status. Only an APPROVED
// booking advances to DEPOSITED; it reports whether that advance happened.
func (b *Booking) ApplyDeposit(amount int64) (bool, error) {
	if amount <= 0 {
		return false, domain.NewValidationError("Số tiền phải lớn hơn 0")
	}

	now := time.Now().UTC()
	b.depositAmount += amount
	b.updatedAt = now

	if b.status != StatusApproved {
		return false, nil
	}
	b.status = StatusDeposited
	b.depositDate = &now
	return true, nil
}

// ReverseDeposit removes a cancelled deposit from the deposit total.
// The status is left untouched.
func (b *Booking) ReverseDeposit(amount int64) {
	b.depositAmount -= amount
	if b.depositAmount < 0 {
		b.depositAmount = 0
	}
	b.updatedAt = time.Now().UTC()
}

// UpdateDetails applies a generic field update. A new agreed price
// recomputes the commission with the rate fixed at creation.
func (b *Booking) UpdateDetails(agreedPrice *int64, notes, contractNumber *string) error {
	if err := b.EnsureMutable(); err != nil {
		return err
	}
	if agreedPrice != nil {
		if *agreedPrice <= 0 {
			return domain.NewValidationError("Giá thỏa thuận phải lớn hơn 0")
		}
		if *agreedPrice < b.depositAmount {
			return domain.NewValidationError("Giá thỏa thuận không được nhỏ hơn số tiền đã đặt cọc")
		}
		b.agreedPrice = *agreedPrice
		b.commissionAmount = CalculateCommission(b.agreedPrice, b.commissionRate)
	}
	if notes != nil {
		b.notes = strings.TrimSpace(*notes)
	}
	if contractNumber != nil {
		b.contractNumber = strings.TrimSpace(*contractNumber)
	}
	b.updatedAt = time.Now().UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}

func appendNote(existing, line string) string {
	if existing == "" {
		return line
	}
	return existing + "\n" + line
}
