package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joyhomes/service-booking/internal/common/domain"
)

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	TypeDeposit    TransactionType = "DEPOSIT"
	TypePayment    TransactionType = "PAYMENT"
	TypeRefund     TransactionType = "REFUND"
	TypeCommission TransactionType = "COMMISSION"
)

// IsValid returns true if the type is recognized.
func (t TransactionType) IsValid() bool {
	switch t {
	case TypeDeposit, TypePayment, TypeRefund, TypeCommission:
		return true
	}
	return false
}

// TransactionStatus is the state of a ledger entry. Entries are never deleted.
type TransactionStatus string

const (
	StatusConfirmed TransactionStatus = "CONFIRMED"
	StatusCancelled TransactionStatus = "CANCELLED"
)

// Transaction is an immutable monetary event belonging to one booking.
// The only permitted change is a soft cancellation.
type Transaction struct {
	id            uuid.UUID
	bookingID     uuid.UUID
	txType        TransactionType
	amount        int64
	status        TransactionStatus
	paymentMethod string
	notes         string
	reference     string
	createdBy     uuid.UUID
	cancelledAt   *time.Time
	cancelReason  string
	createdAt     time.Time
	updatedAt     time.Time
}

// NewTransactionParams holds the inputs for NewTransaction.
type NewTransactionParams struct {
	BookingID     uuid.UUID
	Type          TransactionType
	Amount        int64
	PaymentMethod string
	Notes         string
	// Reference is an external id (bank reference, gateway payment id).
	Reference string
	CreatedBy uuid.UUID
}

// NewTransaction creates a CONFIRMED ledger entry.
func NewTransaction(p NewTransactionParams) (*Transaction, error) {
	if p.BookingID == uuid.Nil {
		return nil, domain.NewValidationError("Booking là bắt buộc")
	}
	if !p.Type.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("Loại giao dịch không hợp lệ: %s", p.Type))
	}
	if p.Amount <= 0 {
		return nil, domain.NewValidationError("Số tiền phải lớn hơn 0")
	}
	notes := strings.TrimSpace(p.Notes)
	if p.Type == TypeRefund && notes == "" {
		return nil, domain.NewValidationError("Vui lòng nhập lý do hoàn tiền")
	}
	if p.CreatedBy == uuid.Nil {
		return nil, domain.NewValidationError("Người tạo giao dịch là bắt buộc")
	}

	now := time.Now().UTC()
	return &Transaction{
		id:            uuid.New(),
		bookingID:     p.BookingID,
		txType:        p.Type,
		amount:        p.Amount,
		status:        StatusConfirmed,
		paymentMethod: strings.TrimSpace(p.PaymentMethod),
		notes:         notes,
		reference:     strings.TrimSpace(p.Reference),
		createdBy:     p.CreatedBy,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// Reconstruct rebuilds a Transaction from persistence data (no validation).
func Reconstruct(
	id, bookingID uuid.UUID,
	txType TransactionType,
	amount int64,
	status TransactionStatus,
	paymentMethod, notes, reference string,
	createdBy uuid.UUID,
	cancelledAt *time.Time,
	cancelReason string,
	createdAt, updatedAt time.Time,
) *Transaction {
	return &Transaction{
		id:            id,
		bookingID:     bookingID,
		txType:        txType,
		amount:        amount,
		status:        status,
		paymentMethod: paymentMethod,
		notes:         notes,
		reference:     reference,
		createdBy:     createdBy,
		cancelledAt:   cancelledAt,
		cancelReason:  cancelReason,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

func (t *Transaction) ID() uuid.UUID             { return t.id }
func (t *Transaction) BookingID() uuid.UUID      { return t.bookingID }
func (t *Transaction) Type() TransactionType     { return t.txType }
func (t *Transaction) Amount() int64             { return t.amount }
func (t *Transaction) Status() TransactionStatus { return t.status }
func (t *Transaction) PaymentMethod() string     { return t.paymentMethod }
func (t *Transaction) Notes() string             { return t.notes }
func (t *Transaction) Reference() string         { return t.reference }
func (t *Transaction) CreatedBy() uuid.UUID      { return t.createdBy }
func (t *Transaction) CancelledAt() *time.Time   { return t.cancelledAt }
func (t *Transaction) CancelReason() string      { return t.cancelReason }
func (t *Transaction) CreatedAt() time.Time      { return t.createdAt }
func (t *Transaction) UpdatedAt() time.Time      { return t.updatedAt }

// IsConfirmed reports whether the entry counts towards the summary.
func (t *Transaction) IsConfirmed() bool { return t.status == StatusConfirmed }

// Cancel soft-cancels the entry. Cancelling twice is an error.
func (t *Transaction) Cancel(reason string) error {
	if t.status == StatusCancelled {
		return domain.NewBusinessRuleError("Giao dịch đã được hủy trước đó")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return domain.NewValidationError("Vui lòng nhập lý do hủy giao dịch")
	}
	now := time.Now().UTC()
	t.status = StatusCancelled
	t.cancelReason = reason
	t.cancelledAt = &now
	t.updatedAt = now
	return nil
}
