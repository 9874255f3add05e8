package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/joyhomes/service-booking/internal/common/database"
	"github.com/joyhomes/service-booking/internal/common/domain"
	ledgerDomain "github.com/joyhomes/service-booking/internal/domain/ledger"
)

// TransactionModel is the GORM model for the transactions table.
type TransactionModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BookingID     uuid.UUID  `gorm:"type:uuid;index;not null"`
	Type          string     `gorm:"not null;size:20"`
	Amount        int64      `gorm:"not null"`
	Status        string     `gorm:"not null;size:20;index"`
	PaymentMethod string     `gorm:"size:50"`
	Notes         string     `gorm:"size:1000"`
	ExternalRef   string     `gorm:"size:100;index"`
	CreatedBy     uuid.UUID  `gorm:"type:uuid;not null"`
	CancelledAt   *time.Time `gorm:""`
	CancelReason  string     `gorm:"size:500"`
	CreatedAt     time.Time  `gorm:"not null"`
	UpdatedAt     time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (TransactionModel) TableName() string {
	return "transactions"
}

// GormTransactionRepository is the GORM-based implementation of TransactionRepository.
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository.
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// FindByID retrieves a ledger entry by its unique identifier.
func (r *GormTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledgerDomain.Transaction, error) {
	var model TransactionModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("giao dịch", id.String())
		}
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}
	return toDomainTransaction(&model), nil
}

// FindByBookingID retrieves all entries of a booking, oldest first.
func (r *GormTransactionRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*ledgerDomain.Transaction, error) {
	var models []TransactionModel
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find booking transactions: %w", err)
	}

	txs := make([]*ledgerDomain.Transaction, len(models))
	for i := range models {
		txs[i] = toDomainTransaction(&models[i])
	}
	return txs, nil
}

// ExistsByReference reports whether an entry with the external reference exists.
func (r *GormTransactionRepository) ExistsByReference(ctx context.Context, reference string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&TransactionModel{}).
		Where("external_ref = ?", reference).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check transaction reference: %w", err)
	}
	return count > 0, nil
}

// TotalsByType sums CONFIRMED amounts by type.
func (r *GormTransactionRepository) TotalsByType(ctx context.Context) (map[string]int64, error) {
	type typeTotal struct {
		Type  string
		Total int64
	}
	var results []typeTotal
	if err := r.db.WithContext(ctx).Model(&TransactionModel{}).
		Select("type, COALESCE(SUM(amount), 0) as total").
		Where("status = ?", string(ledgerDomain.StatusConfirmed)).
		Group("type").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to sum transactions: %w", err)
	}

	totals := map[string]int64{
		string(ledgerDomain.TypeDeposit):    0,
		string(ledgerDomain.TypePayment):    0,
		string(ledgerDomain.TypeRefund):     0,
		string(ledgerDomain.TypeCommission): 0,
	}
	for _, t := range results {
		totals[t.Type] = t.Total
	}
	return totals, nil
}

// Save persists a new ledger entry.
func (r *GormTransactionRepository) Save(ctx context.Context, tx *ledgerDomain.Transaction) error {
	if err := r.db.WithContext(ctx).Create(toTransactionModel(tx)).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return domain.NewConflictError(fmt.Sprintf("Giao dịch %s đã được ghi nhận", tx.Reference()))
		}
		return fmt.Errorf("failed to save transaction: %w", err)
	}
	return nil
}

// UpdateStatus persists a cancellation. A row that is already CANCELLED is left alone.
func (r *GormTransactionRepository) UpdateStatus(ctx context.Context, tx *ledgerDomain.Transaction) error {
	result := r.db.WithContext(ctx).
		Model(&TransactionModel{}).
		Where("id = ? AND status = ?", tx.ID(), string(ledgerDomain.StatusConfirmed)).
		Updates(map[string]interface{}{
			"status":        string(tx.Status()),
			"cancelled_at":  tx.CancelledAt(),
			"cancel_reason": tx.CancelReason(),
			"updated_at":    tx.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update transaction: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("Giao dịch đã được hủy bởi người khác")
	}
	return nil
}

func toTransactionModel(tx *ledgerDomain.Transaction) *TransactionModel {
	return &TransactionModel{
		ID:            tx.ID(),
		BookingID:     tx.BookingID(),
		Type:          string(tx.Type()),
		Amount:        tx.Amount(),
		Status:        string(tx.Status()),
		PaymentMethod: tx.PaymentMethod(),
		Notes:         tx.Notes(),
		ExternalRef:   tx.Reference(),
		CreatedBy:     tx.CreatedBy(),
		CancelledAt:   tx.CancelledAt(),
		CancelReason:  tx.CancelReason(),
		CreatedAt:     tx.CreatedAt(),
		UpdatedAt:     tx.UpdatedAt(),
	}
}

func toDomainTransaction(m *TransactionModel) *ledgerDomain.Transaction {
	return ledgerDomain.Reconstruct(
		m.ID,
		m.BookingID,
		ledgerDomain.TransactionType(m.Type),
		m.Amount,
		ledgerDomain.TransactionStatus(m.Status),
		m.PaymentMethod,
		m.Notes,
		m.ExternalRef,
		m.CreatedBy,
		m.CancelledAt,
		m.CancelReason,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
