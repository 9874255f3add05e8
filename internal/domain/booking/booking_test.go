package booking

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joyhomes/service-booking/internal/common/domain"
	"github.com/joyhomes/service-booking/internal/domain/property"
)

func newTestBooking(t *testing.T) *Booking {
	t.Helper()
	b, err := NewBooking(NewBookingParams{
		PropertyID:     uuid.New(),
		ProjectID:      uuid.New(),
		CustomerID:     uuid.New(),
		UserID:         uuid.New(),
		AgreedPrice:    3_000_000_000,
		CommissionRate: 2.5,
		Notes:          "  khách VIP  ",
	})
	require.NoError(t, err)
	return b
}

func TestNewBooking(t *testing.T) {
	b := newTestBooking(t)

	assert.Equal(t, StatusPending, b.Status())
	assert.True(t, strings.HasPrefix(b.Code(), "BK-"))
	assert.Len(t, b.Code(), 9)
	assert.Equal(t, int64(75_000_000), b.CommissionAmount())
	assert.Equal(t, "khách VIP", b.Notes())
	assert.Equal(t, property.StatusHold, b.PropertyStatus())
	assert.Equal(t, int64(1), b.Version())
}

func TestNewBooking_Validation(t *testing.T) {
	base := NewBookingParams{
		PropertyID: uuid.New(), CustomerID: uuid.New(), UserID: uuid.New(),
		AgreedPrice: 1_000, CommissionRate: 2,
	}

	cases := map[string]func(p *NewBookingParams){
		"missing property":   func(p *NewBookingParams) { p.PropertyID = uuid.Nil },
		"missing customer":   func(p *NewBookingParams) { p.CustomerID = uuid.Nil },
		"missing user":       func(p *NewBookingParams) { p.UserID = uuid.Nil },
		"zero price":         func(p *NewBookingParams) { p.AgreedPrice = 0 },
		"deposit over price": func(p *NewBookingParams) { p.DepositAmount = 2_000 },
		"negative rate":      func(p *NewBookingParams) { p.CommissionRate = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := base
			mutate(&p)
			_, err := NewBooking(p)
			assert.True(t, domain.HasCode(err, domain.CodeValidation), "got %v", err)
		})
	}
}

func TestApprove_OnlyFromPending(t *testing.T) {
	b := newTestBooking(t)
	require.NoError(t, b.Approve())
	assert.Equal(t, StatusApproved, b.Status())
	assert.Equal(t, property.StatusBooked, b.PropertyStatus())

	err := b.Approve()
	assert.True(t, domain.HasCode(err, domain.CodeBusinessRule))
}

func TestCancel(t *testing.T) {
	b := newTestBooking(t)

	err := b.Cancel("   ")
	assert.True(t, domain.HasCode(err, domain.CodeValidation))

	require.NoError(t, b.Cancel("khách đổi ý"))
	assert.Equal(t, StatusCancelled, b.Status())
	assert.Contains(t, b.Notes(), "khách đổi ý")
	assert.NotNil(t, b.CancelledAt())
	assert.Equal(t, property.StatusAvailable, b.PropertyStatus())

	err = b.Cancel("lần nữa")
	assert.True(t, domain.HasCode(err, domain.CodeInvalidState))
}

func TestCancel_CompletedFails(t *testing.T) {
	b := newTestBooking(t)
	require.NoError(t, b.Approve())
	_, err := b.ApplyDeposit(100)
	require.NoError(t, err)
	require.NoError(t, b.TransitionTo(StatusContracted, "HD-001", ""))
	require.NoError(t, b.TransitionTo(StatusCompleted, "", ""))

	err = b.Cancel("muộn")
	assert.Error(t, err)
	assert.Equal(t, StatusCompleted, b.Status())
}

func TestTransitionTo(t *testing.T) {
	b := newTestBooking(t)

	err := b.TransitionTo(StatusContracted, "HD-001", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Không thể chuyển trạng thái từ PENDING sang CONTRACTED")

	require.NoError(t, b.TransitionTo(StatusApproved, "", ""))
	require.NoError(t, b.TransitionTo(StatusDeposited, "", ""))
	assert.NotNil(t, b.DepositDate())

	err = b.TransitionTo(StatusContracted, "  ", "")
	assert.True(t, domain.HasCode(err, domain.CodeValidation))

	require.NoError(t, b.TransitionTo(StatusContracted, "HD-001", "ký tại sàn"))
	assert.Equal(t, "HD-001", b.ContractNumber())
	assert.NotNil(t, b.ContractDate())
	assert.Contains(t, b.Notes(), "ký tại sàn")

	err = b.TransitionTo(StatusRefunded, "", "")
	assert.True(t, domain.HasCode(err, domain.CodeValidation))

	require.NoError(t, b.TransitionTo(StatusRefunded, "", "dự án chậm tiến độ"))
	assert.Equal(t, property.StatusAvailable, b.PropertyStatus())
	assert.Contains(t, b.Notes(), "[Hoàn tiền] dự án chậm tiến độ")
}

func TestTransitionTo_SelfTransitionRejected(t *testing.T) {
	b := newTestBooking(t)
	err := b.TransitionTo(StatusPending, "", "")
	assert.True(t, domain.HasCode(err, domain.CodeInvalidState))
}

func TestApplyDeposit_AdvancesOnce(t *testing.T) {
	b := newTestBooking(t)
	require.NoError(t, b.Approve())

	advanced, err := b.ApplyDeposit(300_000_000)
	require.NoError(t, err)
	assert.True(t, advanced)
	assert.Equal(t, StatusDeposited, b.Status())
	assert.Equal(t, int64(300_000_000), b.DepositAmount())
	firstDepositDate := b.DepositDate()
	require.NotNil(t, firstDepositDate)

	advanced, err = b.ApplyDeposit(100_000_000)
	require.NoError(t, err)
	assert.False(t, advanced)
	assert.Equal(t, StatusDeposited, b.Status())
	assert.Equal(t, int64(400_000_000), b.DepositAmount())
	assert.Equal(t, firstDepositDate, b.DepositDate())
}

func TestApplyDeposit_PendingDoesNotAdvance(t *testing.T) {
	b := newTestBooking(t)
	advanced, err := b.ApplyDeposit(50)
	require.NoError(t, err)
	assert.False(t, advanced)
	assert.Equal(t, StatusPending, b.Status())
}

func TestApplyDeposit_TerminalKeepsStatus(t *testing.T) {
	b := newTestBooking(t)
	require.NoError(t, b.Cancel("khách hủy"))

	advanced, err := b.ApplyDeposit(100)
	require.NoError(t, err)
	assert.False(t, advanced)
	assert.Equal(t, StatusCancelled, b.Status())
	assert.Equal(t, int64(100), b.DepositAmount())
	assert.Nil(t, b.DepositDate())
}

func TestReverseDeposit_KeepsStatus(t *testing.T) {
	b := newTestBooking(t)
	require.NoError(t, b.Approve())
	_, err := b.ApplyDeposit(300)
	require.NoError(t, err)

	b.ReverseDeposit(300)
	assert.Equal(t, int64(0), b.DepositAmount())
	assert.Equal(t, StatusDeposited, b.Status())

	b.ReverseDeposit(10)
	assert.Equal(t, int64(0), b.DepositAmount())
}

func TestUpdateDetails_RecomputesCommission(t *testing.T) {
	b := newTestBooking(t)
	price := int64(4_000_000_000)
	notes := "đổi giá"

	require.NoError(t, b.UpdateDetails(&price, &notes, nil))
	assert.Equal(t, int64(100_000_000), b.CommissionAmount())
	assert.Equal(t, 2.5, b.CommissionRate())
	assert.Equal(t, "đổi giá", b.Notes())
}

func TestUpdateDetails_TerminalRejected(t *testing.T) {
	b := newTestBooking(t)
	require.NoError(t, b.Cancel("x"))

	price := int64(1)
	err := b.UpdateDetails(&price, nil, nil)
	assert.True(t, domain.HasCode(err, domain.CodeBusinessRule))
}
