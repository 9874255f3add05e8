package ledger

// PaymentSummary aggregates the CONFIRMED ledger entries of one booking.
type PaymentSummary struct {
	AgreedPrice      int64   `json:"agreedPrice"`
	Deposits         int64   `json:"deposits"`
	Payments         int64   `json:"payments"`
	Refunds          int64   `json:"refunds"`
	CommissionPaid   int64   `json:"commissionPaid"`
	TotalPaid        int64   `json:"totalPaid"`
	Remaining        int64   `json:"remaining"`
	CommissionAmount int64   `json:"commissionAmount"`
	CommissionRate   float64 `json:"commissionRate"`
	TransactionCount int     `json:"transactionCount"`
}

// Summarize computes the payment summary. It has no side effects:
// totalPaid = deposits + payments − refunds, remaining = agreedPrice − totalPaid.
func Summarize(agreedPrice, commissionAmount int64, commissionRate float64, entries []*Transaction) PaymentSummary {
	s := PaymentSummary{
		AgreedPrice:      agreedPrice,
		CommissionAmount: commissionAmount,
		CommissionRate:   commissionRate,
	}
	for _, tx := range entries {
		if !tx.IsConfirmed() {
			continue
		}
		s.TransactionCount++
		switch tx.Type() {
		case TypeDeposit:
			s.Deposits += tx.Amount()
		case TypePayment:
			s.Payments += tx.Amount()
		case TypeRefund:
			s.Refunds += tx.Amount()
		case TypeCommission:
			s.CommissionPaid += tx.Amount()
		}
	}
	s.TotalPaid = s.Deposits + s.Payments - s.Refunds
	s.Remaining = agreedPrice - s.TotalPaid
	return s
}
