// Package contracts defines the Kafka topics and CloudEvent payloads the
// booking service publishes and consumes.
package contracts

import (
	"time"

	"github.com/google/uuid"
)

// Source is the CloudEvent source of every event published by this service.
const Source = "joyhomes/service-booking"

// Topics.
const (
	TopicBookingEvents = "booking.events"
	TopicPaymentEvents = "payment.events"
)

// Booking event types.
const (
	BookingCreated              = "booking.created"
	BookingApproved             = "booking.approved"
	BookingCancelled            = "booking.cancelled"
	BookingStatusChanged        = "booking.status_changed"
	BookingTransactionAdded     = "booking.transaction_added"
	BookingTransactionCancelled = "booking.transaction_cancelled"
)

// Payment event types consumed from the reconciliation gateway.
const (
	PaymentReceived = "payment.received"
)

// BookingEvent is the payload of every booking.* event. SalesUserID is the
// agent owning the booking; realtime delivery routes on it.
type BookingEvent struct {
	BookingID      uuid.UUID  `json:"bookingId"`
	BookingCode    string     `json:"bookingCode"`
	PropertyID     uuid.UUID  `json:"propertyId"`
	ProjectID      uuid.UUID  `json:"projectId"`
	CustomerID     uuid.UUID  `json:"customerId"`
	SalesUserID    uuid.UUID  `json:"salesUserId"`
	ActorID        uuid.UUID  `json:"actorId"`
	PreviousStatus string     `json:"previousStatus,omitempty"`
	Status         string     `json:"status"`
	PropertyStatus string     `json:"propertyStatus"`
	AgreedPrice    int64      `json:"agreedPrice"`
	DepositAmount  int64      `json:"depositAmount"`
	Reason         string     `json:"reason,omitempty"`
	TransactionID  *uuid.UUID `json:"transactionId,omitempty"`
	TxType         string     `json:"transactionType,omitempty"`
	Amount         int64      `json:"amount,omitempty"`
	OccurredAt     time.Time  `json:"occurredAt"`
}

// PaymentReceivedEvent is emitted by the bank reconciliation gateway when
// money matching a booking code lands on the company account.
type PaymentReceivedEvent struct {
	PaymentID   string     `json:"paymentId"`
	BookingID   *uuid.UUID `json:"bookingId,omitempty"`
	BookingCode string     `json:"bookingCode,omitempty"`
	// Kind is DEPOSIT or PAYMENT; empty means PAYMENT.
	Kind       string    `json:"kind,omitempty"`
	Amount     int64     `json:"amount"`
	Method     string    `json:"method"`
	ReceivedAt time.Time `json:"receivedAt"`
}
