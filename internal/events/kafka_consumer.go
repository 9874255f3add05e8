package events

import (
	"context"
	"strings"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/joyhomes/service-booking/internal/application"
	"github.com/joyhomes/service-booking/internal/common/domain"
	"github.com/joyhomes/service-booking/internal/common/kafka"
	"github.com/joyhomes/service-booking/internal/contracts"
	ledgerDomain "github.com/joyhomes/service-booking/internal/domain/ledger"
)

// PaymentRecorder is the part of the booking service the consumer drives.
type PaymentRecorder interface {
	AddTransaction(ctx context.Context, actor application.Actor, bookingID uuid.UUID, req application.AddTransactionRequest) (*application.TransactionResult, error)
	ResolveBookingCode(ctx context.Context, code string) (uuid.UUID, error)
}

// PaymentEventConsumer listens to payment events and records them in the booking ledger.
type PaymentEventConsumer struct {
	consumer *kafka.Consumer
	service  PaymentRecorder
	logger   *zap.Logger
}

// NewPaymentEventConsumer creates a new PaymentEventConsumer.
func NewPaymentEventConsumer(
	brokers []string,
	groupID string,
	service PaymentRecorder,
	logger *zap.Logger,
) *PaymentEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, contracts.TopicPaymentEvents, logger)
	return &PaymentEventConsumer{
		consumer: consumer,
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming payment events. This blocks until the context is cancelled.
func (c *PaymentEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *PaymentEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *PaymentEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from payment topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case contracts.PaymentReceived:
		return c.handlePaymentReceived(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled payment event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *PaymentEventConsumer) handlePaymentReceived(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt contracts.PaymentReceivedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse PaymentReceivedEvent data", zap.Error(err))
		return nil // Don't retry malformed data
	}
	if evt.PaymentID == "" || evt.Amount <= 0 || (evt.BookingID == nil && evt.BookingCode == "") {
		c.logger.Warn("skipping incomplete payment event", zap.String("event_id", cloudEvent.ID))
		return nil
	}

	bookingID, err := c.resolveBooking(ctx, evt)
	if err != nil {
		if domain.IsNotFound(err) {
			c.logger.Warn("payment for unknown booking",
				zap.String("payment_id", evt.PaymentID),
				zap.String("booking_code", evt.BookingCode),
			)
			return nil
		}
		return err
	}

	txType := ledgerDomain.TypePayment
	if strings.EqualFold(evt.Kind, string(ledgerDomain.TypeDeposit)) {
		txType = ledgerDomain.TypeDeposit
	}

	c.logger.Info("processing payment received event",
		zap.String("booking_id", bookingID.String()),
		zap.String("payment_id", evt.PaymentID),
		zap.Int64("amount", evt.Amount),
	)

	_, err = c.service.AddTransaction(ctx, application.SystemActor(), bookingID, application.AddTransactionRequest{
		Type:          string(txType),
		Amount:        evt.Amount,
		PaymentMethod: evt.Method,
		Notes:         "Đối soát ngân hàng",
		Reference:     evt.PaymentID,
	})
	if err != nil {
		// Domain errors (duplicate reference, closed booking) will not succeed on redelivery.
		if _, ok := domain.AsDomainError(err); ok {
			c.logger.Warn("payment not recorded",
				zap.String("booking_id", bookingID.String()),
				zap.String("payment_id", evt.PaymentID),
				zap.Error(err),
			)
			return nil
		}
		c.logger.Error("failed to record payment",
			zap.String("booking_id", bookingID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (c *PaymentEventConsumer) resolveBooking(ctx context.Context, evt contracts.PaymentReceivedEvent) (uuid.UUID, error) {
	if evt.BookingID != nil {
		return *evt.BookingID, nil
	}
	return c.service.ResolveBookingCode(ctx, evt.BookingCode)
}
