package events

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/joyhomes/service-booking/internal/application"
	"github.com/joyhomes/service-booking/internal/common/kafka"
)

// FanoutPublisher hands every event to each target in order. A failing
// target does not stop the others.
type FanoutPublisher struct {
	targets []application.EventPublisher
	logger  *zap.Logger
}

// NewFanoutPublisher creates a FanoutPublisher. Nil targets are skipped.
func NewFanoutPublisher(logger *zap.Logger, targets ...application.EventPublisher) *FanoutPublisher {
	kept := make([]application.EventPublisher, 0, len(targets))
	for _, t := range targets {
		if t != nil {
			kept = append(kept, t)
		}
	}
	return &FanoutPublisher{targets: kept, logger: logger}
}

// PublishEvent implements application.EventPublisher.
func (f *FanoutPublisher) PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error {
	var errs []error
	for _, t := range f.targets {
		if err := t.PublishEvent(ctx, topic, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
