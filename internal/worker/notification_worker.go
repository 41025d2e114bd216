package worker

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/evently/internal/broker"
	"github.com/spec-kit/evently/internal/service"
)

// StartNotificationWorker registers notification handlers and, when a consumer
// is given, consumes confirmation messages in the background until ctx is done.
// The returned channel is closed once the consumer has stopped.
func StartNotificationWorker(ctx context.Context, notificationService *service.NotificationService, consumer *broker.Consumer, logger *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	if consumer == nil {
		close(done)
		return done
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	go func() {
		defer close(done)
		if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("confirmation consumer stopped", zap.Error(err))
		}
	}()
	return done
}
