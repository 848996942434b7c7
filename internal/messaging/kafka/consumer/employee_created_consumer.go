package consumer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/LamineOzilJr/memoire-master2/internal/balance"
	"github.com/LamineOzilJr/memoire-master2/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumeEmployeeCreated seeds the new hire's leave balances for the
// current year. The seeding skips rows that already exist, so redelivery
// of the same event is harmless.
func ConsumeEmployeeCreated(
	ctx context.Context,
	reader *kafkago.Reader,
	balanceService balance.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.employee_created")
	log.Info("employee created consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("employee created consumer stopped")
				return
			}
			log.Error("fetch employee created message failed", zap.Error(err))
			continue
		}

		var event events.EmployeeCreatedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode employee created event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		year := time.Now().UTC().Year()
		if _, err := balanceService.InitializeAnnual(ctx, event.EmployeeID, year); err != nil {
			log.Error("initialize annual balances failed",
				zap.String("employee_id", event.EmployeeID),
				zap.Int("year", year),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit employee created message failed", zap.Error(err))
			continue
		}

		log.Info("annual balances seeded from employee created event",
			zap.String("employee_id", event.EmployeeID),
			zap.Int("year", year),
		)
	}
}
