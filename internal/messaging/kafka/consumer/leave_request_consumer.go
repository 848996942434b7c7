package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/LamineOzilJr/memoire-master2/internal/events"
	"github.com/LamineOzilJr/memoire-master2/internal/notification"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumeLeaveRequestSubmitted turns submitted and resubmitted events into
// inbox notifications for the reviewer of the current stage.
func ConsumeLeaveRequestSubmitted(
	ctx context.Context,
	reader *kafkago.Reader,
	notificationService notification.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.leave_request_submitted")
	log.Info("leave request submitted consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("leave request submitted consumer stopped")
				return
			}
			log.Error("fetch submitted message failed", zap.Error(err))
			continue
		}

		var event events.LeaveRequestSubmittedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode submitted event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		title := "New leave request"
		message := fmt.Sprintf("A leave request from %s to %s awaits your review.", event.StartDate, event.EndDate)
		if event.EventType == events.TypeResubmitted {
			title = "Leave request updated"
			message = fmt.Sprintf("A leave request was updated with the requested information (%s to %s).", event.StartDate, event.EndDate)
		}

		if err := notificationService.Deliver(ctx, event.Recipients, event.RequestID, title, message); err != nil {
			log.Error("deliver submitted notification failed",
				zap.String("request_id", event.RequestID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit submitted message failed", zap.Error(err))
			continue
		}

		log.Info("submitted notification delivered",
			zap.String("request_id", event.RequestID),
			zap.String("event_type", event.EventType),
		)
	}
}

// ConsumeLeaveRequestDecided notifies the requester of every decision and
// the next gate of every forwarding approval.
func ConsumeLeaveRequestDecided(
	ctx context.Context,
	reader *kafkago.Reader,
	notificationService notification.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.leave_request_decided")
	log.Info("leave request decided consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("leave request decided consumer stopped")
				return
			}
			log.Error("fetch decided message failed", zap.Error(err))
			continue
		}

		var event events.LeaveRequestDecidedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode decided event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		title, message := decidedNotification(event)
		if err := notificationService.Deliver(ctx, event.Recipients, event.RequestID, title, message); err != nil {
			log.Error("deliver decided notification failed",
				zap.String("request_id", event.RequestID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit decided message failed", zap.Error(err))
			continue
		}

		log.Info("decided notification delivered",
			zap.String("request_id", event.RequestID),
			zap.String("event_type", event.EventType),
			zap.String("outcome", event.Outcome),
		)
	}
}

func decidedNotification(event events.LeaveRequestDecidedEvent) (title, message string) {
	switch event.EventType {
	case events.TypeStageApproved:
		if event.Outcome == "COMPLETE" {
			return "Leave request approved",
				"Your leave request passed every approval stage and is confirmed."
		}
		return "Leave request progressed",
			fmt.Sprintf("The %s stage approved the request; it now awaits the %s stage.", event.Stage, event.Outcome)
	case events.TypeInfoRequested:
		return "More information requested",
			fmt.Sprintf("The %s stage needs more information: %s", event.Stage, event.Comment)
	case events.TypeStageRejected:
		return "Leave request rejected",
			fmt.Sprintf("The %s stage rejected the request: %s", event.Stage, event.Comment)
	}
	return "Leave request update", fmt.Sprintf("Your leave request changed state at the %s stage.", event.Stage)
}
