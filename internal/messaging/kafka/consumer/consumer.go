package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"breakly/internal/bootstrap"
	"breakly/internal/events"
	"breakly/internal/shared/contextutil"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the subset of *kafkago.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// ConsumeLeaveLifecycle turns leave lifecycle events into audit entries until
// ctx is cancelled. Undecodable messages are committed and skipped.
func ConsumeLeaveLifecycle(
	ctx context.Context,
	reader MessageReader,
	audit bootstrap.AuditLogger,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.leave_lifecycle")
	log.Info("leave lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("leave lifecycle consumer stopped")
				return
			}
			log.Error("fetch leave lifecycle message failed", zap.Error(err))
			continue
		}

		if err := HandleLeaveLifecycleMessage(ctx, msg, audit); err != nil {
			log.Error("skipping leave lifecycle message",
				zap.String("key", string(msg.Key)),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit leave lifecycle message failed", zap.Error(err))
		}
	}
}

// HandleLeaveLifecycleMessage records one lifecycle event in the audit log.
func HandleLeaveLifecycleMessage(ctx context.Context, msg kafkago.Message, audit bootstrap.AuditLogger) error {
	var envelope events.Envelope
	if err := json.Unmarshal(msg.Value, &envelope); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}

	switch envelope.EventType {
	case events.EventLeaveSubmitted:
		var event events.LeaveSubmittedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return fmt.Errorf("decode %s: %w", envelope.EventType, err)
		}
		audit.Log(withRequestID(ctx, event.RequestID), bootstrap.AuditLog{
			Action:  "LEAVE_SUBMITTED",
			Message: fmt.Sprintf("%s requested %d day(s) of %s leave", event.EmployeeID, event.Days, event.LeaveType),
			Meta: map[string]any{
				"leave_id":    event.LeaveID,
				"employee_id": event.EmployeeID,
				"leave_type":  event.LeaveType,
				"start_date":  event.StartDate,
				"end_date":    event.EndDate,
				"days":        event.Days,
				"occurred_at": event.OccurredAt,
			},
		})
	case events.EventLeaveDecided:
		var event events.LeaveDecidedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return fmt.Errorf("decode %s: %w", envelope.EventType, err)
		}
		meta := map[string]any{
			"leave_id":    event.LeaveID,
			"employee_id": event.EmployeeID,
			"decided_by":  event.DecidedBy,
			"status":      event.Status,
			"days":        event.Days,
			"occurred_at": event.OccurredAt,
		}
		if event.BalanceBucket != "" {
			meta["balance_bucket"] = event.BalanceBucket
		}
		audit.Log(withRequestID(ctx, event.RequestID), bootstrap.AuditLog{
			Action:  "LEAVE_" + strings.ToUpper(event.Status),
			Message: fmt.Sprintf("%s %s leave %s", event.DecidedBy, event.Status, event.LeaveID),
			Meta:    meta,
		})
	default:
		return fmt.Errorf("unknown event type %q", envelope.EventType)
	}
	return nil
}

func withRequestID(ctx context.Context, rid string) context.Context {
	if rid == "" {
		return ctx
	}
	return contextutil.WithRequestID(ctx, rid)
}
