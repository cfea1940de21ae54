package producer_test

import (
	"context"
	"errors"
	"testing"

	"breakly/internal/messaging/kafka"
	kafkaMock "breakly/internal/messaging/kafka/mock"
	"breakly/internal/messaging/kafka/producer"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

type fakeWriter struct {
	messages []kafkago.Message
	failFor  map[string]error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	for _, m := range msgs {
		if err, ok := w.failFor[string(m.Key)]; ok {
			return err
		}
		w.messages = append(w.messages, m)
	}
	return nil
}

func TestProcessPendingEvents(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	t.Run("success publishes and marks sent", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := kafkaMock.NewMockOutboxRepository(ctrl)
		writer := &fakeWriter{}

		repo.EXPECT().ListPending(gomock.Any(), 50).Return([]kafka.OutboxEvent{
			{
				ID:            "evt-1",
				RequestID:     "req-1",
				AggregateType: "leave",
				AggregateID:   "leave-1",
				EventType:     "leave_submitted",
				Topic:         "breakly.leave.lifecycle.v1",
				Payload:       []byte(`{"leave_id":"leave-1"}`),
			},
		}, nil)
		repo.EXPECT().MarkSent(gomock.Any(), "evt-1").Return(nil)

		sent, err := producer.ProcessPendingEvents(ctx, repo, writer, logger)

		assert.NoError(t, err)
		assert.Equal(t, 1, sent)
		if assert.Len(t, writer.messages, 1) {
			msg := writer.messages[0]
			assert.Equal(t, "breakly.leave.lifecycle.v1", msg.Topic)
			assert.Equal(t, "leave-1", string(msg.Key))
			assert.Contains(t, msg.Headers, kafkago.Header{Key: "request_id", Value: []byte("req-1")})
		}
	})

	t.Run("negative publish error marks failed and continues", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := kafkaMock.NewMockOutboxRepository(ctrl)
		writer := &fakeWriter{failFor: map[string]error{"leave-1": errors.New("broker down")}}

		repo.EXPECT().ListPending(gomock.Any(), 50).Return([]kafka.OutboxEvent{
			{ID: "evt-1", AggregateID: "leave-1", Topic: "t", Payload: []byte("{}")},
			{ID: "evt-2", AggregateID: "leave-2", Topic: "t", Payload: []byte("{}")},
		}, nil)
		repo.EXPECT().MarkFailed(gomock.Any(), "evt-1", "broker down").Return(nil)
		repo.EXPECT().MarkSent(gomock.Any(), "evt-2").Return(nil)

		sent, err := producer.ProcessPendingEvents(ctx, repo, writer, logger)

		assert.NoError(t, err)
		assert.Equal(t, 1, sent)
	})

	t.Run("negative list error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := kafkaMock.NewMockOutboxRepository(ctrl)

		repo.EXPECT().ListPending(gomock.Any(), 50).Return(nil, errors.New("db down"))

		_, err := producer.ProcessPendingEvents(ctx, repo, &fakeWriter{}, logger)

		assert.Error(t, err)
	})
}
