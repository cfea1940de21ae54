package consumer_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"breakly/internal/bootstrap"
	"breakly/internal/messaging/kafka/consumer"
	"breakly/internal/shared/contextutil"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type recordedEntry struct {
	requestID string
	entry     bootstrap.AuditLog
}

type recordingAudit struct {
	mu      sync.Mutex
	entries []recordedEntry
}

func (r *recordingAudit) Log(ctx context.Context, entry bootstrap.AuditLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, recordedEntry{requestID: contextutil.GetRequestID(ctx), entry: entry})
}

type fakeReader struct {
	msgs      []kafkago.Message
	committed []kafkago.Message
	cancel    context.CancelFunc
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	if len(f.msgs) == 0 {
		f.cancel()
		<-ctx.Done()
		return kafkago.Message{}, ctx.Err()
	}
	msg := f.msgs[0]
	f.msgs = f.msgs[1:]
	return msg, nil
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	f.committed = append(f.committed, msgs...)
	return nil
}

func TestHandleLeaveLifecycleMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("success submitted", func(t *testing.T) {
		audit := &recordingAudit{}
		err := consumer.HandleLeaveLifecycleMessage(ctx, kafkago.Message{
			Value: []byte(`{"event_type":"leave_submitted","request_id":"req-1","leave_id":"l-1","employee_id":"emp-1","leave_type":"sick","days":3}`),
		}, audit)

		assert.NoError(t, err)
		if assert.Len(t, audit.entries, 1) {
			got := audit.entries[0]
			assert.Equal(t, "LEAVE_SUBMITTED", got.entry.Action)
			assert.Equal(t, "req-1", got.requestID)
			assert.Equal(t, "l-1", got.entry.Meta["leave_id"])
		}
	})

	t.Run("success approved", func(t *testing.T) {
		audit := &recordingAudit{}
		err := consumer.HandleLeaveLifecycleMessage(ctx, kafkago.Message{
			Value: []byte(`{"event_type":"leave_decided","leave_id":"l-1","employee_id":"emp-1","decided_by":"mgr-1","status":"approved","days":3,"balance_bucket":"sick"}`),
		}, audit)

		assert.NoError(t, err)
		if assert.Len(t, audit.entries, 1) {
			assert.Equal(t, "LEAVE_APPROVED", audit.entries[0].entry.Action)
			assert.Equal(t, "sick", audit.entries[0].entry.Meta["balance_bucket"])
		}
	})

	t.Run("success rejected has no bucket", func(t *testing.T) {
		audit := &recordingAudit{}
		err := consumer.HandleLeaveLifecycleMessage(ctx, kafkago.Message{
			Value: []byte(`{"event_type":"leave_decided","leave_id":"l-1","decided_by":"mgr-1","status":"rejected"}`),
		}, audit)

		assert.NoError(t, err)
		if assert.Len(t, audit.entries, 1) {
			assert.Equal(t, "LEAVE_REJECTED", audit.entries[0].entry.Action)
			assert.NotContains(t, audit.entries[0].entry.Meta, "balance_bucket")
		}
	})

	t.Run("negative malformed", func(t *testing.T) {
		audit := &recordingAudit{}
		err := consumer.HandleLeaveLifecycleMessage(ctx, kafkago.Message{Value: []byte(`{not json`)}, audit)

		assert.Error(t, err)
		assert.Empty(t, audit.entries)
	})

	t.Run("negative unknown type", func(t *testing.T) {
		audit := &recordingAudit{}
		err := consumer.HandleLeaveLifecycleMessage(ctx, kafkago.Message{Value: []byte(`{"event_type":"leave_cancelled"}`)}, audit)

		assert.Error(t, err)
		assert.Empty(t, audit.entries)
	})
}

func TestConsumeLeaveLifecycle_CommitsEveryMessage(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	reader := &fakeReader{
		cancel: cancel,
		msgs: []kafkago.Message{
			{Offset: 1, Value: []byte(`{"event_type":"leave_submitted","leave_id":"l-1"}`)},
			{Offset: 2, Value: []byte(`garbage`)},
			{Offset: 3, Value: []byte(`{"event_type":"leave_decided","leave_id":"l-1","status":"approved"}`)},
		},
	}
	audit := &recordingAudit{}

	consumer.ConsumeLeaveLifecycle(ctx, reader, audit, zap.NewNop())

	assert.Len(t, reader.committed, 3)
	assert.Len(t, audit.entries, 2)
	assert.True(t, errors.Is(ctx.Err(), context.Canceled))
}
