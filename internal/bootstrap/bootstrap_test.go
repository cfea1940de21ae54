package bootstrap_test

import (
	"context"
	"net/http"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	"breakly/internal/bootstrap"
	"breakly/internal/shared/contextutil"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingAuditLogger struct {
	mu      sync.Mutex
	entries []bootstrap.AuditLog
}

func (r *recordingAuditLogger) Log(_ context.Context, entry bootstrap.AuditLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func TestRunHTTPServer_AuditsShutdown(t *testing.T) {
	audit := &recordingAuditLogger{}
	quit := make(chan os.Signal, 1)
	quit <- syscall.SIGTERM

	bootstrap.RunHTTPServer(http.NotFoundHandler(), bootstrap.ServerConfig{
		Port:            "0",
		ShutdownTimeout: time.Second,
	}, audit, quit)

	audit.mu.Lock()
	defer audit.mu.Unlock()
	if assert.Len(t, audit.entries, 1) {
		assert.Equal(t, "SERVER_SHUTDOWN", audit.entries[0].Action)
		assert.Equal(t, "terminated", audit.entries[0].Meta["signal"])
	}
}

func TestStdoutAuditLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := bootstrap.NewStdoutAuditLogger(zap.New(core))

	ctx := contextutil.WithRequestID(context.Background(), "req-9")
	l.Log(ctx, bootstrap.AuditLog{Action: "LEAVE_APPROVED", Message: "approved"})

	entries := logs.FilterMessage("audit event").All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "LEAVE_APPROVED", fields["action"])
		assert.Equal(t, "req-9", fields["request_id"])
		assert.Equal(t, "audit", entries[0].LoggerName)
	}
}
