package contextutil_test

import (
	"context"
	"testing"

	"breakly/internal/shared/contextutil"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestFields(t *testing.T) {
	t.Run("both ids", func(t *testing.T) {
		ctx := contextutil.WithRequestID(context.Background(), "req-1")
		ctx = contextutil.WithUserID(ctx, "uid-1")

		assert.Equal(t, []zap.Field{
			zap.String("request_id", "req-1"),
			zap.String("user_id", "uid-1"),
		}, contextutil.Fields(ctx))
	})

	t.Run("unset ids are skipped", func(t *testing.T) {
		assert.Empty(t, contextutil.Fields(context.Background()))
	})
}

func TestGetLogger(t *testing.T) {
	fallback := zap.NewExample()

	t.Run("context logger wins", func(t *testing.T) {
		l := zap.NewNop()
		ctx := contextutil.WithLogger(context.Background(), l)
		assert.Same(t, l, contextutil.GetLogger(ctx, fallback))
	})

	t.Run("fallback when missing", func(t *testing.T) {
		assert.Same(t, fallback, contextutil.GetLogger(context.Background(), fallback))
	})

	t.Run("never nil", func(t *testing.T) {
		assert.NotNil(t, contextutil.GetLogger(context.Background(), nil))
	})
}
