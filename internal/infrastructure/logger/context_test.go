package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newCaptureLogger() (*zap.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	encoderConfig := zapcore.EncoderConfig{
		LevelKey:    "level",
		MessageKey:  "msg",
		EncodeLevel: zapcore.LowercaseLevelEncoder,
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(&buf), zapcore.DebugLevel)
	return zap.New(core), &buf
}

func TestWithContext(t *testing.T) {
	logger := zap.NewNop()
	ctx := WithContext(context.Background(), logger)

	assert.Equal(t, logger, FromContext(ctx))
}

func TestFromContext_Missing(t *testing.T) {
	got := FromContext(context.Background())
	assert.NotNil(t, got)
	// no-op logger, safe to call
	got.Info("should not panic")
}

func TestContextEnrichment(t *testing.T) {
	logger, buf := newCaptureLogger()

	ctx := WithContext(context.Background(), logger)
	ctx, _ = WithRequestID(ctx, FromContext(ctx), "req-123")
	ctx, _ = WithTenantID(ctx, FromContext(ctx), "tenant-456")
	ctx, _ = WithUserID(ctx, FromContext(ctx), "user-789")

	assert.Equal(t, "req-123", GetRequestID(ctx))
	assert.Equal(t, "tenant-456", GetTenantID(ctx))
	assert.Equal(t, "user-789", GetUserID(ctx))

	L(ctx).Info("enriched")

	var output map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))
	assert.Equal(t, "enriched", output["msg"])
	assert.Equal(t, "req-123", output["request_id"])
	assert.Equal(t, "tenant-456", output["tenant_id"])
	assert.Equal(t, "user-789", output["user_id"])
}

func TestContextLogger_With(t *testing.T) {
	logger, buf := newCaptureLogger()
	ctx := WithContext(context.Background(), logger)

	L(ctx).With(zap.String("component", "engine")).Warn("locked")

	var output map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))
	assert.Equal(t, "engine", output["component"])
	assert.Equal(t, "warn", output["level"])
}

func TestWithLogger(t *testing.T) {
	logger, buf := newCaptureLogger()

	WithLogger(context.Background(), logger).Error("boom")

	var output map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))
	assert.Equal(t, "boom", output["msg"])
}

func TestL_NilSafe(t *testing.T) {
	// Context without logger must not panic
	L(context.Background()).Info("into the void")
}
