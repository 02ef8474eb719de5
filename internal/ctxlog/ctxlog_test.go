package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))

	FromContext(ctx).Info("Plan rendered.", "plan", "CORE-GTC")
	assert.Contains(t, buf.String(), "plan=CORE-GTC")
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}

func TestWith_ExtendsContextLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))

	ctx, logger := With(ctx, "plan", "CORE-GTC")
	assert.Same(t, logger, FromContext(ctx))

	FromContext(ctx).Info("Stage ordered.", "stage", "Main")
	assert.Contains(t, buf.String(), "plan=CORE-GTC stage=Main")
}
