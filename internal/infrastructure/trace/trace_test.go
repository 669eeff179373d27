package trace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestStartSpan_Disabled(t *testing.T) {
	require.NoError(t, Init(false))
	assert.False(t, Enabled())

	ctx := context.Background()
	spanCtx, span := StartSpan(ctx, "test", attribute.String("k", "v"))
	defer span.End()

	assert.Equal(t, ctx, spanCtx)
	assert.False(t, span.SpanContext().IsValid())
	assert.NoError(t, Shutdown(ctx))
}
