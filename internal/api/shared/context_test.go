package shared

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTraceIDGeneratesWhenEmpty(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx))

	withTrace := WithTraceID(ctx, "")
	traceID := GetTraceID(withTrace)
	assert.Len(t, traceID, TraceIDLength)

	_, err := hex.DecodeString(traceID)
	require.NoError(t, err)

	assert.Empty(t, GetTraceID(ctx), "original context must be unchanged")
}

func TestWithTraceIDKeepsSuppliedID(t *testing.T) {
	ctx := WithTraceID(context.Background(), "host/abc-000001")
	assert.Equal(t, "host/abc-000001", GetTraceID(ctx))
}

func TestGetTraceIDWithInvalidContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), TraceIDKey, 123)
	assert.Empty(t, GetTraceID(ctx))
}

func TestNewTraceIDUnique(t *testing.T) {
	const iterations = 1000
	seen := make(map[string]struct{}, iterations)
	for i := 0; i < iterations; i++ {
		seen[NewTraceID()] = struct{}{}
	}
	assert.Len(t, seen, iterations)
}
