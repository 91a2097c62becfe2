package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledTelemetryIsNoOp(t *testing.T) {
	shutdown, err := InitTelemetry(context.Background(), Config{}, nil)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestTelemetryWithEndpoint(t *testing.T) {
	// Экспортер подключается лениво, поэтому недоступный коллектор не мешает старту
	shutdown, err := InitTelemetry(context.Background(), Config{Endpoint: "127.0.0.1:1", Insecure: true, SampleRatio: 0.5}, nil)
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	_ = shutdown(context.Background())
}
