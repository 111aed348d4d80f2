package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/danielpatrickdp/valuesnet/internal/config"
)

func TestInitNone(t *testing.T) {
	shutdown, err := Init(context.Background(), config.TracingConfig{Exporter: "none"}, "test", nil)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitUnknown(t *testing.T) {
	_, err := Init(context.Background(), config.TracingConfig{Exporter: "zipkin"}, "test", nil)
	assert.ErrorIs(t, err, ErrUnknownExporter)
}

func TestInitStdoutExportsSpans(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var buf bytes.Buffer
	shutdown, err := Init(context.Background(), config.TracingConfig{Exporter: "stdout", ServiceName: "valuesnet-test"}, "test", &buf)
	require.NoError(t, err)

	_, span := Tracer().Start(context.Background(), "analyze")
	span.End()
	require.NoError(t, shutdown(context.Background()))

	assert.Contains(t, buf.String(), `"Name":"analyze"`)
	assert.Contains(t, buf.String(), "valuesnet-test")
}
