package completion

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInstrumented_Complete(t *testing.T) {
	tests := []struct {
		name         string
		next         Func
		wantText     string
		wantErr      bool
		wantFailures int64
	}{
		{
			name: "passes text through",
			next: func(ctx context.Context, prompt string) (string, error) {
				return "recipe for " + prompt, nil
			},
			wantText: "recipe for pancakes",
		},
		{
			name: "passes errors through",
			next: func(ctx context.Context, prompt string) (string, error) {
				return "", errors.New("rate limited")
			},
			wantErr:      true,
			wantFailures: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans := tracetest.NewSpanRecorder()
			tp := trace.NewTracerProvider(trace.WithSpanProcessor(spans))
			reader := sdkmetric.NewManualReader()
			mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

			c := NewInstrumented(tt.next, "test", tp.Tracer("test"), mp.Meter("test"))
			text, err := c.Complete(context.Background(), "pancakes")
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantText, text)

			ended := spans.Ended()
			require.Len(t, ended, 1)
			assert.Equal(t, "Completer.Complete", ended[0].Name())

			var rm metricdata.ResourceMetrics
			require.NoError(t, reader.Collect(context.Background(), &rm))
			assert.Equal(t, tt.wantFailures, counterValue(rm, "completion_failures_total"))
			assert.Equal(t, int64(1), counterValue(rm, "completion_requests_total"))
		})
	}
}

func counterValue(rm metricdata.ResourceMetrics, name string) int64 {
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
			}
		}
	}
	return total
}
