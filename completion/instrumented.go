package completion

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Instrumented wraps a Completer with a span and latency/failure metrics.
type Instrumented struct {
	next     Completer
	provider string
	tracer   trace.Tracer

	requests metric.Int64Counter
	failures metric.Int64Counter
	latency  metric.Float64Histogram
	size     metric.Int64Histogram
}

func NewInstrumented(next Completer, provider string, tracer trace.Tracer, meter metric.Meter) *Instrumented {
	requests, _ := meter.Int64Counter("completion_requests_total",
		metric.WithDescription("Total number of completion requests"))
	failures, _ := meter.Int64Counter("completion_failures_total",
		metric.WithDescription("Total number of completion requests that failed"))
	latency, _ := meter.Float64Histogram("completion_response_time_seconds",
		metric.WithDescription("Time taken to receive a completion in seconds"))
	size, _ := meter.Int64Histogram("completion_response_length",
		metric.WithDescription("Length of the generated completion text"))

	return &Instrumented{
		next:     next,
		provider: provider,
		tracer:   tracer,
		requests: requests,
		failures: failures,
		latency:  latency,
		size:     size,
	}
}

func (c *Instrumented) Complete(ctx context.Context, prompt string) (string, error) {
	attrs := metric.WithAttributes(attribute.String("provider", c.provider))

	ctx, span := c.tracer.Start(ctx, "Completer.Complete", trace.WithAttributes(
		attribute.String("completion.provider", c.provider),
		attribute.Int("completion.prompt_length", len(prompt)),
	))
	defer span.End()

	c.requests.Add(ctx, 1, attrs)

	start := time.Now()
	text, err := c.next.Complete(ctx, prompt)
	elapsed := time.Since(start)
	c.latency.Record(ctx, elapsed.Seconds(), attrs)

	if err != nil {
		c.failures.Add(ctx, 1, attrs)
		span.SetStatus(codes.Error, "completion failed")
		span.RecordError(err)
		return "", err
	}

	c.size.Record(ctx, int64(len(text)), attrs)
	span.SetAttributes(attribute.Int("completion.response_length", len(text)))

	slog.Info("COMPLETION: Completed",
		"provider", c.provider,
		"response_length", len(text),
		"response_time_ms", elapsed.Milliseconds(),
	)
	return text, nil
}
