package tracing_test

import (
	"context"
	"errors"
	"testing"

	"thingstodo/pkg/tracing"

	. "github.com/onsi/gomega"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)

	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = provider.Shutdown(context.Background())
	})

	return recorder
}

func TestDatabaseSpanWrapper_RecordsError(t *testing.T) {
	RegisterTestingT(t)
	recorder := withRecorder(t)

	boom := errors.New("boom")

	err := tracing.DatabaseSpanWrapper(context.Background(), "postgresql", "todos", "DELETE", "DELETE FROM todos", func(ctx context.Context) error {
		Expect(tracing.GetTraceID(ctx)).NotTo(BeEmpty())
		return boom
	})

	Expect(err).To(MatchError(boom))

	spans := recorder.Ended()
	Expect(spans).To(HaveLen(1))
	Expect(spans[0].Name()).To(Equal("db.todos.DELETE"))
	Expect(spans[0].Status().Code).To(Equal(codes.Error))
}

func TestGetTraceID_NoSpan(t *testing.T) {
	RegisterTestingT(t)

	Expect(tracing.GetTraceID(context.Background())).To(BeEmpty())
	Expect(tracing.GetSpanID(context.Background())).To(BeEmpty())
}
