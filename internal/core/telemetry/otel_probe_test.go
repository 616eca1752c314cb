package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"thingstodo/internal/core/port"
)

func withSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
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

func TestOTELProbe_RepositorySpan(t *testing.T) {
	RegisterTestingT(t)
	recorder := withSpanRecorder(t)

	metrics := NewAppMetrics(prometheus.NewRegistry())
	probe := NewOTELProbe(nil, metrics)

	ctx, span := probe.StartRepositorySpan(context.Background(), "Create", "todo", map[string]interface{}{
		"db.table": "todos",
		"todo.id":  int64(7),
	})
	probe.RecordRepositoryOperation(ctx, "Create", "todo", time.Millisecond, errors.New("constraint failed"))
	span.End()

	spans := recorder.Ended()

	Expect(spans).To(HaveLen(1))
	Expect(spans[0].Name()).To(Equal("repository.todo.Create"))
	Expect(spans[0].Status().Code).To(Equal(codes.Error))
	Expect(testutil.ToFloat64(metrics.databaseOperations.WithLabelValues("Create", "todo", "error"))).To(Equal(1.0))
}

func TestOTELProbe_RecordEnrichment(t *testing.T) {
	RegisterTestingT(t)
	withSpanRecorder(t)

	metrics := NewAppMetrics(prometheus.NewRegistry())
	probe := NewOTELProbe(nil, metrics)

	probe.RecordEnrichment(context.Background(), port.EnrichmentDisabled)

	Expect(testutil.ToFloat64(metrics.imageEnrichment.WithLabelValues(port.EnrichmentDisabled))).To(Equal(1.0))
}

func TestOTELProbe_WithoutMetrics(t *testing.T) {
	RegisterTestingT(t)

	probe := NewOTELProbe(nil, nil)

	Expect(func() {
		probe.RecordEnrichment(context.Background(), port.EnrichmentFound)
		probe.RecordServiceOperation(context.Background(), "todo", "GetAll", time.Millisecond, nil)
	}).NotTo(Panic())
}
