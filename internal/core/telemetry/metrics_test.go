package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"thingstodo/internal/core/port"
)

func TestAppMetrics_Counters(t *testing.T) {
	RegisterTestingT(t)

	ctx := context.Background()
	metrics := NewAppMetrics(prometheus.NewRegistry())

	metrics.RecordImageEnrichment(ctx, port.EnrichmentFound)
	metrics.RecordImageEnrichment(ctx, port.EnrichmentFound)
	metrics.RecordImageEnrichment(ctx, port.EnrichmentProviderFail)
	metrics.RecordDatabaseOperation(ctx, "Create", "todo", nil)
	metrics.RecordDatabaseOperation(ctx, "Create", "todo", errors.New("locked"))
	metrics.RecordRequest(ctx, "GET", "/api/todos", "200", 15*time.Millisecond)
	metrics.RecordCacheHit(ctx, "/api/todos")

	Expect(testutil.ToFloat64(metrics.imageEnrichment.WithLabelValues(port.EnrichmentFound))).To(Equal(2.0))
	Expect(testutil.ToFloat64(metrics.imageEnrichment.WithLabelValues(port.EnrichmentProviderFail))).To(Equal(1.0))
	Expect(testutil.ToFloat64(metrics.databaseOperations.WithLabelValues("Create", "todo", "ok"))).To(Equal(1.0))
	Expect(testutil.ToFloat64(metrics.databaseOperations.WithLabelValues("Create", "todo", "error"))).To(Equal(1.0))
	Expect(testutil.ToFloat64(metrics.requestTotal.WithLabelValues("GET", "/api/todos", "200"))).To(Equal(1.0))
	Expect(testutil.ToFloat64(metrics.cacheHits.WithLabelValues("/api/todos"))).To(Equal(1.0))
}

func TestAppMetrics_ActiveConnections(t *testing.T) {
	RegisterTestingT(t)

	ctx := context.Background()
	metrics := NewAppMetrics(prometheus.NewRegistry())

	metrics.IncrementActiveConnections(ctx)
	metrics.IncrementActiveConnections(ctx)
	metrics.DecrementActiveConnections(ctx)

	Expect(testutil.ToFloat64(metrics.activeConnections)).To(Equal(1.0))
}
