// Package metrics records application counters through the global
// OpenTelemetry meter provider. Without an SDK configured every call is a
// no-op.
package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "freshkeep-backend"

const (
	QuotaChecks       = "freshkeep.quota.checks"
	ConnectionDenials = "freshkeep.ratelimit.denied"
	AlertsScheduled   = "freshkeep.alerts.scheduled"
	AlertsDelivered   = "freshkeep.alerts.delivered"
	PlannerRuns       = "freshkeep.planner.runs"
	UpstreamCalls     = "freshkeep.ai.calls"
	UpstreamLatency   = "freshkeep.ai.latency_ms"
)

type instruments struct {
	mu         sync.RWMutex
	meter      metric.Meter
	counters   map[string]metric.Int64Counter
	histograms map[string]metric.Float64Histogram
}

var global = &instruments{
	counters:   make(map[string]metric.Int64Counter),
	histograms: make(map[string]metric.Float64Histogram),
}

func (i *instruments) getMeter() metric.Meter {
	if i.meter == nil {
		i.meter = otel.Meter(meterName)
	}
	return i.meter
}

func (i *instruments) counter(name string) metric.Int64Counter {
	i.mu.RLock()
	c, ok := i.counters[name]
	i.mu.RUnlock()
	if ok {
		return c
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if c, ok = i.counters[name]; ok {
		return c
	}
	c, err := i.getMeter().Int64Counter(name)
	if err != nil {
		log.Warnw("failed to create counter", "name", name, "error", err)
		return nil
	}
	i.counters[name] = c
	return c
}

func (i *instruments) histogram(name string) metric.Float64Histogram {
	i.mu.RLock()
	h, ok := i.histograms[name]
	i.mu.RUnlock()
	if ok {
		return h
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if h, ok = i.histograms[name]; ok {
		return h
	}
	h, err := i.getMeter().Float64Histogram(name, metric.WithUnit("ms"))
	if err != nil {
		log.Warnw("failed to create histogram", "name", name, "error", err)
		return nil
	}
	i.histograms[name] = h
	return h
}

// Count adds n to the named counter. Labels are key/value pairs.
func Count(ctx context.Context, name string, n int64, labels ...string) {
	c := global.counter(name)
	if c == nil {
		return
	}
	c.Add(ctx, n, metric.WithAttributes(toAttributes(labels)...))
}

// Since records the elapsed milliseconds since start on the named histogram.
func Since(ctx context.Context, name string, start time.Time, labels ...string) {
	h := global.histogram(name)
	if h == nil {
		return
	}
	h.Record(ctx, float64(time.Since(start).Milliseconds()), metric.WithAttributes(toAttributes(labels)...))
}

func toAttributes(labels []string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(labels)/2)
	for i := 0; i+1 < len(labels); i += 2 {
		attrs = append(attrs, attribute.String(labels[i], labels[i+1]))
	}
	return attrs
}
