// Package metrics exposes Prometheus counters and gauges for the Queue
// Service's RPC and lifecycle-event traffic.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector collects Prometheus metrics for the Queue Service.
type Collector struct {
	popTotal       *prometheus.CounterVec
	lifecycleTotal *prometheus.CounterVec
	scaleTarget    prometheus.Gauge
}

// NewCollector builds and registers the Queue Service's metrics against
// reg. Pass prometheus.NewRegistry() in tests to avoid the global
// registry's MustRegister panic on repeated construction.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		popTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cubr_queue_pop_total",
			Help: "Total pop RPC calls by result.",
		}, []string{"result"}),
		lifecycleTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cubr_queue_lifecycle_events_total",
			Help: "Total lifecycle events emitted by kind.",
		}, []string{"event"}),
		scaleTarget: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cubr_queue_scale_target",
			Help: "Most recently computed scale target (sum of remaining jobs).",
		}),
	}

	reg.MustRegister(c.popTotal, c.lifecycleTotal, c.scaleTarget)
	return c
}

// RecordPop records the result of a pop RPC call: "ok" or "empty", or any
// other string for unexpected errors.
func (c *Collector) RecordPop(result string) {
	c.popTotal.WithLabelValues(result).Inc()
}

// RecordLifecycleEvent records an outbound lifecycle event by kind.
func (c *Collector) RecordLifecycleEvent(kind string) {
	c.lifecycleTotal.WithLabelValues(kind).Inc()
}

// SetScaleTarget records the most recently computed scale target.
func (c *Collector) SetScaleTarget(target uint64) {
	c.scaleTarget.Set(float64(target))
}

// Serve runs the /metrics and /healthz HTTP endpoints on addr until ctx is
// canceled.
func Serve(ctx context.Context, addr string, reg *prometheus.Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		return srv.Close()
	case err := <-errCh:
		return err
	}
}
