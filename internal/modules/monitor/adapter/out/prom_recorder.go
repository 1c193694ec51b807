package out

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"trafficwatch/internal/modules/monitor/domain"
	monitorout "trafficwatch/internal/modules/monitor/port/out"
)

type PromRecorder struct {
	cycles        *prometheus.CounterVec
	fetchFailures *prometheus.CounterVec
	lastDuration  prometheus.Gauge
	cycleSeconds  prometheus.Histogram
}

// NewPromRecorder registers the monitor metrics on reg.
func NewPromRecorder(reg prometheus.Registerer) (monitorout.Recorder, error) {
	r := &PromRecorder{
		cycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trafficwatch_cycles_total",
				Help: "Sampling cycles by outcome",
			},
			[]string{"result"},
		),
		fetchFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trafficwatch_fetch_failures_total",
				Help: "Provider fetches that produced no value, by reason",
			},
			[]string{"reason"},
		),
		lastDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trafficwatch_last_duration_hours",
			Help: "Most recently recorded travel time in hours",
		}),
		cycleSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "trafficwatch_cycle_seconds",
			Help:    "Wall time of one fetch, persist and render cycle",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		}),
	}
	for _, c := range []prometheus.Collector{r.cycles, r.fetchFailures, r.lastDuration, r.cycleSeconds} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *PromRecorder) CycleFinished(outcome domain.CycleOutcome, elapsed time.Duration) {
	r.cycles.WithLabelValues(string(outcome)).Inc()
	r.cycleSeconds.Observe(elapsed.Seconds())
}

func (r *PromRecorder) FetchFailed(reason string) {
	r.fetchFailures.WithLabelValues(reason).Inc()
}

func (r *PromRecorder) SampleRecorded(hours float64) {
	r.lastDuration.Set(hours)
}
