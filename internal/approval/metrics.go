package approval

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type engineMetrics struct {
	actions    *prometheus.CounterVec
	sweeps     prometheus.Counter
	sweepItems *prometheus.CounterVec
}

var (
	metricsOnce sync.Once
	metricsInst *engineMetrics
)

func globalMetrics() *engineMetrics {
	metricsOnce.Do(func() {
		metricsInst = &engineMetrics{
			actions: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: "helpdesk",
				Subsystem: "approval",
				Name:      "actions_total",
				Help:      "Approval actions processed, labeled by action and result",
			}, []string{"action", "result"}),
			sweeps: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: "helpdesk",
				Subsystem: "approval",
				Name:      "auto_sweeps_total",
				Help:      "Duplicate-approver sweep executions",
			}),
			sweepItems: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: "helpdesk",
				Subsystem: "approval",
				Name:      "auto_sweep_records_total",
				Help:      "Records touched by duplicate-approver sweeps, labeled by result",
			}, []string{"result"}),
		}
	})
	return metricsInst
}

func observeAction(action Action, result string) {
	globalMetrics().actions.WithLabelValues(string(action), result).Inc()
}

func observeSweep(approved, failed int) {
	m := globalMetrics()
	m.sweeps.Inc()
	m.sweepItems.WithLabelValues("approved").Add(float64(approved))
	m.sweepItems.WithLabelValues("failed").Add(float64(failed))
}
