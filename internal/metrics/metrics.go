// Package metrics exposes submission pipeline counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SubmissionsAccepted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "snapform",
		Name:      "submissions_accepted_total",
		Help:      "Responses committed to the store.",
	})

	SubmissionsRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "snapform",
		Name:      "submissions_rejected_total",
		Help:      "Submissions rejected by the admission gate, by reject code.",
	}, []string{"code"})

	CommitFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "snapform",
		Name:      "commit_failures_total",
		Help:      "Admitted submissions whose commit transaction failed.",
	})

	MirrorFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "snapform",
		Name:      "sheet_mirror_failures_total",
		Help:      "Committed responses that could not be appended to the owner's sheet.",
	})
)

// Register adds every collector to reg. Registering twice returns an error
// from the registry.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{SubmissionsAccepted, SubmissionsRejected, CommitFailures, MirrorFailures} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
