package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rowsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "soldibase",
		Subsystem: "import",
		Name:      "rows_submitted_total",
		Help:      "Rows submitted to persistence per import kind.",
	}, []string{"kind"})

	rowsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "soldibase",
		Subsystem: "import",
		Name:      "rows_skipped_total",
		Help:      "Rows skipped as invalid or unresolvable per import kind.",
	}, []string{"kind"})

	commitFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "soldibase",
		Subsystem: "import",
		Name:      "commit_failures_total",
		Help:      "Import commits that failed at the persistence boundary.",
	}, []string{"kind"})
)
