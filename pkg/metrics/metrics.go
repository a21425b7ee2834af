// Package metrics defines the Prometheus instrumentation exposed by
// the forwarding module, registered against a private registry rather
// than the global default one.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Set bundles every metric the module updates.
type Set struct {
	Registry *prometheus.Registry

	TableEntries  prometheus.Gauge
	TableCapacity prometheus.Gauge

	LookupsTotal prometheus.Counter
	HitsTotal    prometheus.Counter
	MissesTotal  prometheus.Counter

	InsertsTotal        prometheus.Counter
	DisplacementsTotal  prometheus.Counter
	InsertFailuresTotal *prometheus.CounterVec

	CommandDuration *prometheus.HistogramVec
}

// New builds a Set and registers all of its collectors against a
// fresh, private registry.
func New() *Set {
	reg := prometheus.NewRegistry()

	s := &Set{
		Registry: reg,

		TableEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "l2fwd",
			Name:      "table_entries",
			Help:      "Current number of occupied slots in the forwarding table.",
		}),
		TableCapacity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "l2fwd",
			Name:      "table_capacity",
			Help:      "Total number of slots in the forwarding table (size * bucket).",
		}),

		LookupsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "l2fwd",
			Name:      "lookups_total",
			Help:      "Total number of lookups performed against the forwarding table.",
		}),
		HitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "l2fwd",
			Name:      "hits_total",
			Help:      "Total number of lookups that found an entry.",
		}),
		MissesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "l2fwd",
			Name:      "misses_total",
			Help:      "Total number of lookups that found no entry.",
		}),

		InsertsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "l2fwd",
			Name:      "inserts_total",
			Help:      "Total number of successful Add operations.",
		}),
		DisplacementsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "l2fwd",
			Name:      "displacements_total",
			Help:      "Total number of cuckoo displacements performed during Add.",
		}),
		InsertFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "l2fwd",
			Name:      "insert_failures_total",
			Help:      "Total number of failed Add operations, labeled by reason.",
		}, []string{"reason"}),

		CommandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "l2fwd",
			Name:      "command_duration_seconds",
			Help:      "Latency of command-surface operations, labeled by command name.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"command"}),
	}

	reg.MustRegister(
		s.TableEntries,
		s.TableCapacity,
		s.LookupsTotal,
		s.HitsTotal,
		s.MissesTotal,
		s.InsertsTotal,
		s.DisplacementsTotal,
		s.InsertFailuresTotal,
		s.CommandDuration,
	)

	return s
}
