package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CommandsTotal counts external command invocations by program and outcome
	// (ok, nonzero, timeout, error).
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provisioner_commands_total",
			Help: "Total number of external commands executed",
		},
		[]string{"program", "outcome"},
	)

	CommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provisioner_command_duration_seconds",
			Help:    "External command duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"program"},
	)

	ProvisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provisioner_provisions_total",
			Help: "Total number of provisioning runs by result",
		},
		[]string{"result"},
	)

	ProvisionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "provisioner_provision_duration_seconds",
			Help:    "End-to-end provisioning duration in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 180, 300, 600},
		},
	)

	// StepFailuresTotal counts non-fatal and fatal step failures by step label.
	StepFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provisioner_step_failures_total",
			Help: "Total number of failed provisioning steps",
		},
		[]string{"step"},
	)

	DeprovisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provisioner_deprovisions_total",
			Help: "Total number of deprovisioning runs by result",
		},
		[]string{"result"},
	)
)
