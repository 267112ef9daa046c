package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// RegisterAuditPoolMetrics exposes the audit log connection pool statistics.
func RegisterAuditPoolMetrics(reg prometheus.Registerer, pool *pgxpool.Pool) {
	gauge := func(name, help string, fn func(*pgxpool.Stat) float64) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "provisioner_audit_pool_" + name,
			Help: help,
		}, func() float64 {
			return fn(pool.Stat())
		})
	}
	reg.MustRegister(
		gauge("acquired_conns", "Number of currently acquired audit DB connections",
			func(s *pgxpool.Stat) float64 { return float64(s.AcquiredConns()) }),
		gauge("idle_conns", "Number of idle audit DB connections",
			func(s *pgxpool.Stat) float64 { return float64(s.IdleConns()) }),
		gauge("total_conns", "Total number of audit DB connections",
			func(s *pgxpool.Stat) float64 { return float64(s.TotalConns()) }),
		gauge("max_conns", "Maximum number of audit DB connections",
			func(s *pgxpool.Stat) float64 { return float64(s.MaxConns()) }),
	)
}
