package metrics

import (
	"math/big"

	"github.com/prometheus/client_golang/prometheus"

	"ammScope/internal/amm"
)

// Metrics holds the Prometheus metrics for a replayed pool.
type Metrics struct {
	operationsTotal *prometheus.CounterVec
	reserve         *prometheus.GaugeVec
	shareSupply     prometheus.Gauge
}

// NewMetrics creates and registers the pool metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "amm_operations_total",
			Help: "Total number of operations applied, labeled by operation and result.",
		}, []string{"op", "result"}),
		reserve: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "amm_reserve",
			Help: "Pool reserve in base units after the latest event, labeled by asset side.",
		}, []string{"asset"}),
		shareSupply: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "amm_share_supply",
			Help: "Total pool share supply including locked shares.",
		}),
	}
	reg.MustRegister(m.operationsTotal, m.reserve, m.shareSupply)
	return m
}

func (m *Metrics) ObserveOperation(op, result string) {
	m.operationsTotal.WithLabelValues(op, result).Inc()
}

// ObserveState records reserves and supply. Values above 2^53 lose precision.
func (m *Metrics) ObserveState(state amm.State) {
	m.reserve.WithLabelValues("a").Set(toFloat(state.ReserveA))
	m.reserve.WithLabelValues("b").Set(toFloat(state.ReserveB))
	m.shareSupply.Set(toFloat(state.TotalSupply))
}

func toFloat(v *big.Int) float64 {
	if v == nil {
		return 0
	}
	f, _ := new(big.Float).SetInt(v).Float64()
	return f
}
