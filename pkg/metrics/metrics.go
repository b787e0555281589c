package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder — счётчики движка. Регистрируются в дефолтном реестре,
// отдаются через /metrics на админ-порту.
type Recorder struct {
	CandlesTotal   *prometheus.CounterVec // symbol
	SignalsTotal   *prometheus.CounterVec // symbol, action
	CoalescedTotal prometheus.Counter
	EvalDuration   prometheus.Histogram
	WSReconnects   prometheus.Counter
}

func NewRecorder() *Recorder {
	return &Recorder{
		CandlesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signal_bot_candles_total",
				Help: "Closed candles accepted into price windows",
			},
			[]string{"symbol"},
		),
		SignalsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signal_bot_signals_total",
				Help: "Aggregated signals emitted",
			},
			[]string{"symbol", "action"},
		),
		CoalescedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "signal_bot_candles_coalesced_total",
			Help: "Candles dropped in favor of a newer one when a pipeline lagged",
		}),
		EvalDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "signal_bot_evaluation_duration_seconds",
			Help:    "Full pipeline cycle: store update, strategies, aggregation",
			Buckets: prometheus.DefBuckets,
		}),
		WSReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Name: "signal_bot_ws_reconnects_total",
			Help: "Websocket reconnection attempts",
		}),
	}
}
