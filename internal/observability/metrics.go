// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Trading metrics
	TradesExecuted  *prometheus.CounterVec
	TradesRejected  *prometheus.CounterVec
	TradeVolume     *prometheus.CounterVec
	TradingFeesPaid prometheus.Counter
	RugPullsTotal   *prometheus.CounterVec

	// Token metrics
	TokensCreated prometheus.Counter
	ActiveTokens  prometheus.Gauge
	RuggedTokens  prometheus.Gauge

	// Simulator metrics
	MarketTicks       prometheus.Counter
	SpecialEvents     *prometheus.CounterVec
	RegimeChanges     prometheus.Counter
	SyntheticTrades   prometheus.Counter
	PricePointsStored prometheus.Counter

	// Bot metrics
	BotTrades      *prometheus.CounterVec
	BotTradeErrors prometheus.Counter
	BotsActive     prometheus.Gauge

	// Notification metrics
	EventsPublished *prometheus.CounterVec
	WSClients       prometheus.Gauge

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "meme_market_sim"
	}

	return &Metrics{
		// Trading metrics
		TradesExecuted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "trades_executed_total",
			Help:      "Total number of executed trades by type",
		}, []string{"type"}),
		TradesRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "trades_rejected_total",
			Help:      "Total number of rejected trades by reason",
		}, []string{"reason"}),
		TradeVolume: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "trade_volume_cash_total",
			Help:      "Cumulative cash volume traded by type",
		}, []string{"type"}),
		TradingFeesPaid: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "trading_fees_total",
			Help:      "Cumulative trading fees retained by pools",
		}),
		RugPullsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "rug_pulls_total",
			Help:      "Total number of rug pulls by trigger",
		}, []string{"trigger"}),

		// Token metrics
		TokensCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tokens",
			Name:      "created_total",
			Help:      "Total number of tokens minted",
		}),
		ActiveTokens: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "tokens",
			Name:      "active",
			Help:      "Current number of tradable tokens",
		}),
		RuggedTokens: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "tokens",
			Name:      "rugged",
			Help:      "Current number of rugged tokens",
		}),

		// Simulator metrics
		MarketTicks: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulator",
			Name:      "market_ticks_total",
			Help:      "Total number of market drift ticks",
		}),
		SpecialEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulator",
			Name:      "special_events_total",
			Help:      "Total number of special market events by kind",
		}, []string{"kind"}),
		RegimeChanges: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulator",
			Name:      "regime_changes_total",
			Help:      "Total number of market regime re-rolls",
		}),
		SyntheticTrades: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulator",
			Name:      "synthetic_trades_total",
			Help:      "Total number of ambient synthetic trades generated",
		}),
		PricePointsStored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulator",
			Name:      "price_points_stored_total",
			Help:      "Total number of price history points stored",
		}),

		// Bot metrics
		BotTrades: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bots",
			Name:      "trades_total",
			Help:      "Total number of bot trades by personality and direction",
		}, []string{"personality", "direction"}),
		BotTradeErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bots",
			Name:      "trade_errors_total",
			Help:      "Total number of failed bot trade attempts",
		}),
		BotsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "bots",
			Name:      "active",
			Help:      "Current number of running trading bots",
		}),

		// Notification metrics
		EventsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "events_published_total",
			Help:      "Total number of events published by kind",
		}, []string{"kind"}),
		WSClients: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "ws_clients",
			Help:      "Current number of connected WebSocket clients",
		}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordTrade records an executed trade.
func RecordTrade(tradeType string, cashAmount, fee float64) {
	DefaultMetrics.TradesExecuted.WithLabelValues(tradeType).Inc()
	DefaultMetrics.TradeVolume.WithLabelValues(tradeType).Add(cashAmount)
	DefaultMetrics.TradingFeesPaid.Add(fee)
}

// RecordRejectedTrade records a trade rejected during validation.
func RecordRejectedTrade(reason string) {
	DefaultMetrics.TradesRejected.WithLabelValues(reason).Inc()
}

// RecordRugPull records a rug pull by trigger ("manual", "detected" or "forced").
func RecordRugPull(trigger string) {
	DefaultMetrics.RugPullsTotal.WithLabelValues(trigger).Inc()
}

// RecordBotTrade records a bot trade by personality.
func RecordBotTrade(personality, direction string) {
	DefaultMetrics.BotTrades.WithLabelValues(personality, direction).Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordEventPublished records a notification event by kind.
func RecordEventPublished(kind string) {
	DefaultMetrics.EventsPublished.WithLabelValues(kind).Inc()
}
