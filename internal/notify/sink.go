// Package notify carries fire-and-forget market events from the engine and
// simulator to whoever is watching (UI layer, websocket clients, logs).
// Delivery is best effort; a slow or broken sink never blocks a trade.
package notify

import (
	"log"

	"meme-market-sim/internal/domain"
)

// Sink receives market events. Implementations must not block.
type Sink interface {
	BigTrade(e domain.BigTradeEvent)
	RugPull(e domain.RugPullEvent)
	PriceAlert(e domain.PriceAlertEvent)
	WhaleAlert(e domain.WhaleAlertEvent)
}

// NopSink discards everything. Useful default and test double.
type NopSink struct{}

func (NopSink) BigTrade(domain.BigTradeEvent)     {}
func (NopSink) RugPull(domain.RugPullEvent)       {}
func (NopSink) PriceAlert(domain.PriceAlertEvent) {}
func (NopSink) WhaleAlert(domain.WhaleAlertEvent) {}

var _ Sink = NopSink{}

// LoggerSink writes events to an injected logger.
type LoggerSink struct {
	logger *log.Logger
}

// NewLoggerSink creates a sink that logs every event.
func NewLoggerSink(logger *log.Logger) *LoggerSink {
	if logger == nil {
		logger = log.Default()
	}
	return &LoggerSink{logger: logger}
}

func (s *LoggerSink) BigTrade(e domain.BigTradeEvent) {
	s.logger.Printf("BIG TRADE: %s %.2f %s (%.2f cash)", e.Direction, e.TokenAmount, e.TokenSymbol, e.CashValue)
}

func (s *LoggerSink) RugPull(e domain.RugPullEvent) {
	s.logger.Printf("RUG PULL: %s (%s) crashed %.1f%%, %.2f cash gone", e.TokenSymbol, e.TokenName, e.CrashPercent, e.AmountLost)
}

func (s *LoggerSink) PriceAlert(e domain.PriceAlertEvent) {
	s.logger.Printf("PRICE ALERT: %s at %.8f (%+.1f%%)", e.TokenSymbol, e.NewPrice, e.ChangePercent)
}

func (s *LoggerSink) WhaleAlert(e domain.WhaleAlertEvent) {
	s.logger.Printf("WHALE ALERT: %.0f cash moved in %s (%s)", e.CashValue, e.TokenSymbol, e.Direction)
}

var _ Sink = (*LoggerSink)(nil)

// Fanout forwards every event to each of its sinks in order.
type Fanout []Sink

func (f Fanout) BigTrade(e domain.BigTradeEvent) {
	for _, s := range f {
		s.BigTrade(e)
	}
}

func (f Fanout) RugPull(e domain.RugPullEvent) {
	for _, s := range f {
		s.RugPull(e)
	}
}

func (f Fanout) PriceAlert(e domain.PriceAlertEvent) {
	for _, s := range f {
		s.PriceAlert(e)
	}
}

func (f Fanout) WhaleAlert(e domain.WhaleAlertEvent) {
	for _, s := range f {
		s.WhaleAlert(e)
	}
}

var _ Sink = Fanout(nil)
