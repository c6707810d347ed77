package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Watcher periodically prices the portfolio and logs the result. It keeps
// nothing between ticks.
type Watcher struct {
	agg *Aggregator
	log *logrus.Logger
}

func NewWatcher(agg *Aggregator, log *logrus.Logger) *Watcher {
	return &Watcher{agg: agg, log: log}
}

func (w *Watcher) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		w.log.Info("price watcher disabled")
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				w.log.Info("price watcher stopping")
				return
			case <-ticker.C:
				w.snapshot(ctx)
			}
		}
	}()
}

func (w *Watcher) snapshot(ctx context.Context) {
	p, err := w.agg.Aggregate(ctx)
	if err != nil {
		w.log.Warnf("portfolio snapshot failed: %v", err)
		return
	}
	priced := 0
	for _, pos := range p.Positions {
		if !pos.IsPending {
			priced++
		}
	}
	w.log.WithFields(logrus.Fields{
		"priced":       priced,
		"positions":    len(p.Positions),
		"market_value": p.Summary.TotalMarketValue.StringFixed(3),
		"profit":       p.Summary.TotalProfit.StringFixed(3),
		"roi_percent":  p.Summary.ROIPercent.StringFixed(4),
	}).Info("portfolio snapshot")
}
