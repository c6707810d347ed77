package service

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// PriceResolver finds a live price for an exchange symbol. ok is false when
// no source produced one, which is a normal outcome rather than an error.
type PriceResolver interface {
	Resolve(ctx context.Context, ticker string) (decimal.Decimal, bool)
}

// Resolver walks an ordered list of strategies and stops at the first one
// that yields a positive price.
type Resolver struct {
	strategies []Strategy
	log        *logrus.Logger
}

func NewResolver(log *logrus.Logger, strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies, log: log}
}

func (r *Resolver) Resolve(ctx context.Context, ticker string) (decimal.Decimal, bool) {
	for _, s := range r.strategies {
		if p, ok := r.attempt(ctx, s, ticker); ok {
			r.log.Infof("got price for %s from %s: %s", ticker, s.Name, p)
			return p, true
		}
	}
	r.log.Infof("no live price for %s", ticker)
	return decimal.Zero, false
}

func (r *Resolver) attempt(ctx context.Context, s Strategy, ticker string) (p decimal.Decimal, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Warnf("%s stage panicked for %s: %v", s.Name, ticker, rec)
			p, ok = decimal.Zero, false
		}
	}()
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	p, ok = s.Price(ctx, ticker)
	if ok && !p.IsPositive() {
		return decimal.Zero, false
	}
	return p, ok
}
