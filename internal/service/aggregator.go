package service

import (
	"context"
	"fmt"

	"waqf/internal/models"
	"waqf/internal/store"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Aggregator prices the whole portfolio. Nothing is cached between calls:
// every call resolves prices from scratch.
type Aggregator struct {
	store  *store.Store
	prices PriceResolver
	log    *logrus.Logger
}

func NewAggregator(s *store.Store, p PriceResolver, log *logrus.Logger) *Aggregator {
	return &Aggregator{store: s, prices: p, log: log}
}

// Aggregate resolves every active symbol concurrently, derives all positions
// and the portfolio summary. An error means a defect, not a missing price.
func (a *Aggregator) Aggregate(ctx context.Context) (*models.Portfolio, error) {
	prices, err := a.resolveAll(ctx, a.store.ActiveSymbols())
	if err != nil {
		return nil, fmt.Errorf("aggregate portfolio: %w", err)
	}

	entries := a.store.All()
	positions := make([]models.DerivedPosition, 0, len(entries))
	for _, e := range entries {
		positions = append(positions, Calculate(e, priceFor(e, prices)))
	}
	return &models.Portfolio{Positions: positions, Summary: Summarize(positions)}, nil
}

// Position derives a single entry. Unknown ids return store.ErrNotFound.
func (a *Aggregator) Position(ctx context.Context, id string) (models.DerivedPosition, error) {
	e, err := a.store.Get(id)
	if err != nil {
		return models.DerivedPosition{}, err
	}
	var price decimal.NullDecimal
	if sym := e.Symbol(); !e.Pending && sym != "" {
		if p, ok := a.prices.Resolve(context.WithoutCancel(ctx), sym); ok {
			price = decimal.NullDecimal{Decimal: p, Valid: true}
		}
	}
	return Calculate(e, price), nil
}

// Prices resolves every active symbol. Symbols without a price map to an
// invalid NullDecimal.
func (a *Aggregator) Prices(ctx context.Context) ([]string, map[string]decimal.NullDecimal, error) {
	symbols := a.store.ActiveSymbols()
	prices, err := a.resolveAll(ctx, symbols)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve prices: %w", err)
	}
	return symbols, prices, nil
}

// resolveAll fans out one resolution per symbol. The caller's cancellation is
// dropped so an abandoned request does not cut short sibling fetches; each
// stage's own timeout still bounds them.
func (a *Aggregator) resolveAll(ctx context.Context, symbols []string) (map[string]decimal.NullDecimal, error) {
	ctx = context.WithoutCancel(ctx)
	results := make([]decimal.NullDecimal, len(symbols))

	var g errgroup.Group
	for i, sym := range symbols {
		i, sym := i, sym
		g.Go(func() (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					err = fmt.Errorf("resolve %s: panic: %v", sym, rec)
				}
			}()
			if p, ok := a.prices.Resolve(ctx, sym); ok {
				results[i] = decimal.NullDecimal{Decimal: p, Valid: true}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := make(map[string]decimal.NullDecimal, len(symbols))
	for i, sym := range symbols {
		res[sym] = results[i]
	}
	return res, nil
}

func priceFor(e models.PortfolioEntry, prices map[string]decimal.NullDecimal) decimal.NullDecimal {
	sym := e.Symbol()
	if e.Pending || sym == "" {
		return decimal.NullDecimal{}
	}
	return prices[sym]
}
