package service

import (
	"waqf/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Calculate derives market value, profit and ROI for e at livePrice. Without
// a usable price the position is reported at break-even: market value equals
// the invested amount and every profit figure is zero.
//
// Each figure is rounded before it feeds the next one; per-share profit is
// rounded to 4 places before being multiplied by the share count.
func Calculate(e models.PortfolioEntry, livePrice decimal.NullDecimal) models.DerivedPosition {
	if e.Pending || !livePrice.Valid {
		return models.DerivedPosition{
			PortfolioEntry: e,
			MarketValue:    e.InvestedAmount,
			Profit:         decimal.Zero,
			ProfitPerShare: decimal.Zero,
			ROIPercent:     decimal.Zero,
			IsPending:      true,
		}
	}

	p := livePrice.Decimal
	perShare := p.Sub(e.PurchasePrice).Round(4)
	profit := perShare.Mul(e.Shares).Round(3)
	marketValue := p.Mul(e.Shares).Round(3)

	return models.DerivedPosition{
		PortfolioEntry: e,
		LivePrice:      livePrice,
		MarketValue:    marketValue,
		Profit:         profit,
		ProfitPerShare: perShare,
		ROIPercent:     roi(profit, e.InvestedAmount),
	}
}

// Summarize rolls positions up into portfolio totals.
func Summarize(positions []models.DerivedPosition) models.PortfolioSummary {
	invested, profit, marketValue := decimal.Zero, decimal.Zero, decimal.Zero
	for _, p := range positions {
		invested = invested.Add(p.InvestedAmount)
		profit = profit.Add(p.Profit)
		marketValue = marketValue.Add(p.MarketValue)
	}
	return models.PortfolioSummary{
		TotalInvestment:  invested.Round(2),
		TotalProfit:      profit.Round(3),
		TotalMarketValue: marketValue.Round(3),
		ROIPercent:       roi(profit, invested),
	}
}

// roi is zero for a zero cost basis.
func roi(profit, invested decimal.Decimal) decimal.Decimal {
	if invested.IsZero() {
		return decimal.Zero
	}
	return profit.Div(invested).Mul(hundred).Round(4)
}
