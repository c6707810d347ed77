package models

import "github.com/shopspring/decimal"

// PortfolioEntry is one seeded holding. Entries are never mutated after startup.
type PortfolioEntry struct {
	ID               string          `json:"id"`
	Ticker           string          `json:"ticker"`
	NameAR           string          `json:"name_ar"`
	NameEN           string          `json:"name_en"`
	TransactionLabel *string         `json:"transaction_label"`
	Shares           decimal.Decimal `json:"shares"`
	PurchasePrice    decimal.Decimal `json:"purchase_price"`
	InvestedAmount   decimal.Decimal `json:"investment_value"`
	MSXSymbol        *string         `json:"msx_symbol"`
	Pending          bool            `json:"pending"`
}

// Symbol returns the exchange symbol, or "" when the entry is not listed.
func (e PortfolioEntry) Symbol() string {
	if e.MSXSymbol == nil {
		return ""
	}
	return *e.MSXSymbol
}

type DerivedPosition struct {
	PortfolioEntry
	LivePrice      decimal.NullDecimal `json:"live_price"`
	MarketValue    decimal.Decimal     `json:"market_value"`
	Profit         decimal.Decimal     `json:"profit"`
	ProfitPerShare decimal.Decimal     `json:"profit_per_share"`
	ROIPercent     decimal.Decimal     `json:"roi_percent"`
	IsPending      bool                `json:"is_pending"`
}

type PortfolioSummary struct {
	TotalInvestment  decimal.Decimal `json:"total_investment"`
	TotalProfit      decimal.Decimal `json:"total_profit"`
	TotalMarketValue decimal.Decimal `json:"total_market_value"`
	ROIPercent       decimal.Decimal `json:"roi_percent"`
}

type Portfolio struct {
	Positions []DerivedPosition `json:"positions"`
	Summary   PortfolioSummary  `json:"summary"`
}
