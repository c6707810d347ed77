package store

import (
	"waqf/internal/models"

	"github.com/shopspring/decimal"
)

func strPtr(s string) *string { return &s }

// Seed returns the endowment's holdings as recorded in the 2026 equity
// investment statement.
func Seed() []models.PortfolioEntry {
	return []models.PortfolioEntry{
		{
			ID:               "oqep_1",
			Ticker:           "OQEP",
			NameAR:           "أو كيو للإستكشاف والإنتاج",
			NameEN:           "OQ Exploration & Production",
			TransactionLabel: strPtr("الصفقة الأولى"),
			Shares:           decimal.NewFromInt(274000),
			PurchasePrice:    decimal.RequireFromString("0.390"),
			InvestedAmount:   decimal.RequireFromString("107000.0"),
			MSXSymbol:        strPtr("OQEP"),
		},
		{
			ID:             "ishraq",
			Ticker:         "ISHRAQ_WAQF",
			NameAR:         "صندوق إشراق الوقفي",
			NameEN:         "Ishraq Waqf Fund",
			Shares:         decimal.NewFromInt(100000),
			PurchasePrice:  decimal.RequireFromString("1.020"),
			InvestedAmount: decimal.RequireFromString("100000.0"),
			// fund units are not listed separately
			Pending: true,
		},
		{
			ID:             "oqpi",
			Ticker:         "OQPI",
			NameAR:         "أو كيو للصناعات الأساسية",
			NameEN:         "OQ Base Industries",
			Shares:         decimal.NewFromInt(148219),
			PurchasePrice:  decimal.RequireFromString("0.100"),
			InvestedAmount: decimal.RequireFromString("14877.0"),
			MSXSymbol:      strPtr("OQPI"),
		},
		{
			ID:               "oqep_2",
			Ticker:           "OQEP",
			NameAR:           "أو كيو للإستكشاف والإنتاج",
			NameEN:           "OQ Exploration & Production",
			TransactionLabel: strPtr("الصفقة الثانية"),
			Shares:           decimal.NewFromInt(73259),
			PurchasePrice:    decimal.RequireFromString("0.341"),
			InvestedAmount:   decimal.RequireFromString("24999.597"),
			MSXSymbol:        strPtr("OQEP"),
		},
	}
}
