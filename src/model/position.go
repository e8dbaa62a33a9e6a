package model

import "time"

// CashTicker is the sentinel ticker for cash-equivalent rows (money market
// sweeps and similar). Cash positions carry the balance in Shares and a fixed
// average price of 1.
const CashTicker = "CASH"

// Position is one fully valued holding row belonging to exactly one Upload.
type Position struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	UploadID uint    `gorm:"index;not null" json:"upload_id"`
	Ticker   string  `gorm:"size:20;not null" json:"ticker"`
	Shares   float64 `json:"shares"`
	AvgPrice float64 `json:"avg_price"`

	AccountType string `gorm:"size:100" json:"account_type,omitempty"`
	Tag         string `gorm:"size:50" json:"tag,omitempty"`
	Notes       string `gorm:"size:200" json:"notes,omitempty"`

	CostBasisTotal float64 `json:"cost_basis_total"`
	CurrentPrice   float64 `json:"current_price"`
	MarketValue    float64 `json:"market_value"`
	GainDollar     float64 `json:"gain_dollar"`
	GainPercent    float64 `json:"gain_percent"`

	// Optional quote metrics, null when the provider had nothing for us.
	DividendYield *float64 `json:"dividend_yield"`
	PERatio       *float64 `json:"pe_ratio"`

	PriceLastUpdated time.Time `json:"price_last_updated"`
}

// IsCash reports whether the position is a cash-equivalent row.
func (p *Position) IsCash() bool {
	return p.Ticker == CashTicker
}

// TableName allows you to control the exact table name for positions.
func (Position) TableName() string {
	return "positions"
}
