package valuation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/discord7/stocky/src/model"
)

// ReconcileCostBasis computes the position's total cost basis. When the broker
// supplied an explicit aggregate total and the row has shares, the per-share
// average price is overridden to explicitTotal/shares — the aggregate figure
// wins over a possibly-rounded per-share one — and the basis recomputed from
// it. Cash rows keep their fixed price of 1.
func ReconcileCostBasis(p *model.Position, explicitTotal *float64) {
	shares := decimal.NewFromFloat(p.Shares)

	if !p.IsCash() && explicitTotal != nil && p.Shares > 0 {
		total := decimal.NewFromFloat(*explicitTotal)
		p.AvgPrice = total.Div(shares).InexactFloat64()
	}

	p.CostBasisTotal = shares.Mul(decimal.NewFromFloat(p.AvgPrice)).InexactFloat64()
}

// Finalize derives market value and gain metrics from an enriched position.
// GainPercent is 0 whenever the basis is not strictly positive, never a
// division by zero or a negative-basis distortion.
func Finalize(p *model.Position, asOf time.Time) {
	shares := decimal.NewFromFloat(p.Shares)
	market := shares.Mul(decimal.NewFromFloat(p.CurrentPrice))
	basis := decimal.NewFromFloat(p.CostBasisTotal)
	gain := market.Sub(basis)

	p.MarketValue = market.InexactFloat64()
	p.GainDollar = gain.InexactFloat64()

	if basis.IsPositive() {
		p.GainPercent = gain.Div(basis).InexactFloat64()
	} else {
		p.GainPercent = 0
	}

	p.PriceLastUpdated = asOf
}
