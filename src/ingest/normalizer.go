package ingest

import (
	"strconv"
	"strings"

	"github.com/discord7/stocky/src/model"
)

// Column names the broker export is expected to carry.
const (
	colSymbol         = "Symbol"
	colQuantity       = "Quantity"
	colAvgCostBasis   = "Average Cost Basis"
	colAccountName    = "Account Name"
	colDescription    = "Description"
	colCurrentValue   = "Current Value"
	colCostBasisTotal = "Cost Basis Total"
)

const maxNotesLen = 200

// Draft is a normalized but not yet priced position. CostBasisInput carries
// the broker's aggregate "Cost Basis Total" column when present, which the
// valuator treats as more authoritative than the per-share figure.
type Draft struct {
	Position       *model.Position
	CostBasisInput *float64
}

// Normalizer converts raw broker rows into canonical position drafts.
type Normalizer struct {
	cashPrefixes []string
}

func NewNormalizer(cashPrefixes []string) *Normalizer {
	prefixes := make([]string, 0, len(cashPrefixes))
	for _, p := range cashPrefixes {
		if p = strings.ToUpper(strings.TrimSpace(p)); p != "" {
			prefixes = append(prefixes, p)
		}
	}
	return &Normalizer{cashPrefixes: prefixes}
}

// Normalize returns the draft for one raw row, or nil when the row should be
// skipped (empty symbol, unparseable quantity). A skipped row is never an
// error; the caller counts it and moves on.
func (n *Normalizer) Normalize(row Row) *Draft {
	symbol := strings.TrimSpace(row[colSymbol])
	if symbol == "" {
		return nil
	}

	pos := &model.Position{
		AccountType: strings.TrimSpace(row[colAccountName]),
	}

	if desc := strings.TrimSpace(row[colDescription]); desc != "" {
		pos.Notes = truncate(desc, maxNotesLen)
	}

	if n.isCashSymbol(symbol) {
		// Cash sweep rows carry the balance in "Current Value", not a share
		// count, and are priced at a fixed 1.
		balance, err := parseAmount(row[colCurrentValue])
		if err != nil || balance < 0 {
			return nil
		}
		pos.Ticker = model.CashTicker
		pos.Shares = balance
		pos.AvgPrice = 1
		pos.Tag = "Cash"
		return &Draft{Position: pos}
	}

	quantity, err := parseAmount(row[colQuantity])
	if err != nil || quantity < 0 {
		return nil
	}

	pos.Ticker = strings.ToUpper(symbol)
	pos.Shares = quantity

	if avg, err := parseAmount(row[colAvgCostBasis]); err == nil {
		pos.AvgPrice = avg
	}

	draft := &Draft{Position: pos}
	if total, err := parseAmount(row[colCostBasisTotal]); err == nil {
		draft.CostBasisInput = &total
	}
	return draft
}

func (n *Normalizer) isCashSymbol(symbol string) bool {
	upper := strings.ToUpper(symbol)
	for _, prefix := range n.cashPrefixes {
		if strings.HasPrefix(upper, prefix) {
			return true
		}
	}
	return false
}

// parseAmount parses a numeric broker field, tolerating a leading currency
// symbol and thousands separators ("$1,234.56").
func parseAmount(raw string) (float64, error) {
	cleaned := strings.TrimSpace(strings.NewReplacer("$", "", ",", "").Replace(raw))
	return strconv.ParseFloat(cleaned, 64)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
