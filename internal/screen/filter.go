package screen

import (
	"fmt"

	"github.com/wonny/kscreener/internal/risk"
)

// Market selects the exchange universe
type Market string

const (
	MarketAll    Market = "ALL"
	MarketKOSPI  Market = "KOSPI"
	MarketKOSDAQ Market = "KOSDAQ"
)

// SortKey selects the ranking order
type SortKey string

const (
	SortByValue    SortKey = "value"    // 거래대금
	SortByWeighted SortKey = "weighted" // 거래대금+등락률 가중
)

// FilterState is the single source of truth for screening criteria.
// Numeric bounds are optional; nil means "not set" and the field is
// omitted from the outbound query.
type FilterState struct {
	Market Market `json:"market"`

	MinValue     *float64 `json:"min_value,omitempty"` // 거래대금 하한 (억원)
	MinChangePct *float64 `json:"min_chg_pct,omitempty"`
	MaxChangePct *float64 `json:"max_chg_pct,omitempty"`
	MinPrice     *int64   `json:"min_price,omitempty"`
	MaxPrice     *int64   `json:"max_price,omitempty"`

	SortKey SortKey `json:"sort_by"`

	Risk risk.Params `json:"risk"`
}

// DefaultFilters returns the initial filter state: all markets, sorted by
// traded value, default risk fractions, account size unset.
func DefaultFilters() FilterState {
	return FilterState{
		Market:  MarketAll,
		SortKey: SortByValue,
		Risk: risk.Params{
			RiskFraction: 0.01,
			StopFraction: 0.03,
			CapFraction:  0.10,
		},
	}
}

// Validate rejects inconsistent filter states before any query is built.
// Bound ordering is checked here rather than inside the types themselves.
func (f FilterState) Validate() error {
	switch f.Market {
	case MarketAll, MarketKOSPI, MarketKOSDAQ:
	default:
		return fmt.Errorf("invalid market: %q", f.Market)
	}

	switch f.SortKey {
	case SortByValue, SortByWeighted:
	default:
		return fmt.Errorf("invalid sort key: %q", f.SortKey)
	}

	if f.MinChangePct != nil && f.MaxChangePct != nil && *f.MinChangePct > *f.MaxChangePct {
		return fmt.Errorf("min_chg_pct (%v) exceeds max_chg_pct (%v)", *f.MinChangePct, *f.MaxChangePct)
	}

	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return fmt.Errorf("min_price (%d) exceeds max_price (%d)", *f.MinPrice, *f.MaxPrice)
	}

	for name, frac := range map[string]float64{
		"risk_pct": f.Risk.RiskFraction,
		"stop_pct": f.Risk.StopFraction,
		"cap_pct":  f.Risk.CapFraction,
	} {
		if frac < 0 || frac > 1 {
			return fmt.Errorf("%s must be within [0,1], got %v", name, frac)
		}
	}

	return nil
}

// RiskViewEnabled reports whether sizing columns should be shown at all
func (f FilterState) RiskViewEnabled() bool {
	return f.Risk.Enabled()
}
