package commands

import (
	"github.com/spf13/cobra"

	"github.com/wonny/kscreener/internal/screen"
)

// filterFlags collects the screening criteria shared by top and watch
type filterFlags struct {
	market   string
	sortBy   string
	minValue float64
	minChg   float64
	maxChg   float64
	minPrice int64
	maxPrice int64

	account int64
	riskPct float64
	stopPct float64
	capPct  float64
}

// register binds the flag set to a command
func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.market, "market", "ALL", "시장 (ALL|KOSPI|KOSDAQ)")
	cmd.Flags().StringVar(&f.sortBy, "sort", "value", "정렬 기준 (value|weighted)")
	cmd.Flags().Float64Var(&f.minValue, "min-value", 0, "거래대금 하한 (억원)")
	cmd.Flags().Float64Var(&f.minChg, "min-chg", 0, "등락률 하한 (%)")
	cmd.Flags().Float64Var(&f.maxChg, "max-chg", 0, "등락률 상한 (%)")
	cmd.Flags().Int64Var(&f.minPrice, "min-price", 0, "가격 하한 (원)")
	cmd.Flags().Int64Var(&f.maxPrice, "max-price", 0, "가격 상한 (원)")

	cmd.Flags().Int64Var(&f.account, "account", 0, "계좌금액 (원), 설정 시 사이징 표시")
	cmd.Flags().Float64Var(&f.riskPct, "risk", 0.01, "1회 최대 손실률")
	cmd.Flags().Float64Var(&f.stopPct, "stop", 0.03, "손절폭")
	cmd.Flags().Float64Var(&f.capPct, "cap", 0.10, "종목당 최대 비중")
}

// toFilterState builds a validated-ready filter state. Unset bounds stay
// nil so the outbound query omits them.
func (f *filterFlags) toFilterState(cmd *cobra.Command) screen.FilterState {
	state := screen.DefaultFilters()
	state.Market = screen.Market(f.market)
	state.SortKey = screen.SortKey(f.sortBy)

	flags := cmd.Flags()
	if flags.Changed("min-value") {
		state.MinValue = &f.minValue
	}
	if flags.Changed("min-chg") {
		state.MinChangePct = &f.minChg
	}
	if flags.Changed("max-chg") {
		state.MaxChangePct = &f.maxChg
	}
	if flags.Changed("min-price") {
		state.MinPrice = &f.minPrice
	}
	if flags.Changed("max-price") {
		state.MaxPrice = &f.maxPrice
	}

	state.Risk.AccountSize = f.account
	state.Risk.RiskFraction = f.riskPct
	state.Risk.StopFraction = f.stopPct
	state.Risk.CapFraction = f.capPct

	return state
}
