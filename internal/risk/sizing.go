package risk

import "math"

// SizingPreview is a locally computed position size bound for one candidate.
// Server-computed risk fields, when present on a ranked item, take display
// precedence; this preview fills the gap before the round trip completes.
type SizingPreview struct {
	AllowedLoss   int64 `json:"allowed_loss"`   // 허용 손실금액 (원)
	StopPrice     int64 `json:"stop_price"`     // 손절가
	MaxShares     int64 `json:"max_shares"`     // 최대 주수
	MaxInvestment int64 `json:"max_investment"` // 최대 투자금액
}

// Params bound a single position by maximum tolerable loss and by a
// maximum capital fraction (Kelly-style cap).
type Params struct {
	AccountSize  int64   `json:"account_size"`  // 계좌금액 (원), 0 이하면 미설정
	RiskFraction float64 `json:"risk_fraction"` // 1회 최대 손실률 (예: 0.01)
	StopFraction float64 `json:"stop_fraction"` // 손절폭 (예: 0.03)
	CapFraction  float64 `json:"cap_fraction"`  // 종목당 최대 비중 (예: 0.10)
}

// Enabled reports whether sizing previews should be computed at all
func (p Params) Enabled() bool {
	return p.AccountSize > 0
}

// Compute derives the position size preview for one entry price.
// Returns (nil, false) when no preview applies: account size unset or the
// entry price is not a positive finite number.
func Compute(entryPrice int64, p Params) (*SizingPreview, bool) {
	if !p.Enabled() || entryPrice <= 0 {
		return nil, false
	}
	if !finiteFractions(p) {
		return nil, false
	}

	account := float64(p.AccountSize)
	price := float64(entryPrice)

	allowedLoss := account * p.RiskFraction

	stopPrice := price * (1 - p.StopFraction)
	if stopPrice < 0 {
		stopPrice = 0
	}

	// Loss per share if stopped out. Zero stop distance means the risk
	// bound never binds and the cap bound alone governs.
	riskPerShare := price * p.StopFraction

	maxSharesByRisk := math.Inf(1)
	if riskPerShare > 0 {
		maxSharesByRisk = math.Floor(allowedLoss / riskPerShare)
	}

	maxInvestmentByCap := account * p.CapFraction
	maxSharesByCap := math.Floor(maxInvestmentByCap / price)

	maxShares := math.Min(maxSharesByRisk, maxSharesByCap)
	if maxShares < 0 || math.IsInf(maxShares, 1) {
		maxShares = 0
	}

	return &SizingPreview{
		AllowedLoss:   int64(allowedLoss),
		StopPrice:     int64(stopPrice),
		MaxShares:     int64(maxShares),
		MaxInvestment: int64(maxShares) * entryPrice,
	}, true
}

func finiteFractions(p Params) bool {
	for _, f := range []float64{p.RiskFraction, p.StopFraction, p.CapFraction} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
