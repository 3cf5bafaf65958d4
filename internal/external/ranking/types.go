package ranking

import "time"

// Item is one row of the screening result as returned by the service.
// The risk fields are present only when the request carried risk
// parameters; they take display precedence over locally computed previews.
type Item struct {
	Rank      int     `json:"rank"`
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Market    string  `json:"market"`
	Price     int64   `json:"price"`
	ChangePct float64 `json:"chg_pct"`
	Value     int64   `json:"value"` // 거래대금 (원)

	StopPrice     *int64 `json:"stop_price,omitempty"`
	MaxShares     *int64 `json:"max_shares,omitempty"`
	MaxInvestment *int64 `json:"max_investment,omitempty"`
	RiskAmount    *int64 `json:"risk_amount,omitempty"`
}

// TopListResponse is the ranked-list payload, items ordered by rank ascending
type TopListResponse struct {
	AsOf  time.Time `json:"asof"`
	Items []Item    `json:"items"`
}

// Symbol is one symbol-search result
type Symbol struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Market string `json:"market"`
}

// Quote is a single-symbol quote lookup result
type Quote struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Market    string    `json:"market"`
	Price     int64     `json:"price"`
	ChangePct float64   `json:"chg_pct"`
	Volume    int64     `json:"volume"`
	Value     int64     `json:"value"`
	AsOf      time.Time `json:"asof"`
}
