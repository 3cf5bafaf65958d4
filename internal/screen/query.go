package screen

import (
	"net/url"
	"strconv"
)

// QuerySpec is the normalized outbound query derived from a FilterState.
// It is immutable once built; Key() is the canonical form used for
// request deduplication.
type QuerySpec struct {
	values url.Values
}

// BuildQuery maps a filter state to its outbound query. Pure and
// deterministic: unset fields are omitted, and Market=ALL is omitted
// because the service defaults to all markets.
func BuildQuery(f FilterState) QuerySpec {
	v := url.Values{}

	if f.Market != MarketAll && f.Market != "" {
		v.Set("market", string(f.Market))
	}

	setFloat(v, "min_value", f.MinValue)
	setFloat(v, "min_chg_pct", f.MinChangePct)
	setFloat(v, "max_chg_pct", f.MaxChangePct)
	setInt(v, "min_price", f.MinPrice)
	setInt(v, "max_price", f.MaxPrice)

	if f.SortKey != "" {
		v.Set("sort_by", string(f.SortKey))
	}

	// Risk parameters travel only when an account size is set; the
	// fractions are plain decimals, not percentages.
	if f.Risk.Enabled() {
		v.Set("account_size", strconv.FormatInt(f.Risk.AccountSize, 10))
		v.Set("risk_pct", formatFraction(f.Risk.RiskFraction))
		v.Set("stop_pct", formatFraction(f.Risk.StopFraction))
		v.Set("cap_pct", formatFraction(f.Risk.CapFraction))
	}

	return QuerySpec{values: v}
}

// Values returns a copy of the query parameters
func (q QuerySpec) Values() url.Values {
	out := url.Values{}
	for k, vs := range q.values {
		for _, v := range vs {
			out.Add(k, v)
		}
	}
	return out
}

// Key returns the canonical encoded form. url.Values.Encode sorts by key,
// so structurally equal specs always produce equal keys.
func (q QuerySpec) Key() string {
	return q.values.Encode()
}

// Equal reports whether two specs describe the same request
func (q QuerySpec) Equal(other QuerySpec) bool {
	return q.Key() == other.Key()
}

func setFloat(v url.Values, key string, val *float64) {
	if val != nil {
		v.Set(key, strconv.FormatFloat(*val, 'f', -1, 64))
	}
}

func setInt(v url.Values, key string, val *int64) {
	if val != nil {
		v.Set(key, strconv.FormatInt(*val, 10))
	}
}

func formatFraction(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
