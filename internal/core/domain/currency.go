package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencyProfile describes one supported currency: its denomination ladder
// (descending, in minor units) and the number of fractional decimal places.
type CurrencyProfile struct {
	Code          string  `json:"code"`
	CountryCode   string  `json:"country_code"`
	Symbol        string  `json:"symbol"`
	DecimalPlaces int32   `json:"decimal_places"`
	Denominations []int64 `json:"denominations"` // minor units, descending, unique
}

// ToMinorUnits converts a decimal amount to minor units, rounding half-up
// at the currency's decimal precision. This is the single place where
// rounding happens; all arithmetic downstream is exact integer math.
func (p *CurrencyProfile) ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Round(p.DecimalPlaces).Shift(p.DecimalPlaces).IntPart()
}

// FromMinorUnits converts minor units back to a decimal amount.
func (p *CurrencyProfile) FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -p.DecimalPlaces)
}

// HasDenomination reports whether a minor-unit face value is on the ladder.
func (p *CurrencyProfile) HasDenomination(denomination int64) bool {
	for _, d := range p.Denominations {
		if d == denomination {
			return true
		}
	}
	return false
}

// LadderDescending returns the denomination ladder largest-first.
func (p *CurrencyProfile) LadderDescending() []int64 {
	out := make([]int64, len(p.Denominations))
	copy(out, p.Denominations)
	return out
}

// LadderAscending returns the denomination ladder smallest-first.
func (p *CurrencyProfile) LadderAscending() []int64 {
	n := len(p.Denominations)
	out := make([]int64, n)
	for i, d := range p.Denominations {
		out[n-1-i] = d
	}
	return out
}

// CurrencyTable is an immutable registry of supported currencies.
// It is built once at startup and injected; lookups are case-insensitive.
type CurrencyTable struct {
	profiles map[string]*CurrencyProfile
}

// NewCurrencyTable builds a table from the given profiles.
func NewCurrencyTable(profiles ...*CurrencyProfile) *CurrencyTable {
	m := make(map[string]*CurrencyProfile, len(profiles))
	for _, p := range profiles {
		m[strings.ToUpper(p.Code)] = p
	}
	return &CurrencyTable{profiles: m}
}

// Lookup resolves a currency code to its profile.
func (t *CurrencyTable) Lookup(code string) (*CurrencyProfile, bool) {
	p, ok := t.profiles[strings.ToUpper(code)]
	return p, ok
}

// Codes returns the supported currency codes.
func (t *CurrencyTable) Codes() []string {
	codes := make([]string, 0, len(t.profiles))
	for code := range t.profiles {
		codes = append(codes, code)
	}
	return codes
}

// DefaultCurrencyTable returns the built-in currency registry.
// Ladders cover the physical bills and coins a traveler actually carries.
func DefaultCurrencyTable() *CurrencyTable {
	return NewCurrencyTable(
		&CurrencyProfile{
			Code:          "USD",
			CountryCode:   "US",
			Symbol:        "$",
			DecimalPlaces: 2,
			Denominations: []int64{10000, 5000, 2000, 1000, 500, 100, 25, 10, 5, 1},
		},
		&CurrencyProfile{
			Code:          "CNY",
			CountryCode:   "CN",
			Symbol:        "¥",
			DecimalPlaces: 2,
			Denominations: []int64{10000, 5000, 2000, 1000, 500, 100, 50, 10, 5, 1},
		},
		&CurrencyProfile{
			Code:          "JPY",
			CountryCode:   "JP",
			Symbol:        "¥",
			DecimalPlaces: 0,
			Denominations: []int64{10000, 5000, 2000, 1000, 500, 100, 50, 10, 5, 1},
		},
		&CurrencyProfile{
			Code:          "KRW",
			CountryCode:   "KR",
			Symbol:        "₩",
			DecimalPlaces: 0,
			Denominations: []int64{50000, 10000, 5000, 1000, 500, 100, 50, 10},
		},
	)
}
