package instrument

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Convention carries the per-instrument display and profit conventions: how
// many fractional digits a price is quoted with, and the factor that turns a
// price difference into pips (points for metals).
type Convention struct {
	Precision     int32
	PipMultiplier decimal.Decimal
}

var (
	jpyConvention     = Convention{Precision: 3, PipMultiplier: decimal.NewFromInt(100)}
	metalConvention   = Convention{Precision: 2, PipMultiplier: decimal.NewFromInt(10)}
	defaultConvention = Convention{Precision: 5, PipMultiplier: decimal.NewFromInt(10000)}
)

var metalMarkers = []string{"XAU", "GOLD", "XAG", "SILVER"}

// Resolve maps a ticker to its convention by substring match on the
// upper-cased symbol, first match wins. Unknown tickers take the 5-digit
// forex default; there is no error case.
func Resolve(ticker string) Convention {
	symbol := strings.ToUpper(ticker)
	if strings.Contains(symbol, "JPY") {
		return jpyConvention
	}
	for _, marker := range metalMarkers {
		if strings.Contains(symbol, marker) {
			return metalConvention
		}
	}
	return defaultConvention
}

// RoundPrice rounds a price to the convention's quoting precision.
func (c Convention) RoundPrice(price decimal.Decimal) decimal.Decimal {
	return price.Round(c.Precision)
}

// FormatPrice renders a price with the convention's fixed number of
// fractional digits, as shown in channel messages and the CSV mirror.
func (c Convention) FormatPrice(price decimal.Decimal) string {
	return price.StringFixed(c.Precision)
}

// Pips converts a directional price difference into pips, rounded to one
// decimal place.
func (c Convention) Pips(diff decimal.Decimal) decimal.Decimal {
	return diff.Mul(c.PipMultiplier).Round(1)
}
