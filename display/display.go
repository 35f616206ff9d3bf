package display

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"go-fx-wallet"
	"go-fx-wallet/exchange"
)

// Unavailable is shown instead of a value when a holding could not be converted
const Unavailable = "unavailable"

// Line one rendered holding
type Line struct {
	// Holding the money as held
	Holding wallet.Money

	// Converted the holding in the display currency, valid only when Err is nil
	Converted wallet.Money

	// Err why the holding could not be converted
	Err error
}

// Available reports whether the holding was converted
func (l Line) Available() bool {
	return l.Err == nil
}

// Format renders the line as "CURRENCY : value", with value rounded to precision decimal places.
// An unavailable line, or one whose value is not finite, names the currency of the holding instead.
func (l Line) Format(precision int32) string {
	f := float64(l.Converted.Value())
	if !l.Available() || math.IsInf(f, 0) || math.IsNaN(f) {
		return fmt.Sprintf("%v : %v", l.Holding.Currency(), Unavailable)
	}
	value := decimal.NewFromFloat(f).StringFixed(precision)
	return fmt.Sprintf("%v : %v", l.Converted.Currency(), value)
}

// Render converts every holding into currency to. A holding that cannot be converted yields an
// unavailable line and does not affect the others.
func Render(ctx context.Context, converter exchange.Service, holdings []wallet.Money, to wallet.Currency) []Line {
	lines := make([]Line, 0, len(holdings))
	for _, holding := range holdings {
		converted, err := converter.Convert(ctx, holding, to)
		lines = append(lines, Line{Holding: holding, Converted: converted, Err: err})
	}
	return lines
}

// Format renders lines, one per row
func Format(lines []Line, precision int32) string {
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(line.Format(precision))
		sb.WriteString("\n")
	}
	return sb.String()
}
