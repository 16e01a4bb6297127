package console

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var usdPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatUSD renders a price as en-US currency, e.g. "$1,234.56".
// Accepts decimal.Decimal, numeric types or numeric strings.
func FormatUSD(v any) string {
	var d decimal.Decimal
	switch t := v.(type) {
	case decimal.Decimal:
		d = t
	case *decimal.Decimal:
		if t == nil {
			return "$0.00"
		}
		d = *t
	default:
		parsed, err := decimal.NewFromString(cast.ToString(v))
		if err != nil {
			return "$0.00"
		}
		d = parsed
	}
	f, _ := d.Float64()
	return usdPrinter.Sprintf("$%v", number.Decimal(f,
		number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

func ordinalSuffix(day int) string {
	if day%100 >= 11 && day%100 <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// FormatDate renders a timestamp like "January 2nd, 2006".
func FormatDate(t time.Time) string {
	day := t.Day()
	return fmt.Sprintf("%s %d%s, %d", t.Month().String(), day, ordinalSuffix(day), t.Year())
}
