package console

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatUSD(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{decimal.NewFromFloat(1234.5), "$1,234.50"},
		{decimal.NewFromFloat(0.5), "$0.50"},
		{"9.99", "$9.99"},
		{"1000000", "$1,000,000.00"},
		{10, "$10.00"},
		{"", "$0.00"},
		{"junk", "$0.00"},
		{nil, "$0.00"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatUSD(tc.in), "input %#v", tc.in)
	}
}

func TestFormatDate_OrdinalDays(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2024, time.March, d, 12, 0, 0, 0, time.UTC)
	}

	assert.Equal(t, "March 1st, 2024", FormatDate(day(1)))
	assert.Equal(t, "March 2nd, 2024", FormatDate(day(2)))
	assert.Equal(t, "March 3rd, 2024", FormatDate(day(3)))
	assert.Equal(t, "March 4th, 2024", FormatDate(day(4)))
	assert.Equal(t, "March 11th, 2024", FormatDate(day(11)))
	assert.Equal(t, "March 12th, 2024", FormatDate(day(12)))
	assert.Equal(t, "March 13th, 2024", FormatDate(day(13)))
	assert.Equal(t, "March 21st, 2024", FormatDate(day(21)))
	assert.Equal(t, "March 22nd, 2024", FormatDate(day(22)))
	assert.Equal(t, "March 23rd, 2024", FormatDate(day(23)))
	assert.Equal(t, "March 31st, 2024", FormatDate(day(31)))
}

func TestColumnFormat(t *testing.T) {
	date := Column{Key: "created_at", Kind: ColDate}
	money := Column{Key: "price", Kind: ColMoney}
	flag := Column{Key: "is_paid", Kind: ColBool}
	text := Column{Key: "name", Kind: ColText}

	assert.Equal(t, "January 2nd, 2006", date.Format(time.Date(2006, 1, 2, 15, 4, 5, 0, time.UTC)))
	assert.Equal(t, "already formatted", date.Format("already formatted"))
	assert.Equal(t, "$19.99", money.Format(decimal.NewFromFloat(19.99)))
	assert.Equal(t, "true", flag.Format(true))
	assert.Equal(t, "false", flag.Format(false))
	assert.Equal(t, "Mug", text.Format("Mug"))
}
