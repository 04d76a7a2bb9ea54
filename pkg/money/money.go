package money

import (
	"fmt"
	"strconv"
	"strings"
)

// Cents is an exact fixed-point amount in hundredths of the currency
// unit. All pricing arithmetic stays in integers so no binary-float
// rounding can leak into billed amounts.
type Cents int64

// MulInt64 scales the amount by a whole factor, e.g. billable hours.
func (c Cents) MulInt64(n int64) Cents {
	return Cents(int64(c) * n)
}

// PercentHalfUp returns percent/100 of the amount, rounded half-up to
// the nearest cent. Percent must be in [0, 100].
func (c Cents) PercentHalfUp(percent int) Cents {
	return Cents((int64(c)*int64(percent) + 50) / 100)
}

// String formats the amount with two decimal places, e.g. "160.00".
func (c Cents) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// Parse converts a decimal string like "80.00" or "12.5" into Cents.
// More than two fractional digits is rejected rather than rounded.
func Parse(s string) (Cents, error) {
	whole, frac, found := strings.Cut(strings.TrimSpace(s), ".")
	negative := strings.HasPrefix(whole, "-")
	if negative {
		whole = whole[1:]
	}
	if whole == "" {
		whole = "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}

	var cents int64
	if found {
		if len(frac) == 0 || len(frac) > 2 {
			return 0, fmt.Errorf("invalid amount %q: expected at most two decimal places", s)
		}
		if len(frac) == 1 {
			frac += "0"
		}
		cents, err = strconv.ParseInt(frac, 10, 64)
		if err != nil || cents < 0 {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
	}

	total := units*100 + cents
	if negative {
		total = -total
	}
	return Cents(total), nil
}
