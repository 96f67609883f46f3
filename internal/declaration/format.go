package declaration

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Placeholder stands in for any value that was not found in the documents.
const Placeholder = "—"

// Unit is an entry of the OKEI unit-of-measure classifier.
type Unit struct {
	Code string
	Name string
}

var okeiUnits = map[string]Unit{
	"pcs":      {Code: "796", Name: "pcs"},
	"pc":       {Code: "796", Name: "pcs"},
	"kg":       {Code: "166", Name: "kg"},
	"kilogram": {Code: "166", Name: "kg"},
}

// LookupUnit maps a unit of measure to its OKEI code. Unknown units come back
// with an empty code and the raw unit as the name.
func LookupUnit(uom string) Unit {
	if strings.TrimSpace(uom) == "" {
		return Unit{}
	}
	if u, ok := okeiUnits[normalize(uom)]; ok {
		return u
	}
	return Unit{Name: uom}
}

// Money renders v with two decimals and a space as the thousands separator,
// followed by the currency code when one is given.
func Money(v *float64, currency string) string {
	if v == nil {
		return Placeholder
	}
	d := decimal.NewFromFloat(*v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	fixed := d.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	out := sign + groupThousands(intPart) + "." + frac
	if currency != "" {
		out += " " + currency
	}
	return out
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// Number renders a measured quantity in its shortest form, or the placeholder.
func Number(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// Text returns the trimmed value of s, or the placeholder when s is nil or blank.
func Text(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return Placeholder
	}
	return strings.TrimSpace(*s)
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}
