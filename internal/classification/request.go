package classification

import (
	"strconv"
	"strings"

	"customsdesk/internal/domain"
)

// Enrich fills fields missing on the invoice line from the matched
// packing-list line. Values already present on the invoice are kept; nil,
// blank and zero count as missing.
func Enrich(item domain.LineItem, match *domain.LineItem) domain.LineItem {
	if match == nil {
		return item
	}
	if strings.TrimSpace(item.Description) == "" {
		item.Description = match.Description
	}
	if strings.TrimSpace(item.UOM) == "" {
		item.UOM = match.UOM
	}
	if item.Quantity == 0 {
		item.Quantity = match.Quantity
	}
	item.LineNo = fillString(item.LineNo, match.LineNo)
	item.ModelOrSKU = fillString(item.ModelOrSKU, match.ModelOrSKU)
	item.OriginCountry = fillString(item.OriginCountry, match.OriginCountry)
	item.Manufacturer = fillString(item.Manufacturer, match.Manufacturer)
	item.UnitPrice = fillNumber(item.UnitPrice, match.UnitPrice)
	item.LineTotal = fillNumber(item.LineTotal, match.LineTotal)
	item.NetWeight = fillNumber(item.NetWeight, match.NetWeight)
	item.GrossWeight = fillNumber(item.GrossWeight, match.GrossWeight)
	if item.Packaging == nil {
		item.Packaging = match.Packaging
	}
	if item.Dimensions == nil {
		item.Dimensions = match.Dimensions
	}
	return item
}

func fillString(v, fallback *string) *string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return fallback
	}
	return v
}

func fillNumber(v, fallback *float64) *float64 {
	if v == nil || *v == 0 {
		return fallback
	}
	return v
}

// BuildDetails lists the known facts about a goods line, one per line, for the
// classification request. Absent facts are left out.
func BuildDetails(item domain.LineItem, currency string, incoterms *string) string {
	var lines []string
	add := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			lines = append(lines, label+": "+strings.TrimSpace(value))
		}
	}

	add("Description", item.Description)
	add("Model/SKU", deref(item.ModelOrSKU))

	qty := ""
	if item.Quantity != 0 {
		qty = formatFloat(item.Quantity)
	}
	add("Quantity/unit", strings.TrimSpace(qty+" "+item.UOM))

	if item.NetWeight != nil {
		add("Net weight, kg", formatFloat(*item.NetWeight))
	}
	if item.GrossWeight != nil {
		add("Gross weight, kg", formatFloat(*item.GrossWeight))
	}
	add("Country of origin", deref(item.OriginCountry))
	add("Manufacturer", deref(item.Manufacturer))
	add("Invoice currency", currency)
	add("Delivery terms", deref(incoterms))

	return strings.Join(lines, "\n")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
