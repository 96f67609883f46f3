// Package declaration maps the four extracted shipping documents onto the
// numbered boxes of a customs goods declaration.
package declaration

import (
	"fmt"
	"strings"

	"customsdesk/internal/domain"
)

// Box is one rendered line of the declaration, prefixed by its box number.
type Box struct {
	Number int
	Text   string
}

func (b Box) String() string {
	return fmt.Sprintf("[%d] %s", b.Number, b.Text)
}

// ItemBlock holds the boxes rendered for one invoice line.
type ItemBlock struct {
	Index int
	Boxes []Box
}

// Declaration is the structured form of the rendered declaration text.
type Declaration struct {
	Header []Box
	Items  []ItemBlock
}

// String renders the header, a blank line, then one block per item separated
// by blank lines.
func (d *Declaration) String() string {
	header := make([]string, 0, len(d.Header))
	for _, b := range d.Header {
		header = append(header, b.String())
	}

	var items []string
	for _, block := range d.Items {
		for _, b := range block.Boxes {
			items = append(items, b.String())
		}
		items = append(items, "")
	}

	return strings.Join(header, "\n") + "\n\n" + strings.TrimRight(strings.Join(items, "\n"), " \t\r\n")
}

// Render builds and renders the declaration for set. Equal inputs always
// produce identical text.
func Render(set domain.DocumentSet) string {
	return Build(set).String()
}

// Build maps the document set onto declaration boxes. Missing records are
// treated as empty so the output keeps its shape.
func Build(set domain.DocumentSet) *Declaration {
	inv := set.Invoice
	if inv == nil {
		inv = &domain.Invoice{}
	}
	pl := set.PackingList
	if pl == nil {
		pl = &domain.PackingList{}
	}
	cmr := set.CMR
	if cmr == nil {
		cmr = &domain.CMR{}
	}
	agr := set.Agreement
	if agr == nil {
		agr = &domain.Agreement{}
	}

	currency := strings.ToUpper(strings.TrimSpace(inv.Currency.Code))

	return &Declaration{
		Header: buildHeader(set, inv, pl, cmr, agr, currency),
		Items:  buildItems(inv, pl, currency),
	}
}

func buildHeader(set domain.DocumentSet, inv *domain.Invoice, pl *domain.PackingList, cmr *domain.CMR, agr *domain.Agreement, currency string) []Box {
	seller := ResolveParty(set, domain.RoleSeller)
	buyer := ResolveParty(set, domain.RoleBuyer)
	incoterms := ResolveIncoterms(&inv.Incoterms, &agr.Incoterms)
	modes := ResolveTransportModes(cmr)
	weights := ResolveTotalWeights(pl, cmr)
	total := inv.TotalAmount

	var packages domain.PackageTotals
	if pl.Packages != nil {
		packages = *pl.Packages
	}

	docs := SupportingDocuments(set)
	docList := Placeholder
	if len(docs) > 0 {
		parts := make([]string, len(docs))
		for i, d := range docs {
			parts[i] = d.String()
		}
		docList = strings.Join(parts, "; ")
	}

	return []Box{
		{2, fmt.Sprintf("Sender (seller) — %s; %s; VAT/reg: %s",
			orPlaceholder(seller.Name), partyAddress(seller), Text(seller.VATOrRegNumber))},
		{8, fmt.Sprintf("Consignee (buyer/importer) — %s; %s; INN: %s; KPP: %s",
			orPlaceholder(buyer.Name), partyAddress(buyer), Text(buyer.INN), Text(buyer.KPP))},
		{15, "Country of dispatch — " + Text(ResolveDispatchCountry(cmr))},
		{17, "Country of destination — " + Text(ResolveDestinationCountry(cmr))},
		{20, "Delivery terms — " + Text(incoterms)},
		{21, fmt.Sprintf("Vehicle identification — tractor: %s; trailer: %s; plate country: %s",
			Text(cmr.Transport.TractorPlate), Text(cmr.Transport.TrailerPlate), Text(cmr.Transport.PlateCountryCode))},
		{22, fmt.Sprintf("Invoice currency and amount — %s; Total: %s", orPlaceholder(currency), Money(&total, currency))},
		{25, "Transport mode at border — " + DescribeTransportMode(modes.Border)},
		{26, "Inland transport mode — " + DescribeTransportMode(modes.Inland)},
		{31, fmt.Sprintf("Packaging/marks (summary) — %s packages; %s; Marks: %s",
			Number(positive(packages.TotalPackages)), Text(packages.PackageType), Text(packages.MarksAndNumbers))},
		{33, "Commodity code (EAEU CN FEA) — classification required"},
		{34, "Country of origin — per item/origin documents (if stated)"},
		{35, fmt.Sprintf("Gross weight (total) — %s kg", Number(weights.Gross))},
		{38, fmt.Sprintf("Net weight (total) — %s kg", Number(weights.Net))},
		{41, "Supplementary unit/quantity — see items; convert to OKEI/EAEU codes"},
		{42, "Unit price — see items (from invoice)"},
		{44, "Supporting documents — " + docList},
		{46, "Statistical value — calculated (statistics rules and exchange rates)"},
		{47, "Taxes/duties — calculated (rates per commodity code)"},
	}
}

func partyAddress(p domain.Party) string {
	if present(p.Address) {
		return Text(p.Address)
	}
	return Text(p.LegalAddress)
}

func buildItems(inv *domain.Invoice, pl *domain.PackingList, currency string) []ItemBlock {
	idx := Index(pl.Items)
	blocks := make([]ItemBlock, 0, len(inv.Items))

	for i := range inv.Items {
		item := &inv.Items[i]
		match := MatchItem(idx, pl.Items, item)
		if match == nil {
			match = &domain.LineItem{}
		}
		n := i + 1

		desc := orPlaceholder(firstNonBlank(item.Description, match.Description))
		model := firstNonBlank(deref(item.ModelOrSKU), deref(match.ModelOrSKU))
		shown := desc
		if model != "" && !strings.Contains(strings.ToLower(desc), strings.ToLower(model)) {
			shown = fmt.Sprintf("%s (model/SKU: %s)", desc, model)
		}

		origin := item.OriginCountry
		if !present(origin) {
			origin = match.OriginCountry
		}

		uom := firstNonBlank(item.UOM, match.UOM)
		qty := item.Quantity
		quantity := strings.TrimRight(Number(&qty)+" "+uom, " ")
		if unit := LookupUnit(uom); unit.Code != "" {
			quantity += fmt.Sprintf(" (OKEI %s %s)", unit.Code, unit.Name)
		}

		blocks = append(blocks, ItemBlock{
			Index: n,
			Boxes: []Box{
				{31, fmt.Sprintf("Item %d: %s. Packaging/marks: %s", n, shown, packagingSummary(match.Packaging))},
				{34, "Country of origin — " + Text(origin)},
				{35, "Gross weight (kg) — " + Number(match.GrossWeight)},
				{38, "Net weight (kg) — " + Number(match.NetWeight)},
				{41, "Quantity/unit — " + quantity},
				{42, "Unit price — " + Money(item.UnitPrice, currency)},
				{45, "Customs value per line — calculation required (Incoterms, freight, insurance)"},
				{46, "Statistical value per line — calculated from customs value (statistics currency)"},
			},
		})
	}
	return blocks
}

func packagingSummary(p *domain.Packaging) string {
	if p == nil {
		return Placeholder
	}
	var parts []string
	if v := positive(p.PackagesQty); v != nil {
		parts = append(parts, Number(v)+" packages")
	}
	if present(p.PackageType) {
		parts = append(parts, strings.TrimSpace(*p.PackageType))
	}
	if present(p.MarksRange) {
		parts = append(parts, "Marks: "+strings.TrimSpace(*p.MarksRange))
	}
	if len(parts) == 0 {
		return Placeholder
	}
	return strings.Join(parts, ", ")
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
