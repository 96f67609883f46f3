package declaration

import (
	"strings"

	"customsdesk/internal/domain"
)

// DefaultTransportMode is the road transport code used when the CMR does not
// state one.
const DefaultTransportMode = "30"

var transportModeNames = map[string]string{
	"10": "sea",
	"20": "rail",
	"30": "road",
	"40": "air",
	"50": "mail",
	"71": "pipeline",
	"72": "power line",
	"80": "inland waterway",
	"90": "own propulsion",
}

// MergeParty overlays the invoice party onto the agreement party field by
// field. Invoice values win; fields absent in both stay absent.
func MergeParty(invoice, agreement *domain.Party) domain.Party {
	var inv, agr domain.Party
	if invoice != nil {
		inv = *invoice
	}
	if agreement != nil {
		agr = *agreement
	}

	merged := domain.Party{
		Name:           agr.Name,
		Address:        pick(inv.Address, agr.Address),
		LegalAddress:   pick(inv.LegalAddress, agr.LegalAddress),
		Country:        pick(inv.Country, agr.Country),
		VATOrRegNumber: pick(inv.VATOrRegNumber, agr.VATOrRegNumber),
		INN:            pick(inv.INN, agr.INN),
		KPP:            pick(inv.KPP, agr.KPP),
		OGRN:           pick(inv.OGRN, agr.OGRN),
		Contacts:       pick(inv.Contacts, agr.Contacts),
		BankDetails:    agr.BankDetails,
	}
	if strings.TrimSpace(inv.Name) != "" {
		merged.Name = inv.Name
	}
	if inv.BankDetails != nil {
		merged.BankDetails = inv.BankDetails
	}
	return merged
}

// ResolveParty merges the seller or buyer of the invoice and agreement in set.
func ResolveParty(set domain.DocumentSet, role domain.PartyRole) domain.Party {
	return MergeParty(set.Invoice.PartyByRole(role), set.Agreement.PartyByRole(role))
}

func pick(primary, fallback *string) *string {
	if present(primary) {
		return primary
	}
	if present(fallback) {
		return fallback
	}
	return nil
}

func present(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

// FormatIncoterms renders "{rule} {place}[, {version}]", or nil unless both
// rule and place are set.
func FormatIncoterms(t *domain.Incoterms) *string {
	if t == nil {
		return nil
	}
	rule, place := strings.TrimSpace(t.Rule), strings.TrimSpace(t.Place)
	if rule == "" || place == "" {
		return nil
	}
	s := rule + " " + place
	if present(t.Version) {
		s += ", " + strings.TrimSpace(*t.Version)
	}
	return &s
}

// ResolveIncoterms prefers the invoice's delivery terms and falls back to the agreement's.
func ResolveIncoterms(invoice, agreement *domain.Incoterms) *string {
	if s := FormatIncoterms(invoice); s != nil {
		return s
	}
	return FormatIncoterms(agreement)
}

// ResolveDispatchCountry takes the first route country, else the last
// comma-separated segment of the taking-over place.
func ResolveDispatchCountry(cmr *domain.CMR) *string {
	if cmr == nil {
		return nil
	}
	if len(cmr.RouteCountries) > 0 {
		if c := strings.TrimSpace(cmr.RouteCountries[0]); c != "" {
			return &c
		}
	}
	place := cmr.PlaceAndDateTakingOver.Place
	if strings.TrimSpace(place) == "" {
		return nil
	}
	segments := strings.Split(place, ",")
	if c := strings.TrimSpace(segments[len(segments)-1]); c != "" {
		return &c
	}
	return nil
}

// ResolveDestinationCountry takes the delivery country, else the last route country.
func ResolveDestinationCountry(cmr *domain.CMR) *string {
	if cmr == nil {
		return nil
	}
	if present(cmr.PlaceOfDelivery.Country) {
		c := strings.TrimSpace(*cmr.PlaceOfDelivery.Country)
		return &c
	}
	if n := len(cmr.RouteCountries); n > 0 {
		if c := strings.TrimSpace(cmr.RouteCountries[n-1]); c != "" {
			return &c
		}
	}
	return nil
}

// TransportModes holds the border and inland transport-mode codes.
type TransportModes struct {
	Border string
	Inland string
}

// ResolveTransportModes reads the mode codes from the CMR, defaulting both to road.
func ResolveTransportModes(cmr *domain.CMR) TransportModes {
	modes := TransportModes{Border: DefaultTransportMode, Inland: DefaultTransportMode}
	if cmr == nil {
		return modes
	}
	if present(cmr.Transport.ModeCodeBorder) {
		modes.Border = strings.TrimSpace(*cmr.Transport.ModeCodeBorder)
	}
	if present(cmr.Transport.ModeCodeInland) {
		modes.Inland = strings.TrimSpace(*cmr.Transport.ModeCodeInland)
	}
	return modes
}

// DescribeTransportMode renders a mode code with its name, e.g. "30 (road)".
func DescribeTransportMode(code string) string {
	if name, ok := transportModeNames[code]; ok {
		return code + " (" + name + ")"
	}
	return code
}

// Weights are shipment totals in kilograms.
type Weights struct {
	Gross *float64
	Net   *float64
}

// ResolveTotalWeights prefers packing-list totals and falls back to the CMR.
func ResolveTotalWeights(pl *domain.PackingList, cmr *domain.CMR) Weights {
	var w Weights
	if pl != nil {
		w.Gross = positive(pl.GrossWeightTotal)
		w.Net = positive(pl.NetWeightTotal)
	}
	if cmr != nil {
		if w.Gross == nil && cmr.GrossWeightTotalKG > 0 {
			g := cmr.GrossWeightTotalKG
			w.Gross = &g
		}
		if w.Net == nil {
			w.Net = positive(cmr.NetWeightTotalKG)
		}
	}
	return w
}

func positive(v *float64) *float64 {
	if v == nil || *v <= 0 {
		return nil
	}
	return v
}

// SupportingDocument is one entry of the box 44 document list.
type SupportingDocument struct {
	Type   string
	Number *string
	Date   *string
}

func (d SupportingDocument) String() string {
	return orPlaceholder(d.Type) + " No. " + Text(d.Number) + " dated " + Text(d.Date)
}

// SupportingDocuments lists every document referenced by the set, in the
// order: contract, appendices, cross-links, compliance documents, invoice,
// contract reference on the invoice, packing list, CMR, CMR related documents.
func SupportingDocuments(set domain.DocumentSet) []SupportingDocument {
	var docs []SupportingDocument

	if agr := set.Agreement; agr != nil {
		docs = append(docs, SupportingDocument{Type: "Contract", Number: nonEmpty(agr.ContractNumber), Date: nonEmpty(agr.ContractDate)})
		for _, app := range agr.Appendices {
			docs = append(docs, fromRef(app, "Appendix"))
		}
		if links := agr.CrossLinks; links != nil {
			if links.InvoiceRef != nil {
				docs = append(docs, SupportingDocument{Type: "Invoice Ref", Number: links.InvoiceRef.Number, Date: links.InvoiceRef.Date})
			}
			if links.PackingListRef != nil {
				docs = append(docs, SupportingDocument{Type: "Packing List Ref", Number: links.PackingListRef.Number, Date: links.PackingListRef.Date})
			}
		}
		for _, doc := range agr.ComplianceDocuments {
			docs = append(docs, fromRef(doc, "Compliance document"))
		}
	}

	if inv := set.Invoice; inv != nil {
		docs = append(docs, SupportingDocument{Type: "Invoice", Number: nonEmpty(inv.InvoiceNumber), Date: nonEmpty(inv.InvoiceDate)})
		if ref := inv.ContractReference; ref != nil && present(ref.Number) {
			docs = append(docs, SupportingDocument{Type: "Contract (ref in invoice)", Number: ref.Number, Date: ref.Date})
		}
	}

	if pl := set.PackingList; pl != nil {
		docs = append(docs, SupportingDocument{Type: "Packing List", Number: nonEmpty(pl.PLNumber), Date: nonEmpty(pl.PLDate)})
	}

	if cmr := set.CMR; cmr != nil {
		docs = append(docs, SupportingDocument{Type: "CMR", Number: cmr.CMRNumber, Date: cmr.CMRDate})
		for _, rel := range cmr.RelatedDocuments {
			docs = append(docs, fromRef(rel, "Doc."))
		}
	}

	return docs
}

func fromRef(ref domain.DocumentRef, defaultType string) SupportingDocument {
	t := defaultType
	if present(ref.Type) {
		t = strings.TrimSpace(*ref.Type)
	}
	return SupportingDocument{Type: t, Number: ref.Number, Date: ref.Date}
}

func nonEmpty(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
