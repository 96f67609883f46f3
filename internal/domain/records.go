package domain

import (
	"encoding/json"
	"fmt"
)

// Record is a schema-validated extraction result for one source document.
// Optional fields are pointers or nil slices; a nil value means the field was
// not found in the document and must never be replaced with a guess.
type Record interface {
	Kind() DocumentKind
}

// BankDetails holds payment account fields printed on invoices and contracts.
type BankDetails struct {
	BeneficiaryName *string `json:"beneficiary_name,omitempty"`
	BankName        *string `json:"bank_name,omitempty"`
	IBAN            *string `json:"iban,omitempty"`
	SwiftBIC        *string `json:"swift_bic,omitempty"`
	AccountNumber   *string `json:"account_number,omitempty"`
}

// Party is the union of seller/buyer fields across the invoice and agreement
// schemas. Each document fills only the subset its schema allows.
type Party struct {
	Name           string       `json:"name,omitempty"`
	Address        *string      `json:"address,omitempty"`
	LegalAddress   *string      `json:"legal_address,omitempty"`
	Country        *string      `json:"country,omitempty"`
	VATOrRegNumber *string      `json:"vat_or_reg_number,omitempty"`
	INN            *string      `json:"inn,omitempty"`
	KPP            *string      `json:"kpp,omitempty"`
	OGRN           *string      `json:"ogrn,omitempty"`
	Contacts       *string      `json:"contacts,omitempty"`
	BankDetails    *BankDetails `json:"bank_details,omitempty"`
}

// Incoterms is a delivery-terms triple such as FCA / Berlin / Incoterms 2020.
type Incoterms struct {
	Rule    string  `json:"rule,omitempty"`
	Place   string  `json:"place,omitempty"`
	Version *string `json:"version,omitempty"`
}

// Currency wraps an ISO 4217 code.
type Currency struct {
	Code string `json:"code,omitempty"`
}

// DocumentRef points at a related document by type, number and date.
type DocumentRef struct {
	Type   *string `json:"type,omitempty"`
	Number *string `json:"number,omitempty"`
	Date   *string `json:"date,omitempty"`
}

// Dimensions are physical measurements in centimetres and cubic metres.
type Dimensions struct {
	LengthCM *float64 `json:"length_cm,omitempty"`
	WidthCM  *float64 `json:"width_cm,omitempty"`
	HeightCM *float64 `json:"height_cm,omitempty"`
	VolumeM3 *float64 `json:"volume_m3,omitempty"`
}

// Packaging describes how one packing-list line is packed and marked.
type Packaging struct {
	PackagesQty *float64 `json:"packages_qty,omitempty"`
	PackageType *string  `json:"package_type,omitempty"`
	MarksRange  *string  `json:"marks_range,omitempty"`
}

// LineItem is a goods line shared by invoices and packing lists.
type LineItem struct {
	LineNo        *string     `json:"line_no,omitempty"`
	Description   string      `json:"description"`
	ModelOrSKU    *string     `json:"model_or_sku,omitempty"`
	Quantity      float64     `json:"quantity"`
	UOM           string      `json:"uom"`
	UnitPrice     *float64    `json:"unit_price,omitempty"`
	LineTotal     *float64    `json:"line_total,omitempty"`
	NetWeight     *float64    `json:"net_weight,omitempty"`
	GrossWeight   *float64    `json:"gross_weight,omitempty"`
	OriginCountry *string     `json:"origin_country,omitempty"`
	Manufacturer  *string     `json:"manufacturer,omitempty"`
	Packaging     *Packaging  `json:"packaging,omitempty"`
	Dimensions    *Dimensions `json:"dimensions,omitempty"`
}

// Charges are invoice-level surcharges and discounts.
type Charges struct {
	Freight   *float64 `json:"freight,omitempty"`
	Insurance *float64 `json:"insurance,omitempty"`
	Packing   *float64 `json:"packing,omitempty"`
	Discount  *float64 `json:"discount,omitempty"`
}

// Invoice is the commercial invoice record.
type Invoice struct {
	InvoiceNumber     string       `json:"invoice_number"`
	InvoiceDate       string       `json:"invoice_date"`
	Seller            Party        `json:"seller"`
	Buyer             Party        `json:"buyer"`
	Incoterms         Incoterms    `json:"incoterms"`
	Currency          Currency     `json:"currency"`
	TotalAmount       float64      `json:"total_amount"`
	Items             []LineItem   `json:"items"`
	SubtotalExVAT     *float64     `json:"subtotal_ex_vat,omitempty"`
	VATAmount         *float64     `json:"vat_amount,omitempty"`
	GrandTotal        *float64     `json:"grand_total,omitempty"`
	Charges           *Charges     `json:"charges,omitempty"`
	ContractReference *DocumentRef `json:"contract_reference,omitempty"`
	PaymentTerms      *string      `json:"payment_terms,omitempty"`
	BankDetails       *BankDetails `json:"bank_details,omitempty"`
	Notes             *string      `json:"notes,omitempty"`
}

func (*Invoice) Kind() DocumentKind { return KindInvoice }

// PartyByRole returns the seller or buyer. A nil invoice yields nil.
func (i *Invoice) PartyByRole(role PartyRole) *Party {
	if i == nil {
		return nil
	}
	if role == RoleBuyer {
		return &i.Buyer
	}
	return &i.Seller
}

// PackageTotals summarises all packages of a shipment.
type PackageTotals struct {
	TotalPackages   *float64 `json:"total_packages,omitempty"`
	PackageType     *string  `json:"package_type,omitempty"`
	MarksAndNumbers *string  `json:"marks_and_numbers,omitempty"`
}

// PackingList is the packing list record.
type PackingList struct {
	PLNumber         string         `json:"pl_number"`
	PLDate           string         `json:"pl_date"`
	InvoiceRef       *DocumentRef   `json:"invoice_ref,omitempty"`
	Packages         *PackageTotals `json:"packages,omitempty"`
	GrossWeightTotal *float64       `json:"gross_weight_total,omitempty"`
	NetWeightTotal   *float64       `json:"net_weight_total,omitempty"`
	DimensionsTotal  *Dimensions    `json:"dimensions_total,omitempty"`
	Items            []LineItem     `json:"items"`
	Notes            *string        `json:"notes,omitempty"`
}

func (*PackingList) Kind() DocumentKind { return KindPackingList }

// CMRParty is a consignor, consignee or carrier on a waybill.
type CMRParty struct {
	Name       string  `json:"name,omitempty"`
	Address    *string `json:"address,omitempty"`
	Country    *string `json:"country,omitempty"`
	VATOrTaxID *string `json:"vat_or_tax_id,omitempty"`
	Contacts   *string `json:"contacts,omitempty"`
}

// TakingOver is where and when the carrier took over the goods.
type TakingOver struct {
	Place string  `json:"place"`
	Date  *string `json:"date,omitempty"`
}

// DeliveryPlace is the agreed place of delivery.
type DeliveryPlace struct {
	Place   string  `json:"place"`
	Country *string `json:"country,omitempty"`
	Address *string `json:"address,omitempty"`
}

// PackagesSummary is the waybill's package count and marks.
type PackagesSummary struct {
	NumberOfPackages *float64 `json:"number_of_packages,omitempty"`
	KindOfPackages   *string  `json:"kind_of_packages,omitempty"`
	MarksAndNumbers  *string  `json:"marks_and_numbers,omitempty"`
}

// Transport identifies the vehicle and transport-mode codes.
type Transport struct {
	Mode             string   `json:"mode"`
	ModeCodeBorder   *string  `json:"mode_code_border,omitempty"`
	ModeCodeInland   *string  `json:"mode_code_inland,omitempty"`
	TractorPlate     *string  `json:"tractor_plate,omitempty"`
	TrailerPlate     *string  `json:"trailer_plate,omitempty"`
	PlateCountryCode *string  `json:"plate_country_code,omitempty"`
	VolumeM3         *float64 `json:"volume_m3,omitempty"`
	Seals            []string `json:"seals,omitempty"`
}

// CMRItem is an optional per-line breakdown on the waybill.
type CMRItem struct {
	LineNo          *string  `json:"line_no,omitempty"`
	Description     string   `json:"description"`
	Quantity        *float64 `json:"quantity,omitempty"`
	UOM             *string  `json:"uom,omitempty"`
	KindOfPackages  *string  `json:"kind_of_packages,omitempty"`
	MarksAndNumbers *string  `json:"marks_and_numbers,omitempty"`
	GrossWeightKG   *float64 `json:"gross_weight_kg,omitempty"`
	NetWeightKG     *float64 `json:"net_weight_kg,omitempty"`
}

// Driver identifies the driver named on the waybill.
type Driver struct {
	Name         *string `json:"name,omitempty"`
	Contacts     *string `json:"contacts,omitempty"`
	PassportOrID *string `json:"passport_or_id,omitempty"`
}

// CMR is the road consignment note record.
type CMR struct {
	Consignor              CMRParty        `json:"consignor"`
	Consignee              CMRParty        `json:"consignee"`
	PlaceAndDateTakingOver TakingOver      `json:"place_and_date_taking_over"`
	PlaceOfDelivery        DeliveryPlace   `json:"place_of_delivery"`
	PackagesSummary        PackagesSummary `json:"packages_summary"`
	GrossWeightTotalKG     float64         `json:"gross_weight_total_kg"`
	NetWeightTotalKG       *float64        `json:"net_weight_total_kg,omitempty"`
	Transport              Transport       `json:"transport"`
	Carrier                *CMRParty       `json:"carrier,omitempty"`
	RouteCountries         []string        `json:"route_countries,omitempty"`
	CMRNumber              *string         `json:"cmr_number,omitempty"`
	CMRSeries              *string         `json:"cmr_series,omitempty"`
	CMRDate                *string         `json:"cmr_date,omitempty"`
	RelatedDocuments       []DocumentRef   `json:"related_documents,omitempty"`
	Items                  []CMRItem       `json:"items,omitempty"`
	Driver                 *Driver         `json:"driver,omitempty"`
	SpecialInstructions    *string         `json:"special_instructions,omitempty"`
	Transshipment          *string         `json:"transshipment,omitempty"`
	Notes                  *string         `json:"notes,omitempty"`
}

func (*CMR) Kind() DocumentKind { return KindCMR }

// TransportTerms are the contract's transport clauses.
type TransportTerms struct {
	Mode    *string `json:"mode,omitempty"`
	Details *string `json:"details,omitempty"`
}

// CatalogReference is a model or SKU listed in the contract.
type CatalogReference struct {
	ModelOrSKU  *string `json:"model_or_sku,omitempty"`
	Description *string `json:"description,omitempty"`
}

// CrossLinks are invoice and packing-list references quoted in the contract.
type CrossLinks struct {
	InvoiceRef     *DocumentRef `json:"invoice_ref,omitempty"`
	PackingListRef *DocumentRef `json:"packing_list_ref,omitempty"`
}

// Agreement is the sales contract record.
type Agreement struct {
	ContractNumber                  string             `json:"contract_number"`
	ContractDate                    string             `json:"contract_date"`
	Seller                          Party              `json:"seller"`
	Buyer                           Party              `json:"buyer"`
	Subject                         string             `json:"subject"`
	Incoterms                       Incoterms          `json:"incoterms"`
	Currency                        Currency           `json:"currency"`
	PaymentTerms                    *string            `json:"payment_terms,omitempty"`
	TransportTerms                  *TransportTerms    `json:"transport_terms,omitempty"`
	Appendices                      []DocumentRef      `json:"appendices,omitempty"`
	OriginAndManufacturer           *string            `json:"origin_and_manufacturer,omitempty"`
	PackagingAndMarkingRequirements *string            `json:"packaging_and_marking_requirements,omitempty"`
	ComplianceDocuments             []DocumentRef      `json:"compliance_documents,omitempty"`
	CatalogReferences               []CatalogReference `json:"catalog_references,omitempty"`
	CrossLinks                      *CrossLinks        `json:"cross_links,omitempty"`
	Notes                           *string            `json:"notes,omitempty"`
}

func (*Agreement) Kind() DocumentKind { return KindAgreement }

// PartyByRole returns the seller or buyer. A nil agreement yields nil.
func (a *Agreement) PartyByRole(role PartyRole) *Party {
	if a == nil {
		return nil
	}
	if role == RoleBuyer {
		return &a.Buyer
	}
	return &a.Seller
}

// DocumentSet is the full quadruple one declaration is built from.
type DocumentSet struct {
	Invoice     *Invoice
	PackingList *PackingList
	CMR         *CMR
	Agreement   *Agreement
}

// Put stores a record in the slot matching its kind.
func (s *DocumentSet) Put(rec Record) error {
	switch r := rec.(type) {
	case *Invoice:
		s.Invoice = r
	case *PackingList:
		s.PackingList = r
	case *CMR:
		s.CMR = r
	case *Agreement:
		s.Agreement = r
	default:
		return fmt.Errorf("%w: %T", ErrUnknownDocumentKind, rec)
	}
	return nil
}

// DecodeRecord unmarshals validated JSON into the typed record for kind.
func DecodeRecord(kind DocumentKind, data []byte) (Record, error) {
	var rec Record
	switch kind {
	case KindInvoice:
		rec = &Invoice{}
	case KindPackingList:
		rec = &PackingList{}
	case KindCMR:
		rec = &CMR{}
	case KindAgreement:
		rec = &Agreement{}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDocumentKind, kind)
	}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("decoding %s record: %w", kind, err)
	}
	return rec, nil
}
