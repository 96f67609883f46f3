package domain

// DocumentKind identifies which schema a record was extracted against.
type DocumentKind string

const (
	KindInvoice        DocumentKind = "invoice"
	KindPackingList    DocumentKind = "packing_list"
	KindCMR            DocumentKind = "cmr"
	KindAgreement      DocumentKind = "agreement"
	KindClassification DocumentKind = "hs_classification"
)

// RequiredKinds lists the four source documents every declaration run needs,
// in the order front ends detect them.
var RequiredKinds = []DocumentKind{KindInvoice, KindPackingList, KindCMR, KindAgreement}

// Label returns a human-readable name for the kind.
func (k DocumentKind) Label() string {
	switch k {
	case KindInvoice:
		return "invoice"
	case KindPackingList:
		return "packing list"
	case KindCMR:
		return "CMR"
	case KindAgreement:
		return "agreement"
	case KindClassification:
		return "commodity classification"
	default:
		return string(k)
	}
}

// PartyRole selects the seller or buyer sub-record of a document.
type PartyRole string

const (
	RoleSeller PartyRole = "seller"
	RoleBuyer  PartyRole = "buyer"
)

// AllowedExtensions maps accepted upload extensions (without dot) to content types.
var AllowedExtensions = map[string]string{
	"pdf": "application/pdf",
}

// AllowedContentTypes is the set of sniffed content types accepted for extraction.
var AllowedContentTypes = map[string]bool{
	"application/pdf": true,
}
