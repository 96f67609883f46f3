package declaration_test

import "customsdesk/internal/domain"

func str(s string) *string { return &s }

func num(f float64) *float64 { return &f }

func scenarioSet() domain.DocumentSet {
	return domain.DocumentSet{
		Invoice: &domain.Invoice{
			InvoiceNumber: "GM-INV-2025-384",
			InvoiceDate:   "2025-03-14",
			Seller:        domain.Party{Name: "Global Machines GmbH", Address: str("Hauptstr. 1, Berlin")},
			Buyer:         domain.Party{Name: "OOO Import"},
			Incoterms:     domain.Incoterms{Rule: "FCA", Place: "Berlin"},
			Currency:      domain.Currency{Code: "USD"},
			TotalAmount:   50,
			Items: []domain.LineItem{
				{Description: "Widget X", ModelOrSKU: str("WX-1"), Quantity: 10, UOM: "pcs", UnitPrice: num(5), LineTotal: num(50)},
			},
			ContractReference: &domain.DocumentRef{Number: str("TI-GM-2025-012"), Date: str("2025-01-10")},
		},
		PackingList: &domain.PackingList{
			PLNumber:         "PL-2025-384",
			PLDate:           "2025-03-14",
			Packages:         &domain.PackageTotals{TotalPackages: num(2), PackageType: str("pallet"), MarksAndNumbers: str("GM-1..2")},
			GrossWeightTotal: num(1250.5),
			NetWeightTotal:   num(1100),
			Items: []domain.LineItem{
				{
					Description: "widget x ",
					ModelOrSKU:  str("WX-1-EU"),
					Quantity:    10,
					UOM:         "pcs",
					GrossWeight: num(1250.5),
					NetWeight:   num(1100),
					Packaging:   &domain.Packaging{PackagesQty: num(2), PackageType: str("pallet"), MarksRange: str("1-2")},
				},
			},
		},
		CMR: &domain.CMR{
			Consignor:              domain.CMRParty{Name: "Global Machines GmbH"},
			Consignee:              domain.CMRParty{Name: "OOO Import"},
			PlaceAndDateTakingOver: domain.TakingOver{Place: "Berlin, DE"},
			PlaceOfDelivery:        domain.DeliveryPlace{Place: "Moscow", Country: str("RU")},
			GrossWeightTotalKG:     1250.5,
			Transport:              domain.Transport{Mode: "road", TractorPlate: str("B-AB 123"), TrailerPlate: str("B-XY 99"), PlateCountryCode: str("DE")},
			RouteCountries:         []string{"DE", "PL", "BY", "RU"},
			CMRNumber:              str("CMR-77"),
			CMRDate:                str("2025-03-15"),
		},
		Agreement: &domain.Agreement{
			ContractNumber: "TI-GM-2025-012",
			ContractDate:   "2025-01-10",
			Seller:         domain.Party{Name: "Global Machines", VATOrRegNumber: str("DE123456789")},
			Buyer:          domain.Party{Name: "OOO Import", LegalAddress: str("Moscow, Tverskaya 1"), INN: str("7701234567"), KPP: str("770101001")},
			Subject:        "Supply of equipment",
			Incoterms:      domain.Incoterms{Rule: "DAP", Place: "Moscow"},
			Currency:       domain.Currency{Code: "USD"},
		},
	}
}
