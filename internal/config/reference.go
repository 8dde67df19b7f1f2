package config

import "embdash/pkg/contracts/domain"

// DefaultReleases is the ordered WEO release fallback list, newest
// vintage first. October releases carry the fuller projection horizon.
func DefaultReleases() []ReleaseCandidate {
	return []ReleaseCandidate{
		{Year: 2025, Release: 2},
		{Year: 2025, Release: 1},
		{Year: 2024, Release: 2},
		{Year: 2024, Release: 1},
		{Year: 2023, Release: 2},
	}
}

// DefaultCountryColumns is the probe list for the WEO country-code
// column; the header has drifted across vintages.
func DefaultCountryColumns() []string {
	return []string{"ISO", "WEO Country Code", "Country Code", "ISO3"}
}

// DefaultIndicators is the extracted WEO subject set.
func DefaultIndicators() []domain.Indicator {
	return []domain.Indicator{
		{Code: "NGDPD", DisplayName: "GDP (US Dollars)"},
		{Code: "LP", DisplayName: "Population"},
		{Code: "NGDP_RPCH", DisplayName: "Real GDP growth (%)"},
		{Code: "NID_NGDP", DisplayName: "Total investment (% of GDP)"},
		{Code: "NGSD_NGDP", DisplayName: "National savings (% of GDP)"},
		{Code: "PCPIPCH", DisplayName: "Inflation, consumer prices (%)"},
		{Code: "GGR_NGDP", DisplayName: "General government revenue (% of GDP)"},
		{Code: "GGX_NGDP", DisplayName: "General government total expenditure (% of GDP)"},
		{Code: "GGXCNL_NGDP", DisplayName: "General government net lending/borrowing (% of GDP)"},
		{Code: "GGXONLB_NGDP", DisplayName: "General government net borrowing (% of GDP)"},
		{Code: "GGXWDG_NGDP", DisplayName: "General government gross debt (% of GDP)"},
		{Code: "BCA_NGDPD", DisplayName: "Current account balance (% of GDP)"},
	}
}

// DefaultDisplayOrder fixes the indicator ordering on a country card.
func DefaultDisplayOrder() []string {
	return []string{
		"GDP (US Dollars)",
		"Population",
		"Real GDP growth (%)",
		"Inflation, consumer prices (%)",
		"National savings (% of GDP)",
		"Total investment (% of GDP)",
		"Current account balance (% of GDP)",
		"General government revenue (% of GDP)",
		"General government total expenditure (% of GDP)",
		"General government net lending/borrowing (% of GDP)",
		"General government net borrowing (% of GDP)",
		"General government gross debt (% of GDP)",
	}
}

// DefaultCountryMapping maps holdings country names, exactly as the
// holdings file spells them, to ISO3 codes. Exact match only; no fuzzy
// resolution.
func DefaultCountryMapping() domain.CountryMapping {
	return domain.CountryMapping{
		"Angola":                       "AGO",
		"Argentina":                    "ARG",
		"Bahrain":                      "BHR",
		"Brazil":                       "BRA",
		"Bulgaria":                     "BGR",
		"Chile":                        "CHL",
		"China":                        "CHN",
		"Colombia":                     "COL",
		"Costa Rica":                   "CRI",
		"Cote D'Ivoire (Ivory Coast)":  "CIV",
		"Dominican Republic":           "DOM",
		"Ecuador":                      "ECU",
		"Egypt":                        "EGY",
		"Ghana":                        "GHA",
		"Guatemala":                    "GTM",
		"Hungary":                      "HUN",
		"Jamaica":                      "JAM",
		"Jordan":                       "JOR",
		"Kazakhstan":                   "KAZ",
		"Kenya":                        "KEN",
		"Latvia":                       "LVA",
		"Malaysia":                     "MYS",
		"Mexico":                       "MEX",
		"Morocco":                      "MAR",
		"Nigeria":                      "NGA",
		"Oman":                         "OMN",
		"Pakistan":                     "PAK",
		"Panama":                       "PAN",
		"Peru":                         "PER",
		"Philippines":                  "PHL",
		"Poland":                       "POL",
		"Romania":                      "ROU",
		"Saudi Arabia":                 "SAU",
		"Serbia":                       "SRB",
		"South Africa":                 "ZAF",
		"Sri Lanka":                    "LKA",
		"Turkey":                       "TUR",
		"Ukraine":                      "UKR",
		"United Arab Emirates":         "ARE",
		"Uruguay":                      "URY",
	}
}

// DefaultContinents groups the dashboard countries by continent.
func DefaultContinents() map[string]domain.ContinentGroup {
	return map[string]domain.ContinentGroup{
		"Africa": {
			"AGO": "Angola",
			"CIV": "Côte d'Ivoire",
			"EGY": "Egypt",
			"GHA": "Ghana",
			"KEN": "Kenya",
			"MAR": "Morocco",
			"NGA": "Nigeria",
			"ZAF": "South Africa",
		},
		"Americas": {
			"ARG": "Argentina",
			"BRA": "Brazil",
			"CHL": "Chile",
			"COL": "Colombia",
			"CRI": "Costa Rica",
			"DOM": "Dominican Republic",
			"ECU": "Ecuador",
			"GTM": "Guatemala",
			"JAM": "Jamaica",
			"MEX": "Mexico",
			"PAN": "Panama",
			"PER": "Peru",
			"URY": "Uruguay",
		},
		"Asia": {
			"ARE": "United Arab Emirates",
			"BHR": "Bahrain",
			"CHN": "China",
			"JOR": "Jordan",
			"KAZ": "Kazakhstan",
			"LKA": "Sri Lanka",
			"MYS": "Malaysia",
			"OMN": "Oman",
			"PAK": "Pakistan",
			"PHL": "Philippines",
			"SAU": "Saudi Arabia",
		},
		"Europe": {
			"BGR": "Bulgaria",
			"HUN": "Hungary",
			"LVA": "Latvia",
			"POL": "Poland",
			"ROU": "Romania",
			"SRB": "Serbia",
			"TUR": "Turkey",
			"UKR": "Ukraine",
		},
	}
}
