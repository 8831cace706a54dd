package country

// monitoredOrder fixes the roster iteration order.  The watchlist mirrors the
// contents of the curated data drops under data/; extending it requires new
// source files, not just a new entry here.
var monitoredOrder = []string{
	"UA", "IL", "IR", "SD", "MM", "ET", "PK", "TW",
	"VE", "HT", "IQ", "CO", "BR", "RS", "NG", "EG",
	"SY", "YE", "AF", "KP",
}

var monitoredCountries = map[string]Info{
	"UA": {Name: "Ukraine", ISO3: "UKR", Region: "Europe"},
	"IL": {Name: "Israel", ISO3: "ISR", Region: "Middle East"},
	"IR": {Name: "Iran", ISO3: "IRN", Region: "Middle East"},
	"SD": {Name: "Sudan", ISO3: "SDN", Region: "Sub-Saharan Africa"},
	"MM": {Name: "Myanmar", ISO3: "MMR", Region: "South Asia"},
	"ET": {Name: "Ethiopia", ISO3: "ETH", Region: "Sub-Saharan Africa"},
	"PK": {Name: "Pakistan", ISO3: "PAK", Region: "South Asia"},
	"TW": {Name: "Taiwan", ISO3: "TWN", Region: "East Asia"},
	"VE": {Name: "Venezuela", ISO3: "VEN", Region: "Latin America"},
	"HT": {Name: "Haiti", ISO3: "HTI", Region: "Latin America"},
	"IQ": {Name: "Iraq", ISO3: "IRQ", Region: "Middle East"},
	"CO": {Name: "Colombia", ISO3: "COL", Region: "Latin America"},
	"BR": {Name: "Brazil", ISO3: "BRA", Region: "Latin America"},
	"RS": {Name: "Serbia", ISO3: "SRB", Region: "Europe"},
	"NG": {Name: "Nigeria", ISO3: "NGA", Region: "Sub-Saharan Africa"},
	"EG": {Name: "Egypt", ISO3: "EGY", Region: "Middle East"},
	"SY": {Name: "Syria", ISO3: "SYR", Region: "Middle East"},
	"YE": {Name: "Yemen", ISO3: "YEM", Region: "Middle East"},
	"AF": {Name: "Afghanistan", ISO3: "AFG", Region: "South Asia"},
	"KP": {Name: "North Korea", ISO3: "PRK", Region: "East Asia"},
}
