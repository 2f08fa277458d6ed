package fixtures

import (
	"strings"
	"unicode"
)

// Strength is one club's rating on a 1-5 scale, higher is stronger
type Strength struct {
	Overall   float64 `json:"overall"`
	Offensive float64 `json:"offensive"`
	Defensive float64 `json:"defensive"`
	Home      float64 `json:"home"`
	Away      float64 `json:"away"`
}

var teamStrengths = map[string]Strength{
	"MCI": {Overall: 4.7, Offensive: 4.8, Defensive: 4.5, Home: 4.9, Away: 4.5},
	"ARS": {Overall: 4.6, Offensive: 4.5, Defensive: 4.7, Home: 4.8, Away: 4.4},
	"LIV": {Overall: 4.6, Offensive: 4.7, Defensive: 4.4, Home: 4.8, Away: 4.4},
	"CHE": {Overall: 4.1, Offensive: 4.2, Defensive: 3.9, Home: 4.3, Away: 3.9},
	"NEW": {Overall: 3.9, Offensive: 3.9, Defensive: 3.9, Home: 4.2, Away: 3.6},
	"TOT": {Overall: 3.7, Offensive: 4.0, Defensive: 3.3, Home: 3.9, Away: 3.5},
	"AVL": {Overall: 3.8, Offensive: 3.8, Defensive: 3.6, Home: 4.1, Away: 3.5},
	"MUN": {Overall: 3.5, Offensive: 3.4, Defensive: 3.4, Home: 3.8, Away: 3.2},
	"BHA": {Overall: 3.5, Offensive: 3.6, Defensive: 3.3, Home: 3.7, Away: 3.3},
	"NFO": {Overall: 3.4, Offensive: 3.2, Defensive: 3.7, Home: 3.6, Away: 3.2},
	"CRY": {Overall: 3.3, Offensive: 3.1, Defensive: 3.5, Home: 3.5, Away: 3.1},
	"FUL": {Overall: 3.2, Offensive: 3.2, Defensive: 3.1, Home: 3.4, Away: 3.0},
	"BOU": {Overall: 3.2, Offensive: 3.4, Defensive: 3.0, Home: 3.4, Away: 3.0},
	"BRE": {Overall: 3.1, Offensive: 3.4, Defensive: 2.8, Home: 3.4, Away: 2.8},
	"WHU": {Overall: 3.0, Offensive: 3.1, Defensive: 2.8, Home: 3.2, Away: 2.8},
	"EVE": {Overall: 2.9, Offensive: 2.6, Defensive: 3.3, Home: 3.1, Away: 2.7},
	"WOL": {Overall: 2.7, Offensive: 2.8, Defensive: 2.6, Home: 2.9, Away: 2.5},
	"LEE": {Overall: 2.6, Offensive: 2.6, Defensive: 2.6, Home: 2.9, Away: 2.3},
	"BUR": {Overall: 2.4, Offensive: 2.2, Defensive: 2.7, Home: 2.6, Away: 2.2},
	"SUN": {Overall: 2.4, Offensive: 2.3, Defensive: 2.5, Home: 2.7, Away: 2.1},
	"LEI": {Overall: 2.5, Offensive: 2.6, Defensive: 2.3, Home: 2.7, Away: 2.3},
	"IPS": {Overall: 2.2, Offensive: 2.2, Defensive: 2.2, Home: 2.4, Away: 2.0},
	"SOU": {Overall: 2.0, Offensive: 2.0, Defensive: 2.0, Home: 2.2, Away: 1.8},
}

// TeamStrength returns the rating for a three-letter code
func TeamStrength(code string) (Strength, bool) {
	s, ok := teamStrengths[strings.ToUpper(code)]
	return s, ok
}

// Codes lists every rated club code
func Codes() []string {
	out := make([]string, 0, len(teamStrengths))
	for code := range teamStrengths {
		out = append(out, code)
	}
	return out
}

// aliases maps a normalised display name to a club code
var aliases = map[string]string{
	"arsenal":                  "ARS",
	"aston villa":              "AVL",
	"villa":                    "AVL",
	"bournemouth":              "BOU",
	"afc bournemouth":          "BOU",
	"brentford":                "BRE",
	"brighton":                 "BHA",
	"brighton and hove albion": "BHA",
	"brighton hove albion":     "BHA",
	"burnley":                  "BUR",
	"chelsea":                  "CHE",
	"crystal palace":           "CRY",
	"palace":                   "CRY",
	"everton":                  "EVE",
	"fulham":                   "FUL",
	"leeds":                    "LEE",
	"leeds united":             "LEE",
	"leicester":                "LEI",
	"leicester city":           "LEI",
	"ipswich":                  "IPS",
	"ipswich town":             "IPS",
	"liverpool":                "LIV",
	"man city":                 "MCI",
	"manchester city":          "MCI",
	"man utd":                  "MUN",
	"man united":               "MUN",
	"manchester united":        "MUN",
	"newcastle":                "NEW",
	"newcastle united":         "NEW",
	"nottingham forest":        "NFO",
	"nottm forest":             "NFO",
	"nott m forest":            "NFO",
	"forest":                   "NFO",
	"southampton":              "SOU",
	"sunderland":               "SUN",
	"spurs":                    "TOT",
	"tottenham":                "TOT",
	"tottenham hotspur":        "TOT",
	"west ham":                 "WHU",
	"west ham united":          "WHU",
	"wolves":                   "WOL",
	"wolverhampton":            "WOL",
	"wolverhampton wanderers":  "WOL",
}

func normalise(name string) string {
	name = strings.ReplaceAll(strings.ToLower(name), "&", " and ")
	var b strings.Builder
	space := false
	for _, r := range name {
		switch {
		case unicode.IsLetter(r):
			b.WriteRune(r)
			space = false
		case !space && b.Len() > 0:
			b.WriteByte(' ')
			space = true
		}
	}
	out := strings.TrimSpace(b.String())
	out = strings.TrimSuffix(out, " fc")
	return strings.TrimPrefix(out, "fc ")
}

// TeamCode maps a free-form display name or a code to the club code
func TeamCode(name string) (string, bool) {
	if _, ok := teamStrengths[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return strings.ToUpper(strings.TrimSpace(name)), true
	}
	code, ok := aliases[normalise(name)]
	return code, ok
}
