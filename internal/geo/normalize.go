package geo

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// aliasTable maps cleaned spelling variants to their canonical region key.
// Keys are in cleaned form (lower case, marks stripped, separators collapsed
// to underscore), so lookup happens after the generic cleanup pass. Canonical
// values are fixed points of the cleanup, which keeps Normalize idempotent.
var aliasTable = map[string]string{
	// Sana'a and the capital district
	"sana":             "sanaa",
	"sana_a":           "sanaa",
	"sanaa_city":       "sanaa",
	"amanat_al_asimah": "sanaa",
	// Lahj
	"lahij": "lahj",
	// Aden
	"adan": "aden",
	// Taizz
	"ta_izz": "taizz",
	"taiz":   "taizz",
	// Al Dhale'e
	"ad_dali":  "al_dhalee",
	"al_dali":  "al_dhalee",
	"ad_dhale": "al_dhalee",
	"al_dhale": "al_dhalee",
	// Saada
	"sadah":  "saada",
	"sa_dah": "saada",
	"saadah": "saada",
	// Marib
	"mareb":  "marib",
	"ma_rib": "marib",
	// Al Hudaydah
	"hudaydah":    "al_hudaydah",
	"hodeidah":    "al_hudaydah",
	"al_hodeidah": "al_hudaydah",
}

// apostropheStripper removes the apostrophe and quotation variants that show
// up in transliterated Arabic place names.
var apostropheStripper = strings.NewReplacer(
	"'", "",
	"`", "",
	"‘", "", // left single quotation
	"’", "", // right single quotation
	"ʻ", "", // modifier letter turned comma
	"ʼ", "", // modifier letter apostrophe
	"ʿ", "", // modifier letter left half ring (ʿ)
	"ʾ", "", // modifier letter right half ring (ʾ)
)

// marksRemover strips combining marks left behind by NFD decomposition.
var marksRemover = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalizes a raw region or market name into the stable key
// used to join records across datasets. Empty or blank input yields the empty
// string; Normalize never fails.
func Normalize(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	s := strings.ToLower(raw)

	if stripped, _, err := transform.String(marksRemover, s); err == nil {
		s = stripped
	}
	s = apostropheStripper.Replace(s)

	s = strings.TrimSuffix(strings.TrimSpace(s), " governorate")

	// Collapse runs of whitespace, underscores, and hyphens into a single
	// underscore so "Ad Dali", "ad-dali", and "ad_dali" share one key.
	var b strings.Builder
	b.Grow(len(s))
	pendingSep := false
	for _, r := range s {
		if unicode.IsSpace(r) || r == '_' || r == '-' {
			pendingSep = true
			continue
		}
		if pendingSep && b.Len() > 0 {
			b.WriteByte('_')
		}
		pendingSep = false
		b.WriteRune(r)
	}
	s = b.String()

	if canonical, ok := aliasTable[s]; ok {
		return canonical
	}
	return s
}
