package feed

import (
	"encoding/json"
	"os"
	"regexp"
	"strings"

	appLog "makersite/internal/log"
)

// CountryTable derives the canonical country for a raw region cell.
//
// The mapping file is a flat JSON object of country names as written in
// the sheet (usually Japanese) to canonical names, e.g.
//
//	{"フランス": "France", "アメリカ": "USA"}
//
// A region without a parenthetical qualifier belongs to the home
// country.
type CountryTable struct {
	mapping map[string]string
	home    string
}

// Aliases under which the home country may appear in mapped values.
// 「日本」「JP」表記ゆれを吸収する。
var homeAliases = map[string][]string{
	"Japan": {"japan", "日本", "jp"},
}

// parenRe matches a parenthetical suffix in either ASCII or full-width
// form: "パリ(フランス)" and "パリ（フランス）".
var parenRe = regexp.MustCompile(`[（(]([^）)]+)[）)]`)

// LoadCountryTable reads the mapping file. A missing or unreadable file
// degrades to an empty mapping: unmapped parenthetical names then pass
// through verbatim.
func LoadCountryTable(path, home string) *CountryTable {
	t := &CountryTable{
		mapping: map[string]string{},
		home:    home,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		appLog.Warn("country mapping unavailable, using raw names", "path", path, "reason", err.Error())
		return t
	}
	if err := json.Unmarshal(data, &t.mapping); err != nil {
		appLog.Error("country mapping unparsable, using raw names", err, "path", path)
		t.mapping = map[string]string{}
	}
	return t
}

// NewCountryTable builds a table from an in-memory mapping (tests,
// embedded defaults).
func NewCountryTable(mapping map[string]string, home string) *CountryTable {
	if mapping == nil {
		mapping = map[string]string{}
	}
	return &CountryTable{mapping: mapping, home: home}
}

// Home returns the configured home country.
func (t *CountryTable) Home() string {
	return t.home
}

// FromRegion extracts the country from a region cell.
//
//	"パリ(フランス)"        -> "France" (via mapping)
//	"東京都"                -> home country
//	"サンノゼ(Unknownland)" -> "Unknownland" (unmapped name passes through)
func (t *CountryTable) FromRegion(region string) string {
	m := parenRe.FindStringSubmatch(region)
	if m == nil {
		return t.home
	}
	name := strings.TrimSpace(m[1])
	if canonical, ok := t.mapping[name]; ok {
		return canonical
	}
	return name
}

// IsDomestic reports whether the given country is the home country,
// tolerating the home country's common aliases.
func (t *CountryTable) IsDomestic(country string) bool {
	if strings.EqualFold(country, t.home) {
		return true
	}
	for _, alias := range homeAliases[t.home] {
		if strings.EqualFold(country, alias) {
			return true
		}
	}
	return false
}
