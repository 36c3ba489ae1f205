package idcard

import (
	_ "embed"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed markers.yaml
var markersYAML []byte

type markerConfig struct {
	Markers struct {
		FullName         []string `yaml:"full_name"`
		DateOfBirth      []string `yaml:"date_of_birth"`
		GenderMale       []string `yaml:"gender_male"`
		GenderFemale     []string `yaml:"gender_female"`
		Nationality      []string `yaml:"nationality"`
		PlaceOfOrigin    []string `yaml:"place_of_origin"`
		PlaceOfResidence []string `yaml:"place_of_residence"`
	} `yaml:"markers"`
	Blocklist     []string `yaml:"blocklist"`
	Abbreviations []struct {
		From string `yaml:"from"`
		To   string `yaml:"to"`
	} `yaml:"abbreviations"`
}

func loadMarkerConfig() markerConfig {
	var cfg markerConfig
	if err := yaml.Unmarshal(markersYAML, &cfg); err != nil {
		// Embedded file, cannot fail on a valid build.
		panic("failed to unmarshal embedded markers.yaml: " + err.Error())
	}
	return cfg
}

// markerSet holds the uppercase forms of a marker list. Markers carrying
// diacritics additionally match their folded ASCII form when that form is
// long enough to be unambiguous ("QUÊ QUÁN" also hits "QUE QUAN", while
// "NỮ" must not collapse to "NU" or every NGUYEN would read as female).
type markerSet struct {
	patterns []string
}

// minFoldedLen guards against short folded markers matching unrelated text.
const minFoldedLen = 5

func newMarkerSet(markers []string) markerSet {
	var patterns []string
	seen := make(map[string]bool)
	add := func(p string) {
		if p != "" && !seen[p] {
			seen[p] = true
			patterns = append(patterns, p)
		}
	}
	for _, m := range markers {
		upper := strings.ToUpper(m)
		add(upper)
		if folded := removeDiacritics(upper); folded != upper && len(folded) >= minFoldedLen {
			add(folded)
		}
	}
	return markerSet{patterns: patterns}
}

// matches reports whether the uppercased token text contains any pattern.
func (s markerSet) matches(upperText string) bool {
	for _, p := range s.patterns {
		if strings.Contains(upperText, p) {
			return true
		}
	}
	return false
}

// removeDiacritics strips combining marks ("QUÊ QUÁN" -> "QUE QUAN").
func removeDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}
