// Package idcard extracts structured identity fields from the ordered OCR
// token stream of a Vietnamese ID-card image. The extractor is a single
// left-to-right pass with one token of lookahead and two mutually exclusive
// address accumulation contexts.
package idcard

import (
	"strings"
	"unicode"
)

// Token is one OCR detection in reading order. Confidence is informational;
// the extractor applies no confidence filtering.
type Token struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// ExtractedIdentity holds the fields recovered from one card. Empty strings
// mean the field was not detected; partial results are normal.
type ExtractedIdentity struct {
	IDNumber         string `json:"id_number,omitempty"`
	FullName         string `json:"full_name,omitempty"`
	DateOfBirth      string `json:"date_of_birth,omitempty"`
	Gender           string `json:"gender,omitempty"`
	Nationality      string `json:"nationality,omitempty"`
	PlaceOfOrigin    string `json:"place_of_origin,omitempty"`
	PlaceOfResidence string `json:"place_of_residence,omitempty"`
}

// IsEmpty reports whether no field was detected.
func (e ExtractedIdentity) IsEmpty() bool {
	return e == ExtractedIdentity{}
}

// Extractor classifies OCR tokens against the configured marker tables.
// Construct once and share; Extract itself is stateless between calls.
type Extractor struct {
	fullName         markerSet
	dateOfBirth      markerSet
	genderMale       markerSet
	genderFemale     markerSet
	nationality      markerSet
	placeOfOrigin    markerSet
	placeOfResidence markerSet
	blocklist        []string
	abbreviations    []abbreviation
}

type abbreviation struct {
	from, to string
}

// NewExtractor builds an extractor from the embedded marker tables.
func NewExtractor() *Extractor {
	cfg := loadMarkerConfig()

	abbrevs := make([]abbreviation, 0, len(cfg.Abbreviations))
	for _, a := range cfg.Abbreviations {
		abbrevs = append(abbrevs, abbreviation{from: a.From, to: a.To})
	}

	return &Extractor{
		fullName:         newMarkerSet(cfg.Markers.FullName),
		dateOfBirth:      newMarkerSet(cfg.Markers.DateOfBirth),
		genderMale:       newMarkerSet(cfg.Markers.GenderMale),
		genderFemale:     newMarkerSet(cfg.Markers.GenderFemale),
		nationality:      newMarkerSet(cfg.Markers.Nationality),
		placeOfOrigin:    newMarkerSet(cfg.Markers.PlaceOfOrigin),
		placeOfResidence: newMarkerSet(cfg.Markers.PlaceOfResidence),
		blocklist:        cfg.Blocklist,
		abbreviations:    abbrevs,
	}
}

// Extract runs the token-stream state machine and the address normalization
// pass. An empty token list yields an empty identity, never an error.
func (e *Extractor) Extract(tokens []Token) ExtractedIdentity {
	var out ExtractedIdentity

	accumulatingOrigin := false
	accumulatingResidence := false
	var originBuf, residenceBuf []string

	for idx := 0; idx < len(tokens); idx++ {
		text := strings.TrimSpace(tokens[idx].Text)
		upper := strings.ToUpper(text)

		// 12-digit national id, taken verbatim.
		if len(text) == 12 && isAllDigits(text) {
			out.IDNumber = text
			continue
		}

		// Full name follows its header on the next line.
		if e.fullName.matches(upper) {
			if idx+1 < len(tokens) {
				out.FullName = strings.TrimSpace(tokens[idx+1].Text)
				idx++
			}
			continue
		}

		// Date of birth follows its header; normalized to dd/mm/yyyy.
		if e.dateOfBirth.matches(upper) {
			if idx+1 < len(tokens) {
				if date, ok := normalizeDate(strings.TrimSpace(tokens[idx+1].Text)); ok {
					out.DateOfBirth = date
				}
				idx++
			}
			continue
		}

		// Gender markers, male checked first so overlapping substrings
		// resolve to "Male".
		if e.genderMale.matches(upper) {
			out.Gender = "Male"
			continue
		}
		if e.genderFemale.matches(upper) {
			out.Gender = "Female"
			continue
		}

		// Nationality is a fixed constant; the printed value is not parsed.
		if e.nationality.matches(upper) {
			out.Nationality = "Viet Nam"
			continue
		}

		// Address headers switch the accumulation context.
		if e.placeOfOrigin.matches(upper) {
			accumulatingOrigin = true
			accumulatingResidence = false
			continue
		}
		if e.placeOfResidence.matches(upper) {
			accumulatingResidence = true
			accumulatingOrigin = false
			continue
		}

		if accumulatingOrigin && e.isAddressText(text, upper) {
			originBuf = append(originBuf, text)
			continue
		}
		if accumulatingResidence && e.isAddressText(text, upper) {
			residenceBuf = append(residenceBuf, text)
			continue
		}
	}

	if len(originBuf) > 0 {
		out.PlaceOfOrigin = e.normalizeAddress(strings.Join(originBuf, ", "))
	}
	if len(residenceBuf) > 0 {
		out.PlaceOfResidence = e.normalizeAddress(strings.Join(residenceBuf, ", "))
	}

	return out
}

// isAddressText accepts tokens with at least one letter, no digits, and no
// field keyword, so a following header never leaks into an address buffer.
func (e *Extractor) isAddressText(text, upper string) bool {
	hasLetter := false
	for _, r := range text {
		if unicode.IsDigit(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	if !hasLetter {
		return false
	}
	for _, keyword := range e.blocklist {
		if strings.Contains(upper, keyword) {
			return false
		}
	}
	return true
}

// normalizeDate turns "01-02-1990" into "01/02/1990". Anything that does
// not split into exactly three non-empty parts is rejected.
func normalizeDate(raw string) (string, bool) {
	parts := strings.Split(strings.ReplaceAll(raw, "-", "/"), "/")
	if len(parts) != 3 {
		return "", false
	}
	for _, p := range parts {
		if p == "" {
			return "", false
		}
	}
	return strings.Join(parts, "/"), true
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
