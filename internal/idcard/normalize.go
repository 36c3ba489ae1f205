package idcard

import "strings"

// normalizeAddress cleans a joined address buffer: collapse whitespace,
// expand the common abbreviations, then drop empty comma segments.
func (e *Extractor) normalizeAddress(addr string) string {
	addr = strings.Join(strings.Fields(addr), " ")

	for _, a := range e.abbreviations {
		addr = strings.ReplaceAll(addr, a.from, a.to)
	}

	segments := strings.Split(addr, ",")
	kept := segments[:0]
	for _, seg := range segments {
		if trimmed := strings.TrimSpace(seg); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, ", ")
}
