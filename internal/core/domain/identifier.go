package domain

import (
	"strings"
	"unicode"
)

// IdentifierBatch is a deduplicated set of tax identifiers parsed from one input string.
// Iteration order is stable for a given batch but carries no meaning.
type IdentifierBatch struct {
	ids []string
}

// IsValidIdentifierInput reports whether raw only consists of ASCII digits, whitespace and commas
// and contains at least one digit.
func IsValidIdentifierInput(raw string) bool {
	var digits int

	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == ',' || unicode.IsSpace(r):
		default:
			return false
		}
	}

	return digits > 0
}

// BuildIdentifierBatch splits raw on runs of whitespace and commas and collapses duplicates.
func BuildIdentifierBatch(raw string) IdentifierBatch {
	tokens := strings.FieldsFunc(raw, isSeparator)

	seen := make(map[string]struct{}, len(tokens))
	ids := make([]string, 0, len(tokens))

	for _, token := range tokens {
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		ids = append(ids, token)
	}

	return IdentifierBatch{ids: ids}
}

// ParseIdentifiers validates raw and builds a batch from it.
func ParseIdentifiers(raw string) (IdentifierBatch, error) {
	if !IsValidIdentifierInput(raw) {
		return IdentifierBatch{}, ErrInvalidIdentifiers
	}

	return BuildIdentifierBatch(raw), nil
}

// Len returns the number of distinct identifiers.
func (b IdentifierBatch) Len() int {
	return len(b.ids)
}

// IDs returns a copy of the batch members.
func (b IdentifierBatch) IDs() []string {
	out := make([]string, len(b.ids))
	copy(out, b.ids)
	return out
}

func isSeparator(r rune) bool {
	return r == ',' || unicode.IsSpace(r)
}
