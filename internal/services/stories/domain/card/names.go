package card

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ReplaceNames substitutes whole-word, case-sensitive names in text and
// reports how many were replaced. Letters, digits and underscore of any
// script are word characters, so "José" never matches inside "Josélito".
// All names are replaced in one pass; a replacement is never renamed again.
func ReplaceNames(text string, names map[string]string) (string, int) {
	keys := make([]string, 0, len(names))
	for name := range names {
		if name != "" {
			keys = append(keys, name)
		}
	}
	if len(keys) == 0 {
		return text, 0
	}
	// Longest first so "Sam" never shadows "Samantha".
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	var (
		b        strings.Builder
		replaced int
		prev     rune
	)
	for i := 0; i < len(text); {
		if !isWordRune(prev) {
			if name, ok := nameAt(text[i:], keys); ok {
				b.WriteString(names[name])
				replaced++
				i += len(name)
				prev, _ = utf8.DecodeLastRuneInString(name)
				continue
			}
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		b.WriteString(text[i : i+size])
		prev = r
		i += size
	}
	return b.String(), replaced
}

// nameAt returns the first of names that text starts with as a whole word.
func nameAt(text string, names []string) (string, bool) {
	for _, name := range names {
		if !strings.HasPrefix(text, name) {
			continue
		}
		if rest := text[len(name):]; rest != "" {
			if next, _ := utf8.DecodeRuneInString(rest); isWordRune(next) {
				continue
			}
		}
		return name, true
	}
	return "", false
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
