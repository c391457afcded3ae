package customers

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// DeriveShortName builds the customer id scope key from a full name: fold
// Vietnamese diacritics, take the initial of every word except the last, then
// append the last word in full, uppercased. "Nguyễn Văn A" becomes "NVA",
// "Trần Văn Hùng" becomes "TVHUNG".
func DeriveShortName(fullName string) string {
	folded, _, err := transform.String(foldDiacritics, fullName)
	if err != nil {
		folded = fullName
	}
	// Đ is a base letter, not a combining mark, so NFD leaves it alone.
	folded = strings.NewReplacer("Đ", "D", "đ", "d").Replace(folded)

	var words []string
	for _, w := range strings.Fields(folded) {
		var b strings.Builder
		for _, r := range w {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(r)
			}
		}
		if b.Len() > 0 {
			words = append(words, strings.ToUpper(b.String()))
		}
	}
	if len(words) == 0 {
		return ""
	}
	if len(words) == 1 {
		return words[0]
	}

	var b strings.Builder
	for _, w := range words[:len(words)-1] {
		b.WriteString(w[:1])
	}
	b.WriteString(words[len(words)-1])
	return b.String()
}
