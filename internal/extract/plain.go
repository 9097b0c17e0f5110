package extract

import (
	"strings"
	"unicode/utf8"
)

// extractPlain returns content as a string without a leading byte order mark.
// Invalid UTF-8 sequences are replaced with the replacement character.
func extractPlain(content []byte) (string, error) {
	text := string(content)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "\uFFFD")
	}
	return strings.TrimPrefix(text, "\uFEFF"), nil
}
