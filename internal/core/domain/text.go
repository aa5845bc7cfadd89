package domain

import "strings"

// Mojibake left behind when U+FFFD was decoded as Latin-1 somewhere upstream.
const mojibakeReplacement = "ï¿½"

var textReplacer = strings.NewReplacer(
	"\n", " ",
	mojibakeReplacement, " ",
	"\uFFFD", " ",
)

// CleanText normalises text pulled from under a highlight: invalid UTF-8 is
// dropped, newlines and replacement glyphs become spaces, and the result is
// trimmed. Runs of inner spaces are kept as they are.
func CleanText(raw string) string {
	text := strings.ToValidUTF8(raw, "")
	text = textReplacer.Replace(text)
	return strings.TrimSpace(text)
}
