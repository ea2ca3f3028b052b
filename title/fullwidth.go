package title

import "strings"

// fullwidthTransliterate covers the handful of Latin letters that carry
// a conventional full-width Japanese transliteration beyond the fixed
// ASCII shift (German umlauts and eszett, the most common case seen in
// imported CD-Text titles).
var fullwidthTransliterate = map[rune]string{
	'ä': "ae", 'ö': "oe", 'ü': "ue",
	'Ä': "AE", 'Ö': "OE", 'Ü': "UE",
	'ß': "ss",
}

func fullwidthASCIIRune(r rune) rune {
	switch {
	case r == ' ':
		return '　'
	case r >= 0x21 && r <= 0x7E:
		return r + 0xFEE0
	default:
		return r
	}
}

// FullWidth produces the full-width companion string for s: printable
// ASCII shifts into the full-width Unicode block, space becomes the
// ideographic space, and the handful of transliterable Latin letters
// expand before shifting (spec.md §4.7 full-width variant).
func FullWidth(s string) string {
	var b strings.Builder
	for _, r := range s {
		if repl, ok := fullwidthTransliterate[r]; ok {
			for _, rr := range repl {
				b.WriteRune(fullwidthASCIIRune(rr))
			}
			continue
		}
		for _, dr := range nfdDecompose(string(r)) {
			if isFullWidthRune(dr) {
				b.WriteRune(dr)
				continue
			}
			b.WriteRune(fullwidthASCIIRune(dr))
		}
	}
	return b.String()
}
