package title

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// hiraganaBase/hiraganaEnd bound the contiguous Hiragana block that maps
// onto Katakana at a fixed +0x60 rune offset.
const (
	hiraganaBase = 0x3041
	hiraganaEnd  = 0x3096
	katakanaOffset = 0x60
)

// halfwidthKatakana maps full-width Katakana (and the handful of
// punctuation marks that travel with Japanese text) to their half-width
// equivalents. Voiced/semi-voiced forms expand to two half-width runes
// (base + combining mark), matching how real NetMD devices store titles.
var halfwidthKatakana = map[rune]string{
	'ア': "ｱ", 'イ': "ｲ", 'ウ': "ｳ", 'エ': "ｴ", 'オ': "ｵ",
	'カ': "ｶ", 'キ': "ｷ", 'ク': "ｸ", 'ケ': "ｹ", 'コ': "ｺ",
	'サ': "ｻ", 'シ': "ｼ", 'ス': "ｽ", 'セ': "ｾ", 'ソ': "ｿ",
	'タ': "ﾀ", 'チ': "ﾁ", 'ツ': "ﾂ", 'テ': "ﾃ", 'ト': "ﾄ",
	'ナ': "ﾅ", 'ニ': "ﾆ", 'ヌ': "ﾇ", 'ネ': "ﾈ", 'ノ': "ﾉ",
	'ハ': "ﾊ", 'ヒ': "ﾋ", 'フ': "ﾌ", 'ヘ': "ﾍ", 'ホ': "ﾎ",
	'マ': "ﾏ", 'ミ': "ﾐ", 'ム': "ﾑ", 'メ': "ﾒ", 'モ': "ﾓ",
	'ヤ': "ﾔ", 'ユ': "ﾕ", 'ヨ': "ﾖ",
	'ラ': "ﾗ", 'リ': "ﾘ", 'ル': "ﾙ", 'レ': "ﾚ", 'ロ': "ﾛ",
	'ワ': "ﾜ", 'ヲ': "ｦ", 'ン': "ﾝ",
	'ガ': "ｶﾞ", 'ギ': "ｷﾞ", 'グ': "ｸﾞ", 'ゲ': "ｹﾞ", 'ゴ': "ｺﾞ",
	'ザ': "ｻﾞ", 'ジ': "ｼﾞ", 'ズ': "ｽﾞ", 'ゼ': "ｾﾞ", 'ゾ': "ｿﾞ",
	'ダ': "ﾀﾞ", 'ヂ': "ﾁﾞ", 'ヅ': "ﾂﾞ", 'デ': "ﾃﾞ", 'ド': "ﾄﾞ",
	'バ': "ﾊﾞ", 'ビ': "ﾋﾞ", 'ブ': "ﾌﾞ", 'ベ': "ﾍﾞ", 'ボ': "ﾎﾞ",
	'パ': "ﾊﾟ", 'ピ': "ﾋﾟ", 'プ': "ﾌﾟ", 'ペ': "ﾍﾟ", 'ポ': "ﾎﾟ",
	'ァ': "ｧ", 'ィ': "ｨ", 'ゥ': "ｩ", 'ェ': "ｪ", 'ォ': "ｫ",
	'ャ': "ｬ", 'ュ': "ｭ", 'ョ': "ｮ", 'ッ': "ｯ",
	'ー': "ｰ", '、': "､", '。': "｡", '「': "｢", '」': "｣", '・': "･",
	'　': " ",
	// combining voiced/semi-voiced marks left behind by NFD decomposition
	'゙': "ﾞ", '゚': "ﾟ",
}

// halfwidthASCIIRune maps the full-width ASCII forms (U+FF01-U+FF5E) back to
// plain ASCII by undoing the fixed 0xFEE0 shift.
func halfwidthASCIIRune(r rune) (rune, bool) {
	if r >= 0xFF01 && r <= 0xFF5E {
		return r - 0xFEE0, true
	}
	return 0, false
}

func hiraganaToKatakana(r rune) rune {
	if r >= hiraganaBase && r <= hiraganaEnd {
		return r + katakanaOffset
	}
	return r
}

// HalfWidth normalizes s to the half-width character set NetMD titles
// store on the wire: full-width ASCII collapses to plain ASCII,
// Hiragana converts to Katakana before collapsing to half-width
// Katakana, and anything left unrepresentable falls back to a space
// (spec.md §4.7).
func HalfWidth(s string) string {
	s = nfdDecompose(s)
	var b strings.Builder
	for _, r := range s {
		if ascii, ok := halfwidthASCIIRune(r); ok {
			b.WriteRune(ascii)
			continue
		}
		k := hiraganaToKatakana(r)
		if hw, ok := halfwidthKatakana[k]; ok {
			b.WriteString(hw)
			continue
		}
		if r < 0x80 {
			b.WriteRune(r)
			continue
		}
		b.WriteByte(' ')
	}
	return b.String()
}

// nfdDecompose splits precomposed characters (e.g. diacritics) into base
// rune + combining marks so HalfWidth and SanitizeASCII can drop the
// marks and keep the base letter.
func nfdDecompose(s string) string {
	out := norm.NFD.String(s)
	var b strings.Builder
	for _, r := range out {
		if isCombiningMark(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isCombiningMark(r rune) bool {
	return r >= 0x0300 && r <= 0x036F
}
