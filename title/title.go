/*Package title implements the NetMD disc/group title model (spec.md §4.7):
composing and decomposing the single delimited ASCII/Shift-JIS string
stored on disc, half/full-width normalization, and Shift-JIS transcoding.

Shift-JIS transcoding uses golang.org/x/text/encoding/japanese, the
standard ecosystem encoder for this charset — the same golang.org/x/...
family the corpus already depends on for x/time and x/sys.
*/
package title

import (
	"bytes"
	"fmt"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/encoding/japanese"
)

// Group mirrors netmd.Group without importing the netmd package (title
// is a leaf dependency of netmd, not the reverse).
type Group struct {
	Title          *string
	FullWidthTitle *string
	Tracks         []int
}

// maxCells is the 255-cell hard cap on a disc's title blob (spec.md §4.7,
// §8 property 3). Each "cell" is 7 bytes of Shift-JIS storage.
const (
	maxCells     = 255
	bytesPerCell = 7
	maxBudget    = maxCells * bytesPerCell
)

// ErrGroupOverlap is returned when a track index is claimed by more than
// one group, the Semantics/Group error named in spec.md §7.
var ErrGroupOverlap = fmt.Errorf("title: a track is listed in more than one group")

// EncodeShiftJIS encodes a UTF-8 string to Shift-JIS bytes. If the string
// contains characters with no Shift-JIS representation, the caller should
// fall back to the aggressive ASCII sanitizer (spec.md §4.7) via
// SanitizeASCII before retrying.
func EncodeShiftJIS(s string) ([]byte, error) {
	b, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("title: shift-jis encode: %w", err)
	}
	return b, nil
}

// DecodeShiftJIS decodes Shift-JIS bytes to a UTF-8 string.
func DecodeShiftJIS(b []byte) (string, error) {
	out, err := japanese.ShiftJIS.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("title: shift-jis decode: %w", err)
	}
	return string(out), nil
}

// SanitizeASCII strips everything that isn't encodable, used as the last
// resort when Shift-JIS encoding produces replacement characters
// (spec.md §4.7): NFD-decompose and drop all non-ASCII runes.
func SanitizeASCII(s string) string {
	decomposed := nfdDecompose(s)
	var buf bytes.Buffer
	for _, r := range decomposed {
		if r < 0x80 {
			buf.WriteRune(r)
		}
	}
	return buf.String()
}

// cellCost returns the Shift-JIS byte cost ("cells", 7 bytes each,
// spec.md §4.7) of encoding s, or an error if s cannot be Shift-JIS
// encoded at all.
func cellCost(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	b, err := EncodeShiftJIS(s)
	if err != nil {
		return 0, err
	}
	return len(b), nil
}

// isFullWidthRune reports whether r is already representable only in a
// full-width (double-byte-class) form, using East Asian width
// classification the same way the corpus would via go-runewidth.
func isFullWidthRune(r rune) bool {
	switch runewidth.RuneWidth(r) {
	case 2:
		return true
	}
	return false
}
