package title

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// delimiters for the two disc-title encodings. Half-width is the plain
// ASCII grammar from spec.md §4.7; full-width substitutes the wide zero,
// semicolon, and slash-slash forms but keeps track-range digits ASCII.
type delimiters struct {
	discPrefix string
	sep        string
	term       string
}

var halfDelims = delimiters{discPrefix: "0;", sep: ";", term: "//"}
var fullDelims = delimiters{discPrefix: "０；", sep: "；", term: "／／"}

var groupPattern = regexp.MustCompile(`^(\d+)(?:-(\d+))?(.*)$`)

// ParseDiscTitle decomposes a decoded composite title string into the
// disc title and its groups, per the grammar
// "[0;<discTitle>//][<lo>-<hi>;<groupTitle>//]*" (spec.md §4.7). trackCount
// is used to synthesize the default (untitled) group covering every track
// index not claimed by a named group.
func ParseDiscTitle(decoded string, wide bool, trackCount int) (discTitle string, groups []Group, err error) {
	d := halfDelims
	if wide {
		d = fullDelims
	}
	rest := decoded
	if strings.HasPrefix(rest, d.discPrefix) {
		rest = rest[len(d.discPrefix):]
		if idx := strings.Index(rest, d.term); idx >= 0 {
			discTitle = rest[:idx]
			rest = rest[idx+len(d.term):]
		} else {
			discTitle = rest
			rest = ""
		}
	} else {
		// No structured "0;...//" wrapper at all: the device is storing a
		// bare title with no group data (spec.md §8 scenario S1).
		discTitle = decoded
		rest = ""
	}

	claimed := map[int]bool{}
	for rest != "" {
		idx := strings.Index(rest, d.sep)
		if idx < 0 {
			break
		}
		head := rest[:idx]
		tail := rest[idx+len(d.sep):]
		m := groupPattern.FindStringSubmatch(head)
		lo, hi := 0, 0
		if m != nil {
			lo, _ = strconv.Atoi(m[1])
			hi = lo
			if m[2] != "" {
				hi, _ = strconv.Atoi(m[2])
			}
		}
		end := strings.Index(tail, d.term)
		var title string
		if end >= 0 {
			title = tail[:end]
			rest = tail[end+len(d.term):]
		} else {
			title = tail
			rest = ""
		}
		var tracks []int
		for n := lo; n <= hi && n >= 1; n++ {
			tracks = append(tracks, n-1)
			if claimed[n-1] {
				return "", nil, ErrGroupOverlap
			}
			claimed[n-1] = true
		}
		t := title
		groups = append(groups, Group{Title: &t, Tracks: tracks})
	}

	var ungrouped []int
	for n := 0; n < trackCount; n++ {
		if !claimed[n] {
			ungrouped = append(ungrouped, n)
		}
	}
	all := make([]Group, 0, len(groups)+1)
	all = append(all, Group{Title: nil, Tracks: ungrouped})
	all = append(all, groups...)
	return discTitle, all, nil
}

// CompileDiscTitle composes the composite title string (half-width, or
// full-width when wide is set) from a disc title and its groups (the
// inverse of ParseDiscTitle), enforcing
// the 255-cell budget by dropping (not truncating) on overflow.
func CompileDiscTitle(discTitle string, groups []Group, wide bool) (string, bool) {
	d := halfDelims
	if wide {
		d = fullDelims
	}
	var b strings.Builder
	if discTitle != "" {
		b.WriteString(d.discPrefix)
		b.WriteString(discTitle)
		b.WriteString(d.term)
	}
	named := make([]Group, 0, len(groups))
	for _, g := range groups {
		if g.Title != nil {
			named = append(named, g)
		}
	}
	sort.SliceStable(named, func(a, c int) bool {
		return minTrack(named[a].Tracks) < minTrack(named[c].Tracks)
	})
	for _, g := range named {
		if len(g.Tracks) == 0 {
			continue
		}
		lo, hi := rangeOf(g.Tracks)
		b.WriteString(strconv.Itoa(lo + 1))
		if hi != lo {
			b.WriteString("-")
			b.WriteString(strconv.Itoa(hi + 1))
		}
		b.WriteString(d.sep)
		title := ""
		if wide && g.FullWidthTitle != nil {
			title = *g.FullWidthTitle
		} else if !wide {
			title = *g.Title
		}
		b.WriteString(title)
		b.WriteString(d.term)
	}
	out := b.String()
	cost, err := cellCost(out)
	if err != nil || cost > maxBudget {
		return "", false
	}
	return out, true
}

func minTrack(tracks []int) int {
	if len(tracks) == 0 {
		return 1 << 30
	}
	m := tracks[0]
	for _, t := range tracks[1:] {
		if t < m {
			m = t
		}
	}
	return m
}

func rangeOf(tracks []int) (lo, hi int) {
	lo, hi = tracks[0], tracks[0]
	for _, t := range tracks[1:] {
		if t < lo {
			lo = t
		}
		if t > hi {
			hi = t
		}
	}
	return lo, hi
}

// HasFullWidthContent reports whether the disc title or any group or
// track title in the set carries a distinct full-width variant worth emitting (spec.md
// §4.7: "emit the full-width variant only if" something actually uses it).
func HasFullWidthContent(discFullWidth string, groups []Group, trackFullWidths []string) bool {
	if discFullWidth != "" {
		return true
	}
	for _, g := range groups {
		if g.FullWidthTitle != nil && *g.FullWidthTitle != "" {
			return true
		}
	}
	for _, t := range trackFullWidths {
		if t != "" {
			return true
		}
	}
	return false
}
