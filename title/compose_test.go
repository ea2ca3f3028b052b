package title

import "testing"

func TestParseDiscTitleNoGroups(t *testing.T) {
	discTitle, groups, err := ParseDiscTitle("My Disc", false, 5)
	if err != nil {
		t.Fatalf("ParseDiscTitle: %v", err)
	}
	if discTitle != "My Disc" {
		t.Fatalf("discTitle = %q, want %q", discTitle, "My Disc")
	}
	if len(groups) != 1 {
		t.Fatalf("len(groups) = %d, want 1", len(groups))
	}
	if groups[0].Title != nil {
		t.Fatalf("expected untitled default group")
	}
	if len(groups[0].Tracks) != 5 {
		t.Fatalf("expected all 5 tracks ungrouped, got %v", groups[0].Tracks)
	}
}

func TestParseDiscTitleWithGroups(t *testing.T) {
	raw := "0;Album//1-3;Side A//4-5;Side B//"
	discTitle, groups, err := ParseDiscTitle(raw, false, 5)
	if err != nil {
		t.Fatalf("ParseDiscTitle: %v", err)
	}
	if discTitle != "Album" {
		t.Fatalf("discTitle = %q, want Album", discTitle)
	}
	if len(groups) != 3 {
		t.Fatalf("len(groups) = %d, want 3 (default + 2 named)", len(groups))
	}
	if groups[0].Title != nil || len(groups[0].Tracks) != 0 {
		t.Fatalf("expected empty default group, got %+v", groups[0])
	}
	if *groups[1].Title != "Side A" {
		t.Fatalf("groups[1].Title = %q, want Side A", *groups[1].Title)
	}
	want1 := []int{0, 1, 2}
	if !intsEqual(groups[1].Tracks, want1) {
		t.Fatalf("groups[1].Tracks = %v, want %v", groups[1].Tracks, want1)
	}
	if *groups[2].Title != "Side B" {
		t.Fatalf("groups[2].Title = %q, want Side B", *groups[2].Title)
	}
	want2 := []int{3, 4}
	if !intsEqual(groups[2].Tracks, want2) {
		t.Fatalf("groups[2].Tracks = %v, want %v", groups[2].Tracks, want2)
	}
}

func TestParseDiscTitleOverlappingGroupsIsError(t *testing.T) {
	raw := "0;Album//1-3;Side A//2-4;Side B//"
	_, _, err := ParseDiscTitle(raw, false, 5)
	if err != ErrGroupOverlap {
		t.Fatalf("expected ErrGroupOverlap, got %v", err)
	}
}

func TestRenamePreservesGroups(t *testing.T) {
	raw := "0;Old//1-2;G1//"
	_, groups, err := ParseDiscTitle(raw, false, 2)
	if err != nil {
		t.Fatalf("ParseDiscTitle: %v", err)
	}
	composed, ok := CompileDiscTitle("New", groups, false)
	if !ok {
		t.Fatalf("CompileDiscTitle: overflowed unexpectedly")
	}
	want := "0;New//1-2;G1//"
	if composed != want {
		t.Fatalf("composed = %q, want %q", composed, want)
	}
}

func intsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
