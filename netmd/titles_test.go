package netmd

import (
	"strings"
	"testing"
)

// singleChunkTitleReplies builds the scripted poll/reply sequence for one
// descriptor-bracketed raw-title read that fits in a single chunk.
func singleChunkTitleReplies(t *testing.T, raw string) *fakeController {
	t.Helper()
	openReply := []byte{respAccepted}
	closeReply := []byte{respAccepted}
	bodyReply := scriptedReply(t, respAccepted, "18 06 00 30 00 0a 00 %b 00 %w 00 %w 00 00 %*",
		uint64(0), uint64(0), uint64(len(raw)), []byte(raw))
	return &fakeController{
		pollReplies: idlePollThenReady(byte(len(bodyReply))),
		replies:     [][]byte{openReply, bodyReply, closeReply},
	}
}

func TestRawDiscTitleSingleChunk(t *testing.T) {
	fc := singleChunkTitleReplies(t, "My Disc")
	i := newTestInterface(fc)
	got, err := i.RawDiscTitle(false)
	if err != nil {
		t.Fatalf("RawDiscTitle: %v", err)
	}
	if got != "My Disc" {
		t.Fatalf("RawDiscTitle = %q, want %q", got, "My Disc")
	}
}

func TestDiscTitleAndGroupsNoGroups(t *testing.T) {
	fc := singleChunkTitleReplies(t, "My Disc")
	i := newTestInterface(fc)
	discTitle, groups, err := i.discTitleAndGroups(false, 3)
	if err != nil {
		t.Fatalf("discTitleAndGroups: %v", err)
	}
	if discTitle != "My Disc" {
		t.Fatalf("discTitle = %q, want %q", discTitle, "My Disc")
	}
	if len(groups) != 1 || len(groups[0].Tracks) != 3 {
		t.Fatalf("groups = %+v, want one default group with 3 tracks", groups)
	}
}

func TestSetDiscTitleWritesAndReloadsOnNonSharp(t *testing.T) {
	writeReply := []byte{respAccepted}
	openReadReply := []byte{respAccepted}
	closeReply := []byte{respAccepted}
	fc := &fakeController{
		pollReplies: idlePollThenReady(byte(len(writeReply))),
		replies:     [][]byte{writeReply, openReadReply, closeReply},
	}
	i := newTestInterface(fc)
	if err := i.SetDiscTitle("New Title", nil, false); err != nil {
		t.Fatalf("SetDiscTitle: %v", err)
	}
	// open-write, the write command, close, then the close-open-close
	// reload cycle (open-read, close) required on non-Sharp = 5 sends.
	if len(fc.sendCalls) != 5 {
		t.Fatalf("expected 5 sends (open-write, write, close, open-read, close), got %d", len(fc.sendCalls))
	}
	lastWrite := fc.sendCalls[1]
	if !strings.Contains(string(lastWrite), "New Title") {
		t.Fatalf("expected command payload to contain the new title bytes")
	}
}
