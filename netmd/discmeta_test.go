package netmd

import (
	"testing"

	"github.com/bdube/netmd/query"
)

// scriptedReply builds a full status-byte-prefixed AV/C reply by
// formatting template against values behind the given status byte, for
// tests that need to hand-construct realistic wire replies.
func scriptedReply(t *testing.T, status byte, template string, values ...interface{}) []byte {
	t.Helper()
	body, err := query.FormatQuery(template, values...)
	if err != nil {
		t.Fatalf("FormatQuery: %v", err)
	}
	return append([]byte{status}, body...)
}

func TestDiscCapacityHalvesImplausibleValues(t *testing.T) {
	// used/total/left each encode an absurdly large time (> implausibleCeiling)
	// that must be halved at least once before being returned.
	reply := scriptedReply(t, respAccepted, "18 06 00 30 80 03 00 %B %B %B %W %B %B %B %W %B %B %B %W",
		uint64(40), uint64(0), uint64(0), uint64(0),
		uint64(40), uint64(0), uint64(0), uint64(0),
		uint64(40), uint64(0), uint64(0), uint64(0))

	fc := &fakeController{
		pollReplies: idlePollThenReady(byte(len(reply))),
		replies:     [][]byte{reply},
	}
	i := newTestInterface(fc)
	used, total, left, err := i.DiscCapacity()
	if err != nil {
		t.Fatalf("DiscCapacity: %v", err)
	}
	const ceiling = 512 * 60 * 82
	if used.FramesTotal() > ceiling || total.FramesTotal() > ceiling || left.FramesTotal() > ceiling {
		t.Fatalf("expected halved capacities under %d frames, got used=%d total=%d left=%d",
			ceiling, used.FramesTotal(), total.FramesTotal(), left.FramesTotal())
	}
}

func TestTrackEncodingDecodesCodecAndChannels(t *testing.T) {
	reply := scriptedReply(t, respAccepted, "18 08 00 10 11 %w %b %b", uint64(2), uint64(0x92), uint64(0x01))
	fc := &fakeController{
		pollReplies: idlePollThenReady(byte(len(reply))),
		replies:     [][]byte{reply},
	}
	i := newTestInterface(fc)
	enc, ch, err := i.TrackEncoding(2)
	if err != nil {
		t.Fatalf("TrackEncoding: %v", err)
	}
	if enc != EncodingLP2 {
		t.Fatalf("enc = %v, want LP2", enc)
	}
	if ch != ChannelsMono {
		t.Fatalf("ch = %v, want mono", ch)
	}
}

func TestTrackFlagsDecodesProtection(t *testing.T) {
	reply := scriptedReply(t, respAccepted, "18 08 00 10 12 %w %b", uint64(0), uint64(0x03))
	fc := &fakeController{
		pollReplies: idlePollThenReady(byte(len(reply))),
		replies:     [][]byte{reply},
	}
	i := newTestInterface(fc)
	flag, err := i.TrackFlags(0)
	if err != nil {
		t.Fatalf("TrackFlags: %v", err)
	}
	if flag != TrackProtected {
		t.Fatalf("flag = %v, want protected", flag)
	}
}

func TestDescriptorBracketAlwaysCloses(t *testing.T) {
	openReply := []byte{respAccepted}
	closeReply := []byte{respAccepted}
	bodyReply := scriptedReply(t, respAccepted, "18 01 00 30 80 04 %b", uint64(0x03))

	fc := &fakeController{
		pollReplies: idlePollThenReady(byte(len(bodyReply))),
		replies:     [][]byte{openReply, bodyReply, closeReply},
	}
	i := newTestInterface(fc)
	flags, err := i.DiscFlags()
	if err != nil {
		t.Fatalf("DiscFlags: %v", err)
	}
	if flags != 0x03 {
		t.Fatalf("flags = %#x, want 0x03", flags)
	}
	if len(fc.sendCalls) != 3 {
		t.Fatalf("expected open+body+close = 3 sends, got %d", len(fc.sendCalls))
	}
}
