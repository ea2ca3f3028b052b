package transport

import (
	"testing"
	"time"
)

// fakeController records every Control() call and replays scripted
// responses for the poll request (0x01), letting tests drive the
// protocol-level retry logic deterministically.
type fakeController struct {
	pollReplies [][4]byte
	pollCalls   int
	sendCalls   [][]byte
	replyBytes  []byte
	replyReq    uint8
}

func (f *fakeController) Control(rType, request uint8, val, idx uint16, data []byte) (int, error) {
	switch request {
	case reqPoll:
		i := f.pollCalls
		if i >= len(f.pollReplies) {
			i = len(f.pollReplies) - 1
		}
		copy(data, f.pollReplies[i][:])
		f.pollCalls++
		return len(data), nil
	case reqCommand, reqFactory:
		if rType == bmOut {
			f.sendCalls = append(f.sendCalls, append([]byte{}, data...))
			return len(data), nil
		}
		f.replyReq = request
		n := copy(data, f.replyBytes)
		return n, nil
	case reqReply:
		n := copy(data, f.replyBytes)
		return n, nil
	}
	return 0, nil
}

func TestSendCommandRequiresIdlePoll(t *testing.T) {
	fc := &fakeController{pollReplies: [][4]byte{{0, 0, 1, 0}}}
	tr := &Transport{ctrl: fc}
	err := tr.SendCommand([]byte{0x18, 0xc3}, false)
	if err != ErrNotReady {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
}

func TestSendCommandWhenIdle(t *testing.T) {
	fc := &fakeController{pollReplies: [][4]byte{{0, 0, 0, 0}}}
	tr := &Transport{ctrl: fc}
	payload := []byte{0x18, 0xc3, 0xff, 0x75, 0, 0, 0}
	if err := tr.SendCommand(payload, false); err != nil {
		t.Fatal(err)
	}
	if len(fc.sendCalls) != 1 {
		t.Fatalf("expected 1 send, got %d", len(fc.sendCalls))
	}
}

func TestReadReplyRetriesUntilNonZeroLength(t *testing.T) {
	var slept []time.Duration
	orig := sleep
	sleep = func(d time.Duration) { slept = append(slept, d) }
	defer func() { sleep = orig }()

	fc := &fakeController{
		pollReplies: [][4]byte{
			{0, 0, 0, 0},
			{0, 0, 0, 0},
			{0, 0, 7, 0},
		},
		replyBytes: []byte{0x09, 1, 2, 3, 4, 5, 6},
	}
	tr := &Transport{ctrl: fc}
	reply, err := tr.ReadReply(0, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(reply) != 7 {
		t.Fatalf("expected 7 bytes, got %d", len(reply))
	}
	if len(slept) != 2 {
		t.Fatalf("expected 2 sleeps before success, got %d", len(slept))
	}
	if slept[0] != PollBackoff(1) || slept[1] != PollBackoff(2) {
		t.Fatalf("unexpected sleep sequence: %v", slept)
	}
}

func TestReadReplyTimesOutAfter40Polls(t *testing.T) {
	orig := sleep
	sleep = func(time.Duration) {}
	defer func() { sleep = orig }()

	fc := &fakeController{pollReplies: [][4]byte{{0, 0, 0, 0}}}
	tr := &Transport{ctrl: fc}
	_, err := tr.ReadReply(0, false)
	if err != ErrTimeout {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if fc.pollCalls != maxPollTries {
		t.Fatalf("expected exactly %d polls, got %d", maxPollTries, fc.pollCalls)
	}
}

func TestPollBackoffSequence(t *testing.T) {
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 0},
		{1, 10 * time.Millisecond},
		{2, 30 * time.Millisecond},
		{3, 70 * time.Millisecond},
	}
	for _, c := range cases {
		if got := PollBackoff(c.attempt); got != c.want {
			t.Errorf("PollBackoff(%d) = %v, want %v", c.attempt, got, c.want)
		}
	}
}

func TestInterimBackoffSequence(t *testing.T) {
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 0},
		{1, 100 * time.Millisecond},
		{2, 300 * time.Millisecond},
		{3, 700 * time.Millisecond},
	}
	for _, c := range cases {
		if got := InterimBackoff(c.attempt); got != c.want {
			t.Errorf("InterimBackoff(%d) = %v, want %v", c.attempt, got, c.want)
		}
	}
}

type fakeBulk struct {
	chunks [][]byte
	pos    int
}

func (f *fakeBulk) Read(p []byte) (int, error) {
	chunk := f.chunks[f.pos]
	f.pos++
	n := copy(p, chunk)
	return n, nil
}

func TestReadBulkConcatenatesChunks(t *testing.T) {
	fb := &fakeBulk{chunks: [][]byte{{1, 2}, {3, 4}, {5}}}
	tr := &Transport{in: fb}
	out, err := tr.ReadBulk(5, 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{1, 2, 3, 4, 5}
	if len(out) != len(want) {
		t.Fatalf("got %v want %v", out, want)
	}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("got %v want %v", out, want)
		}
	}
}
