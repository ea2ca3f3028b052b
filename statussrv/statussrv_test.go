package statussrv

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bdube/netmd/deviceid"
	"github.com/bdube/netmd/netmd"
	"github.com/bdube/netmd/transport"
)

// fakeController is the minimal control-transfer double needed to drive
// an Interface through a single poll-then-reply cycle, mirroring
// netmd's own test fakes.
type fakeController struct {
	calls int
}

func (f *fakeController) Control(rType, request uint8, val, idx uint16, data []byte) (int, error) {
	f.calls++
	if len(data) == 4 {
		// poll reply: byte 2 doubles as the busy flag and the low byte of
		// the reply length, so a non-zero value makes SendCommand fail
		// with ErrNotReady on the first poll - the round trip fails fast
		// and the PollBackoff retry loop never runs in this test.
		data[0] = 1
		data[2] = 1
		data[3] = 0
		return 4, nil
	}
	// never reached: no command gets past the busy poll above.
	return len(data), nil
}

func TestStatusRouterReturns500OnCommunicationFailure(t *testing.T) {
	tr := transport.NewForTesting(&fakeController{}, nil, nil)
	iface := netmd.New(tr, deviceid.ID{VendorID: 0x054c, ProductID: 0x0034, Name: "Test Recorder"})
	srv := New(iface, nil)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/status")
	if err != nil {
		t.Fatalf("GET /status: %v", err)
	}
	defer resp.Body.Close()
	// the fake always reports busy, so the round trip fails and the
	// handler must surface it as a 500, never panic.
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
}
