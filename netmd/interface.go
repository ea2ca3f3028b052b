/*Package netmd implements the typed NetMD operations (playback, titles,
capacity, encoding, move/erase, upload) built from the transport and query
layers, bracketed by the descriptor FSM where the device requires it
(spec.md §4.3, §4.4).
*/
package netmd

import (
	"log"
	"time"

	"github.com/bdube/netmd/deviceid"
	"github.com/bdube/netmd/query"
	"github.com/bdube/netmd/transport"
)

// AV/C response status bytes (spec.md §4.4, §6).
const (
	respNotImplemented byte = 0x08
	respAccepted       byte = 0x09
	respRejected       byte = 0x0a
	respInTransition   byte = 0x0b
	respImplemented    byte = 0x0c
	respChanged        byte = 0x0d
	respInterim        byte = 0x0f
)

// maxInterim is the number of interim re-read retries tolerated before
// MaxRetries is returned (spec.md §4.4, §8 property 7).
const maxInterim = 4

// sleep is overridable in tests.
var sleep = time.Sleep

// Interface is the single-consumer, typed NetMD driver. All methods
// require exclusive mutable access: the type enforces one in-flight
// request per device (spec.md §5) simply by not being safe for
// concurrent use, the same contract comm.RemoteDevice makes explicit in
// the corpus this module is grounded on.
type Interface struct {
	tr     *transport.Transport
	Device deviceid.ID
	Log    *log.Logger

	secureSessionKey  [8]byte
	secureSessionOpen bool
}

// New wraps an already-open Transport as a typed Interface.
func New(tr *transport.Transport, dev deviceid.ID) *Interface {
	return &Interface{tr: tr, Device: dev, Log: log.Default()}
}

// DeviceName renders the bound device's friendly name, per
// SPEC_FULL.md §12 (supplemented from original_source).
func (i *Interface) DeviceName() string {
	return i.Device.String()
}

// roundTrip sends payload and implements the response retry FSM
// (spec.md §4.4): Interim replies are retried up to maxInterim times
// with an exponential backoff unless acceptInterim is set, in which case
// the first Interim reply is returned directly to the caller.
func (i *Interface) roundTrip(payload []byte, acceptInterim, factory bool, overrideLen uint16) ([]byte, error) {
	if err := i.tr.SendCommand(payload, factory); err != nil {
		return nil, wrapErr(KindCommunication, err)
	}
	for attempt := 0; attempt <= maxInterim; attempt++ {
		sleep(transport.InterimBackoff(attempt))
		reply, err := i.tr.ReadReply(overrideLen, factory)
		if err != nil {
			return nil, wrapErr(KindCommunication, err)
		}
		if len(reply) == 0 {
			return nil, newErr(KindInvalidStatus, "empty reply")
		}
		switch reply[0] {
		case respNotImplemented:
			return nil, newErr(KindNotImplemented, "")
		case respRejected:
			return nil, newErr(KindRejected, "")
		case respInterim:
			if acceptInterim {
				return reply, nil
			}
			if attempt == maxInterim {
				return nil, newErr(KindMaxRetries, "")
			}
			continue
		case respAccepted, respImplemented:
			return reply, nil
		default:
			return nil, newErr(KindUnknown, "unexpected status byte")
		}
	}
	return nil, newErr(KindMaxRetries, "")
}

// send formats template against values and runs it through the response
// FSM, a convenience used by most operations below.
func (i *Interface) send(template string, acceptInterim bool, values ...interface{}) ([]byte, error) {
	payload, err := query.FormatQuery(template, values...)
	if err != nil {
		return nil, wrapQueryErr(err)
	}
	return i.roundTrip(payload, acceptInterim, false, 0)
}

// scanReply is a helper that scans a reply against replyTemplate,
// wrapping query errors into the InterfaceError sum.
func scanReply(reply []byte, replyTemplate string) ([]interface{}, error) {
	vals, err := query.ScanQuery(reply, replyTemplate)
	if err != nil {
		return nil, wrapQueryErr(err)
	}
	return vals, nil
}
