/*Package transport implements the three vendor control-transfer primitives
NetMD communication rides on: poll, send command, and read reply, plus
bulk in/out framing for track upload/download.

It owns one USB interface via github.com/google/gousb the same way the
corpus's usbtmc package owns an interface for USBTMC framing: gousb is the
USB HAL this package wraps, not something it reimplements. The control and
bulk operations are expressed against small interfaces (controller,
bulkReader, bulkWriter) so the protocol-level retry/backoff logic can be
exercised in tests without a physical device, matching the corpus's habit
(see comm.Communicator) of interface-first design around I/O.
*/
package transport

import (
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/google/gousb"
)

// Vendor control-transfer request codes (spec.md §6).
const (
	reqPoll      = 0x01
	reqCommand   = 0x80
	reqReply     = 0x81
	reqFactory   = 0xff
	bulkInEP     = 1
	bulkOutEP    = 2
	maxPollTries = 40
)

// bmRequestType values for vendor, interface-recipient control transfers.
const (
	bmIn  = 0xc1 // device-to-host, vendor, interface
	bmOut = 0x41 // host-to-device, vendor, interface
)

// Errors returned by Transport methods.
var (
	ErrTimeout       = fmt.Errorf("transport: poll timed out waiting for a reply")
	ErrNotReady      = fmt.Errorf("transport: device reported not-ready on poll")
	ErrInvalidResult = fmt.Errorf("transport: device returned an invalid result")
)

// controller is the subset of *gousb.Device used for vendor control
// transfers; satisfied by *gousb.Device in production.
type controller interface {
	Control(rType, request uint8, val, idx uint16, data []byte) (int, error)
}

type bulkReader interface {
	Read(p []byte) (int, error)
}

type bulkWriter interface {
	Write(p []byte) (int, error)
}

// Transport is the low-level USB vendor-transfer driver for one NetMD
// interface. It is not safe for concurrent use: callers must serialize
// poll/send/read sequences themselves (spec.md §5).
type Transport struct {
	ctrl controller
	in   bulkReader
	out  bulkWriter
	done func()
}

// Open opens the default interface of dev and binds its bulk endpoints.
func Open(dev *gousb.Device) (*Transport, error) {
	if err := dev.SetAutoDetach(true); err != nil {
		return nil, fmt.Errorf("transport: set auto detach: %w", err)
	}
	iface, done, err := dev.DefaultInterface()
	if err != nil {
		return nil, fmt.Errorf("transport: claim interface: %w", err)
	}
	in, err := iface.InEndpoint(bulkInEP)
	if err != nil {
		done()
		return nil, fmt.Errorf("transport: bulk in endpoint: %w", err)
	}
	out, err := iface.OutEndpoint(bulkOutEP)
	if err != nil {
		done()
		return nil, fmt.Errorf("transport: bulk out endpoint: %w", err)
	}
	return &Transport{ctrl: dev, in: in, out: out, done: done}, nil
}

// OpenWithRetry opens a device matched by vid/pid, retrying transient
// libusb-level failures (e.g. a device still settling after enumeration)
// with an exponential backoff. This is the one place this package uses
// github.com/cenkalti/backoff; it is opportunistic reconnect, not the
// protocol-level poll/interim retry below, which is deterministic and
// implemented directly.
func OpenWithRetry(vid, pid gousb.ID, maxElapsed time.Duration) (*Transport, func(), error) {
	ctx := gousb.NewContext()
	var dev *gousb.Device
	op := func() error {
		d, err := ctx.OpenDeviceWithVIDPID(vid, pid)
		if err != nil {
			return err
		}
		if d == nil {
			return fmt.Errorf("transport: no device matching %04x:%04x", uint16(vid), uint16(pid))
		}
		dev = d
		return nil
	}
	bo := &backoff.ExponentialBackOff{
		InitialInterval:     100 * time.Millisecond,
		RandomizationFactor: 0.2,
		Multiplier:          2,
		MaxInterval:         2 * time.Second,
		MaxElapsedTime:      maxElapsed,
		Clock:               backoff.SystemClock,
	}
	bo.Reset()
	if err := backoff.Retry(op, bo); err != nil {
		ctx.Close()
		return nil, nil, err
	}
	tr, err := Open(dev)
	if err != nil {
		dev.Close()
		ctx.Close()
		return nil, nil, err
	}
	cleanup := func() {
		tr.Close()
		dev.Close()
		ctx.Close()
	}
	return tr, cleanup, nil
}

// Close releases the claimed interface. It does not close the underlying
// device or context; the caller that opened those owns their lifetime.
func (t *Transport) Close() error {
	if t.done != nil {
		t.done()
	}
	return nil
}

// Status is the 4-byte poll reply (spec.md §3). The meaning of raw bytes
// 0 and 1 is only partially specified upstream; this type exposes Raw so
// callers needing the undocumented bits can get at them (spec.md §9).
type Status struct {
	Ready    bool
	Busy     bool
	ReplyLen uint16
	Raw      [4]byte
}

// Poll issues a vendor control-in (request 0x01, 4 bytes) and never
// retries internally.
func (t *Transport) Poll() (Status, error) {
	var raw [4]byte
	n, err := t.ctrl.Control(bmIn, reqPoll, 0, 0, raw[:])
	if err != nil {
		return Status{}, fmt.Errorf("transport: poll control transfer: %w", err)
	}
	if n != len(raw) {
		return Status{}, ErrInvalidResult
	}
	return Status{
		Ready:    raw[0] != 0,
		Busy:     raw[2] != 0,
		ReplyLen: uint16(raw[2]) | uint16(raw[3])<<8,
		Raw:      raw,
	}, nil
}

// SendCommand polls once, fails with ErrNotReady unless the device
// reports idle (raw[2]==0), and then issues the vendor control-out
// carrying bytes. No reply is read here.
func (t *Transport) SendCommand(bytes []byte, factory bool) error {
	st, err := t.Poll()
	if err != nil {
		return err
	}
	if st.Raw[2] != 0 {
		return ErrNotReady
	}
	req := uint8(reqCommand)
	if factory {
		req = reqFactory
	}
	if _, err := t.ctrl.Control(bmOut, req, 0, 0, bytes); err != nil {
		return fmt.Errorf("transport: send command: %w", err)
	}
	return nil
}

// PollBackoff implements spec.md §4.1's deterministic poll delay:
// 10ms * (2^attempt - 1), truncated. Exported so higher layers' tests can
// assert against the same sequence ReadReply sleeps on (spec.md S5).
func PollBackoff(attempt int) time.Duration {
	ms := 10 * ((1 << uint(attempt)) - 1)
	return time.Duration(ms) * time.Millisecond
}

// InterimBackoff implements spec.md §4.4's interim-retry delay:
// 100ms * (2^attempt - 1).
func InterimBackoff(attempt int) time.Duration {
	ms := 100 * ((1 << uint(attempt)) - 1)
	return time.Duration(ms) * time.Millisecond
}

// sleep is overridable in tests so retry-bound tests don't actually wait.
var sleep = time.Sleep

// ReadReply polls up to 40 times for a non-zero reply length, sleeping
// PollBackoff(attempt) between tries, then issues the vendor control-in
// carrying length bytes (overridden by overrideLen if non-zero).
func (t *Transport) ReadReply(overrideLen uint16, factory bool) ([]byte, error) {
	var length uint16
	found := false
	for attempt := 0; attempt < maxPollTries; attempt++ {
		if attempt > 0 {
			sleep(PollBackoff(attempt))
		}
		st, err := t.Poll()
		if err != nil {
			return nil, err
		}
		if st.ReplyLen != 0 {
			length = st.ReplyLen
			found = true
			break
		}
	}
	if !found {
		return nil, ErrTimeout
	}
	if overrideLen != 0 {
		length = overrideLen
	}
	req := uint8(reqReply)
	if factory {
		req = reqFactory
	}
	buf := make([]byte, length)
	n, err := t.ctrl.Control(bmIn, req, 0, 0, buf)
	if err != nil {
		return nil, fmt.Errorf("transport: read reply: %w", err)
	}
	return buf[:n], nil
}

// ProgressFunc reports bulk-transfer progress as (total, done) bytes.
type ProgressFunc func(total, done int)

// ReadBulk reads length bytes from the bulk-in endpoint in chunks of at
// most chunk bytes, invoking progress after each chunk if non-nil.
func (t *Transport) ReadBulk(length, chunk int, progress ProgressFunc) ([]byte, error) {
	out := make([]byte, 0, length)
	buf := make([]byte, chunk)
	for len(out) < length {
		remaining := length - len(out)
		want := chunk
		if remaining < want {
			want = remaining
		}
		n, err := t.in.Read(buf[:want])
		if err != nil {
			return out, fmt.Errorf("transport: bulk read: %w", err)
		}
		out = append(out, buf[:n]...)
		if progress != nil {
			progress(length, len(out))
		}
	}
	return out, nil
}

// WriteBulk issues one bulk-out write and returns the number of bytes
// actually written.
func (t *Transport) WriteBulk(b []byte) (int, error) {
	n, err := t.out.Write(b)
	if err != nil {
		return n, fmt.Errorf("transport: bulk write: %w", err)
	}
	return n, nil
}
