package netmd

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/bdube/netmd/encrypt"
	"github.com/bdube/netmd/session"
	"golang.org/x/time/rate"
)

// downloadPaceLimit throttles packet writes during a download to the
// same cadence real hardware imposes on bulk transfers (SPEC_FULL.md
// §11), when nothing upstream already paces the producer.
const downloadPaceLimit = rate.Limit(5) // packets/sec, one packet every 200ms

// EnterSecureSession begins the handshake every encrypted download
// requires (spec.md §4.5 step 1).
func (i *Interface) EnterSecureSession() error {
	_, err := i.send("00 18 00 08 00 46 f0 03 01 03 80 ff", false)
	return err
}

// LeafID reads the device's 8-byte identity, used to select the EKB path
// (spec.md §4.5 step 2).
func (i *Interface) LeafID() ([8]byte, error) {
	reply, err := i.send("00 18 00 08 00 46 f0 03 01 03 11 ff", false)
	if err != nil {
		return [8]byte{}, err
	}
	vals, err := scanReply(reply, "18 00 08 00 46 f0 03 01 03 11 ff %q")
	if err != nil {
		return [8]byte{}, err
	}
	var out [8]byte
	binary.BigEndian.PutUint64(out[:], vals[0].(uint64))
	return out, nil
}

// SendKeyData uploads the fixed EKB (spec.md §4.5 step 3): depth must be
// 1..63, checked here, and signature exactly 24 bytes, enforced by the
// EKB type's fixed shape.
func (i *Interface) SendKeyData(ekb session.EKB) error {
	if ekb.Depth < 1 || ekb.Depth > 63 {
		return newErr(KindEncryption, fmt.Sprintf("EKB depth %d is outside 1..63", ekb.Depth))
	}
	chainBytes := make([]byte, 0, 32)
	chainBytes = append(chainBytes, ekb.Chains[0][:]...)
	chainBytes = append(chainBytes, ekb.Chains[1][:]...)
	_, err := i.send("00 18 00 08 00 46 f0 03 01 03 12 ff %d %x %b %x", false,
		uint64(ekb.ID), chainBytes, uint64(ekb.Depth), ekb.Signature[:])
	return err
}

// SessionKeyExchange sends the host nonce h and returns the device's
// nonce d (spec.md §4.5 step 4).
func (i *Interface) SessionKeyExchange(h [8]byte) ([8]byte, error) {
	reply, err := i.send("00 18 00 08 00 46 f0 03 01 03 20 ff %x", false, h[:])
	if err != nil {
		return [8]byte{}, err
	}
	vals, err := scanReply(reply, "18 00 08 00 46 f0 03 01 03 20 ff %x")
	if err != nil {
		return [8]byte{}, err
	}
	d, _ := vals[0].([]byte)
	if len(d) != 8 {
		return [8]byte{}, newErr(KindEncryption, "session_key_exchange returned a malformed nonce")
	}
	var out [8]byte
	copy(out[:], d)
	return out, nil
}

// SetupDownload authorizes a track download under the already-derived
// session key (spec.md §4.5 step 6).
func (i *Interface) SetupDownload(contentID [20]byte, kek [8]byte) error {
	if !i.secureSessionOpen {
		return newErr(KindEncryption, "setup_download requires an open secure session")
	}
	payload, err := session.SetupDownloadPayload(contentID, kek, i.secureSessionKey)
	if err != nil {
		return wrapErr(KindEncryption, err)
	}
	_, err = i.send("00 18 00 08 00 46 f0 03 01 03 13 ff %x", false, payload)
	return err
}

// CommitTrack authenticates a completed track write (spec.md §4.5 step 7).
func (i *Interface) CommitTrack(track int) error {
	if !i.secureSessionOpen {
		return newErr(KindEncryption, "commit_track requires an open secure session")
	}
	auth, err := session.CommitAuthenticator(i.secureSessionKey)
	if err != nil {
		return wrapErr(KindEncryption, err)
	}
	_, err = i.send("00 18 00 08 00 46 f0 03 01 03 14 ff %w %x", false, uint64(track), auth[:])
	return err
}

// SessionKeyForget tears down the secure session and clears the derived
// key (spec.md §4.5 close).
func (i *Interface) SessionKeyForget() error {
	_, err := i.send("00 18 00 08 00 46 f0 03 01 03 21 ff 00 00 00", false)
	session.ZeroKey(&i.secureSessionKey)
	i.secureSessionOpen = false
	return err
}

// sendTrackHeader announces an incoming encrypted track write (the
// framing preamble send_track issues before streaming packets).
func (i *Interface) sendTrackHeader(wire WireFormat, frames int) error {
	_, err := i.send("00 18 00 08 00 46 f0 03 01 03 18 ff %b %d", true, uint64(wire), uint64(frames))
	return err
}

// DownloadTrack runs the full copy-protected download sequence: secure
// session establishment, encrypted streaming of pcm via the encrypt
// package, commit, and teardown (spec.md §4.1 control-flow summary).
// The secure session and device lock are always released, even on error.
func (i *Interface) DownloadTrack(ctx context.Context, wire WireFormat, pcm []byte, trackTitle string, wideTitle bool) (track int, err error) {
	if err := i.Acquire(); err != nil {
		return 0, err
	}
	defer i.Release()

	if err := i.EnterSecureSession(); err != nil {
		return 0, err
	}
	defer i.SessionKeyForget()

	if _, err := i.LeafID(); err != nil {
		return 0, err
	}
	if err := i.SendKeyData(session.DefaultEKB); err != nil {
		return 0, err
	}

	var h [8]byte
	if _, err := rand.Read(h[:]); err != nil {
		return 0, wrapErr(KindEncryption, err)
	}
	d, err := i.SessionKeyExchange(h)
	if err != nil {
		return 0, err
	}
	sessionKey, err := session.DeriveSessionKey(session.DefaultEKB.RootKey, h, d)
	if err != nil {
		return 0, wrapErr(KindEncryption, err)
	}
	i.secureSessionKey = sessionKey
	i.secureSessionOpen = true

	if err := i.SetupDownload(session.ContentID, session.KEK); err != nil {
		return 0, err
	}

	frameSize := wire.FrameSize()
	if frameSize <= 0 {
		return 0, newErr(KindInvalidDiscFormat, fmt.Sprintf("wire format %d has no frame size", wire))
	}
	if err := i.sendTrackHeader(wire, len(pcm)/frameSize); err != nil {
		return 0, err
	}

	pktSize := encrypt.PaddedLength(len(pcm), frameSize)
	limiter := rate.NewLimiter(downloadPaceLimit, 1)
	packets, errs := encrypt.Threaded(ctx, encrypt.Input{KEK: session.KEK, FrameSize: frameSize, Data: pcm}, limiter)
	first := true
	for pkt := range packets {
		var framed []byte
		if first {
			// 24-byte download preamble precedes only the first packet's
			// ciphertext; subsequent bulk writes are ciphertext only
			// (spec.md §4.6/§6).
			framed = make([]byte, 0, 24+len(pkt.Ciphertext))
			framed = append(framed, 0, 0, 0, 0)
			var pktSizeBE [4]byte
			binary.BigEndian.PutUint32(pktSizeBE[:], uint32(pktSize))
			framed = append(framed, pktSizeBE[:]...)
			framed = append(framed, pkt.WrappedKey[:]...)
			framed = append(framed, pkt.IV[:]...)
			framed = append(framed, pkt.Ciphertext...)
			first = false
		} else {
			framed = pkt.Ciphertext
		}
		if _, err := i.tr.WriteBulk(framed); err != nil {
			return 0, wrapErr(KindCommunication, err)
		}
	}
	select {
	case err := <-errs:
		if err != nil {
			return 0, wrapErr(KindEncryption, err)
		}
	default:
	}

	reply, err := i.send("00 18 00 08 00 46 f0 03 01 03 19 ff", false)
	if err != nil {
		return 0, err
	}
	vals, err := scanReply(reply, "18 00 08 00 46 f0 03 01 03 19 ff %w")
	if err != nil {
		return 0, err
	}
	track = int(vals[0].(uint64))

	if err := i.CommitTrack(track); err != nil {
		return 0, err
	}
	if trackTitle != "" {
		if err := i.SetTrackTitle(track, trackTitle, wideTitle); err != nil {
			return 0, err
		}
	}
	return track, nil
}
