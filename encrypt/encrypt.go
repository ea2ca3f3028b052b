/*Package encrypt implements the NetMD track download encryptor
(spec.md §4.6): zero-padding to a frame boundary, a random content key
wrapped (by deliberate DES-ECB decryption) under the session KEK, and
CBC-chained packet emission with IV propagated from the tail of the
previous ciphertext.

Pacing uses golang.org/x/time/rate, the same token-bucket package the
example corpus reaches for elsewhere in the rest of the dependency
pack, standing in for the real device's bulk-transfer backpressure when
no hardware is attached to throttle the producer naturally.
*/
package encrypt

import (
	"context"
	"crypto/cipher"
	"crypto/des"
	"crypto/rand"
	"fmt"

	"golang.org/x/time/rate"
)

// DefaultChunkSize is substituted whenever Input.ChunkSize is zero
// (spec.md §4.6 step 3).
const DefaultChunkSize = 0x00100000

// firstPacketHeader is the number of bytes the first packet's payload is
// shrunk by to make room for the download preamble (spec.md §4.6).
const firstPacketHeader = 24

// Input is the material a caller assembles before starting an Encryptor.
type Input struct {
	KEK       [8]byte
	FrameSize int
	Data      []byte
	ChunkSize int
}

// Packet is one unit emitted to the consumer: the wrapped content key,
// the chaining IV in effect when this packet's ciphertext begins, and
// the ciphertext itself.
type Packet struct {
	WrappedKey [8]byte
	IV         [8]byte
	Ciphertext []byte
}

// wrapKey computes the "wrapped key" by DES-ECB-decrypting the content
// key under kek — decryption, not encryption, is deliberate: the device
// inverts this when it unwraps the key (spec.md §4.6 step 2).
func wrapKey(kek [8]byte, contentKey [8]byte) ([8]byte, error) {
	block, err := des.NewCipher(kek[:])
	if err != nil {
		return [8]byte{}, fmt.Errorf("encrypt: des cipher: %w", err)
	}
	var out [8]byte
	block.Decrypt(out[:], contentKey[:])
	return out, nil
}

func padToFrame(data []byte, frameSize int) []byte {
	if frameSize <= 0 || len(data)%frameSize == 0 {
		return data
	}
	pad := frameSize - len(data)%frameSize
	out := make([]byte, len(data)+pad)
	copy(out, data)
	return out
}

// PaddedLength returns the zero-padded length padToFrame would produce
// for dataLen bytes at frameSize, the pkt_size send_track's download
// preamble announces (spec.md §4.6/§6) before any packet is emitted.
func PaddedLength(dataLen, frameSize int) int {
	if frameSize <= 0 || dataLen%frameSize == 0 {
		return dataLen
	}
	return dataLen + (frameSize - dataLen%frameSize)
}

// Encryptor produces the CBC-chained packet sequence for one track
// download. It is not safe for concurrent use by multiple goroutines
// calling Next simultaneously; the producer/consumer split happens via
// the Threaded constructor instead.
type Encryptor struct {
	contentKey [8]byte
	wrappedKey [8]byte
	iv         [8]byte
	data       []byte
	chunkSize  int
	offset     int
	packetNum  int
}

// New builds an Encryptor that computes packets lazily as Next is
// called, for callers that want to pull one packet at a time inline
// (the "Inline" variant of spec.md §9's producer design).
func New(in Input) (*Encryptor, error) {
	var contentKey [8]byte
	if _, err := rand.Read(contentKey[:]); err != nil {
		return nil, fmt.Errorf("encrypt: reading random content key: %w", err)
	}
	wrapped, err := wrapKey(in.KEK, contentKey)
	if err != nil {
		return nil, err
	}
	chunkSize := in.ChunkSize
	if chunkSize == 0 {
		chunkSize = DefaultChunkSize
	}
	return &Encryptor{
		contentKey: contentKey,
		wrappedKey: wrapped,
		data:       padToFrame(in.Data, in.FrameSize),
		chunkSize:  chunkSize,
	}, nil
}

// ContentKey exposes the random content key this Encryptor drew, mainly
// useful for tests that need to verify packet chaining independently.
func (e *Encryptor) ContentKey() [8]byte { return e.contentKey }

// Next returns the next packet, or ok=false once the payload is
// exhausted.
func (e *Encryptor) Next() (Packet, bool, error) {
	if e.offset >= len(e.data) {
		return Packet{}, false, nil
	}
	want := e.chunkSize
	if e.packetNum == 0 {
		want -= firstPacketHeader
	}
	if remaining := len(e.data) - e.offset; want > remaining {
		want = remaining
	}
	chunk := make([]byte, want)
	copy(chunk, e.data[e.offset:e.offset+want])

	block, err := des.NewCipher(e.contentKey[:])
	if err != nil {
		return Packet{}, false, fmt.Errorf("encrypt: des cipher: %w", err)
	}
	cbc := cipher.NewCBCEncrypter(block, e.iv[:])
	cbc.CryptBlocks(chunk, chunk)

	pkt := Packet{WrappedKey: e.wrappedKey, IV: e.iv, Ciphertext: chunk}
	copy(e.iv[:], chunk[len(chunk)-8:])
	e.offset += want
	e.packetNum++
	return pkt, true, nil
}

// Threaded runs an Encryptor on its own goroutine, sending packets on
// the returned channel paced by limiter (the "Threaded" producer variant
// of spec.md §9, standing in for the device's bulk-transfer
// backpressure). The channel is closed when the payload is exhausted or
// ctx is canceled; errs receives at most one error.
func Threaded(ctx context.Context, in Input, limiter *rate.Limiter) (<-chan Packet, <-chan error) {
	out := make(chan Packet)
	errs := make(chan error, 1)
	go func() {
		defer close(out)
		enc, err := New(in)
		if err != nil {
			errs <- err
			return
		}
		for {
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					errs <- err
					return
				}
			}
			pkt, ok, err := enc.Next()
			if err != nil {
				errs <- err
				return
			}
			if !ok {
				return
			}
			select {
			case out <- pkt:
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
		}
	}()
	return out, errs
}
