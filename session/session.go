/*Package session implements the NetMD secure-session handshake and the
RetailMAC primitive it is built on (spec.md §4.5): EKB key-chain
constants, session-key derivation, and the setup_download/commit_track
payload framing. It holds no transport state — callers drive the actual
command round trips and pass this package only the bytes to send or
verify.

DES and 3DES are provided by the standard library (crypto/des,
crypto/cipher); no third-party package in the example corpus offers a
DES implementation, so the stdlib is the correct choice here rather than
an omission (see DESIGN.md).
*/
package session

import (
	"crypto/cipher"
	"crypto/des"
	"fmt"
)

// EKB holds the fixed "open-source EKB" constants send_key_data uploads
// to the device unchanged (spec.md §4.5, §9): these values are tied to
// firmware behavior and must not be "tidied" or regenerated.
type EKB struct {
	ID        uint32
	Chains    [2][16]byte
	Depth     byte
	Signature [24]byte
	RootKey   [16]byte
}

// DefaultEKB is the fixed EKB this module ships with, reproduced
// unchanged from the public open-source NetMD EKB (spec.md §9).
var DefaultEKB = EKB{
	ID: 0x26422642,
	Chains: [2][16]byte{
		{0x25, 0x45, 0x06, 0x4d, 0xea, 0xca, 0x14, 0xf9, 0x96, 0xbd, 0xc8, 0xa4, 0x06, 0xc2, 0x2b, 0x81},
		{0xfb, 0x60, 0xbd, 0xdd, 0x0d, 0xbc, 0xab, 0x84, 0x8a, 0x00, 0x5e, 0x03, 0x19, 0x4d, 0x3e, 0xda},
	},
	Depth: 9,
	Signature: [24]byte{
		0x8f, 0x2b, 0xc3, 0x52, 0xe8, 0x6c, 0x5e, 0xd3, 0x06, 0xdc, 0xae, 0x18,
		0xd2, 0xf3, 0x8c, 0x7f, 0x89, 0xb5, 0xe1, 0x98, 0x23, 0x74, 0x0a, 0x4b,
	},
	RootKey: [16]byte{
		0x14, 0xe3, 0x83, 0x36, 0xc0, 0x54, 0x44, 0x8a,
		0x5a, 0xe7, 0x0a, 0xcb, 0x4c, 0x1c, 0x49, 0x6b,
	},
}

// ContentID and KEK are the fixed constants used for user track uploads
// (spec.md §4.5, §9), likewise reproduced unchanged.
var (
	ContentID = [20]byte{
		0x01, 0x03, 0x00, 0x00, 0x00, 0x06, 0x00, 0x04, 0x00, 0x04,
		0x00, 0x04, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
	}
	KEK = [8]byte{0x14, 0xe3, 0x83, 0x36, 0xc0, 0x54, 0x44, 0x8a}
)

var zeroIV = make([]byte, 8)

// RetailMAC derives an 8-byte MAC from a 16-byte key and 16-byte value
// (spec.md §4.5 step 5): DES-CBC-encrypt value[0:8] under key[0:8],
// IV=0, take the ciphertext as iv2; 3DES-CBC-encrypt value[8:16] under
// key‖key[0:8] (a 24-byte two-key-triple-DES expansion), iv2; return the
// resulting ciphertext block.
func RetailMAC(key [16]byte, value [16]byte) ([8]byte, error) {
	block1, err := des.NewCipher(key[:8])
	if err != nil {
		return [8]byte{}, fmt.Errorf("session: des cipher: %w", err)
	}
	iv2 := make([]byte, 8)
	out1 := make([]byte, 8)
	cipher.NewCBCEncrypter(block1, zeroIV).CryptBlocks(out1, value[:8])
	copy(iv2, out1)

	tripleKey := append(append([]byte{}, key[:]...), key[:8]...)
	block2, err := des.NewTripleDESCipher(tripleKey)
	if err != nil {
		return [8]byte{}, fmt.Errorf("session: 3des cipher: %w", err)
	}
	out2 := make([]byte, 8)
	cipher.NewCBCEncrypter(block2, iv2).CryptBlocks(out2, value[8:])

	var mac [8]byte
	copy(mac[:], out2)
	return mac, nil
}

// DeriveSessionKey computes session_key = RetailMAC(root_key, H‖D) for
// the host nonce H and device nonce D exchanged during
// session_key_exchange (spec.md §4.5 step 4-5).
func DeriveSessionKey(rootKey [16]byte, h, d [8]byte) ([8]byte, error) {
	var value [16]byte
	copy(value[:8], h[:])
	copy(value[8:], d[:])
	return RetailMAC(rootKey, value)
}

// SetupDownloadPayload builds the DES-CBC-encrypted body of
// setup_download (spec.md §4.5 step 6): "1 1 1 1" ‖ content_id[20] ‖
// kek[8], encrypted under session_key with IV=0.
func SetupDownloadPayload(contentID [20]byte, kek [8]byte, sessionKey [8]byte) ([]byte, error) {
	plain := make([]byte, 0, 4+20+8)
	plain = append(plain, 1, 1, 1, 1)
	plain = append(plain, contentID[:]...)
	plain = append(plain, kek[:]...)
	if len(plain)%8 != 0 {
		return nil, fmt.Errorf("session: setup_download payload %d bytes is not a DES block multiple", len(plain))
	}
	block, err := des.NewCipher(sessionKey[:])
	if err != nil {
		return nil, fmt.Errorf("session: des cipher: %w", err)
	}
	out := make([]byte, len(plain))
	cipher.NewCBCEncrypter(block, zeroIV).CryptBlocks(out, plain)
	return out, nil
}

// CommitAuthenticator computes commit_track's authenticator (spec.md §4.5
// step 7): DES-ECB-encrypt 8 zero bytes under session_key. ECB over a
// single 8-byte DES block is just one raw block.Encrypt call; there is no
// loop to get wrong because the plaintext is exactly one block.
func CommitAuthenticator(sessionKey [8]byte) ([8]byte, error) {
	block, err := des.NewCipher(sessionKey[:])
	if err != nil {
		return [8]byte{}, fmt.Errorf("session: des cipher: %w", err)
	}
	var out [8]byte
	block.Encrypt(out[:], zeroIV)
	return out, nil
}

// ZeroKey clears a session key in place after session_key_forget (spec.md
// §4.5 close); the fixed "1800…21 ff 000000" command body itself is
// assembled by the caller's query template, not this package.
func ZeroKey(key *[8]byte) {
	for i := range key {
		key[i] = 0
	}
}
