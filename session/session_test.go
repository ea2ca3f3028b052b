package session

import "testing"

func TestRetailMACIsDeterministic(t *testing.T) {
	key := DefaultEKB.RootKey
	value := [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}

	a, err := RetailMAC(key, value)
	if err != nil {
		t.Fatalf("RetailMAC: %v", err)
	}
	b, err := RetailMAC(key, value)
	if err != nil {
		t.Fatalf("RetailMAC: %v", err)
	}
	if a != b {
		t.Fatalf("RetailMAC not deterministic: %x != %x", a, b)
	}
}

func TestRetailMACDiffersByValue(t *testing.T) {
	key := DefaultEKB.RootKey
	v1 := [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	v2 := v1
	v2[15] ^= 0xff

	a, err := RetailMAC(key, v1)
	if err != nil {
		t.Fatalf("RetailMAC: %v", err)
	}
	b, err := RetailMAC(key, v2)
	if err != nil {
		t.Fatalf("RetailMAC: %v", err)
	}
	if a == b {
		t.Fatalf("RetailMAC produced the same output for different values")
	}
}

func TestDeriveSessionKeyMatchesRetailMAC(t *testing.T) {
	h := [8]byte{1, 1, 1, 1, 1, 1, 1, 1}
	d := [8]byte{2, 2, 2, 2, 2, 2, 2, 2}
	got, err := DeriveSessionKey(DefaultEKB.RootKey, h, d)
	if err != nil {
		t.Fatalf("DeriveSessionKey: %v", err)
	}
	var value [16]byte
	copy(value[:8], h[:])
	copy(value[8:], d[:])
	want, err := RetailMAC(DefaultEKB.RootKey, value)
	if err != nil {
		t.Fatalf("RetailMAC: %v", err)
	}
	if got != want {
		t.Fatalf("DeriveSessionKey = %x, want %x", got, want)
	}
}

func TestSetupDownloadPayloadIsBlockAligned(t *testing.T) {
	sessionKey := [8]byte{1, 2, 3, 4, 5, 6, 7, 8}
	out, err := SetupDownloadPayload(ContentID, KEK, sessionKey)
	if err != nil {
		t.Fatalf("SetupDownloadPayload: %v", err)
	}
	if len(out) != 32 {
		t.Fatalf("len(out) = %d, want 32", len(out))
	}
	if len(out)%8 != 0 {
		t.Fatalf("payload %d bytes is not DES-block aligned", len(out))
	}
}

func TestCommitAuthenticatorIsDeterministic(t *testing.T) {
	key := [8]byte{1, 2, 3, 4, 5, 6, 7, 8}
	a, err := CommitAuthenticator(key)
	if err != nil {
		t.Fatalf("CommitAuthenticator: %v", err)
	}
	b, err := CommitAuthenticator(key)
	if err != nil {
		t.Fatalf("CommitAuthenticator: %v", err)
	}
	if a != b {
		t.Fatalf("CommitAuthenticator not deterministic: %x != %x", a, b)
	}
}
