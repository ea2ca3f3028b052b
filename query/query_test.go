package query

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFormatQueryLiteralsAndInts(t *testing.T) {
	got, err := FormatQuery("18 c3 ff %b 00 00 00", uint64(0x75))
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x18, 0xc3, 0xff, 0x75, 0x00, 0x00, 0x00}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatQueryLengthPrefixed(t *testing.T) {
	got, err := FormatQuery("%x", []byte{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x00, 0x03, 1, 2, 3}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestScanQueryDropsStatusByteAndMatchesLiterals(t *testing.T) {
	reply := []byte{0x09, 0x18, 0xc3, 0x00, 0x75, 0x00, 0x00, 0x00}
	vals, err := ScanQuery(reply, "18 c3 00 75 00 00 00")
	if err != nil {
		t.Fatal(err)
	}
	if len(vals) != 0 {
		t.Fatalf("expected no extracted values, got %v", vals)
	}
}

func TestScanQueryMismatchReportsOffset(t *testing.T) {
	reply := []byte{0x09, 0x18, 0xc4}
	_, err := ScanQuery(reply, "18 c3")
	qerr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T (%v)", err, err)
	}
	if qerr.Kind != ErrMismatch {
		t.Fatalf("expected ErrMismatch, got %v", qerr.Kind)
	}
	if qerr.Offset != 1 {
		t.Fatalf("expected offset 1, got %d", qerr.Offset)
	}
}

func TestScanQueryTrailingBytesIsError(t *testing.T) {
	reply := []byte{0x09, 0x01, 0x02}
	_, err := ScanQuery(reply, "01")
	qerr, ok := err.(*Error)
	if !ok || qerr.Kind != ErrTrailingInput {
		t.Fatalf("expected ErrTrailingInput, got %v", err)
	}
}

func TestScanQueryStarConsumesRemainder(t *testing.T) {
	reply := []byte{0x09, 0x01, 0xaa, 0xbb, 0xcc}
	vals, err := ScanQuery(reply, "01 %*")
	if err != nil {
		t.Fatal(err)
	}
	rest, ok := vals[0].([]byte)
	if !ok {
		t.Fatalf("expected []byte, got %T", vals[0])
	}
	if diff := cmp.Diff([]byte{0xaa, 0xbb, 0xcc}, rest); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestQueryRoundTrip(t *testing.T) {
	template := "00 %w 11 %d 22"
	want := []interface{}{uint64(0x1234), uint64(0xdeadbeef)}
	encoded, err := FormatQuery(template, want...)
	if err != nil {
		t.Fatal(err)
	}
	// prepend a synthetic status byte the way Interface replies do
	reply := append([]byte{0x09}, encoded...)
	got, err := ScanQuery(reply, template)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestBCDRoundTrip(t *testing.T) {
	for _, x := range []uint64{0, 1, 9, 10, 99, 1234, 99999999} {
		b, err := IntToBCD(x, 4)
		if err != nil {
			t.Fatalf("IntToBCD(%d): %v", x, err)
		}
		got, err := BCDToInt(b)
		if err != nil {
			t.Fatalf("BCDToInt: %v", err)
		}
		if got != x {
			t.Fatalf("BCD round trip: got %d want %d", got, x)
		}
	}
}

func TestBCDOverflow(t *testing.T) {
	if _, err := IntToBCD(100, 1); err == nil {
		t.Fatal("expected error for value exceeding 1-byte BCD capacity")
	}
}
