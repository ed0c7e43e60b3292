package field

import "testing"

func TestToBytesIsLittleEndian(t *testing.T) {
	got := ToBytes(FromU64(1))
	want := [ByteLen]byte{0x01, 0x00, 0x00, 0x00}
	if got != want {
		t.Fatalf("ToBytes(1) = %x, want %x", got, want)
	}

	got = ToBytes(FromU64(0x0102))
	want = [ByteLen]byte{0x02, 0x01, 0x00, 0x00}
	if got != want {
		t.Fatalf("ToBytes(0x0102) = %x, want %x", got, want)
	}
}

func TestFromBytesIsLittleEndian(t *testing.T) {
	e := FromBytes([]byte{0x01, 0x00, 0x00, 0x00})
	if ToU64(e) != 1 {
		t.Fatalf("FromBytes([01 00 00 00]) = %d, want 1", ToU64(e))
	}

	e = FromBytes([]byte{0x00, 0x01, 0x00, 0x00})
	if ToU64(e) != 0x100 {
		t.Fatalf("FromBytes([00 01 00 00]) = %d, want %d", ToU64(e), 0x100)
	}
}

func TestBytesRoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 2, 0x0102, P - 1} {
		e := FromU64(v)
		b := ToBytes(e)
		got := FromBytes(b[:])
		if !Equal(e, got) {
			t.Fatalf("round trip failed for %d", v)
		}
	}
}

func TestElementsToBytesLERoundTrip(t *testing.T) {
	els := []Element{FromU64(1), FromU64(2), FromU64(0x0102)}
	data := ElementsToBytesLE(els)
	back := BytesToElementsLE(data)
	if len(back) != len(els) {
		t.Fatalf("length mismatch: got %d, want %d", len(back), len(els))
	}
	for i := range els {
		if !Equal(els[i], back[i]) {
			t.Fatalf("element %d mismatch after round trip", i)
		}
	}
}
