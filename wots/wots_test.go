package wots

import (
	"testing"

	"github.com/koalaxmss/hashsig/encoding/hypercube"
	"github.com/koalaxmss/hashsig/field"
	"github.com/koalaxmss/hashsig/th"
)

func testParams() th.Params {
	p := make(th.Params, th.ParamLenFE)
	for i := range p {
		p[i] = field.FromU64(uint64(i + 11))
	}
	return p
}

func testKey() []byte {
	k := make([]byte, 32)
	for i := range k {
		k[i] = byte(2*i + 1)
	}
	return k
}

func TestSignThenRecoverMatchesPublicValue(t *testing.T) {
	h := th.NewHasher()
	P := testParams()
	key := testKey()
	const epoch = uint32(9)

	var steps hypercube.Steps
	for i := range steps {
		steps[i] = uint8(i % V)
	}

	want := PublicValue(h, P, key, epoch)

	sig := Sign(h, P, key, epoch, steps)
	got, err := Recover(h, P, epoch, steps, sig)
	if err != nil {
		t.Fatalf("recover failed: %v", err)
	}

	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d want %d", len(got), len(want))
	}
	for i := range got {
		if !got[i].Equal(&want[i]) {
			t.Fatalf("element %d mismatch", i)
		}
	}
}

func TestRecoverLeafMatchesLeaf(t *testing.T) {
	h := th.NewHasher()
	P := testParams()
	key := testKey()
	const epoch = uint32(42)

	var steps hypercube.Steps
	for i := range steps {
		steps[i] = uint8((i * 3) % V)
	}

	wantLeaf := Leaf(h, P, key, epoch)

	sig := Sign(h, P, key, epoch, steps)
	gotLeaf, err := RecoverLeaf(h, P, epoch, steps, sig)
	if err != nil {
		t.Fatalf("recover leaf failed: %v", err)
	}
	if !gotLeaf.Equal(wantLeaf) {
		t.Fatal("recovered leaf does not match honestly-computed leaf")
	}
}

func TestRecoverRejectsTamperedStep(t *testing.T) {
	h := th.NewHasher()
	P := testParams()
	key := testKey()
	const epoch = uint32(1)

	var steps hypercube.Steps
	for i := range steps {
		steps[i] = 2
	}

	sig := Sign(h, P, key, epoch, steps)
	wantLeaf := Leaf(h, P, key, epoch)

	tamperedSteps := steps
	tamperedSteps[0] = 3

	gotLeaf, err := RecoverLeaf(h, P, epoch, tamperedSteps, sig)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLeaf.Equal(wantLeaf) {
		t.Fatal("tampered step vector recovered the same leaf")
	}
}

func TestRecoverRejectsOutOfRangeStep(t *testing.T) {
	h := th.NewHasher()
	P := testParams()

	var steps hypercube.Steps
	steps[0] = uint8(V)

	hashes := make([]th.Domain, L)
	for i := range hashes {
		hashes[i] = make(th.Domain, th.HashLenFE)
	}

	if _, err := Recover(h, P, 0, steps, hashes); err == nil {
		t.Fatal("expected an error for an out-of-range step digit")
	}
}

func TestRecoverRejectsWrongLength(t *testing.T) {
	h := th.NewHasher()
	P := testParams()
	var steps hypercube.Steps

	if _, err := Recover(h, P, 0, steps, []th.Domain{}); err != ErrBadSignatureLength {
		t.Fatalf("expected ErrBadSignatureLength, got %v", err)
	}
}
