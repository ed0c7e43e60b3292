package merkle

import (
	"testing"

	"github.com/koalaxmss/hashsig/field"
	"github.com/koalaxmss/hashsig/th"
)

func testParams() th.Params {
	p := make(th.Params, th.ParamLenFE)
	for i := range p {
		p[i] = field.FromU64(uint64(i + 3))
	}
	return p
}

func testLeaves(h *th.Hasher, P th.Params, n int) []th.Domain {
	leaves := make([]th.Domain, n)
	for i := range leaves {
		input := make([]field.Element, 3)
		for j := range input {
			input[j] = field.FromU64(uint64(i*7 + j + 1))
		}
		leaves[i] = h.LeafHash(P, th.TreeTweak(0, uint32(i)), input)
	}
	return leaves
}

func TestAuthPathRoundTrip(t *testing.T) {
	h := th.NewHasher()
	P := testParams()
	leaves := testLeaves(h, P, 16)

	tree, err := BuildTree(h, P, leaves)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	for pos := uint32(0); pos < 16; pos++ {
		path := tree.AuthPath(pos)
		if len(path) != tree.Height() {
			t.Fatalf("path length %d, want %d", len(path), tree.Height())
		}
		if !VerifyAuthPath(h, P, pos, tree.Leaf(pos), path, tree.Root()) {
			t.Fatalf("auth path for position %d failed to verify", pos)
		}
	}
}

func TestAuthPathRejectsWrongLeaf(t *testing.T) {
	h := th.NewHasher()
	P := testParams()
	leaves := testLeaves(h, P, 16)

	tree, err := BuildTree(h, P, leaves)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	path := tree.AuthPath(5)
	if VerifyAuthPath(h, P, 5, tree.Leaf(6), path, tree.Root()) {
		t.Fatal("verify accepted a mismatched leaf")
	}
}

func TestAuthPathRejectsWrongPosition(t *testing.T) {
	h := th.NewHasher()
	P := testParams()
	leaves := testLeaves(h, P, 16)

	tree, err := BuildTree(h, P, leaves)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	path := tree.AuthPath(5)
	if VerifyAuthPath(h, P, 6, tree.Leaf(5), path, tree.Root()) {
		t.Fatal("verify accepted the wrong claimed position")
	}
}

func TestBuildTreeRejectsNonPowerOfTwo(t *testing.T) {
	h := th.NewHasher()
	P := testParams()
	leaves := testLeaves(h, P, 5)

	if _, err := BuildTree(h, P, leaves); err != ErrNotPowerOfTwo {
		t.Fatalf("expected ErrNotPowerOfTwo, got %v", err)
	}
}

func TestRootDeterministicAcrossBuilds(t *testing.T) {
	h := th.NewHasher()
	P := testParams()

	// With 1024 leaves the two lowest inner levels (512 and 256 nodes) take
	// the goroutine fan-out path and the levels above take the sequential
	// loop; two builds of the same leaf set must agree on the root.
	leaves := testLeaves(h, P, 1024)

	t1, err := BuildTree(h, P, leaves)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	t2, err := BuildTree(h, P, leaves)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if !t1.Root().Equal(t2.Root()) {
		t.Fatal("root differs across two builds of the same leaves")
	}
}
