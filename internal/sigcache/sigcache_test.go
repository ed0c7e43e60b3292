package sigcache

import (
	"crypto/rand"
	"testing"

	"github.com/koalaxmss/hashsig/encoding/hypercube"
	"github.com/koalaxmss/hashsig/xmss"
)

func testDigest(tag byte) hypercube.Digest {
	var d hypercube.Digest
	for i := range d {
		d[i] = tag + byte(i)
	}
	return d
}

func TestBatchVerifyMatchesDirectVerify(t *testing.T) {
	var seed [32]byte
	for i := range seed {
		seed[i] = byte(i + 1)
	}

	pk, sk, err := xmss.KeyGen(seed, 5, 0, 32)
	if err != nil {
		t.Fatalf("keygen failed: %v", err)
	}

	digestA := testDigest(1)
	digestB := testDigest(2)

	sigA, err := xmss.Sign(sk, 3, digestA, rand.Reader)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	sigB, err := xmss.Sign(sk, 9, digestB, rand.Reader)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	items := []Item{
		{Epoch: 3, Digest: digestA, Sig: sigA},
		{Epoch: 9, Digest: digestB, Sig: sigB},
		{Epoch: 3, Digest: digestA, Sig: sigA}, // duplicate — should hit cache
	}

	cache := New(16)
	results := BatchVerify(pk, items, cache)

	if !results[0] || !results[1] || !results[2] {
		t.Fatalf("expected all honest signatures to verify, got %v", results)
	}
}

func TestBatchVerifyRejectsTamperedDuplicate(t *testing.T) {
	var seed [32]byte
	for i := range seed {
		seed[i] = byte(i + 5)
	}

	pk, sk, err := xmss.KeyGen(seed, 5, 0, 32)
	if err != nil {
		t.Fatalf("keygen failed: %v", err)
	}

	digest := testDigest(4)
	sig, err := xmss.Sign(sk, 2, digest, rand.Reader)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	tamperedSig := *sig
	tamperedSig.Epoch = 2
	tamperedRho := sig.Rho
	tamperedRho[0] ^= 1
	tamperedSig.Rho = tamperedRho

	cache := New(16)
	items := []Item{
		{Epoch: 2, Digest: digest, Sig: sig},
		{Epoch: 2, Digest: digest, Sig: &tamperedSig},
	}

	results := BatchVerify(pk, items, cache)
	if !results[0] {
		t.Fatal("honest signature should verify")
	}
	if results[1] {
		t.Fatal("tampered signature with a different fingerprint should not reuse the honest cache entry")
	}
}

func TestCacheLookupMissInitially(t *testing.T) {
	var seed [32]byte
	pk, sk, err := xmss.KeyGen(seed, 4, 0, 16)
	if err != nil {
		t.Fatalf("keygen failed: %v", err)
	}

	digest := testDigest(0)
	sig, err := xmss.Sign(sk, 1, digest, rand.Reader)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	cache := New(4)
	if _, found := cache.Lookup(pk, Item{Epoch: 1, Digest: digest, Sig: sig}); found {
		t.Fatal("expected a cache miss before any Store")
	}
}
