// Package wots implements the Winternitz OTS chain logic (C6): per-epoch
// secret derivation, chain stepping, the WOTS public value, signing, and
// signature recovery, per spec §4.6.
package wots

import (
	"errors"

	"github.com/koalaxmss/hashsig/encoding/hypercube"
	"github.com/koalaxmss/hashsig/field"
	"github.com/koalaxmss/hashsig/internal/bitutil"
	"github.com/koalaxmss/hashsig/internal/prf"
	"github.com/koalaxmss/hashsig/th"
)

// L and V mirror the hypercube encoder's dimension and base — a WOTS
// instance always has one chain per encoded digit.
const (
	L = hypercube.L
	V = hypercube.V
)

// ErrBadSignatureLength is returned when a signature's hash body does not
// carry exactly L chain values.
var ErrBadSignatureLength = errors.New("wots: signature body does not have L hash values")

// SecretChain derives s_{e,i} = PRF(K, e, i, HASH_LEN_FE), the starting
// value of chain i for epoch e.
func SecretChain(prfKey []byte, epoch uint32, chainIndex uint8) th.Domain {
	return th.Domain(prf.ShakeToField(prfKey, epoch, uint64(chainIndex), th.HashLenFE))
}

// PublicValue walks every chain to its end (v-1 steps from position 0) and
// concatenates the L endpoints — the pre-leaf WOTS public value for one
// epoch.
func PublicValue(h *th.Hasher, P th.Params, prfKey []byte, epoch uint32) []field.Element {
	out := make([]field.Element, 0, L*th.HashLenFE)
	for i := 0; i < L; i++ {
		start := SecretChain(prfKey, epoch, uint8(i))
		end := h.Chain(P, epoch, uint8(i), 0, V-1, start)
		out = append(out, end...)
	}
	return out
}

// Leaf hashes the WOTS public value for epoch into the Merkle leaf at that
// position: TreeTweak{level:0, pos:epoch}.
func Leaf(h *th.Hasher, P th.Params, prfKey []byte, epoch uint32) th.Domain {
	pub := PublicValue(h, P, prfKey, epoch)
	return h.LeafHash(P, th.TreeTweak(0, epoch), pub)
}

// Sign walks each chain i for steps[i] positions from the secret start,
// producing the signature body.
func Sign(h *th.Hasher, P th.Params, prfKey []byte, epoch uint32, steps hypercube.Steps) []th.Domain {
	hashes := make([]th.Domain, L)
	for i := 0; i < L; i++ {
		start := SecretChain(prfKey, epoch, uint8(i))
		hashes[i] = h.Chain(P, epoch, uint8(i), 0, int(steps[i]), start)
	}
	return hashes
}

// Recover walks each signature hash forward the remaining v-1-x_i steps to
// reconstruct the WOTS public value, for verification.
func Recover(h *th.Hasher, P th.Params, epoch uint32, steps hypercube.Steps, hashes []th.Domain) ([]field.Element, error) {
	if len(hashes) != L {
		return nil, ErrBadSignatureLength
	}
	if _, err := bitutil.ValidateStepVector(steps[:], V); err != nil {
		return nil, err
	}

	out := make([]field.Element, 0, L*th.HashLenFE)
	for i := 0; i < L; i++ {
		xi := steps[i]
		remaining := V - 1 - int(xi)
		end := h.Chain(P, epoch, uint8(i), xi, remaining, hashes[i])
		out = append(out, end...)
	}
	return out, nil
}

// RecoverLeaf recovers the WOTS public value from a signature body and
// hashes it into the candidate leaf for epoch.
func RecoverLeaf(h *th.Hasher, P th.Params, epoch uint32, steps hypercube.Steps, hashes []th.Domain) (th.Domain, error) {
	pub, err := Recover(h, P, epoch, steps, hashes)
	if err != nil {
		return nil, err
	}
	return h.LeafHash(P, th.TreeTweak(0, epoch), pub), nil
}
