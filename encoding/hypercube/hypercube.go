// Package hypercube implements the message encoder (C5): the target-sum
// variant of Winternitz encoding fixed by spec §4.5/§6 — no separate
// checksum chains, a constant-sum constraint on the digits instead.
package hypercube

import (
	"errors"
	"io"

	"github.com/koalaxmss/hashsig/field"
	"github.com/koalaxmss/hashsig/th"
)

// Parameters fixed by spec §6 (the hypercube instantiation).
const (
	W         = 3        // bits per chunk
	V         = 1 << W   // base, 8
	L         = 64       // number of chains / digits
	TargetSum = 375      // required Σ digit_i
	DigestLen = 20       // message digest length in bytes
	RhoLen    = 32       // per-signature randomizer length in bytes
	MaxTries  = uint64(1) << 32
)

// ErrEncodingExhausted is returned when the target-sum rejection-sampling
// loop exceeds MaxTries attempts without finding a ρ that hits the target.
var ErrEncodingExhausted = errors.New("hypercube: exceeded maximum encoding attempts")

// dsMsgRandomness is §6's DS_MSG_RANDOMNESS domain separator for the
// encoder's sponge absorption. Unlike TreeTweak/ChainTweak, it is not
// carried in the tweak lanes — spec.md defines no third tweak variant for
// this call site — it is absorbed as ordinary input data, ahead of
// ρ/epoch/digest, exactly as DS_DOMAIN_ELEMENT precedes K/epoch/chain_index
// in the PRF absorption (internal/prf).
const dsMsgRandomness = 0x01

// Digest is the 20-byte message digest signed at an epoch.
type Digest [DigestLen]byte

// Rho is the per-signature randomizer sampled during encoding.
type Rho [RhoLen]byte

// Steps is a length-L step vector, each entry in [0, V).
type Steps [L]uint8

func computeDigits(h *th.Hasher, P th.Params, rho Rho, epoch uint32, digest Digest) Steps {
	input := make([]field.Element, 0, 1+RhoLen/field.ByteLen+1+DigestLen/field.ByteLen)
	input = append(input, field.FromU32(dsMsgRandomness))
	input = append(input, field.BytesToElementsLE(rho[:])...)
	input = append(input, field.FromU32(epoch))
	input = append(input, field.BytesToElementsLE(digest[:])...)

	fes := h.MessageDigits(P, th.NoTweak(), input, L)

	var digits Steps
	for i, fe := range fes {
		digits[i] = uint8(field.ToU64(fe) % uint64(V))
	}
	return digits
}

func (s Steps) sum() int {
	total := 0
	for _, d := range s {
		total += int(d)
	}
	return total
}

// Encode implements spec §4.5's sign-side procedure: sample ρ, absorb
// (DS_MSG_RANDOMNESS ‖ ρ ‖ epoch ‖ digest), reduce to L base-V digits, accept if they sum to
// TargetSum, else resample. Draws each ρ attempt from rng.
func Encode(h *th.Hasher, P th.Params, epoch uint32, digest Digest, rng io.Reader) (Steps, Rho, error) {
	var rho Rho
	for attempt := uint64(0); attempt < MaxTries; attempt++ {
		if _, err := io.ReadFull(rng, rho[:]); err != nil {
			return Steps{}, Rho{}, err
		}
		digits := computeDigits(h, P, rho, epoch, digest)
		if digits.sum() == TargetSum {
			return digits, rho, nil
		}
	}
	return Steps{}, Rho{}, ErrEncodingExhausted
}

// Verify implements the verify-side recomputation: deterministically
// rebuild the digits from (ρ, epoch, digest) and reject unless they sum to
// TargetSum.
func Verify(h *th.Hasher, P th.Params, epoch uint32, digest Digest, rho Rho) (Steps, bool) {
	digits := computeDigits(h, P, rho, epoch, digest)
	return digits, digits.sum() == TargetSum
}
