// Package bitutil collects two small helpers: digit-range validation for
// the Winternitz chain logic (C6) and a bulk XOR helper used on the
// verifier's batch path (internal/sigcache).
package bitutil

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/templexxx/xorsimd"
)

// StepRangeError reports every out-of-range position in a step vector, not
// just the first — spec §4.6/§7's BadStepVector condition. Bad marks the
// offending positions so a caller can log or inspect them individually
// instead of only learning that validation failed.
type StepRangeError struct {
	Bad *bitset.BitSet
	V   int
}

func (e *StepRangeError) Error() string {
	positions := make([]uint, 0, e.Bad.Count())
	for i, ok := e.Bad.NextSet(0); ok; i, ok = e.Bad.NextSet(i + 1) {
		positions = append(positions, i)
	}
	return fmt.Sprintf("bitutil: step vector digit(s) at positions %v out of range [0,%d)", positions, e.V)
}

// ValidateStepVector checks every digit in steps is in [0, v), returning a
// *StepRangeError naming every offending position when validation fails.
func ValidateStepVector(steps []uint8, v int) (bad *bitset.BitSet, err error) {
	bad = bitset.New(uint(len(steps)))
	anyBad := false
	for i, s := range steps {
		if int(s) >= v {
			bad.Set(uint(i))
			anyBad = true
		}
	}
	if anyBad {
		return bad, &StepRangeError{Bad: bad, V: v}
	}
	return bad, nil
}

// XORBytes XORs a and b (which must be equal length) into dst using
// templexxx/xorsimd's vectorized XOR, returning the number of bytes
// written. Used by the batch-verify cache (internal/sigcache) to fold a
// tuple's epoch bytes into the leading bytes of its message digest before
// fingerprinting.
func XORBytes(dst, a, b []byte) int {
	return xorsimd.Bytes(dst, a, b)
}
