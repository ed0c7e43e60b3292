// Package poseidon implements the Poseidon2 permutation over the KoalaBear
// field using gnark-crypto, at the two widths the signature core needs.
package poseidon

import (
	"github.com/consensys/gnark-crypto/field/koalabear"
	"github.com/consensys/gnark-crypto/field/koalabear/poseidon2"
)

// Element is a KoalaBear field element.
type Element = koalabear.Element

// Round counts per spec §4.2: external (full) rounds are split half before,
// half after the internal (partial) rounds.
const (
	Width16        = 16
	Width16Full    = 8
	Width16Partial = 20

	Width24        = 24
	Width24Full    = 8
	Width24Partial = 21
)

// Poseidon2 wraps a fixed-width gnark-crypto Poseidon2 permutation.
type Poseidon2 struct {
	perm  *poseidon2.Permutation
	width int
}

// NewPoseidon2_16 builds the width-16 instance (P2-16).
func NewPoseidon2_16() *Poseidon2 {
	return &Poseidon2{
		perm:  poseidon2.NewPermutation(Width16, Width16Full, Width16Partial),
		width: Width16,
	}
}

// NewPoseidon2_24 builds the width-24 instance (P2-24).
func NewPoseidon2_24() *Poseidon2 {
	return &Poseidon2{
		perm:  poseidon2.NewPermutation(Width24, Width24Full, Width24Partial),
		width: Width24,
	}
}

// Width returns the permutation's lane count.
func (p *Poseidon2) Width() int {
	return p.width
}

// Permute applies the permutation to state in place.
func (p *Poseidon2) Permute(state []Element) {
	if len(state) != p.width {
		panic("poseidon2: state size mismatch")
	}
	if err := p.perm.Permutation(state); err != nil {
		panic("poseidon2: permutation failed: " + err.Error())
	}
}
