// Package field implements the KoalaBear prime field using gnark-crypto.
//
// Elements are held in Montgomery form internally (koalabear.Element does
// this transparently); this package only adds the conversions and byte
// encodings the signature core needs on top of the raw arithmetic that
// gnark-crypto's Element type already provides (Add, Sub, Mul, Neg, Square,
// Equal, IsZero, ...).
package field

import (
	"encoding/binary"
	"math/big"

	"github.com/consensys/gnark-crypto/field/koalabear"
)

// P is the KoalaBear prime: 2^31 - 2^24 + 1.
const P uint64 = 0x7F000001

// ByteLen is the canonical serialized width of one element.
const ByteLen = 4

// Element represents one KoalaBear field element.
type Element = koalabear.Element

// Zero returns the additive identity.
func Zero() Element {
	var e Element
	return e
}

// One returns the multiplicative identity.
func One() Element {
	return koalabear.NewElement(1)
}

// FromU64 reduces v mod P and returns the corresponding element.
// Matches the RNG/PRF word-reduction rule of spec §4.4: raw words are
// never rejection-sampled, they are reduced as-is.
func FromU64(v uint64) Element {
	var e Element
	e.SetUint64(v)
	return e
}

// FromU32 reduces a little-endian 32-bit word mod P. Used to turn raw
// ChaCha12 keystream words into field elements for the hash parameter P,
// and the epoch and domain separator into message-encoder input elements.
func FromU32(word uint32) Element {
	return FromU64(uint64(word))
}

// ToU64 returns the canonical (non-Montgomery) representative as a uint64.
func ToU64(e Element) uint64 {
	var r big.Int
	e.BigInt(&r)
	return r.Uint64()
}

// Equal reports whether a and b represent the same field element.
func Equal(a, b Element) bool {
	return a.Equal(&b)
}

// ToBytes returns the canonical little-endian 4-byte encoding of
// from_mont(e). gnark-crypto's Element.Bytes() serializes big-endian (the
// convention its generated field packages share across curves), so this
// goes through ToU64's canonical uint64 representative and packs it
// little-endian directly rather than byte-reversing gnark's output.
func ToBytes(e Element) [ByteLen]byte {
	var out [ByteLen]byte
	binary.LittleEndian.PutUint32(out[:], uint32(ToU64(e)))
	return out
}

// FromBytes parses a canonical little-endian 4-byte encoding, the inverse
// of ToBytes.
func FromBytes(b []byte) Element {
	var padded [ByteLen]byte
	copy(padded[:], b)
	return FromU32(binary.LittleEndian.Uint32(padded[:]))
}

// BytesToElementsLE splits data into 4-byte little-endian words, reducing
// each mod P via FromU32. The final word is zero-padded if data's length
// is not a multiple of 4. The message encoder uses it for the message
// digest and ρ; the PRF uses its own 8-byte big-endian word rule instead.
func BytesToElementsLE(data []byte) []Element {
	n := (len(data) + ByteLen - 1) / ByteLen
	out := make([]Element, n)
	for i := 0; i < n; i++ {
		start := i * ByteLen
		end := start + ByteLen
		var word [ByteLen]byte
		if end <= len(data) {
			copy(word[:], data[start:end])
		} else {
			copy(word[:], data[start:])
		}
		out[i] = FromU32(leUint32(word))
	}
	return out
}

// ElementsToBytesLE is the inverse of BytesToElementsLE's canonical
// packing: each element becomes 4 canonical little-endian bytes.
func ElementsToBytesLE(els []Element) []byte {
	out := make([]byte, 0, len(els)*ByteLen)
	for _, e := range els {
		b := ToBytes(e)
		out = append(out, b[:]...)
	}
	return out
}

func leUint32(b [ByteLen]byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
