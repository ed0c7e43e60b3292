package drbg

import (
	"encoding/binary"
	"io"

	"github.com/koalaxmss/hashsig/field"
)

// DeriveKeyMaterial draws the hash parameter P (5 field elements, each a
// raw little-endian word reduced mod P with no rejection sampling) followed
// by the 32-byte PRF key K, per spec §4.4 step 1-2. rng is normally a fresh
// ChaCha12 stream from New(seed), but any io.Reader works (the signature
// reused at signing time for ρ sampling is also just an io.Reader).
func DeriveKeyMaterial(rng io.Reader, paramLenFE int) (params []field.Element, prfKey []byte) {
	params = make([]field.Element, paramLenFE)
	var word [4]byte
	for i := range params {
		if _, err := io.ReadFull(rng, word[:]); err != nil {
			panic("drbg: short read while deriving P: " + err.Error())
		}
		params[i] = field.FromU32(binary.LittleEndian.Uint32(word[:]))
	}

	prfKey = make([]byte, 32)
	if _, err := io.ReadFull(rng, prfKey); err != nil {
		panic("drbg: short read while deriving K: " + err.Error())
	}
	return params, prfKey
}
