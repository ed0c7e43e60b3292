// Package prf implements the SHAKE-128-based field-element PRF (C4, PRF
// half) described in spec §4.4: PRF(K, epoch, chain_index, n) -> n field
// elements, used to derive each epoch's per-chain WOTS secret.
package prf

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"

	"github.com/koalaxmss/hashsig/field"
)

// DSPRF is the 16-byte domain separator fixed by spec §6. It is byte-for-
// byte identical to the teacher's shakePRFDomainSep constant — the
// strongest signal that aerius-labs-hash-sig-go is the correct teacher for
// this spec.
var DSPRF = [16]byte{
	0xae, 0xae, 0x22, 0xff, 0x00, 0x01, 0xfa, 0xff,
	0x21, 0xaf, 0x12, 0x00, 0x01, 0x11, 0xff, 0x00,
}

// DSDomainElement is the 1-byte sub-separator for this PRF (§6).
const DSDomainElement = 0x00

const bytesPerElement = 8

// ShakeToField computes PRF(key, epoch, chainIndex, numElements): absorb
// DS_PRF ‖ DS_DOMAIN_ELEMENT ‖ key ‖ epoch(BE4) ‖ chainIndex(BE8), squeeze
// 8*numElements bytes, partition into big-endian 8-byte words, reduce each
// mod P.
func ShakeToField(key []byte, epoch uint32, chainIndex uint64, numElements int) []field.Element {
	shake := sha3.NewShake128()
	shake.Write(DSPRF[:])
	shake.Write([]byte{DSDomainElement})
	shake.Write(key)

	var epochBytes [4]byte
	binary.BigEndian.PutUint32(epochBytes[:], epoch)
	shake.Write(epochBytes[:])

	var chainBytes [8]byte
	binary.BigEndian.PutUint64(chainBytes[:], chainIndex)
	shake.Write(chainBytes[:])

	out := make([]byte, bytesPerElement*numElements)
	if _, err := shake.Read(out); err != nil {
		panic("prf: shake read failed: " + err.Error())
	}

	elements := make([]field.Element, numElements)
	for i := 0; i < numElements; i++ {
		w := binary.BigEndian.Uint64(out[i*bytesPerElement : (i+1)*bytesPerElement])
		elements[i] = field.FromU64(w % field.P)
	}
	return elements
}
