// Package wire implements the canonical binary encodings (§6) for public
// keys and signatures: fixed-width layouts suitable for storage or
// network transport, independent of the in-memory xmss types.
package wire

import (
	"encoding/binary"
	"errors"

	"github.com/koalaxmss/hashsig/encoding/hypercube"
	"github.com/koalaxmss/hashsig/field"
	"github.com/koalaxmss/hashsig/th"
	"github.com/koalaxmss/hashsig/xmss"
)

// ErrMalformed is returned whenever encoded bytes don't match the
// expected fixed-width layout for the type being decoded.
var ErrMalformed = errors.New("wire: malformed encoding")

// PublicKeyLen is the fixed public-key wire size: root ‖ P ‖ h.
const PublicKeyLen = th.HashLenFE*field.ByteLen + th.ParamLenFE*field.ByteLen + 1

// signatureFixedLen is the epoch + rho prefix shared by every signature,
// before the variable-height auth path.
const signatureFixedLen = 8 + hypercube.RhoLen

// SignatureLen returns the exact wire size of a signature for a tree of
// the given height.
func SignatureLen(height uint8) int {
	return signatureFixedLen + hypercube.L*th.HashLenFE*field.ByteLen + int(height)*th.HashLenFE*field.ByteLen
}

func putDomain(buf []byte, off int, d th.Domain) int {
	for _, e := range d {
		b := field.ToBytes(e)
		copy(buf[off:], b[:])
		off += field.ByteLen
	}
	return off
}

func getDomain(data []byte, off, n int) (th.Domain, int) {
	d := make(th.Domain, n)
	for i := 0; i < n; i++ {
		d[i] = field.FromBytes(data[off : off+field.ByteLen])
		off += field.ByteLen
	}
	return d, off
}

// MarshalPublicKey encodes pk as root(28) ‖ P(20) ‖ h(1).
func MarshalPublicKey(pk *xmss.PublicKey) ([]byte, error) {
	if len(pk.Root) != th.HashLenFE || len(pk.P) != th.ParamLenFE {
		return nil, ErrMalformed
	}

	buf := make([]byte, PublicKeyLen)
	off := putDomain(buf, 0, pk.Root)
	off = putDomain(buf, off, th.Domain(pk.P))
	buf[off] = pk.Height
	return buf, nil
}

// UnmarshalPublicKey decodes a public key previously produced by
// MarshalPublicKey.
func UnmarshalPublicKey(data []byte) (*xmss.PublicKey, error) {
	if len(data) != PublicKeyLen {
		return nil, ErrMalformed
	}

	root, off := getDomain(data, 0, th.HashLenFE)
	p, off := getDomain(data, off, th.ParamLenFE)
	height := data[off]

	return &xmss.PublicKey{Root: root, P: th.Params(p), Height: height}, nil
}

// MarshalSignature encodes sig as epoch(8,BE) ‖ rho(32) ‖ hashes(L·28) ‖
// auth_path(h·28).
func MarshalSignature(sig *xmss.Signature) ([]byte, error) {
	if len(sig.Hashes) != hypercube.L {
		return nil, ErrMalformed
	}
	for _, d := range sig.Hashes {
		if len(d) != th.HashLenFE {
			return nil, ErrMalformed
		}
	}
	for _, d := range sig.AuthPath {
		if len(d) != th.HashLenFE {
			return nil, ErrMalformed
		}
	}

	buf := make([]byte, SignatureLen(uint8(len(sig.AuthPath))))
	binary.BigEndian.PutUint64(buf[0:8], sig.Epoch)
	copy(buf[8:signatureFixedLen], sig.Rho[:])

	off := signatureFixedLen
	for _, d := range sig.Hashes {
		off = putDomain(buf, off, d)
	}
	for _, d := range sig.AuthPath {
		off = putDomain(buf, off, d)
	}
	return buf, nil
}

// UnmarshalSignature decodes a signature for a tree of the given height.
// Height must be supplied by the caller since a signature alone doesn't
// carry it (it's implied by the public key it will be checked against).
func UnmarshalSignature(data []byte, height uint8) (*xmss.Signature, error) {
	want := SignatureLen(height)
	if len(data) != want {
		return nil, ErrMalformed
	}

	epoch := binary.BigEndian.Uint64(data[0:8])
	var rho hypercube.Rho
	copy(rho[:], data[8:signatureFixedLen])

	off := signatureFixedLen
	hashes := make([]th.Domain, hypercube.L)
	for i := range hashes {
		hashes[i], off = getDomain(data, off, th.HashLenFE)
	}

	authPath := make([]th.Domain, height)
	for i := range authPath {
		authPath[i], off = getDomain(data, off, th.HashLenFE)
	}

	return &xmss.Signature{Epoch: epoch, Rho: rho, Hashes: hashes, AuthPath: authPath}, nil
}
