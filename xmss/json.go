package xmss

import (
	"encoding/hex"
	"encoding/json"

	"github.com/koalaxmss/hashsig/field"
	"github.com/koalaxmss/hashsig/th"
)

// publicKeyDoc is the JSON convenience encoding for a PublicKey: field
// element vectors as hex strings rather than §6's packed binary layout
// (that one lives in the wire package). Useful for config files and
// human-inspectable key distribution, not for the canonical wire format.
type publicKeyDoc struct {
	Root   string `json:"root"`
	P      string `json:"p"`
	Height uint8  `json:"height"`
}

// MarshalJSON encodes the public key as hex-strings-in-a-struct, the JSON
// analogue of the wire package's binary PublicKey layout.
func (pk *PublicKey) MarshalJSON() ([]byte, error) {
	doc := publicKeyDoc{
		Root:   hex.EncodeToString(field.ElementsToBytesLE(pk.Root)),
		P:      hex.EncodeToString(field.ElementsToBytesLE(pk.P)),
		Height: pk.Height,
	}
	return json.Marshal(doc)
}

// UnmarshalJSON decodes a public key previously produced by MarshalJSON.
// The resulting PublicKey has no attached hasher; Verify builds one
// lazily via hasherOrNew.
func (pk *PublicKey) UnmarshalJSON(data []byte) error {
	var doc publicKeyDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	rootBytes, err := hex.DecodeString(doc.Root)
	if err != nil {
		return err
	}
	pBytes, err := hex.DecodeString(doc.P)
	if err != nil {
		return err
	}

	pk.Root = th.Domain(field.BytesToElementsLE(rootBytes))
	pk.P = th.Params(field.BytesToElementsLE(pBytes))
	pk.Height = doc.Height
	pk.hasher = nil
	return nil
}
