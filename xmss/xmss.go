// Package xmss implements the top-level signer orchestration (C8): key
// generation over a full 2^h epoch range, signing restricted to an active
// epoch window, and verification, per spec §4.8.
package xmss

import (
	"errors"
	"io"
	"runtime"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/koalaxmss/hashsig/encoding/hypercube"
	"github.com/koalaxmss/hashsig/internal/drbg"
	"github.com/koalaxmss/hashsig/merkle"
	"github.com/koalaxmss/hashsig/th"
	"github.com/koalaxmss/hashsig/wots"
)

// ErrInvalidEpochRange is returned when activation_epoch + num_active_epochs
// exceeds the tree's 2^h leaf capacity.
var ErrInvalidEpochRange = errors.New("xmss: activation window exceeds the tree's epoch capacity")

// ErrEpochOutOfRange is returned when Sign is asked to sign at an epoch
// outside [activation_epoch, activation_epoch+num_active_epochs).
var ErrEpochOutOfRange = errors.New("xmss: epoch outside the key's active window")

// ErrHeightOutOfRange rejects a height that would make 2^h overflow a
// uint32 leaf index or simply isn't useful (h == 0 means a one-leaf tree).
var ErrHeightOutOfRange = errors.New("xmss: height must be in [1, 31]")

// PublicKey is the Merkle root plus the Poseidon2 parameter vector P and
// the tree height, everything a verifier needs besides the message.
type PublicKey struct {
	Root   th.Domain
	P      th.Params
	Height uint8

	hasher *th.Hasher
}

// SecretKey holds the PRF key and parameters needed to re-derive any
// chain, plus the already-built tree for authentication paths and the
// active epoch window.
type SecretKey struct {
	PRFKey          []byte
	P               th.Params
	Tree            *merkle.Tree
	Height          uint8
	ActivationEpoch uint64
	NumActiveEpochs uint64

	hasher *th.Hasher
}

// hasherOrNew returns pk's cached hasher, or builds one if pk was
// reconstructed from wire bytes and never had one attached.
func (pk *PublicKey) hasherOrNew() *th.Hasher {
	if pk.hasher != nil {
		return pk.hasher
	}
	return th.NewHasher()
}

func (sk *SecretKey) hasherOrNew() *th.Hasher {
	if sk.hasher != nil {
		return sk.hasher
	}
	return th.NewHasher()
}

// Signature is one epoch's WOTS signature plus its Merkle authentication
// path to the root recorded in PublicKey.
type Signature struct {
	Epoch    uint64
	Rho      hypercube.Rho
	Hashes   []th.Domain
	AuthPath []th.Domain
}

const leafParallelThreshold = 256

// validateKeyGenArgs checks every KeyGen precondition and, when several
// are violated at once, reports all of them together rather than just the
// first — a caller building a key from, say, a malformed config file
// wants the whole list of problems in one pass.
func validateKeyGenArgs(height uint8, activationEpoch, numActiveEpochs uint64) error {
	var result *multierror.Error

	if height == 0 || height > 31 {
		result = multierror.Append(result, ErrHeightOutOfRange)
	}
	if numActiveEpochs == 0 {
		result = multierror.Append(result, errors.New("xmss: num_active_epochs must be at least 1"))
	}
	if height > 0 && height <= 31 {
		capacity := uint64(1) << height
		if activationEpoch+numActiveEpochs > capacity || activationEpoch+numActiveEpochs < activationEpoch {
			result = multierror.Append(result, ErrInvalidEpochRange)
		}
	}

	if result == nil {
		return nil
	}
	if len(result.Errors) == 1 {
		return result.Errors[0]
	}
	return result
}

// KeyGen derives (P, PRF key) from seed via the ChaCha12 DRBG, builds
// every leaf across the full 2^height epoch range (not just the active
// window — spec §4.8 builds the whole tree regardless of which epochs a
// given secret key will ever sign for), and folds them into a Merkle
// tree. The returned secret key may only sign within
// [activationEpoch, activationEpoch+numActiveEpochs).
func KeyGen(seed [32]byte, height uint8, activationEpoch, numActiveEpochs uint64) (*PublicKey, *SecretKey, error) {
	if err := validateKeyGenArgs(height, activationEpoch, numActiveEpochs); err != nil {
		return nil, nil, err
	}
	capacity := uint64(1) << height

	rng := drbg.New(seed)
	P, prfKey := drbg.DeriveKeyMaterial(rng, th.ParamLenFE)

	hasher := th.NewHasher()
	leaves := buildLeaves(hasher, P, prfKey, uint32(capacity))

	tree, err := merkle.BuildTree(hasher, P, leaves)
	if err != nil {
		return nil, nil, err
	}

	pk := &PublicKey{Root: tree.Root(), P: P, Height: height, hasher: hasher}
	sk := &SecretKey{
		PRFKey:          prfKey,
		P:               P,
		Tree:            tree,
		Height:          height,
		ActivationEpoch: activationEpoch,
		NumActiveEpochs: numActiveEpochs,
		hasher:          hasher,
	}
	return pk, sk, nil
}

func buildLeaves(hasher *th.Hasher, P th.Params, prfKey []byte, n uint32) []th.Domain {
	leaves := make([]th.Domain, n)
	if n < leafParallelThreshold {
		for e := uint32(0); e < n; e++ {
			leaves[e] = wots.Leaf(hasher, P, prfKey, e)
		}
		return leaves
	}

	workers := runtime.NumCPU()
	if uint32(workers) > n {
		workers = int(n)
	}
	chunk := (int(n) + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < int(n); start += chunk {
		end := start + chunk
		if end > int(n) {
			end = int(n)
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for e := start; e < end; e++ {
				leaves[e] = wots.Leaf(hasher, P, prfKey, uint32(e))
			}
		}(start, end)
	}
	wg.Wait()
	return leaves
}

// Sign signs digest at epoch, provided epoch falls within the secret
// key's active window. rng supplies the message encoder's ρ draws.
func Sign(sk *SecretKey, epoch uint64, digest hypercube.Digest, rng io.Reader) (*Signature, error) {
	if epoch < sk.ActivationEpoch || epoch >= sk.ActivationEpoch+sk.NumActiveEpochs {
		return nil, ErrEpochOutOfRange
	}

	hasher := sk.hasherOrNew()
	steps, rho, err := hypercube.Encode(hasher, sk.P, uint32(epoch), digest, rng)
	if err != nil {
		return nil, err
	}

	hashes := wots.Sign(hasher, sk.P, sk.PRFKey, uint32(epoch), steps)
	authPath := sk.Tree.AuthPath(uint32(epoch))

	return &Signature{Epoch: epoch, Rho: rho, Hashes: hashes, AuthPath: authPath}, nil
}

// Verify reports whether sig is a valid signature over digest at epoch
// under pk. It never panics: any malformed or inconsistent signature
// simply yields false.
func Verify(pk *PublicKey, epoch uint64, digest hypercube.Digest, sig *Signature) bool {
	if sig == nil || sig.Epoch != epoch {
		return false
	}
	if epoch >= uint64(1)<<pk.Height {
		return false
	}
	if len(sig.AuthPath) != int(pk.Height) {
		return false
	}
	for _, d := range sig.Hashes {
		if len(d) != th.HashLenFE {
			return false
		}
	}
	for _, d := range sig.AuthPath {
		if len(d) != th.HashLenFE {
			return false
		}
	}

	hasher := pk.hasherOrNew()
	steps, ok := hypercube.Verify(hasher, pk.P, uint32(epoch), digest, sig.Rho)
	if !ok {
		return false
	}

	leaf, err := wots.RecoverLeaf(hasher, pk.P, uint32(epoch), steps, sig.Hashes)
	if err != nil {
		return false
	}

	return merkle.VerifyAuthPath(hasher, pk.P, uint32(epoch), leaf, sig.AuthPath, pk.Root)
}
