package xmss

// NewHypercubeKoalaBear builds a signer using the one parameter set fixed
// by §6: KoalaBear/Poseidon2 field and permutation widths, the
// target-sum hypercube encoder, and a tree of the given height covering
// the active epoch window [activationEpoch, activationEpoch+numActiveEpochs).
//
// This is the named-instantiation entry point analogous to the teacher's
// NewPoseidonWinternitzW1-style constructors — KeyGen itself stays
// generic over height/window so tests can exercise small trees cheaply.
func NewHypercubeKoalaBear(seed [32]byte, height uint8, activationEpoch, numActiveEpochs uint64) (*PublicKey, *SecretKey, error) {
	return KeyGen(seed, height, activationEpoch, numActiveEpochs)
}
