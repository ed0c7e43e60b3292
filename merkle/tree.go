// Package merkle implements the full binary authentication tree (C7): a
// power-of-two-leaf Merkle tree over th.Domain nodes, built level-by-level
// with the inner levels fanned out across goroutines once a level is large
// enough to make that worthwhile. Unlike a sparse/padded tree, the leaf
// count here is always exactly 2^h — the caller is responsible for sizing
// its leaf set to a power of two.
package merkle

import (
	"errors"
	"runtime"
	"sync"

	"github.com/koalaxmss/hashsig/th"
)

// ErrNotPowerOfTwo is returned when BuildTree is given a leaf count that
// is not 2^h for some h >= 0.
var ErrNotPowerOfTwo = errors.New("merkle: leaf count is not a power of two")

// parallelThreshold is the minimum number of nodes a level must contain
// before the build fans out across goroutines — below it the per-goroutine
// overhead would dominate the actual hashing work.
const parallelThreshold = 256

// Tree is a complete binary tree of th.Domain nodes, indexed nodes[level][pos]
// with level 0 the leaves and level Height() the root.
type Tree struct {
	nodes  [][]th.Domain
	height int
}

// Height returns the tree's height h, i.e. log2(leaf count).
func (t *Tree) Height() int { return t.height }

// Root returns the single node at the top level.
func (t *Tree) Root() th.Domain { return t.nodes[t.height][0] }

// Leaf returns the leaf at position pos.
func (t *Tree) Leaf(pos uint32) th.Domain { return t.nodes[0][pos] }

// BuildTree hashes leaves up to a root using h for the inner-node
// compression (C3's MergeHash) under params P, tweaked per level/position
// per spec §4.3's TreeTweak. len(leaves) must be a power of two.
func BuildTree(h *th.Hasher, P th.Params, leaves []th.Domain) (*Tree, error) {
	n := len(leaves)
	if n == 0 || n&(n-1) != 0 {
		return nil, ErrNotPowerOfTwo
	}

	height := 0
	for (1 << height) < n {
		height++
	}

	nodes := make([][]th.Domain, height+1)
	nodes[0] = leaves

	for lvl := 1; lvl <= height; lvl++ {
		prev := nodes[lvl-1]
		width := len(prev) / 2
		level := make([]th.Domain, width)
		buildLevel(h, P, uint8(lvl), prev, level)
		nodes[lvl] = level
	}

	return &Tree{nodes: nodes, height: height}, nil
}

func buildLevel(h *th.Hasher, P th.Params, lvl uint8, prev []th.Domain, out []th.Domain) {
	width := len(out)
	if width < parallelThreshold {
		for pos := 0; pos < width; pos++ {
			out[pos] = h.MergeHash(P, th.TreeTweak(lvl, uint32(pos)), prev[2*pos], prev[2*pos+1])
		}
		return
	}

	workers := runtime.NumCPU()
	if workers > width {
		workers = width
	}
	chunk := (width + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < width; start += chunk {
		end := start + chunk
		if end > width {
			end = width
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for pos := start; pos < end; pos++ {
				out[pos] = h.MergeHash(P, th.TreeTweak(lvl, uint32(pos)), prev[2*pos], prev[2*pos+1])
			}
		}(start, end)
	}
	wg.Wait()
}

// AuthPath returns the sibling of pos at every level from the leaf up to
// (but not including) the root: path[i] is the sibling at level i.
func (t *Tree) AuthPath(pos uint32) []th.Domain {
	path := make([]th.Domain, t.height)
	p := pos
	for lvl := 0; lvl < t.height; lvl++ {
		sibling := p ^ 1
		path[lvl] = t.nodes[lvl][sibling]
		p /= 2
	}
	return path
}

// VerifyAuthPath folds leaf upward through path using the same TreeTweak
// schedule BuildTree used, and reports whether the result equals root.
func VerifyAuthPath(h *th.Hasher, P th.Params, pos uint32, leaf th.Domain, path []th.Domain, root th.Domain) bool {
	current := leaf.Clone()
	p := pos
	for lvl := 0; lvl < len(path); lvl++ {
		sibling := path[lvl]
		var left, right th.Domain
		if p&1 == 0 {
			left, right = current, sibling
		} else {
			left, right = sibling, current
		}
		current = h.MergeHash(P, th.TreeTweak(uint8(lvl+1), p/2), left, right)
		p /= 2
	}
	return current.Equal(root)
}
