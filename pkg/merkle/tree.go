package merkle

import (
	"fmt"
	"math/bits"

	"nomoscl/pkg/crypto"
)

// Side records where a sibling sits relative to the hash being folded.
type Side uint8

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	switch s {
	case Left:
		return "Left"
	case Right:
		return "Right"
	default:
		return "Unknown"
	}
}

// PathNode is one step of an inclusion path.
type PathNode struct {
	Side    Side
	Sibling [32]byte
}

// Path is a leaf-to-root sequence of siblings.
type Path []PathNode

// Leaf hashes an element into a leaf.
func Leaf(data []byte) [32]byte {
	return crypto.Blake2s(crypto.TagMerkleLeaf, data)
}

// Node hashes two children into their parent.
func Node(left, right [32]byte) [32]byte {
	return crypto.Blake2s(crypto.TagMerkleNode, left[:], right[:])
}

// PaddedLeaves hashes elements into leaves and zero-fills the remaining
// slots up to n. n must be a power of two and at least len(elements).
func PaddedLeaves(n int, elements [][]byte) [][32]byte {
	checkArity(n)
	if len(elements) > n {
		panic(fmt.Sprintf("merkle: %d elements exceed arity %d", len(elements), n))
	}

	leaves := make([][32]byte, n)
	for i, e := range elements {
		leaves[i] = Leaf(e)
	}
	return leaves
}

// Root folds the leaves level by level into the tree root.
func Root(leaves [][32]byte) [32]byte {
	checkArity(len(leaves))

	nodes := make([][32]byte, len(leaves))
	copy(nodes, leaves)

	for width := len(nodes); width > 1; width /= 2 {
		for i := 0; i < width/2; i++ {
			nodes[i] = Node(nodes[2*i], nodes[2*i+1])
		}
	}
	return nodes[0]
}

// GeneratePath returns the inclusion path of leaves[idx]. The path has
// exactly log2(len(leaves)) entries.
func GeneratePath(leaves [][32]byte, idx int) Path {
	checkArity(len(leaves))
	if idx < 0 || idx >= len(leaves) {
		panic(fmt.Sprintf("merkle: index %d out of range for %d leaves", idx, len(leaves)))
	}

	nodes := make([][32]byte, len(leaves))
	copy(nodes, leaves)

	path := make(Path, 0, bits.TrailingZeros(uint(len(leaves))))
	for width := len(nodes); width > 1; width /= 2 {
		if idx%2 == 0 {
			path = append(path, PathNode{Side: Right, Sibling: nodes[idx+1]})
		} else {
			path = append(path, PathNode{Side: Left, Sibling: nodes[idx-1]})
		}
		idx /= 2

		for i := 0; i < width/2; i++ {
			nodes[i] = Node(nodes[2*i], nodes[2*i+1])
		}
	}
	return path
}

// PathRoot replays path on top of leaf and returns the implied root.
func PathRoot(leaf [32]byte, path Path) [32]byte {
	computed := leaf
	for _, n := range path {
		switch n.Side {
		case Left:
			computed = Node(n.Sibling, computed)
		default:
			computed = Node(computed, n.Sibling)
		}
	}
	return computed
}

// VerifyPath reports whether leaf is included under root via path.
func VerifyPath(leaf [32]byte, path Path, root [32]byte) bool {
	for _, n := range path {
		if n.Side != Left && n.Side != Right {
			return false
		}
	}
	return PathRoot(leaf, path) == root
}

func checkArity(n int) {
	if n <= 0 || n&(n-1) != 0 {
		panic(fmt.Sprintf("merkle: arity %d is not a power of two", n))
	}
}
