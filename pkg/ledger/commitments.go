package ledger

import (
	"fmt"
	"sync"

	"nomoscl/pkg/cl"
	"nomoscl/pkg/merkle"
	"nomoscl/pkg/metrics"
)

// CommitmentSet is an append-only Merkle accumulator over note commitments
// with 2^depth slots. Empty slots hold zero leaves, so its root equals
// merkle.Root over the padded leaves of every appended commitment.
type CommitmentSet struct {
	depth      int
	zeroHashes [][32]byte
	leaves     [][32]byte
	index      map[cl.NoteCommitment]int
	roots      map[[32]byte]struct{}
	mu         sync.RWMutex
}

// NewCommitmentSet creates an empty accumulator of the given depth.
func NewCommitmentSet(depth int) *CommitmentSet {
	if depth < 0 || depth > 32 {
		panic(fmt.Sprintf("ledger: invalid accumulator depth %d", depth))
	}
	s := &CommitmentSet{
		depth:      depth,
		zeroHashes: make([][32]byte, depth+1),
		index:      make(map[cl.NoteCommitment]int),
		roots:      make(map[[32]byte]struct{}),
	}

	// zero hashes of empty subtrees, level 0 is the empty leaf
	for i := 1; i <= depth; i++ {
		s.zeroHashes[i] = merkle.Node(s.zeroHashes[i-1], s.zeroHashes[i-1])
	}
	s.roots[s.zeroHashes[depth]] = struct{}{}
	return s
}

// Capacity is the number of slots.
func (s *CommitmentSet) Capacity() int {
	return 1 << s.depth
}

func (s *CommitmentSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.leaves)
}

// Contains reports whether cm has been appended.
func (s *CommitmentSet) Contains(cm cl.NoteCommitment) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[cm]
	return ok
}

// Append adds commitments in order. Either all of them are added or none.
func (s *CommitmentSet) Append(cms ...cl.NoteCommitment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkAppendLocked(cms); err != nil {
		return err
	}
	for _, cm := range cms {
		s.index[cm] = len(s.leaves)
		s.leaves = append(s.leaves, merkle.Leaf(cm[:]))
	}
	s.roots[s.rootLocked()] = struct{}{}
	metrics.CommitmentSetSize.Set(float64(len(s.leaves)))
	return nil
}

// CheckAppend reports whether Append(cms...) would succeed.
func (s *CommitmentSet) CheckAppend(cms ...cl.NoteCommitment) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checkAppendLocked(cms)
}

func (s *CommitmentSet) checkAppendLocked(cms []cl.NoteCommitment) error {
	if len(s.leaves)+len(cms) > s.Capacity() {
		return fmt.Errorf("%w: %d + %d > %d", ErrAccumulatorFull, len(s.leaves), len(cms), s.Capacity())
	}
	batch := make(map[cl.NoteCommitment]struct{}, len(cms))
	for _, cm := range cms {
		if _, ok := s.index[cm]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateCommitment, cm.Hex())
		}
		if _, ok := batch[cm]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateCommitment, cm.Hex())
		}
		batch[cm] = struct{}{}
	}
	return nil
}

// CurrentRoot returns the root over every commitment appended so far.
func (s *CommitmentSet) CurrentRoot() [32]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rootLocked()
}

// IsKnownRoot reports whether root was the current root at some point.
func (s *CommitmentSet) IsKnownRoot(root [32]byte) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.roots[root]
	return ok
}

// PathFor returns the inclusion path of cm under CurrentRoot.
func (s *CommitmentSet) PathFor(cm cl.NoteCommitment) (merkle.Path, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.index[cm]
	if !ok {
		return nil, false
	}

	path := make(merkle.Path, 0, s.depth)
	nodes := s.leaves
	for level := 0; level < s.depth; level++ {
		sibling := s.zeroHashes[level]
		if j := idx ^ 1; j < len(nodes) {
			sibling = nodes[j]
		}
		if idx%2 == 0 {
			path = append(path, merkle.PathNode{Side: merkle.Right, Sibling: sibling})
		} else {
			path = append(path, merkle.PathNode{Side: merkle.Left, Sibling: sibling})
		}
		nodes = s.parents(nodes, level)
		idx /= 2
	}
	return path, true
}

func (s *CommitmentSet) rootLocked() [32]byte {
	if len(s.leaves) == 0 {
		return s.zeroHashes[s.depth]
	}
	nodes := s.leaves
	for level := 0; level < s.depth; level++ {
		nodes = s.parents(nodes, level)
	}
	return nodes[0]
}

// parents folds one level of non-empty nodes, filling missing right children
// with the zero hash of that level.
func (s *CommitmentSet) parents(nodes [][32]byte, level int) [][32]byte {
	out := make([][32]byte, (len(nodes)+1)/2)
	for i := range out {
		right := s.zeroHashes[level]
		if 2*i+1 < len(nodes) {
			right = nodes[2*i+1]
		}
		out[i] = merkle.Node(nodes[2*i], right)
	}
	return out
}
