package source

import "github.com/neubig/mosesdecoder/pkg/span"

// Arc is one edge of a word lattice (confusion network): consuming the
// token(s) at position From..To-1 moves the lattice from node From to node
// To. Parallel arcs of different lengths model alternative segmentations.
type Arc struct {
	From, To int
}

// latticeSentence implements Sentence for word-lattice input: not every
// contiguous source range is actually a valid path through the network,
// and not every pair of ranges may be chained.
type latticeSentence struct {
	tokens []string
	arcs   map[Arc]bool
	// reachable[i] is the set of lattice nodes reachable from node i by
	// following zero or more arcs, used to answer ExtensionPossible.
	reachable map[int]map[int]bool
}

// NewLattice builds a word-lattice Sentence. tokens is the primary path
// (used by Size/Token for feature extraction and debug output); arcs lists
// every valid (From,To) node pair in the underlying confusion network.
func NewLattice(tokens []string, arcs []Arc) Sentence {
	cp := make([]string, len(tokens))
	copy(cp, tokens)

	arcSet := make(map[Arc]bool, len(arcs))
	adj := make(map[int][]int, len(arcs))
	for _, a := range arcs {
		arcSet[a] = true
		adj[a.From] = append(adj[a.From], a.To)
	}

	reachable := make(map[int]map[int]bool, len(adj))
	for node := range adj {
		reachable[node] = bfsReachable(adj, node)
	}

	return &latticeSentence{tokens: cp, arcs: arcSet, reachable: reachable}
}

func bfsReachable(adj map[int][]int, start int) map[int]bool {
	seen := map[int]bool{start: true}
	queue := []int{start}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, next := range adj[n] {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return seen
}

func (s *latticeSentence) Size() int         { return len(s.tokens) }
func (s *latticeSentence) Token(i int) string { return s.tokens[i] }
func (s *latticeSentence) Type() InputType    { return WordLattice }

// CoveragePossible reports whether r is a single valid arc of the
// underlying confusion network.
func (s *latticeSentence) CoveragePossible(r span.Range) bool {
	return s.arcs[Arc{From: r.From, To: r.To + 1}]
}

// ExtensionPossible reports whether the lattice node reached after from
// (from.To+1) can reach the lattice node that to starts at (to.From) by
// following zero or more arcs.
func (s *latticeSentence) ExtensionPossible(from, to span.Range) bool {
	nodes, ok := s.reachable[from.To+1]
	if !ok {
		return from.To+1 == to.From
	}
	return nodes[to.From]
}

func (s *latticeSentence) DistortionDistance(a, b span.Range) int {
	return distortionDistance(a, b)
}

var _ Sentence = (*latticeSentence)(nil)
