// Package source defines the source-sentence collaborator: tokens, input
// type, and the word-lattice predicates the legal-extension check needs
// to decide which ranges a hypothesis may cover next.
package source

import "github.com/neubig/mosesdecoder/pkg/span"

// InputType distinguishes a plain linear sentence from a word lattice.
type InputType int

const (
	Linear InputType = iota
	WordLattice
)

// Sentence is the interface the decoder core consumes. CoveragePossible and
// ExtensionPossible are only meaningful (and only called) when Type() is
// WordLattice; a Linear sentence may implement them as always-true.
type Sentence interface {
	Size() int
	Token(i int) string
	Type() InputType

	// CoveragePossible reports whether r can ever be covered by a single
	// translation option, given lattice connectivity.
	CoveragePossible(r span.Range) bool

	// ExtensionPossible reports whether a hypothesis whose current range is
	// from may legally continue with to next, given lattice connectivity.
	ExtensionPossible(from, to span.Range) bool

	// DistortionDistance computes the reordering distance between two
	// ranges, used by the legal-extension reordering-limit check.
	DistortionDistance(a, b span.Range) int
}

// Linear is the trivial, fully-connected sentence: every range is coverage-
// and extension-possible, and distortion distance is the classic Moses
// metric (distance between the end of a and the start of b, or vice versa).
type linearSentence struct {
	tokens []string
}

// NewLinear builds a Sentence over tokens with no lattice constraints.
func NewLinear(tokens []string) Sentence {
	cp := make([]string, len(tokens))
	copy(cp, tokens)
	return &linearSentence{tokens: cp}
}

func (s *linearSentence) Size() int      { return len(s.tokens) }
func (s *linearSentence) Token(i int) string { return s.tokens[i] }
func (s *linearSentence) Type() InputType    { return Linear }

func (s *linearSentence) CoveragePossible(r span.Range) bool { return true }

func (s *linearSentence) ExtensionPossible(from, to span.Range) bool { return true }

// DistortionDistance returns the standard phrase-based distortion metric:
// the distance from the end of the previous range to the start of the next,
// matching Moses' WordsRange::CalcDistortionDistance.
func (s *linearSentence) DistortionDistance(a, b span.Range) int {
	return distortionDistance(a, b)
}

func distortionDistance(prev, next span.Range) int {
	d := (prev.To + 1) - next.From
	if d < 0 {
		return -d
	}
	return d
}

var _ Sentence = (*linearSentence)(nil)
