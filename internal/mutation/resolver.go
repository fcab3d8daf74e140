// Package mutation resolves mutation notations into categorical mutation
// types and aggregates them into frequency tables.
package mutation

import (
	"errors"
	"fmt"
	"strings"
)

// Type is a categorical mutation label such as "missense" or "deletion".
// The vocabulary is owned by the Parser that produces it.
type Type string

// Unparsed labels positions whose notation failed to parse when
// errors are collected instead of aborting the batch.
const Unparsed Type = "unparsed"

// Kind selects the notation grammar of a batch.
type Kind int

const (
	KindAminoAcid Kind = iota
	KindNucleotide
)

// ErrUnsupportedKind is returned for a notation kind outside the known set.
var ErrUnsupportedKind = errors.New("unsupported notation kind")

// String returns the canonical CLI name of the kind.
func (k Kind) String() string {
	switch k {
	case KindAminoAcid:
		return "amino-acid"
	case KindNucleotide:
		return "nucleotide"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind converts a user-supplied kind name into a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "amino-acid", "amino_acid", "amino acid", "aa", "protein":
		return KindAminoAcid, nil
	case "nucleotide", "nuc", "dna", "cdna":
		return KindNucleotide, nil
	}
	return 0, fmt.Errorf("%w: %q (expected amino-acid or nucleotide)", ErrUnsupportedKind, s)
}

// Parser reports the mutation type of a single notation string.
// Implementations must be safe for concurrent use.
type Parser interface {
	Parse(notation string) (Type, error)
}

// ParserFunc adapts a function to the Parser interface.
type ParserFunc func(notation string) (Type, error)

// Parse calls f(notation).
func (f ParserFunc) Parse(notation string) (Type, error) { return f(notation) }

// NotationError reports a notation that its parser rejected.
type NotationError struct {
	Index    int // position in the input batch, -1 for single lookups
	Notation string
	Kind     Kind
	Err      error
}

func (e *NotationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("parse %s notation %q: %v", e.Kind, e.Notation, e.Err)
	}
	return fmt.Sprintf("parse %s notation %q at index %d: %v", e.Kind, e.Notation, e.Index, e.Err)
}

func (e *NotationError) Unwrap() error { return e.Err }

// Resolver dispatches notations to the parser for their kind.
type Resolver struct {
	aminoAcid  Parser
	nucleotide Parser
}

// NewResolver creates a resolver from the amino-acid and nucleotide parsers.
func NewResolver(aminoAcid, nucleotide Parser) *Resolver {
	return &Resolver{aminoAcid: aminoAcid, nucleotide: nucleotide}
}

// Resolve returns the mutation type of notation under the given kind.
// Parser failures are returned as *NotationError.
func (r *Resolver) Resolve(notation string, kind Kind) (Type, error) {
	return r.resolveAt(-1, notation, kind)
}

func (r *Resolver) resolveAt(index int, notation string, kind Kind) (Type, error) {
	p, err := r.parserFor(kind)
	if err != nil {
		return "", err
	}
	t, err := p.Parse(notation)
	if err != nil {
		return "", &NotationError{Index: index, Notation: notation, Kind: kind, Err: err}
	}
	return t, nil
}

func (r *Resolver) parserFor(kind Kind) (Parser, error) {
	var p Parser
	switch kind {
	case KindAminoAcid:
		p = r.aminoAcid
	case KindNucleotide:
		p = r.nucleotide
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: no parser configured for %s", ErrUnsupportedKind, kind)
	}
	return p, nil
}
