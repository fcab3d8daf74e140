package hgvs

import (
	"regexp"
	"strings"

	"github.com/inodb/vibe-muts/internal/mutation"
)

// Nucleotide-level mutation types. Delins changes use Indel.
const (
	Substitution mutation.Type = "substitution"
	Deletion     mutation.Type = "deletion"
	Insertion    mutation.Type = "insertion"
	Duplication  mutation.Type = "duplication"
	Inversion    mutation.Type = "inversion"
	NoChange     mutation.Type = "no_change"
)

// Position: 35, 88+1, 89-2, -14, *6, -14+2
const (
	ntPos   = `[-*]?\d+(?:[+-]\d+)?`
	ntRange = ntPos + `(?:_` + ntPos + `)?`
	ntBases = `[ACGTNUacgtnu]`
)

var (
	reNucSubst  = regexp.MustCompile(`^` + ntRange + ntBases + `+>` + ntBases + `+$`)
	reNucDelins = regexp.MustCompile(`^` + ntRange + `delins(?:` + ntBases + `+|\d+)$`)
	reNucDel    = regexp.MustCompile(`^` + ntRange + `del(?:` + ntBases + `+|\d+)?$`)
	reNucDup    = regexp.MustCompile(`^` + ntRange + `dup(?:` + ntBases + `+|\d+)?$`)
	reNucIns    = regexp.MustCompile(`^` + ntRange + `ins(?:` + ntBases + `+|\d+)$`)
	reNucInv    = regexp.MustCompile(`^` + ntRange + `inv(?:` + ntBases + `+|\d+)?$`)
	reNucEqual  = regexp.MustCompile(`^(?:` + ntRange + `)?=$`)
)

// nucleotideRules are tried in order; delins must precede del and ins.
var nucleotideRules = []struct {
	re  *regexp.Regexp
	typ mutation.Type
}{
	{reNucSubst, Substitution},
	{reNucDelins, Indel},
	{reNucDel, Deletion},
	{reNucDup, Duplication},
	{reNucIns, Insertion},
	{reNucInv, Inversion},
	{reNucEqual, NoChange},
}

// coordinatePrefixes are the accepted HGVS reference sequence types.
var coordinatePrefixes = []string{"c.", "g.", "n.", "m."}

// NucleotideParser classifies HGVS coding, genomic, non-coding and
// mitochondrial DNA notations. The zero value is ready to use and safe
// for concurrent use.
type NucleotideParser struct{}

// Parse implements mutation.Parser.
func (NucleotideParser) Parse(notation string) (mutation.Type, error) {
	body, err := nucleotideBody(notation)
	if err != nil {
		return "", err
	}
	for _, rule := range nucleotideRules {
		if rule.re.MatchString(body) {
			return rule.typ, nil
		}
	}
	return "", malformed(notation, "unrecognized nucleotide change")
}

func nucleotideBody(notation string) (string, error) {
	s := strings.TrimSpace(notation)
	if isEmptyNotation(s) {
		return "", malformed(notation, "empty notation")
	}
	if i := strings.LastIndexByte(s, ':'); i >= 0 {
		s = s[i+1:]
	}
	for _, prefix := range coordinatePrefixes {
		if strings.HasPrefix(s, prefix) {
			body := s[len(prefix):]
			if strings.HasPrefix(body, "(") && strings.HasSuffix(body, ")") {
				body = body[1 : len(body)-1]
			}
			if body == "" {
				return "", malformed(notation, "missing nucleotide change")
			}
			return body, nil
		}
	}
	return "", malformed(notation, "missing c./g./n./m. coordinate prefix")
}
