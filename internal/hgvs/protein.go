package hgvs

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/inodb/vibe-muts/internal/mutation"
)

// ErrMalformed is returned for notations that do not follow the grammar.
var ErrMalformed = errors.New("malformed notation")

// Protein-level mutation types.
const (
	Missense      mutation.Type = "missense"
	Nonsense      mutation.Type = "nonsense"
	Silent        mutation.Type = "silent"
	Frameshift    mutation.Type = "frameshift"
	Indel         mutation.Type = "indel"
	SpliceSite    mutation.Type = "splice_site"
	StartLost     mutation.Type = "start_lost"
	StopLost      mutation.Type = "stop_lost"
	NoProtein     mutation.Type = "no_protein"
	UnknownEffect mutation.Type = "unknown_effect"
)

// aa matches a three-letter or single-letter amino acid token.
const aa = `(?:[A-Z][a-z]{2}|[A-Z*])`

var (
	// p.G12C, p.Gly12Cys, p.R175=, p.M1?
	reProteinSubst = regexp.MustCompile(`^(` + aa + `)(\d+)(` + aa + `|=|\?)$`)
	// p.K38Rfs*12, p.Lys38ArgfsTer12, p.K38fs, p.P72fs*?
	reProteinFrameshift = regexp.MustCompile(`^` + aa + `\d+` + aa + `?fs(?:\*|Ter|X)?(?:\d+|\?)?$`)
	// p.*130Kext*?, p.Ter130LysextTer5, p.M1ext-5
	reProteinExtension = regexp.MustCompile(`^(` + aa + `)(\d+)` + aa + `?ext(?:\*|Ter|X)?(?:-?\d+|\?)?$`)
	// p.E746_A750del, p.G12_G13insV, p.A767_V769dup, p.L747_T751delinsP
	reProteinIndel = regexp.MustCompile(`^` + aa + `\d+(?:_` + aa + `\d+)?(?:delins|del|ins|dup)(?:[A-Za-z*]*\d*)?$`)
	// p.X125_splice, p.125_splice
	reProteinSplice = regexp.MustCompile(`^(?:X|Xaa|` + aa + `)?\d+_splice$`)
)

// ProteinChange is a parsed protein-level notation.
type ProteinChange struct {
	Type     mutation.Type
	RefAA    byte // single-letter, 0 unless the change is a substitution
	Position int64
	AltAA    byte // single-letter, 0 unless the change is a substitution
}

// ProteinParser classifies HGVS protein notations (HGVSp or HGVSp_Short).
// The zero value is ready to use and safe for concurrent use.
type ProteinParser struct{}

// Parse implements mutation.Parser.
func (ProteinParser) Parse(notation string) (mutation.Type, error) {
	pc, err := ParseProteinChange(notation)
	if err != nil {
		return "", err
	}
	return pc.Type, nil
}

// ParseProteinChange parses a protein notation such as "p.R175H",
// "p.Gly12Cys", "ENSP00000269305:p.(Arg175His)" or "p.K38Rfs*12".
func ParseProteinChange(notation string) (*ProteinChange, error) {
	body, err := proteinBody(notation)
	if err != nil {
		return nil, err
	}

	switch body {
	case "?":
		return &ProteinChange{Type: UnknownEffect}, nil
	case "0", "0?":
		return &ProteinChange{Type: NoProtein}, nil
	case "=":
		return &ProteinChange{Type: Silent}, nil
	}

	if m := reProteinSubst.FindStringSubmatch(body); m != nil {
		return parseProteinSubst(notation, m[1], m[2], m[3])
	}
	if reProteinSplice.MatchString(body) {
		return &ProteinChange{Type: SpliceSite}, nil
	}
	if reProteinFrameshift.MatchString(body) {
		return &ProteinChange{Type: Frameshift}, nil
	}
	if m := reProteinExtension.FindStringSubmatch(body); m != nil {
		if ref := toSingle(m[1]); ref == 'M' && m[2] == "1" {
			return &ProteinChange{Type: StartLost}, nil
		}
		return &ProteinChange{Type: StopLost}, nil
	}
	if reProteinIndel.MatchString(body) {
		return &ProteinChange{Type: Indel}, nil
	}

	return nil, malformed(notation, "unrecognized protein change")
}

func parseProteinSubst(notation, refTok, posTok, altTok string) (*ProteinChange, error) {
	ref := toSingle(refTok)
	if ref == 0 {
		return nil, malformed(notation, "unknown amino acid "+refTok)
	}
	pos, err := strconv.ParseInt(posTok, 10, 64)
	if err != nil || pos < 1 {
		return nil, malformed(notation, "invalid position "+posTok)
	}
	pc := &ProteinChange{RefAA: ref, Position: pos}

	switch altTok {
	case "=":
		pc.AltAA = ref
		pc.Type = Silent
		return pc, nil
	case "?":
		if ref == 'M' && pos == 1 {
			pc.Type = StartLost
		} else {
			pc.Type = UnknownEffect
		}
		return pc, nil
	}

	alt := toSingle(altTok)
	if alt == 0 {
		return nil, malformed(notation, "unknown amino acid "+altTok)
	}
	pc.AltAA = alt

	switch {
	case alt == ref:
		pc.Type = Silent
	case ref == '*':
		pc.Type = StopLost
	case alt == '*':
		pc.Type = Nonsense
	case ref == 'M' && pos == 1:
		pc.Type = StartLost
	default:
		pc.Type = Missense
	}
	return pc, nil
}

// proteinBody strips whitespace, an optional reference prefix, the "p."
// coordinate prefix and prediction parentheses.
func proteinBody(notation string) (string, error) {
	s := strings.TrimSpace(notation)
	if isEmptyNotation(s) {
		return "", malformed(notation, "empty notation")
	}
	if i := strings.LastIndexByte(s, ':'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimPrefix(s, "p.")
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = s[1 : len(s)-1]
	}
	if s == "" {
		return "", malformed(notation, "missing protein change")
	}
	return s, nil
}

func isEmptyNotation(s string) bool {
	return s == "" || s == "." || s == "-" || strings.EqualFold(s, "NA")
}

func malformed(notation, reason string) error {
	return fmt.Errorf("%w: %q: %s", ErrMalformed, notation, reason)
}
