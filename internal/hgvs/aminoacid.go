// Package hgvs classifies HGVS protein and nucleotide change notations
// into coarse mutation types.
package hgvs

// AminoAcidSingleToThree maps single-letter amino acid codes to three-letter codes.
var AminoAcidSingleToThree = map[byte]string{
	'A': "Ala", 'C': "Cys", 'D': "Asp", 'E': "Glu",
	'F': "Phe", 'G': "Gly", 'H': "His", 'I': "Ile",
	'K': "Lys", 'L': "Leu", 'M': "Met", 'N': "Asn",
	'P': "Pro", 'Q': "Gln", 'R': "Arg", 'S': "Ser",
	'T': "Thr", 'V': "Val", 'W': "Trp", 'Y': "Tyr",
	'*': "Ter", 'X': "Xaa",
}

// AminoAcidThreeToSingle maps three-letter amino acid codes to single-letter.
var AminoAcidThreeToSingle map[string]byte

func init() {
	AminoAcidThreeToSingle = make(map[string]byte, len(AminoAcidSingleToThree)+2)
	for single, three := range AminoAcidSingleToThree {
		AminoAcidThreeToSingle[three] = single
	}
	// Selenocysteine and pyrrolysine are rare but valid in HGVS.
	AminoAcidThreeToSingle["Sec"] = 'U'
	AminoAcidThreeToSingle["Pyl"] = 'O'
}

// Chemical property classes of amino acids.
const (
	PropNonpolar = "nonpolar"
	PropPolar    = "polar"
	PropBasic    = "basic"
	PropAcidic   = "acidic"
	PropStop     = "stop"
)

// PropertyClasses lists the chemical property classes in table order.
var PropertyClasses = []string{PropNonpolar, PropPolar, PropBasic, PropAcidic, PropStop}

var aaProperty = map[byte]string{
	'G': PropNonpolar, 'A': PropNonpolar, 'V': PropNonpolar, 'L': PropNonpolar,
	'I': PropNonpolar, 'M': PropNonpolar, 'F': PropNonpolar, 'W': PropNonpolar,
	'P': PropNonpolar,
	'S': PropPolar, 'T': PropPolar, 'C': PropPolar, 'Y': PropPolar,
	'N': PropPolar, 'Q': PropPolar, 'U': PropPolar,
	'K': PropBasic, 'R': PropBasic, 'H': PropBasic, 'O': PropBasic,
	'D': PropAcidic, 'E': PropAcidic,
	'*': PropStop,
}

// ChemicalProperty returns the property class of a single-letter amino acid
// code, or "" for unknown codes.
func ChemicalProperty(aa byte) string {
	return aaProperty[aa]
}

// toSingle converts a one- or three-letter amino acid token to its
// single-letter code. Returns 0 for unknown tokens.
func toSingle(code string) byte {
	switch len(code) {
	case 1:
		c := code[0]
		if c == 'X' {
			// Legacy MAFs write stop codons as X.
			return '*'
		}
		if _, ok := AminoAcidSingleToThree[c]; ok {
			return c
		}
		if c == 'U' || c == 'O' {
			return c
		}
	case 3:
		if code == "Xaa" {
			return 'X'
		}
		if aa, ok := AminoAcidThreeToSingle[code]; ok {
			return aa
		}
	}
	return 0
}
