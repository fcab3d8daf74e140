package proptable

import (
	"github.com/inodb/vibe-muts/internal/hgvs"
	"github.com/inodb/vibe-muts/internal/mutation"
)

// NewPropertyMatrix returns a table with a zero row and column for every
// chemical property class, so rendered heatmaps keep a fixed layout.
func NewPropertyMatrix() *Table {
	t := New()
	for _, p := range hgvs.PropertyClasses {
		t.addRow(p)
		t.addColumn(p)
	}
	return t
}

// CountTransitions counts chemical property transitions of amino acid
// substitutions. Only missense and nonsense changes contribute; every other
// parseable change is skipped and reported in the skipped count. A
// malformed notation aborts with a *mutation.NotationError.
func CountTransitions(notations []string) (t *Table, skipped int, err error) {
	t = NewPropertyMatrix()
	for i, n := range notations {
		pc, err := hgvs.ParseProteinChange(n)
		if err != nil {
			return nil, 0, &mutation.NotationError{Index: i, Notation: n, Kind: mutation.KindAminoAcid, Err: err}
		}
		if pc.Type != hgvs.Missense && pc.Type != hgvs.Nonsense {
			skipped++
			continue
		}
		from := hgvs.ChemicalProperty(pc.RefAA)
		to := hgvs.ChemicalProperty(pc.AltAA)
		if from == "" || to == "" {
			skipped++
			continue
		}
		t.Add(from, to, 1)
	}
	return t, skipped, nil
}
