package report

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/inodb/vibe-muts/internal/genes"
	"github.com/inodb/vibe-muts/internal/hgvs"
	"github.com/inodb/vibe-muts/internal/maf"
	"github.com/inodb/vibe-muts/internal/mutation"
)

const testMAF = "Hugo_Symbol\tVariant_Classification\tTumor_Sample_Barcode\tHGVSc\tHGVSp_Short\n" +
	"KRAS\tMissense_Mutation\tS1\tc.35G>T\tp.G12V\n" +
	"TP53\tMissense_Mutation\tS1\tc.524G>A\tp.R175H\n" +
	"TP53\tNonsense_Mutation\tS2\tc.637C>T\tp.R213*\n" +
	"TTN\tFrame_Shift_Del\tS2\tc.100del\tp.K34fs\n" +
	"TERT\t5'Flank\tS3\tc.-124C>T\t\n" +
	"BRAF\tMissense_Mutation\tS3\tc.1799T>A\tp.V600E\n"

func readRecords(t *testing.T, content string) []*maf.Record {
	t.Helper()
	p, err := maf.NewParserFromReader(strings.NewReader(content))
	require.NoError(t, err)
	records, err := p.ReadAll()
	require.NoError(t, err)
	return records
}

func newBuilder(opts ...mutation.Option) *Builder {
	sets := genes.NewReferenceSets([]string{"KRAS", "BRAF"}, []string{"TP53"})
	resolver := mutation.NewResolver(hgvs.ProteinParser{}, hgvs.NucleotideParser{})
	return NewBuilder(genes.NewClassifier(sets), mutation.NewAggregator(resolver, opts...))
}

func TestSummarize_AminoAcid(t *testing.T) {
	s, err := newBuilder().Summarize(context.Background(), readRecords(t, testMAF), mutation.KindAminoAcid)
	require.NoError(t, err)

	assert.Equal(t, 1, s.Skipped)
	require.Len(t, s.Labels, 5)
	assert.Equal(t, Label{
		Seq: 0, Line: 2, Sample: "S1", Gene: "KRAS", Category: genes.Oncogene,
		Class: "Missense_Mutation", Kind: mutation.KindAminoAcid, Notation: "p.G12V", Type: hgvs.Missense,
	}, s.Labels[0])
	assert.Equal(t, "BRAF", s.Labels[4].Gene)
	assert.Equal(t, 4, s.Labels[4].Seq)

	assert.Equal(t, []mutation.Entry{
		{Type: hgvs.Missense, Count: 3},
		{Type: hgvs.Nonsense, Count: 1},
		{Type: hgvs.Frameshift, Count: 1},
	}, s.Overall.Entries())

	assert.Equal(t, 2, s.ByCategory[genes.Oncogene].Get(hgvs.Missense))
	assert.Equal(t, 1, s.ByCategory[genes.TSG].Get(hgvs.Missense))
	assert.Equal(t, 1, s.ByCategory[genes.TSG].Get(hgvs.Nonsense))
	assert.Equal(t, 1, s.ByCategory[genes.Other].Get(hgvs.Frameshift))

	total := 0
	for _, c := range genes.Categories {
		total += s.ByCategory[c].Total()
	}
	assert.Equal(t, s.Overall.Total(), total)
}

func TestSummarize_Nucleotide(t *testing.T) {
	s, err := newBuilder().Summarize(context.Background(), readRecords(t, testMAF), mutation.KindNucleotide)
	require.NoError(t, err)

	assert.Equal(t, 0, s.Skipped)
	assert.Equal(t, 6, s.Overall.Total())
	assert.Equal(t, 5, s.Overall.Get(hgvs.Substitution))
	assert.Equal(t, 1, s.Overall.Get(hgvs.Deletion))
	assert.Equal(t, "c.-124C>T", s.Labels[4].Notation)
	assert.Equal(t, "5'Flank", s.Labels[4].Class)
	assert.Equal(t, genes.Other, s.Labels[4].Category)
}

func TestSummarize_StopOnFirstError(t *testing.T) {
	content := "Hugo_Symbol\tHGVSp_Short\n" +
		"KRAS\tp.G12V\n" +
		"TP53\t\n" +
		"EGFR\tgarbage\n"

	s, err := newBuilder().Summarize(context.Background(), readRecords(t, content), mutation.KindAminoAcid)
	require.Error(t, err)
	assert.Nil(t, s)
	assert.ErrorIs(t, err, hgvs.ErrMalformed)
	assert.Contains(t, err.Error(), "line 4 (EGFR)")

	var ne *mutation.NotationError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, "garbage", ne.Notation)
}

func TestSummarize_CollectErrors(t *testing.T) {
	content := "Hugo_Symbol\tHGVSp_Short\n" +
		"KRAS\tp.G12V\n" +
		"EGFR\tgarbage\n" +
		"TP53\tp.R175H\n" +
		"APC\tnonsense\n"

	b := newBuilder(mutation.WithPolicy(mutation.CollectErrors), mutation.WithWorkers(2))
	s, err := b.Summarize(context.Background(), readRecords(t, content), mutation.KindAminoAcid)
	require.Error(t, err)
	require.NotNil(t, s)

	errs := multierr.Errors(err)
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Error(), "line 3 (EGFR)")
	assert.Contains(t, errs[1].Error(), "line 5 (APC)")

	assert.Len(t, s.Labels, 4)
	assert.Equal(t, mutation.Unparsed, s.Labels[1].Type)
	assert.Equal(t, 2, s.Overall.Get(mutation.Unparsed))
	assert.Equal(t, 4, s.Overall.Total())
}

func TestSummarize_Empty(t *testing.T) {
	s, err := newBuilder().Summarize(context.Background(), nil, mutation.KindAminoAcid)
	require.NoError(t, err)
	assert.Empty(t, s.Labels)
	assert.Equal(t, 0, s.Overall.Total())
	for _, c := range genes.Categories {
		require.NotNil(t, s.ByCategory[c])
		assert.Equal(t, 0, s.ByCategory[c].Len())
	}
}

func TestNotation(t *testing.T) {
	r := &maf.Record{HGVSp: "p.Gly12Val", HGVSc: "c.35G>T"}
	assert.Equal(t, "p.Gly12Val", Notation(r, mutation.KindAminoAcid))
	assert.Equal(t, "c.35G>T", Notation(r, mutation.KindNucleotide))
}
