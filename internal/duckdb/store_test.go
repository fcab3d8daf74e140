package duckdb

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-muts/internal/genes"
	"github.com/inodb/vibe-muts/internal/mutation"
	"github.com/inodb/vibe-muts/internal/report"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testLabels() []report.Label {
	mk := func(seq int, gene string, cat genes.Category, typ mutation.Type) report.Label {
		return report.Label{
			Seq: seq, Sample: "S1", Gene: gene, Category: cat,
			Kind: mutation.KindAminoAcid, Notation: "p.X", Type: typ,
		}
	}
	return []report.Label{
		mk(0, "TTN", genes.Other, "frameshift"),
		mk(1, "KRAS", genes.Oncogene, "missense"),
		mk(2, "TP53", genes.TSG, "nonsense"),
		mk(3, "TP53", genes.TSG, "missense"),
		mk(4, "KRAS", genes.Oncogene, "missense"),
	}
}

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	assert.NotNil(t, s.DB())
	assert.Equal(t, "", s.Path())
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "labels.duckdb")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.WriteLabels(testLabels()))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	n, err := s.LabelCount()
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
}

func TestWriteLabels_CountTypes(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WriteLabels(testLabels()))

	n, err := s.LabelCount()
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	all, err := s.CountTypes("")
	require.NoError(t, err)
	// frameshift and nonsense tie; frameshift was seen first.
	assert.Equal(t, []mutation.Entry{
		{Type: "missense", Count: 3},
		{Type: "frameshift", Count: 1},
		{Type: "nonsense", Count: 1},
	}, all.Entries())

	tsg, err := s.CountTypes("tsg")
	require.NoError(t, err)
	assert.Equal(t, []mutation.Type{"nonsense", "missense"}, tsg.Types())

	kras, err := s.CountTypesByGene("KRAS")
	require.NoError(t, err)
	assert.Equal(t, 2, kras.Get("missense"))
	assert.Equal(t, 1, kras.Len())

	none, err := s.CountTypesByGene("NOTEXIST")
	require.NoError(t, err)
	assert.Equal(t, 0, none.Total())
}

func TestWriteLabels_MatchesInMemoryCount(t *testing.T) {
	s := openInMemory(t)
	labels := testLabels()
	require.NoError(t, s.WriteLabels(labels))

	types := make([]mutation.Type, len(labels))
	for i, l := range labels {
		types[i] = l.Type
	}

	stored, err := s.CountTypes("")
	require.NoError(t, err)
	assert.Equal(t, mutation.Count(types).Entries(), stored.Entries())
}

func TestWriteLabels_SeqContinues(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WriteLabels(testLabels()[:1]))
	require.NoError(t, s.WriteLabels(testLabels()[1:2]))

	var maxSeq int64
	require.NoError(t, s.DB().QueryRow("SELECT MAX(seq) FROM mutation_labels").Scan(&maxSeq))
	assert.Equal(t, int64(1), maxSeq)

	require.NoError(t, s.WriteLabels(nil))
	n, err := s.LabelCount()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestClear(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WriteLabels(testLabels()))
	require.NoError(t, s.RecordSource(FileFingerprint{Path: "a.maf", Size: 1, ModTime: time.Now()}, "amino-acid", 5))

	require.NoError(t, s.Clear())

	n, err := s.LabelCount()
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	sources, err := s.Sources()
	require.NoError(t, err)
	assert.Empty(t, sources)
}

func TestSources(t *testing.T) {
	s := openInMemory(t)

	path := filepath.Join(t.TempDir(), "in.maf")
	require.NoError(t, os.WriteFile(path, []byte("Hugo_Symbol\tHGVSc\n"), 0644))
	fp, err := StatFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(18), fp.Size)

	ok, err := s.HasSource(fp, "amino-acid")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.RecordSource(fp, "amino-acid", 3))
	ok, err = s.HasSource(fp, "amino-acid")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.HasSource(fp, "nucleotide")
	require.NoError(t, err)
	assert.False(t, ok)

	changed := fp
	changed.Size++
	ok, err = s.HasSource(changed, "amino-acid")
	require.NoError(t, err)
	assert.False(t, ok)

	// Re-recording replaces the previous row.
	require.NoError(t, s.RecordSource(fp, "amino-acid", 4))
	sources, err := s.Sources()
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, path, sources[0].Path)
	assert.Equal(t, int64(4), sources[0].Labels)
}

func TestStatFile_Missing(t *testing.T) {
	_, err := StatFile(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
