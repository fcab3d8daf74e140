package mutation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var errBad = errors.New("bad notation")

// labelParser labels notations by their prefix up to ':' and rejects
// anything starting with "bad".
func labelParser() Parser {
	return ParserFunc(func(n string) (Type, error) {
		if strings.HasPrefix(n, "bad") {
			return "", errBad
		}
		if i := strings.IndexByte(n, ':'); i >= 0 {
			return Type(n[:i]), nil
		}
		return Type(n), nil
	})
}

func constParser(t Type) Parser {
	return ParserFunc(func(string) (Type, error) { return t, nil })
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"amino-acid", KindAminoAcid},
		{"amino acid", KindAminoAcid},
		{"AA", KindAminoAcid},
		{"protein", KindAminoAcid},
		{"nucleotide", KindNucleotide},
		{"dna", KindNucleotide},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseKind("rna-structure")
	assert.ErrorIs(t, err, ErrUnsupportedKind)
}

func TestResolver_Dispatch(t *testing.T) {
	r := NewResolver(constParser("missense"), constParser("substitution"))

	got, err := r.Resolve("p.R175H", KindAminoAcid)
	require.NoError(t, err)
	assert.Equal(t, Type("missense"), got)

	got, err = r.Resolve("c.524G>A", KindNucleotide)
	require.NoError(t, err)
	assert.Equal(t, Type("substitution"), got)
}

func TestResolver_UnsupportedKind(t *testing.T) {
	r := NewResolver(constParser("missense"), constParser("substitution"))

	_, err := r.Resolve("p.R175H", Kind(7))
	assert.ErrorIs(t, err, ErrUnsupportedKind)

	// A kind without a configured parser is also unsupported.
	r = NewResolver(constParser("missense"), nil)
	_, err = r.Resolve("c.1A>G", KindNucleotide)
	assert.ErrorIs(t, err, ErrUnsupportedKind)
}

func TestResolver_PropagatesParseError(t *testing.T) {
	r := NewResolver(labelParser(), labelParser())

	_, err := r.Resolve("bad-one", KindAminoAcid)
	require.Error(t, err)
	assert.ErrorIs(t, err, errBad)

	var ne *NotationError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, "bad-one", ne.Notation)
	assert.Equal(t, -1, ne.Index)
	assert.Contains(t, err.Error(), `"bad-one"`)
}

func TestCountTypes_Scenario(t *testing.T) {
	agg := NewAggregator(NewResolver(constParser("missense"), nil))

	table, err := agg.CountTypes(context.Background(), []string{"p.R175H", "p.Q61K"}, KindAminoAcid)
	require.NoError(t, err)
	assert.Equal(t, []Entry{{Type: "missense", Count: 2}}, table.Entries())
}

func TestCountTypes_Empty(t *testing.T) {
	agg := NewAggregator(NewResolver(labelParser(), nil))

	labels, err := agg.ClassifyAll(context.Background(), nil, KindAminoAcid)
	require.NoError(t, err)
	assert.NotNil(t, labels)
	assert.Empty(t, labels)

	table, err := agg.CountTypes(context.Background(), []string{}, KindAminoAcid)
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
	assert.Equal(t, 0, table.Total())
}

func TestClassifyAll_UnsupportedKindEvenWhenEmpty(t *testing.T) {
	agg := NewAggregator(NewResolver(labelParser(), labelParser()), WithPolicy(CollectErrors))
	_, err := agg.ClassifyAll(context.Background(), nil, Kind(-1))
	assert.ErrorIs(t, err, ErrUnsupportedKind)
}

func TestCountTypes_SortedByCountThenFirstSeen(t *testing.T) {
	agg := NewAggregator(NewResolver(labelParser(), nil))
	in := []string{"silent", "nonsense", "missense", "nonsense", "missense", "frameshift", "missense"}

	table, err := agg.CountTypes(context.Background(), in, KindAminoAcid)
	require.NoError(t, err)

	assert.Equal(t, []Entry{
		{Type: "missense", Count: 3},
		{Type: "nonsense", Count: 2},
		{Type: "silent", Count: 1},
		{Type: "frameshift", Count: 1},
	}, table.Entries())
	assert.Equal(t, len(in), table.Total())
	assert.Equal(t, 0, table.Get("indel"))
}

func TestClassifyAll_OrderPreservation(t *testing.T) {
	in := make([]string, 500)
	for i := range in {
		in[i] = fmt.Sprintf("t%d:%d", i%7, i)
	}

	for _, workers := range []int{1, 2, 8} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			agg := NewAggregator(NewResolver(labelParser(), nil), WithWorkers(workers))
			labels, err := agg.ClassifyAll(context.Background(), in, KindAminoAcid)
			require.NoError(t, err)
			require.Len(t, labels, len(in))
			for i, l := range labels {
				assert.Equal(t, Type(fmt.Sprintf("t%d", i%7)), l, "index %d", i)
			}
		})
	}
}

func TestClassifyAll_ParallelOrderWithSlowEarlyItems(t *testing.T) {
	// Early items finish last; output must still follow input order.
	p := ParserFunc(func(n string) (Type, error) {
		if strings.HasPrefix(n, "slow") {
			time.Sleep(5 * time.Millisecond)
		}
		return Type(n), nil
	})
	in := []string{"slow0", "slow1", "fast2", "fast3", "fast4", "fast5"}

	agg := NewAggregator(NewResolver(p, nil), WithWorkers(4))
	labels, err := agg.ClassifyAll(context.Background(), in, KindAminoAcid)
	require.NoError(t, err)
	for i, l := range labels {
		assert.Equal(t, Type(in[i]), l)
	}
}

func TestClassifyAll_StopOnFirstError(t *testing.T) {
	in := []string{"missense", "missense", "bad-R175", "nonsense"}

	for _, workers := range []int{1, 4} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			agg := NewAggregator(NewResolver(labelParser(), nil), WithWorkers(workers))

			labels, err := agg.ClassifyAll(context.Background(), in, KindAminoAcid)
			require.Error(t, err)
			assert.Nil(t, labels)

			var ne *NotationError
			require.ErrorAs(t, err, &ne)
			assert.Equal(t, 2, ne.Index)
			assert.Equal(t, "bad-R175", ne.Notation)
			assert.ErrorIs(t, err, errBad)

			table, err := agg.CountTypes(context.Background(), in, KindAminoAcid)
			assert.Error(t, err)
			assert.Nil(t, table)
		})
	}
}

func TestClassifyAll_ParallelStopsIssuingWork(t *testing.T) {
	var calls atomic.Int64
	p := ParserFunc(func(n string) (Type, error) {
		calls.Add(1)
		if n == "bad" {
			return "", errBad
		}
		time.Sleep(50 * time.Microsecond)
		return "missense", nil
	})

	in := make([]string, 20000)
	for i := range in {
		in[i] = "ok"
	}
	in[0] = "bad"

	agg := NewAggregator(NewResolver(p, nil), WithWorkers(4))
	_, err := agg.ClassifyAll(context.Background(), in, KindAminoAcid)
	require.ErrorIs(t, err, errBad)
	assert.Less(t, calls.Load(), int64(len(in)))
}

func TestClassifyAll_CollectErrors(t *testing.T) {
	in := []string{"missense", "bad-1", "nonsense", "bad-2", "missense"}

	for _, workers := range []int{1, 3} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			core, logs := observer.New(zap.WarnLevel)
			agg := NewAggregator(NewResolver(labelParser(), nil),
				WithPolicy(CollectErrors), WithWorkers(workers), WithLogger(zap.New(core)))

			labels, err := agg.ClassifyAll(context.Background(), in, KindAminoAcid)
			require.Error(t, err)
			assert.Equal(t, []Type{"missense", Unparsed, "nonsense", Unparsed, "missense"}, labels)

			errs := multierr.Errors(err)
			require.Len(t, errs, 2)
			var first, second *NotationError
			require.ErrorAs(t, errs[0], &first)
			require.ErrorAs(t, errs[1], &second)
			assert.Equal(t, 1, first.Index)
			assert.Equal(t, 3, second.Index)

			assert.Equal(t, 2, logs.FilterMessage("unparseable notation").Len())
		})
	}
}

func TestCountTypes_CollectErrorsKeepsTotal(t *testing.T) {
	in := []string{"missense", "bad", "bad", "silent"}
	agg := NewAggregator(NewResolver(labelParser(), nil), WithPolicy(CollectErrors))

	table, err := agg.CountTypes(context.Background(), in, KindAminoAcid)
	require.Error(t, err)
	require.NotNil(t, table)
	assert.Equal(t, len(in), table.Total())
	assert.Equal(t, 2, table.Get(Unparsed))
}

func TestClassifyAll_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	agg := NewAggregator(NewResolver(labelParser(), nil))
	_, err := agg.ClassifyAll(ctx, []string{"missense"}, KindAminoAcid)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClassifyAll_ParallelContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := ParserFunc(func(n string) (Type, error) {
		if n == "a" {
			cancel()
			time.Sleep(5 * time.Millisecond)
		}
		return "missense", nil
	})

	agg := NewAggregator(NewResolver(p, nil), WithWorkers(2))
	labels, err := agg.ClassifyAll(ctx, []string{"a", "b", "c", "d"}, KindAminoAcid)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, labels)

	table, err := agg.CountTypes(ctx, []string{"a", "b"}, KindAminoAcid)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, table)
}

func TestCount_Reuse(t *testing.T) {
	labels := []Type{"missense", "silent", "missense"}
	table := Count(labels[:2])
	assert.Equal(t, 2, table.Total())
	assert.Equal(t, []Type{"missense", "silent"}, table.Types())
}

func TestParsePolicy(t *testing.T) {
	p, ok := ParsePolicy("collect")
	require.True(t, ok)
	assert.Equal(t, CollectErrors, p)
	assert.Equal(t, "collect", p.String())

	p, ok = ParsePolicy("stop")
	require.True(t, ok)
	assert.Equal(t, StopOnFirstError, p)

	_, ok = ParsePolicy("maybe")
	assert.False(t, ok)
}
