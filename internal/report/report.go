// Package report turns MAF records into labelled mutations and
// frequency tables broken down by gene category.
package report

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/inodb/vibe-muts/internal/genes"
	"github.com/inodb/vibe-muts/internal/maf"
	"github.com/inodb/vibe-muts/internal/mutation"
)

// Label is one classified mutation.
type Label struct {
	Seq      int
	Line     int
	Sample   string
	Gene     string
	Category genes.Category
	// Class is the MAF Variant_Classification, empty when the column is absent.
	Class    string
	Kind     mutation.Kind
	Notation string
	Type     mutation.Type
}

// Summary holds the result of classifying a set of records.
type Summary struct {
	Kind       mutation.Kind
	Labels     []Label
	Overall    *mutation.FrequencyTable
	ByCategory map[genes.Category]*mutation.FrequencyTable
	// Skipped counts records without a notation of the requested kind.
	Skipped int
}

// Builder classifies records with a gene classifier and an aggregator.
type Builder struct {
	classifier *genes.Classifier
	aggregator *mutation.Aggregator
	logger     *zap.Logger
}

// NewBuilder creates a builder.
func NewBuilder(c *genes.Classifier, a *mutation.Aggregator) *Builder {
	return &Builder{
		classifier: c,
		aggregator: a,
		logger:     zap.NewNop(),
	}
}

// SetLogger sets the logger for skip and summary messages.
func (b *Builder) SetLogger(l *zap.Logger) {
	b.logger = l
}

// Notation returns the notation of r for the given kind.
// Amino-acid uses HGVSp_Short falling back to HGVSp; nucleotide uses HGVSc.
func Notation(r *maf.Record, kind mutation.Kind) string {
	if kind == mutation.KindNucleotide {
		return r.HGVSc
	}
	return r.ProteinNotation()
}

// Summarize labels every record that carries a notation of the given kind.
//
// Parse failures follow the aggregator's policy. Under StopOnFirstError the
// summary is nil and the error names the MAF line. Under CollectErrors the
// summary is complete and returned together with the combined error.
func (b *Builder) Summarize(ctx context.Context, records []*maf.Record, kind mutation.Kind) (*Summary, error) {
	kept := make([]*maf.Record, 0, len(records))
	notations := make([]string, 0, len(records))
	for _, r := range records {
		n := Notation(r, kind)
		if n == "" {
			continue
		}
		kept = append(kept, r)
		notations = append(notations, n)
	}
	skipped := len(records) - len(kept)
	if skipped > 0 {
		b.logger.Info("skipped records without notation",
			zap.Stringer("kind", kind),
			zap.Int("skipped", skipped))
	}

	types, err := b.aggregator.ClassifyAll(ctx, notations, kind)
	if types == nil {
		return nil, withLine(err, kept)
	}

	s := &Summary{
		Kind:    kind,
		Labels:  make([]Label, len(kept)),
		Skipped: skipped,
	}
	for i, r := range kept {
		s.Labels[i] = Label{
			Seq:      i,
			Line:     r.Line,
			Sample:   r.TumorSampleBarcode,
			Gene:     r.HugoSymbol,
			Category: b.classifier.Classify(r.HugoSymbol),
			Class:    r.VariantClassification,
			Kind:     kind,
			Notation: notations[i],
			Type:     types[i],
		}
	}
	s.Overall = mutation.Count(types)
	s.ByCategory = ByCategory(s.Labels)

	b.logger.Debug("summarized records",
		zap.Int("labelled", len(s.Labels)),
		zap.Int("types", s.Overall.Len()))

	if err == nil {
		return s, nil
	}
	var combined error
	for _, e := range multierr.Errors(err) {
		combined = multierr.Append(combined, withLine(e, kept))
	}
	return s, combined
}

// ByCategory counts mutation types separately for every gene category.
// Every category is present, possibly with an empty table.
func ByCategory(labels []Label) map[genes.Category]*mutation.FrequencyTable {
	grouped := make(map[genes.Category][]mutation.Type, len(genes.Categories))
	for _, l := range labels {
		grouped[l.Category] = append(grouped[l.Category], l.Type)
	}
	out := make(map[genes.Category]*mutation.FrequencyTable, len(genes.Categories))
	for _, c := range genes.Categories {
		out[c] = mutation.Count(grouped[c])
	}
	return out
}

// withLine prefixes a notation error with the MAF line it came from.
func withLine(err error, kept []*maf.Record) error {
	var ne *mutation.NotationError
	if errors.As(err, &ne) && ne.Index >= 0 && ne.Index < len(kept) {
		r := kept[ne.Index]
		return fmt.Errorf("line %d (%s): %w", r.Line, r.HugoSymbol, err)
	}
	return err
}
