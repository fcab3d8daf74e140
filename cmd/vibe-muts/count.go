package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/inodb/vibe-muts/internal/duckdb"
	"github.com/inodb/vibe-muts/internal/genes"
	"github.com/inodb/vibe-muts/internal/maf"
	"github.com/inodb/vibe-muts/internal/mutation"
	"github.com/inodb/vibe-muts/internal/output"
	"github.com/inodb/vibe-muts/internal/report"
)

func (c *cli) newCountCmd() *cobra.Command {
	var (
		outputFile string
		labelsFile string
		byCategory bool
	)

	cmd := &cobra.Command{
		Use:   "count INPUT",
		Short: "Count mutation types in a MAF file",
		Long: `Count mutation types in a MAF or cBioPortal data_mutations file.

Records without a notation of the requested kind are skipped. With
--policy stop the first malformed notation aborts the run; with
--policy collect malformed notations are counted as "unparsed".`,
		Example: `  vibe-muts count data_mutations.txt
  vibe-muts count --by-category -o counts.tsv input.maf
  vibe-muts count --kind nucleotide --policy collect --workers 8 input.maf.gz
  vibe-muts count --db labels.duckdb input.maf`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCount(cmd, args[0], outputFile, labelsFile, byCategory)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	f.StringVar(&labelsFile, "labels", "", "Also write per-mutation labels to this file")
	f.BoolVar(&byCategory, "by-category", false, "Break counts down by gene category")
	f.StringP("kind", "k", "amino-acid", "Notation kind: amino-acid or nucleotide")
	f.String("policy", "stop", "Malformed notation policy: stop or collect")
	f.IntP("workers", "w", 1, "Number of parse workers")
	f.String("db", "", "Append labels to this DuckDB database")
	viper.BindPFlag("count.kind", f.Lookup("kind"))
	viper.BindPFlag("count.policy", f.Lookup("policy"))
	viper.BindPFlag("count.workers", f.Lookup("workers"))
	viper.BindPFlag("db.path", f.Lookup("db"))

	return cmd
}

func (c *cli) runCount(cmd *cobra.Command, input, outputFile, labelsFile string, byCategory bool) error {
	kind, err := parseKind(viper.GetString("count.kind"))
	if err != nil {
		return err
	}
	policy, ok := mutation.ParsePolicy(viper.GetString("count.policy"))
	if !ok {
		return usageErrorf("unknown policy %q (expected stop or collect)", viper.GetString("count.policy"))
	}
	workers := viper.GetInt("count.workers")
	if workers < 1 {
		return usageErrorf("--workers must be at least 1, got %d", workers)
	}

	sets, err := c.loadReferenceSets()
	if err != nil {
		return err
	}

	parser, err := maf.NewParser(input)
	if err != nil {
		return err
	}
	records, err := parser.ReadAll()
	parser.Close()
	if err != nil {
		return err
	}
	c.logger.Debug("read MAF records", zap.String("path", input), zap.Int("records", len(records)))

	agg := mutation.NewAggregator(newResolver(),
		mutation.WithPolicy(policy),
		mutation.WithWorkers(workers),
		mutation.WithLogger(c.logger))
	builder := report.NewBuilder(genes.NewClassifier(sets), agg)
	builder.SetLogger(c.logger)

	summary, err := builder.Summarize(cmd.Context(), records, kind)
	if summary == nil {
		return err
	}
	if err != nil {
		c.logger.Warn("counted unparseable notations as unparsed",
			zap.Int("errors", len(multierr.Errors(err))))
	}

	out, closeOut, err := createOutput(cmd, outputFile)
	if err != nil {
		return err
	}
	if byCategory {
		err = output.WriteCategoryTable(out, summary.Overall, summary.ByCategory)
	} else {
		err = output.WriteFrequencyTable(out, summary.Overall)
	}
	if err := multierr.Append(err, closeOut()); err != nil {
		return fmt.Errorf("writing counts: %w", err)
	}

	if labelsFile != "" {
		if err := writeLabelsFile(labelsFile, summary.Labels); err != nil {
			return err
		}
	}

	if dbPath := viper.GetString("db.path"); dbPath != "" {
		if err := c.storeLabels(dbPath, input, kind, summary.Labels); err != nil {
			return err
		}
	}

	c.logger.Info("counted mutation types",
		zap.String("path", input),
		zap.Stringer("kind", kind),
		zap.Int("labelled", len(summary.Labels)),
		zap.Int("skipped", summary.Skipped),
		zap.Int("types", summary.Overall.Len()))
	return nil
}

func writeLabelsFile(path string, labels []report.Label) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating labels file: %w", err)
	}
	defer func() { err = multierr.Append(err, f.Close()) }()

	if err := output.WriteLabels(f, labels); err != nil {
		return fmt.Errorf("writing labels: %w", err)
	}
	return nil
}

// storeLabels appends labels to the DuckDB store unless the same unchanged
// input was already imported for this kind.
func (c *cli) storeLabels(dbPath, input string, kind mutation.Kind, labels []report.Label) error {
	store, err := duckdb.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	var fp duckdb.FileFingerprint
	if input != "-" {
		fp, err = duckdb.StatFile(input)
		if err != nil {
			return fmt.Errorf("stat input: %w", err)
		}
		seen, err := store.HasSource(fp, kind.String())
		if err != nil {
			return err
		}
		if seen {
			c.logger.Info("input already stored, skipping database import",
				zap.String("path", input), zap.String("db", dbPath))
			return nil
		}
	}

	if err := store.WriteLabels(labels); err != nil {
		return fmt.Errorf("storing labels: %w", err)
	}
	if input != "-" {
		if err := store.RecordSource(fp, kind.String(), int64(len(labels))); err != nil {
			return err
		}
	}
	c.logger.Debug("stored labels", zap.String("db", dbPath), zap.Int("labels", len(labels)))
	return nil
}
