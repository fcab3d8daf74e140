package main

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inodb/vibe-muts/internal/duckdb"
	"github.com/inodb/vibe-muts/internal/genes"
	"github.com/inodb/vibe-muts/internal/mutation"
	"github.com/inodb/vibe-muts/internal/output"
)

func (c *cli) newQueryCmd() *cobra.Command {
	var (
		category string
		gene     string
		sources  bool
	)

	cmd := &cobra.Command{
		Use:   "query DB",
		Short: "Print mutation type counts from a DuckDB label database",
		Example: `  vibe-muts query labels.duckdb
  vibe-muts query --category tsg labels.duckdb
  vibe-muts query --gene KRAS labels.duckdb
  vibe-muts query --sources labels.duckdb`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if category != "" && gene != "" {
				return usageErrorf("--category and --gene are mutually exclusive")
			}
			if category != "" {
				if _, ok := genes.ParseCategory(category); !ok {
					return usageErrorf("unknown category %q (expected oncogene, tsg or other)", category)
				}
			}
			if !fileExists(args[0]) {
				return fmt.Errorf("database %s not found", args[0])
			}

			store, err := duckdb.Open(args[0])
			if err != nil {
				return err
			}
			defer store.Close()

			if sources {
				return writeSources(cmd, store)
			}

			var table *mutation.FrequencyTable
			if gene != "" {
				table, err = store.CountTypesByGene(gene)
			} else {
				table, err = store.CountTypes(category)
			}
			if err != nil {
				return err
			}
			return output.WriteFrequencyTable(cmd.OutOrStdout(), table)
		},
	}

	f := cmd.Flags()
	f.StringVar(&category, "category", "", "Only count genes of this category: oncogene, tsg or other")
	f.StringVar(&gene, "gene", "", "Only count mutations in this gene")
	f.BoolVar(&sources, "sources", false, "List imported input files instead of counts")

	return cmd
}

func writeSources(cmd *cobra.Command, store *duckdb.Store) error {
	srcs, err := store.Sources()
	if err != nil {
		return err
	}
	w := bufio.NewWriter(cmd.OutOrStdout())
	fmt.Fprintln(w, "path\tkind\tlabels\tsize\tmodified")
	for _, s := range srcs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", s.Path, s.Kind, s.Labels, formatSize(s.Size), s.ModTime.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}
