package main

import (
	"bufio"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/inodb/vibe-muts/internal/maf"
	"github.com/inodb/vibe-muts/internal/mutation"
	"github.com/inodb/vibe-muts/internal/proptable"
)

func (c *cli) newPropertiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "properties",
		Short: "Amino acid chemical property transition tables",
		Long: `Work with tables counting how substitutions move between amino acid
chemical property classes (nonpolar, polar, basic, acidic, stop).`,
	}

	cmd.AddCommand(c.newPropertiesShowCmd())
	cmd.AddCommand(c.newPropertiesCountCmd())

	return cmd
}

func (c *cli) newPropertiesShowCmd() *cobra.Command {
	var initial string

	cmd := &cobra.Command{
		Use:   "show TABLE",
		Short: "Print a property table, or one row of it",
		Example: `  vibe-muts properties show aa_change.properties.txt
  vibe-muts properties show --initial polar aa_change.properties.txt`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := proptable.Load(args[0])
			if err != nil {
				return err
			}
			c.logger.Debug("loaded property table",
				zap.String("path", args[0]),
				zap.Int("rows", len(tbl.Rows())),
				zap.Int("columns", len(tbl.Columns())))

			if initial == "" {
				return tbl.Write(cmd.OutOrStdout())
			}

			w := bufio.NewWriter(cmd.OutOrStdout())
			fmt.Fprintf(w, "%s\t%s\n", proptable.ColFinalProp, proptable.ColCount)
			for _, col := range tbl.Columns() {
				fmt.Fprintf(w, "%s\t%d\n", col, tbl.Get(initial, col))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&initial, "initial", "", "Only print transitions from this property")

	return cmd
}

func (c *cli) newPropertiesCountCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "count INPUT",
		Short: "Build a property transition table from MAF protein changes",
		Example: `  vibe-muts properties count -o aa_change.properties.txt data_mutations.txt`,
		Args:    usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			parser, err := maf.NewParser(args[0])
			if err != nil {
				return err
			}
			records, err := parser.ReadAll()
			parser.Close()
			if err != nil {
				return err
			}

			kept := make([]*maf.Record, 0, len(records))
			notations := make([]string, 0, len(records))
			for _, r := range records {
				if n := r.ProteinNotation(); n != "" {
					kept = append(kept, r)
					notations = append(notations, n)
				}
			}

			tbl, skipped, err := proptable.CountTransitions(notations)
			if err != nil {
				var ne *mutation.NotationError
				if errors.As(err, &ne) && ne.Index < len(kept) {
					r := kept[ne.Index]
					return fmt.Errorf("line %d (%s): %w", r.Line, r.HugoSymbol, err)
				}
				return err
			}
			c.logger.Info("counted property transitions",
				zap.String("path", args[0]),
				zap.Int("substitutions", int(tbl.Total())),
				zap.Int("skipped", skipped+len(records)-len(notations)))

			out, closeOut, err := createOutput(cmd, outputFile)
			if err != nil {
				return err
			}
			if err := multierr.Append(tbl.Write(out), closeOut()); err != nil {
				return fmt.Errorf("writing property table: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}
