package main

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inodb/vibe-muts/internal/genes"
)

func (c *cli) newClassifyCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "classify [GENE...]",
		Short: "Classify genes as oncogene, tsg or other",
		Example: `  vibe-muts classify KRAS TP53 TTN
  vibe-muts classify --file genes.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			symbols := args
			if file != "" {
				fromFile, err := genes.ReadGeneList(file)
				if err != nil {
					return err
				}
				symbols = append(symbols, fromFile...)
			}
			if len(symbols) == 0 {
				return usageErrorf("at least one gene or --file is required")
			}

			sets, err := c.loadReferenceSets()
			if err != nil {
				return err
			}
			classifier := genes.NewClassifier(sets)

			w := bufio.NewWriter(cmd.OutOrStdout())
			for i, cat := range classifier.ClassifyAll(symbols) {
				fmt.Fprintf(w, "%s\t%s\n", symbols[i], cat)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read gene symbols from a file, one per line")

	return cmd
}
