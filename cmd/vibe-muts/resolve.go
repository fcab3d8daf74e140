package main

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func (c *cli) newResolveCmd() *cobra.Command {
	var kindName string

	cmd := &cobra.Command{
		Use:   "resolve NOTATION...",
		Short: "Resolve HGVS notations into mutation types",
		Example: `  vibe-muts resolve p.G12C p.R213* p.K38fs
  vibe-muts resolve --kind nucleotide c.35G>T c.100del`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if v := viper.GetString("count.kind"); v != "" && !cmd.Flags().Changed("kind") {
				kindName = v
			}
			kind, err := parseKind(kindName)
			if err != nil {
				return err
			}
			resolver := newResolver()

			w := bufio.NewWriter(cmd.OutOrStdout())
			defer w.Flush()
			for _, n := range args {
				t, err := resolver.Resolve(n, kind)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\n", n, t)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&kindName, "kind", "k", "amino-acid", "Notation kind: amino-acid or nucleotide (default: count.kind)")

	return cmd
}
