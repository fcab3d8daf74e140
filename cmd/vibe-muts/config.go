package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage vibe-muts configuration",
		Long:  "Show, get, or set configuration values. Config is stored in ~/.vibe-muts.yaml.",
		Example: `  vibe-muts config                                   # show all config
  vibe-muts config set genes.oncokb ~/cancerGeneList.tsv  # classify with OncoKB
  vibe-muts config set count.workers 8                   # parse in parallel
  vibe-muts config get count.policy                      # get a value`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd.OutOrStdout())
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd.OutOrStdout(), args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(cmd.OutOrStdout(), args[0])
		},
	}
}

// configKeys lists the settings shown by "config".
var configKeys = []string{
	"genes.oncogenes",
	"genes.tsgs",
	"genes.oncokb",
	"count.kind",
	"count.policy",
	"count.workers",
	"db.path",
}

func runConfigShow(w io.Writer) error {
	if viper.ConfigFileUsed() == "" {
		fmt.Fprintln(w, "# No config file found. Config file: ~/.vibe-muts.yaml")
	}

	settings := make(map[string]any)
	for _, key := range configKeys {
		if v := viper.Get(key); v != nil && v != "" {
			settings[key] = v
		}
	}
	if len(settings) == 0 {
		return nil
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Fprint(w, string(out))
	return nil
}

func runConfigSet(w io.Writer, key, value string) error {
	switch value {
	case "true", "yes", "on":
		viper.Set(key, true)
	case "false", "no", "off":
		viper.Set(key, false)
	default:
		if n, err := strconv.Atoi(value); err == nil {
			viper.Set(key, n)
		} else {
			viper.Set(key, value)
		}
	}

	// Ensure config file exists
	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, configName+".yaml")
	}

	if err := viper.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(w, "Set %s = %s in %s\n", key, value, cfgFile)
	return nil
}

func runConfigGet(w io.Writer, key string) error {
	val := viper.Get(key)
	if val == nil {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Fprintln(w, val)
	return nil
}
