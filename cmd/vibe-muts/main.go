// Package main provides the vibe-muts command-line tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inodb/vibe-muts/internal/datasource/oncokb"
	"github.com/inodb/vibe-muts/internal/genes"
	"github.com/inodb/vibe-muts/internal/hgvs"
	"github.com/inodb/vibe-muts/internal/mutation"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const configName = ".vibe-muts"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		var ue *usageError
		if errors.As(err, &ue) {
			fmt.Fprintf(stderr, "Run 'vibe-muts --help' for usage.\n")
			return ExitUsage
		}
		return ExitError
	}
	return ExitSuccess
}

// usageError marks errors caused by invalid command-line usage.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usageErrorf(format string, a ...any) error {
	return &usageError{err: fmt.Errorf(format, a...)}
}

// usageArgs wraps a positional-argument validator so its errors map to ExitUsage.
func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}

// cli holds state shared by all subcommands.
type cli struct {
	cfgFile string
	verbose bool
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "vibe-muts",
		Short: "Mutation type analysis for cancer genes",
		Long: `vibe-muts classifies genes as oncogene, tumor suppressor or other, resolves
HGVS notations into mutation types and writes frequency tables for plotting.`,
		Example: `  vibe-muts download                          # fetch the OncoKB cancer gene list
  vibe-muts classify KRAS TP53 TTN
  vibe-muts count --by-category data_mutations.txt
  vibe-muts count --kind nucleotide --policy collect -o counts.tsv input.maf`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usageErrorf("unknown command %q", args[0])
			}
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.initConfig(); err != nil {
				return err
			}
			c.logger = newLogger(cmd.ErrOrStderr(), c.verbose)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = c.logger.Sync()
		},
	}
	root.SetVersionTemplate("vibe-muts version {{.Version}}\n")
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&c.cfgFile, "config", "", "Config file (default: ~/.vibe-muts.yaml)")
	pf.BoolVar(&c.verbose, "verbose", false, "Enable debug logging")
	pf.String("oncogenes", "", "Oncogene list, one symbol per line")
	pf.String("tsgs", "", "Tumor suppressor list, one symbol per line")
	pf.String("oncokb", "", "OncoKB cancerGeneList.tsv (used instead of --oncogenes/--tsgs)")
	viper.BindPFlag("genes.oncogenes", pf.Lookup("oncogenes"))
	viper.BindPFlag("genes.tsgs", pf.Lookup("tsgs"))
	viper.BindPFlag("genes.oncokb", pf.Lookup("oncokb"))

	root.AddCommand(c.newClassifyCmd())
	root.AddCommand(c.newResolveCmd())
	root.AddCommand(c.newCountCmd())
	root.AddCommand(c.newPropertiesCmd())
	root.AddCommand(c.newQueryCmd())
	root.AddCommand(c.newDownloadCmd())
	root.AddCommand(newConfigCmd())

	return root
}

// initConfig reads ~/.vibe-muts.yaml (or --config) and VIBE_MUTS_* variables.
func (c *cli) initConfig() error {
	if c.cfgFile != "" {
		viper.SetConfigFile(c.cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(configName)
		viper.SetConfigType("yaml")
	}
	viper.SetEnvPrefix("VIBE_MUTS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

// newLogger builds a console logger writing to w.
func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), level)
	return zap.New(core)
}

// dataDir returns the default directory for downloaded reference data.
func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, configName)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// loadReferenceSets loads gene sets from the configured source. An
// explicit OncoKB list wins over gene list files; with nothing configured
// the data directory is searched for the default file names.
func (c *cli) loadReferenceSets() (*genes.ReferenceSets, error) {
	if path := viper.GetString("genes.oncokb"); path != "" {
		return c.loadOncoKB(path)
	}

	onco := viper.GetString("genes.oncogenes")
	tsg := viper.GetString("genes.tsgs")
	if onco == "" && tsg == "" {
		dir := dataDir()
		defOnco := filepath.Join(dir, genes.OncogeneFileName)
		defTSG := filepath.Join(dir, genes.TSGFileName)
		defOncoKB := filepath.Join(dir, oncokb.CancerGeneListFileName)
		switch {
		case fileExists(defOnco) && fileExists(defTSG):
			onco, tsg = defOnco, defTSG
		case fileExists(defOncoKB):
			return c.loadOncoKB(defOncoKB)
		default:
			return nil, fmt.Errorf("%w: no gene lists found in %s; run 'vibe-muts download' or set genes.oncogenes and genes.tsgs",
				genes.ErrReferenceData, dir)
		}
	}
	if onco == "" || tsg == "" {
		return nil, fmt.Errorf("%w: both genes.oncogenes and genes.tsgs must be set", genes.ErrReferenceData)
	}

	sets, err := genes.LoadReferenceSets(onco, tsg)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("loaded gene lists",
		zap.String("oncogenes", onco),
		zap.String("tsgs", tsg),
		zap.Int("n_oncogenes", len(sets.Oncogenes())),
		zap.Int("n_tsgs", len(sets.TSGs())))
	if overlap := sets.Overlap(); len(overlap) > 0 {
		c.logger.Debug("genes in both lists classify as oncogene", zap.Strings("genes", overlap))
	}
	return sets, nil
}

func (c *cli) loadOncoKB(path string) (*genes.ReferenceSets, error) {
	cgl, err := oncokb.LoadCancerGeneList(path)
	if err != nil {
		return nil, err
	}
	sets := cgl.ReferenceSets()
	c.logger.Debug("loaded OncoKB cancer gene list",
		zap.String("path", path),
		zap.Int("genes", len(cgl)),
		zap.Int("n_oncogenes", len(sets.Oncogenes())),
		zap.Int("n_tsgs", len(sets.TSGs())))
	return sets, nil
}

// newResolver wires the HGVS parsers into a resolver.
func newResolver() *mutation.Resolver {
	return mutation.NewResolver(hgvs.ProteinParser{}, hgvs.NucleotideParser{})
}

// parseKind converts a --kind value, reporting bad values as usage errors.
func parseKind(s string) (mutation.Kind, error) {
	kind, err := mutation.ParseKind(s)
	if err != nil {
		return 0, &usageError{err: err}
	}
	return kind, nil
}

// createOutput returns a writer for path, or stdout when path is empty or "-".
func createOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, f.Close, nil
}
