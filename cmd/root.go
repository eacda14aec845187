package cmd

import (
	"gitshard/pkg/logging"
	"gitshard/pkg/shard"
	"gitshard/pkg/version"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var logger *zap.Logger

var (
	flagSizeLimit  string
	flagStore      string
	flagDir        string
	flagIgnoreFile string
	flagWorkers    int
	flagVerbose    bool
)

// RootCmd is the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "gitshard",
	Short: "Gitshard keeps a repository under file-size limits by splitting large files",
	Long: `Gitshard finds files above a size threshold, splits them into chunk files
that stay under the limit, records what it did in a JSON store, and adds the
originals to the ignore file. The originals are kept on disk and can be
reconstructed from the chunks at any time with the merge command.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if !flagVerbose {
			return nil
		}
		if err := logging.Setup(true, "gitshard", version.Get().Version); err != nil {
			return err
		}
		logger = logging.Logger
		return nil
	},
}

// Execute adds all child commands to the root command and runs it with the
// given logger.
func Execute(l *zap.Logger) error {
	logger = l
	return RootCmd.Execute()
}

func init() {
	pf := RootCmd.PersistentFlags()
	pf.StringVar(&flagSizeLimit, "size-limit", shard.DefaultSizeLimit, "size limit for large files (e.g. 100M, 1G)")
	pf.StringVar(&flagStore, "store", shard.DefaultStorePath, "split information store file")
	pf.StringVarP(&flagDir, "dir", "C", ".", "working root to operate in")
	pf.StringVar(&flagIgnoreFile, "ignore-file", shard.DefaultIgnoreFile, "ignore file that receives split originals")
	pf.IntVarP(&flagWorkers, "workers", "w", 0, "number of concurrent split workers (0 = number of CPUs)")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
}

// resolveConfig layers the effective configuration: defaults, then the
// optional .gitshard.yaml in the working root, then GITSHARD_* environment
// variables, then any flags set explicitly on the command line.
func resolveConfig(cmd *cobra.Command) (shard.Config, error) {
	cfg, err := shard.LoadConfig(flagDir)
	if err != nil {
		return shard.Config{}, err
	}

	fl := cmd.Flags()
	if fl.Changed("size-limit") {
		cfg.SizeLimit = flagSizeLimit
	}
	if fl.Changed("store") {
		cfg.StorePath = flagStore
	}
	if fl.Changed("ignore-file") {
		cfg.IgnoreFile = flagIgnoreFile
	}
	if fl.Changed("workers") {
		cfg.Workers = flagWorkers
	}
	cfg.Verbose = flagVerbose
	return cfg, nil
}
