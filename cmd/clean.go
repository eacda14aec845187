package cmd

import (
	"gitshard/pkg/shard"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cleanCmd removes every chunk file and the split information store.
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove all chunk files and the split information store",
	Long: `Clean deletes every chunk file known to the split information store and
then the store itself. Original files are untouched. Running clean when
there is nothing to remove is a no-op.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		removed, err := shard.Clean(cfg, logger)
		if err != nil {
			return err
		}
		logger.Info("clean completed", zap.Int("removedChunks", removed))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(cleanCmd)
}
