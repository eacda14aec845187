package cmd

import (
	"gitshard/pkg/shard"

	"github.com/spf13/cobra"
)

// mergeCmd reconstructs all tracked originals from their chunk files.
var mergeCmd = &cobra.Command{
	Use:     "merge",
	Aliases: []string{"all"},
	Short:   "Reconstruct split files from their chunks",
	Long: `Merge rebuilds every file recorded in the split information store by
concatenating its chunk files in order, verifies the result by size, and
removes the chunks afterwards. The store and the ignore file are not
modified, so the command is safe to run repeatedly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		return shard.MergeAll(cfg, logger)
	},
}

func init() {
	RootCmd.AddCommand(mergeCmd)
}
