package cmd

import (
	"gitshard/pkg/shard"

	"github.com/spf13/cobra"
)

// buildCmd scans the working root, splits oversized files and records them.
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Find oversized files, split them and add the originals to the ignore file",
	Long: `Build scans the working root for files above the size limit, splits each
into chunk files, records the results in the split information store, and
appends the original paths to the ignore file. Files that are already split
and unchanged are skipped; files whose size changed since the last split are
split again after their outdated chunks are removed. Original files are
always kept on disk.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		return shard.Build(cfg, logger)
	},
}

func init() {
	RootCmd.AddCommand(buildCmd)
}
