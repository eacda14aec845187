package cmd

import (
	"fmt"

	"gitshard/pkg/version"

	"github.com/spf13/cobra"
)

// versionCmd displays the current version of gitshard.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the version of gitshard",
	Long:  `Display the current version information of the gitshard CLI tool.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		short, err := cmd.Flags().GetBool("short")
		if err != nil {
			return fmt.Errorf("error reading flags: %w", err)
		}

		v := version.Get()
		if short {
			fmt.Println(v.Version)
		} else {
			fmt.Println(v.String())
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolP("short", "s", false, "Print the version number only")
	RootCmd.AddCommand(versionCmd)
}
