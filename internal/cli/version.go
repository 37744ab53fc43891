package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	GroupsweepVersion, GroupsweepCommit, GroupsweepDate string
)

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Display version, commit hash and build date",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("GroupSweep version: %s\n", GroupsweepVersion)
		fmt.Printf("Commit: %s\n", GroupsweepCommit)
		fmt.Printf("Built: %s\n", GroupsweepDate)
	},
}

func init() {
	rootCommand.AddCommand(versionCommand)
}
