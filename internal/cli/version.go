package cmd

import (
	"fmt"

	"github.com/rohmanhakim/vnlaw-crawler/internal/build"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "vnlaw-crawler %s (built %s)\n", build.FullVersion(), build.BuildTime)
	},
}
