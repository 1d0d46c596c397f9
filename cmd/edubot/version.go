package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the release version, overridable at build time via
// -ldflags "-X main.Version=...".
var Version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of edubot",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("edubot version %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
