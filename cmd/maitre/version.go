package main

import (
	"fmt"

	"github.com/aretw0/maitre"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of maitre",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "maitre version %s\n", maitre.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
