package main

import (
	"github.com/aretw0/maitre/internal/cli"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Book a table in an interactive terminal conversation",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		debug, _ := cmd.Flags().GetBool("debug")
		plain, _ := cmd.Flags().GetBool("plain")
		noBanner, _ := cmd.Flags().GetBool("no-banner")

		return cli.Execute(cli.ChatOptions{
			ConfigPath: path,
			Debug:      debug,
			Plain:      plain,
			NoBanner:   noBanner,
		})
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().Bool("plain", false, "Disable colors and markdown rendering")
	chatCmd.Flags().Bool("no-banner", false, "Do not print the welcome banner")

	// chat is the default when no command is given.
	rootCmd.RunE = chatCmd.RunE
	rootCmd.Flags().AddFlagSet(chatCmd.Flags())
}
