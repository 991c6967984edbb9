package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/maitre"
	"github.com/aretw0/maitre/internal/runtime"
	"github.com/aretw0/maitre/pkg/domain"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the booking state machine as a Mermaid diagram",
	Long:  `Prints a Mermaid flowchart (graph TD) of the states and routing rules. --path highlights a turn.`,
	Run: func(cmd *cobra.Command, args []string) {
		raw, _ := cmd.Flags().GetString("path")

		var path []domain.StateName
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				path = append(path, domain.StateName(p))
			}
		}

		// The graph is static; no collaborators are needed to inspect it.
		engine := runtime.NewEngine(nil, nil, nil)
		fmt.Fprint(cmd.OutOrStdout(), maitre.Diagram(engine.Inspect(), path))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("path", "", "Comma separated states to highlight, e.g. collect_info,confirm")
}
