package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listToolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools offered by the server",
	Args:  cobra.NoArgs,
	RunE:  runListTools,
	Annotations: map[string]string{
		"group": string(subCommandGroupBasic),
		"order": "2",
	},
}

func init() {
	rootCmd.AddCommand(listToolsCmd)
}

func runListTools(cmd *cobra.Command, args []string) error {
	tools, err := apiClient.ListTools()
	if err != nil {
		return fmt.Errorf("failed to list tools: %w", err)
	}
	if len(tools) == 0 {
		cmd.Println("There are no tools available")
		return nil
	}

	for i, t := range tools {
		cmd.Printf("%d. %s\n", i+1, t.Name)
		cmd.Printf("   %s\n", t.Description)
	}
	cmd.Println()
	cmd.Println("Run 'usage <tool name>' to see a tool's input parameters.")
	return nil
}
