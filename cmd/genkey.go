package cmd

import (
	"fmt"

	"github.com/sfbilling/sfbilling/internal/api"
	"github.com/spf13/cobra"
)

var genKeyCmd = &cobra.Command{
	Use:   "gen-key",
	Short: "Generate a random API key",
	Long: "Generates a random API key suitable for the server's API_KEY.\n" +
		"Give the same key to clients through SFBILLING_API_KEY or --api-key.",
	Args: cobra.NoArgs,
	RunE: runGenKey,
	Annotations: map[string]string{
		"group": string(subCommandGroupAdvanced),
		"order": "3",
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
}

func init() {
	rootCmd.AddCommand(genKeyCmd)
}

func runGenKey(cmd *cobra.Command, args []string) error {
	key, err := api.GenerateAPIKey()
	if err != nil {
		return fmt.Errorf("failed to generate API key: %w", err)
	}
	cmd.Println(key)
	return nil
}
