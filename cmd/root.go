// Package cmd implements the sfbilling command line.
package cmd

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/sfbilling/sfbilling/client"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

type subCommandGroup string

const (
	subCommandGroupBasic    subCommandGroup = "basic"
	subCommandGroupAdvanced subCommandGroup = "advanced"
)

const (
	ServerURLEnvVar    = "SFBILLING_SERVER_URL"
	ServerURLDefault   = "http://localhost:8080"
	ClientAPIKeyEnvVar = "SFBILLING_API_KEY"
)

var (
	rootCmdServerURL string
	rootCmdAPIKey    string
)

// appFs is the filesystem secrets and seed files are read from.
var appFs = afero.NewOsFs()

// apiClient talks to a running sfbilling server. It is set up before any subcommand runs.
var apiClient *client.Client

var rootCmd = &cobra.Command{
	Use:   "sfbilling",
	Short: "Billing tools over Salesforce, for LLM agents",
	Long: "sfbilling exposes a fixed set of billing tools (invoices, accounts, usage records, payments\n" +
		"and per-account billing summaries) over a small HTTP API and an MCP endpoint.\n\n" +
		"Run `sfbilling start` to start the server, then use the other commands to talk to it.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		apiClient = client.NewClient(
			getServerURL(),
			getClientAPIKey(),
			&http.Client{Timeout: 60 * time.Second},
		)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&rootCmdServerURL,
		"server-url",
		"",
		fmt.Sprintf("URL of the sfbilling server (overrides env var %s, default %s)", ServerURLEnvVar, ServerURLDefault),
	)
	rootCmd.PersistentFlags().StringVar(
		&rootCmdAPIKey,
		"api-key",
		"",
		fmt.Sprintf("API key sent to the server (overrides env var %s)", ClientAPIKeyEnvVar),
	)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// getServerURL returns the server URL the client commands talk to.
// precedence: command line flag > environment variable > default
func getServerURL() string {
	if rootCmdServerURL != "" {
		return rootCmdServerURL
	}
	if u := os.Getenv(ServerURLEnvVar); u != "" {
		return u
	}
	return ServerURLDefault
}

func getClientAPIKey() string {
	if rootCmdAPIKey != "" {
		return rootCmdAPIKey
	}
	return os.Getenv(ClientAPIKeyEnvVar)
}
