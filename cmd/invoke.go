package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var (
	invokeCmdInput  string
	invokeCmdParams []string
)

var invokeToolCmd = &cobra.Command{
	Use:   "invoke <name>",
	Short: "Invoke a tool",
	Long: "Invokes a tool on the server and prints its result.\n\n" +
		"Parameters can be given as a JSON object with --input, or one at a time with --param:\n" +
		"    sfbilling invoke query_accounts --param accountName=Acme --param limit=5\n" +
		"    sfbilling invoke get_billing_summary --input '{\"accountId\": \"001000000000001AAA\"}'\n" +
		"Values given with --param are sent as numbers when they parse as one, as strings otherwise.\n" +
		"--param values override keys of the same name in --input.",
	Args: cobra.ExactArgs(1),
	RunE: runInvokeTool,
	Annotations: map[string]string{
		"group": string(subCommandGroupBasic),
		"order": "4",
	},
}

func init() {
	invokeToolCmd.Flags().StringVar(&invokeCmdInput, "input", "", "JSON object of input parameters")
	invokeToolCmd.Flags().StringArrayVar(&invokeCmdParams, "param", nil, "input parameter as key=value (repeatable)")

	rootCmd.AddCommand(invokeToolCmd)
}

// parseInvokeParams merges the --input JSON object with the --param key=value pairs.
func parseInvokeParams(input string, pairs []string) (map[string]any, error) {
	params := make(map[string]any)
	if strings.TrimSpace(input) != "" {
		if err := json.Unmarshal([]byte(input), &params); err != nil {
			return nil, fmt.Errorf("invalid --input, must be a JSON object: %w", err)
		}
	}

	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --param '%s', expected key=value", p)
		}
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			params[k] = n
		} else {
			params[k] = v
		}
	}
	return params, nil
}

func runInvokeTool(cmd *cobra.Command, args []string) error {
	params, err := parseInvokeParams(invokeCmdInput, invokeCmdParams)
	if err != nil {
		return err
	}

	result, err := apiClient.InvokeTool(args[0], params)
	if err != nil {
		return fmt.Errorf("failed to invoke tool: %w", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format result: %w", err)
	}
	cmd.Println(string(out))

	if !result.Success {
		return fmt.Errorf("tool '%s' failed: %s", args[0], result.Error)
	}
	return nil
}
