package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sfbilling/sfbilling/pkg/types"
	"github.com/spf13/cobra"
)

var usageCmd = &cobra.Command{
	Use:   "usage <name>",
	Short: "Get usage information for a tool",
	Args:  cobra.ExactArgs(1),
	RunE:  runGetToolUsage,
	Annotations: map[string]string{
		"group": string(subCommandGroupBasic),
		"order": "3",
	},
}

func init() {
	rootCmd.AddCommand(usageCmd)
}

func runGetToolUsage(cmd *cobra.Command, args []string) error {
	t, err := apiClient.GetTool(args[0])
	if err != nil {
		return fmt.Errorf("failed to get tool '%s': %w", args[0], err)
	}
	cmd.Print(formatToolUsage(t))
	return nil
}

// formatToolUsage renders a tool's description and parameters, required ones first.
func formatToolUsage(t *types.ToolDefinition) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n", t.Name, t.Description)

	if len(t.InputSchema.Properties) == 0 {
		b.WriteString("This tool does not take any input parameters.\n")
		return b.String()
	}

	required := make(map[string]bool, len(t.InputSchema.Required))
	for _, r := range t.InputSchema.Required {
		required[r] = true
	}

	names := make([]string, 0, len(t.InputSchema.Properties))
	for k := range t.InputSchema.Properties {
		names = append(names, k)
	}
	sort.Slice(names, func(i, j int) bool {
		if required[names[i]] != required[names[j]] {
			return required[names[i]]
		}
		return names[i] < names[j]
	})

	b.WriteString("\nInput Parameters:\n")
	for _, name := range names {
		p := t.InputSchema.Properties[name]
		requiredOrOptional := "optional"
		if required[name] || p.Required {
			requiredOrOptional = "required"
		}

		fmt.Fprintf(&b, "  %s (%s, %s)\n", name, p.Type, requiredOrOptional)
		if p.Description != "" {
			fmt.Fprintf(&b, "      %s\n", p.Description)
		}
		if len(p.Enum) > 0 {
			fmt.Fprintf(&b, "      one of: %s\n", strings.Join(p.Enum, ", "))
		}
		if p.Default != nil {
			fmt.Fprintf(&b, "      default: %v\n", p.Default)
		}
	}
	return b.String()
}
