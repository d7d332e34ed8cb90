package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query <search-term>",
	Short: "Search an ERP's operations and flows",
	Long: `Search the knowledge base by keyword. Matches operation names, summaries,
categories, and flow names and descriptions; the constants, validation
rules, and code example reference tables are included when in scope.

Use * to list everything. Scope narrows the search to operations, flows,
or constants.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		facade, err := resolveERP(cmd)
		if err != nil {
			return err
		}

		query, ok := facade.Query()
		if !ok {
			return fmt.Errorf("%s does not support knowledge queries", facade.Info().Key)
		}

		scope, _ := cmd.Flags().GetString("scope")
		result := query.Query(args[0], scope)

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			return printJSON(result)
		}

		fmt.Println(result.Summary)

		if len(result.MatchedOperations) > 0 {
			fmt.Println("\nOperations:")
			for _, op := range result.MatchedOperations {
				line := fmt.Sprintf("  %-28s %s", op.Method, op.Summary)
				if op.Flow != "" {
					line += fmt.Sprintf(" (flow: %s)", op.Flow)
				}
				fmt.Println(line)
			}
		}

		if len(result.RelevantFlows) > 0 {
			fmt.Println("\nFlows:")
			for _, flow := range result.RelevantFlows {
				fmt.Printf("  %-32s %s\n", flow.Name, flow.Description)
			}
		}

		if len(result.Constants) > 0 {
			fmt.Println("\nConstants:")
			names := make([]string, 0, len(result.Constants))
			for name := range result.Constants {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				c := result.Constants[name]
				fmt.Printf("  %-28s = %-8s %s:%d\n", name, c.Value, c.File, c.Line)
			}
		}

		return nil
	},
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func init() {
	queryCmd.Flags().String("scope", "all", "search scope: operations, flows, constants, or all")
	queryCmd.Flags().Bool("json", false, "print the full result as JSON")
	rootCmd.AddCommand(queryCmd)
}
