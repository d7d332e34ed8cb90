package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var operationsCmd = &cobra.Command{
	Use:   "operations",
	Short: "List an ERP's integration operations",
	Long:  `List every operation the ERP's knowledge base catalogues, grouped by category, with the flow each operation belongs to.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		facade, err := resolveERP(cmd)
		if err != nil {
			return err
		}

		knowledge := facade.Knowledge()
		flows, hasFlows := facade.Flows()

		categories := knowledge.Categories()
		total := 0
		for _, cat := range categories {
			ops := knowledge.OperationsByCategory(cat.Name)
			if len(ops) == 0 {
				continue
			}
			fmt.Printf("%s — %s\n", cat.Name, cat.Description)
			for _, op := range ops {
				line := fmt.Sprintf("  %-28s %s", op.Method, op.Summary)
				if hasFlows {
					if flow, ok := flows.FlowForOperation(op.Method); ok {
						line += fmt.Sprintf(" (flow: %s)", flow)
					}
				}
				fmt.Println(line)
				total++
			}
			fmt.Println()
		}

		fmt.Printf("%d operation(s) across %d categories.\n", total, len(categories))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(operationsCmd)
}
