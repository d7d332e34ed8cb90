package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"erpmcp/internal/storage"
)

var flowsCmd = &cobra.Command{
	Use:   "flows [flow-name]",
	Short: "List an ERP's integration flows or show one flow in detail",
	Long: `Without arguments, list every flow with its description and the operations
that use it. With a flow name, show the flow's anatomy, constants, and
validation rules. Flow names are case- and separator-insensitive.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		facade, err := resolveERP(cmd)
		if err != nil {
			return err
		}

		flows, ok := facade.Flows()
		if !ok {
			return fmt.Errorf("%s has no flows catalogued", facade.Info().Key)
		}

		if len(args) == 1 {
			return printFlowDetails(cmd, flows, args[0], facade.Info().Key)
		}

		all := flows.AllFlows()
		for _, flow := range all {
			fmt.Printf("%s\n  %s\n", flow.Name, flow.Description)
			if len(flow.UsedByOperations) > 0 {
				fmt.Printf("  used by: %s\n", strings.Join(flow.UsedByOperations, ", "))
			}
			fmt.Println()
		}
		fmt.Printf("%d flow(s).\n", len(all))
		return nil
	},
}

func printFlowDetails(cmd *cobra.Command, flows storage.FlowStore, name, erpKey string) error {
	flow, ok := flows.Flow(name)
	if !ok {
		return fmt.Errorf("no flow named %q is known to %s (try `erpmcp flows` to list them)", name, erpKey)
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		return printJSON(flow)
	}

	fmt.Printf("%s\n%s\n", flow.Name, flow.Description)

	if len(flow.Anatomy) > 0 {
		fmt.Println("\nAnatomy:")
		for _, step := range flow.Anatomy {
			fmt.Printf("  %d. %s\n", step.Step, step.Title)
			if step.Details != "" {
				fmt.Printf("     %s\n", step.Details)
			}
		}
	}

	if len(flow.Constants) > 0 {
		fmt.Println("\nConstants:")
		names := make([]string, 0, len(flow.Constants))
		for n := range flow.Constants {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			c := flow.Constants[n]
			fmt.Printf("  %-28s = %-8s %s:%d\n", n, c.Value, c.File, c.Line)
		}
	}

	if len(flow.ValidationRules) > 0 {
		fmt.Println("\nValidation rules:")
		for _, rule := range flow.ValidationRules {
			fmt.Printf("  - %s\n", rule)
		}
	}

	if len(flow.UsedByOperations) > 0 {
		fmt.Printf("\nUsed by: %s\n", strings.Join(flow.UsedByOperations, ", "))
	}

	return nil
}

func init() {
	flowsCmd.Flags().Bool("json", false, "print flow details as JSON")
	rootCmd.AddCommand(flowsCmd)
}
