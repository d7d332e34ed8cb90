package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"erpmcp/internal/observability"
	"erpmcp/internal/storage"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Audit an ERP's knowledge files and cross-references",
	Long: `Verify that every knowledge document the ERP's manifest declares exists,
and report soft integrity findings: category counts that disagree with
the operation files, operations referenced by flows that no file defines,
operations no flow claims, and limit constants that are not numeric.

Findings are advisory. The server starts and serves regardless.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		facade, err := resolveERP(cmd)
		if err != nil {
			return err
		}
		key := facade.Info().Key

		files := facade.Knowledge().FileInventory()
		missing := 0
		fmt.Printf("Knowledge files for %s:\n", key)
		for _, f := range files {
			status := "ok"
			if !f.OK {
				status = "MISSING"
				missing++
			}
			fmt.Printf("  %-7s %-44s %-10s %6d bytes\n", status, f.Path, f.Kind, f.SizeBytes)
		}
		fmt.Printf("%d file(s), %d missing.\n\n", len(files), missing)

		var flowStore storage.FlowStore
		if flows, ok := facade.Flows(); ok {
			flowStore = flows
		}
		checker := observability.NewIntegrityChecker(facade.Knowledge(), flowStore)
		findings := checker.Check()

		if len(findings) == 0 {
			fmt.Println("No integrity findings.")
		} else {
			fmt.Printf("%d integrity finding(s):\n", len(findings))
			for _, f := range findings {
				fmt.Printf("  [%s] %s: %s\n", strings.ToUpper(string(f.Severity)), f.Rule, f.Message)
			}
		}

		if Audit != nil {
			report, err := Audit.Report()
			if err != nil {
				return fmt.Errorf("reading audit log: %w", err)
			}
			if report.Total > 0 {
				fmt.Printf("\nTool usage: %d call(s), %d error(s), %s to %s.\n",
					report.Total, report.Errors,
					report.First.Format("2006-01-02 15:04"), report.Last.Format("2006-01-02 15:04"))
			}
		}

		if missing > 0 {
			return fmt.Errorf("%d knowledge file(s) missing", missing)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
