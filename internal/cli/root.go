// Package cli implements the erpmcp command-line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"erpmcp/internal/erp"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "erpmcp",
	Short: "MCP knowledge server for legacy ERP connectors",
	Long: `erpmcp serves the institutional knowledge of legacy ERP integration
codebases to AI coding assistants over the Model Context Protocol.

It answers questions a connector developer would otherwise dig out of the
source: which operations exist, which flow an operation belongs to, what
field limits apply, and what a given error message means. The same
knowledge is reachable from the command line for quick lookups.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("erpmcp %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.PersistentFlags().String("erp", "acumatica", "ERP key or alias to target")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// resolveERP resolves the --erp flag against the registry.
func resolveERP(cmd *cobra.Command) (*erp.Facade, error) {
	if Registry == nil {
		return nil, fmt.Errorf("ERP registry not initialized")
	}
	key, _ := cmd.Flags().GetString("erp")
	facade, err := Registry.Resolve(key)
	if err != nil {
		return nil, err
	}
	return facade, nil
}
