package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	httpcmd "github.com/novadent/novadent_backend/cmd/http"
	systemcmd "github.com/novadent/novadent_backend/cmd/system"
)

var (
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "novadent",
	Short: "NovaDent dental practice management API.",
	Long: `NovaDent is the REST backend for a dental clinic practice-management
application: patient records, visits and procedures, appointment scheduling,
analytics and outreach camp submissions, backed by a managed relational store.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global config flag, available for all commands.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	// Attach top-level command trees.
	rootCmd.AddCommand(systemcmd.NewSystemCommand())
	rootCmd.AddCommand(httpcmd.NewHTTPCommand())
}
