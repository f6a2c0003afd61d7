// tanggapctl is a command line companion for the tanggap complaint service.
//
// Usage:
//
//	tanggapctl analyze "jalan berlubang parah di depan sekolah"
//	tanggapctl status TG-2026-0001 --server http://localhost:8080
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	outputFmt string
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tanggapctl",
		Short:         "Preview triage and look up complaints",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table", "Output format: table, json")

	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(statusCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
