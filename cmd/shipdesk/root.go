package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "shipdesk",
	Short: "Shipdesk - shipping instruction form gateway",
	Long: `Shipdesk serves the shipping instruction form.

It looks up bookings and client records in SharePoint lists through
Microsoft Graph, renders submitted instructions to PDF and emails them
to the submitter or to a fallback mailbox.

Configuration is read from a YAML file (optional) and SHIPDESK_*
environment variables.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
