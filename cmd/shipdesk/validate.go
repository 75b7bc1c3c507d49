package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shipdesk-hq/gateway/pkg/cli"
	"shipdesk-hq/gateway/pkg/config"
)

var validateFlags struct {
	runtime bool
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Load the configuration file and environment overrides and report
every invalid setting.

With --runtime the settings the server needs to reach Graph and the SMTP
relay (credentials, site, list names) are required as well.

Examples:
  # Check structure only
  shipdesk validate --config config.yaml

  # Check everything "shipdesk run" needs
  shipdesk validate --config config.yaml --runtime`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateFlags.runtime, "runtime", false, "also require credentials, site and list names")
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}
	if validateFlags.runtime {
		if err := config.ValidateRuntime(cfg); err != nil {
			return cli.NewConfigError("", err.Error())
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "✓ Configuration valid")
	if verbose {
		fmt.Fprintf(out, "  listen address: %s\n", cfg.Server.ListenAddress)
		fmt.Fprintf(out, "  site:           %s:/sites/%s\n", cfg.ListStore.SiteHost, cfg.ListStore.SitePath)
		fmt.Fprintf(out, "  lists:          %s -> %s (%s = %s)\n",
			cfg.ListStore.PrimaryList, cfg.ListStore.SecondaryList,
			cfg.ListStore.RelationField, cfg.ListStore.ForeignKeyField)
		fmt.Fprintf(out, "  smtp relay:     %s:%d\n", cfg.Mail.Host, cfg.Mail.Port)
	}
	return nil
}
