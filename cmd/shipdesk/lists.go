package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"shipdesk-hq/gateway/pkg/cli"
	"shipdesk-hq/gateway/pkg/config"
	"shipdesk-hq/gateway/pkg/gateway"
)

var listsFlags struct {
	output string
}

var listsCmd = &cobra.Command{
	Use:   "lists",
	Short: "Print the lists of the configured site",
	Long: `Acquire a token with the configured credentials, resolve the site and
print every list as display name and ID. Use it to check credentials and
to find the names for liststore.primary_list and liststore.secondary_list.

Examples:
  shipdesk lists
  shipdesk lists --output json`,
	RunE: printLists,
}

func init() {
	rootCmd.AddCommand(listsCmd)

	listsCmd.Flags().StringVarP(&listsFlags.output, "output", "o", "text", "output format: text, json, csv")
}

// listTable renders list summaries with the cli formatters.
type listTable []gateway.ListSummary

// Table implements cli.Tabular.
func (l listTable) Table() cli.Table {
	t := cli.Table{Headers: []string{"DISPLAY NAME", "ID"}}
	for _, s := range l {
		t.Rows = append(t.Rows, []string{s.DisplayName, s.ID})
	}
	return t
}

func printLists(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(listsFlags.output)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	c, err := newBuilder(cfg, logger, nil, nil).build(cfg)
	if err != nil {
		return cli.NewCommandError("lists", err)
	}

	ctx, cancel := context.WithTimeout(cli.SetupSignalHandler(), cfg.ListStore.Timeout+cfg.Identity.Timeout)
	defer cancel()

	lists, err := c.gateway.ListLists(ctx)
	if err != nil {
		return cli.NewCommandError("lists", err)
	}

	var result any = listTable(lists)
	if format == cli.FormatJSON {
		result = lists
	}
	if err := cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), result); err != nil {
		return cli.NewCommandError("lists", fmt.Errorf("write output: %w", err))
	}
	return nil
}
