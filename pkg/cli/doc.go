/*
Package cli provides helpers shared by the shipdesk commands.

Output Formatting:

Diagnostic commands print results as aligned text, JSON or CSV. Results
that implement Tabular can use any of the three:

	format, err := cli.ParseOutputFormat(flagValue)
	if err != nil {
		return err
	}
	if err := cli.NewFormatter(format).FormatTo(os.Stdout, result); err != nil {
		return err
	}

Errors:

ConfigError and CommandError give command failures a uniform message.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	// Use ctx for operations that should be cancelled on shutdown
*/
package cli
