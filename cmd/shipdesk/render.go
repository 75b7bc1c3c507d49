package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shipdesk-hq/gateway/pkg/cli"
	"shipdesk-hq/gateway/pkg/config"
	"shipdesk-hq/gateway/pkg/render"
	"shipdesk-hq/gateway/pkg/shipping"
)

var renderFlags struct {
	input   string
	htmlOut string
	pdfOut  string
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a submission to HTML and PDF",
	Long: `Render a submission JSON file the same way the server does, without
sending email. Useful to check the document layout and the Chrome setup.

Without --pdf only the HTML is produced and Chrome is not started.

Examples:
  # HTML only
  shipdesk render --input submission.json --html out.html

  # HTML and PDF
  shipdesk render --input submission.json --html out.html --pdf out.pdf`,
	RunE: renderSubmission,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVarP(&renderFlags.input, "input", "i", "", "submission JSON file (required)")
	renderCmd.Flags().StringVar(&renderFlags.htmlOut, "html", "", "write the HTML document to this file")
	renderCmd.Flags().StringVar(&renderFlags.pdfOut, "pdf", "", "write the PDF document to this file")
	_ = renderCmd.MarkFlagRequired("input")
}

func renderSubmission(cmd *cobra.Command, args []string) error {
	f, err := os.Open(renderFlags.input)
	if err != nil {
		return cli.NewCommandError("render", err)
	}
	defer f.Close()

	sub, err := shipping.Decode(f)
	if err != nil {
		return cli.NewCommandError("render", err)
	}

	out := cmd.OutOrStdout()

	if renderFlags.pdfOut == "" {
		html, err := render.HTML(sub)
		if err != nil {
			return cli.NewCommandError("render", err)
		}
		if err := writeOutput(renderFlags.htmlOut, []byte(html)); err != nil {
			return cli.NewCommandError("render", err)
		}
		if renderFlags.htmlOut == "" {
			fmt.Fprint(out, html)
		} else {
			fmt.Fprintf(out, "✓ HTML written to %s\n", renderFlags.htmlOut)
		}
		return nil
	}

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}

	ctx, cancel := context.WithTimeout(cli.SetupSignalHandler(), cfg.Render.Timeout)
	defer cancel()

	renderer := render.New(render.NewChromeRasterizer(&cfg.Render, nil))
	doc, err := renderer.Render(ctx, sub)
	if err != nil {
		return cli.NewCommandError("render", err)
	}

	if err := writeOutput(renderFlags.htmlOut, []byte(doc.HTML)); err != nil {
		return cli.NewCommandError("render", err)
	}
	if err := writeOutput(renderFlags.pdfOut, doc.PDF); err != nil {
		return cli.NewCommandError("render", err)
	}
	fmt.Fprintf(out, "✓ PDF written to %s (%d bytes)\n", renderFlags.pdfOut, len(doc.PDF))
	return nil
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		return nil
	}
	return os.WriteFile(path, data, 0o644)
}
