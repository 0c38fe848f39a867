// Package main provides the docxfill command line tool.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bobiverse/docxfill"
	"github.com/bobiverse/docxfill/internal/config"
	"github.com/bobiverse/docxfill/internal/server"
	"github.com/bobiverse/docxfill/internal/storage"
)

// Set by build flags
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "docxfill",
		Short:         "Fill docx templates with JSON data",
		SilenceUsage:  true,
	}
	rootCmd.AddCommand(newRenderCmd(), newServeCmd(), newVersionCmd())
	return rootCmd
}

type renderOptions struct {
	output    string
	debug     bool
	plaintext bool
}

func newRenderCmd() *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render <template.docx> <data.json>",
		Short: "Render template with data into new docx",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file path (default: <template>-filled.docx)")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Print every render step")
	cmd.Flags().BoolVar(&opts.plaintext, "plaintext", false, "Print rendered document text")
	return cmd
}

func runRender(stdout, stderr io.Writer, templatePath, dataPath string, opts renderOptions) error {
	buf, err := os.ReadFile(dataPath) // #nosec G304 - path from command line
	if err != nil {
		return fmt.Errorf("read data: %w", err)
	}
	rec, err := docxfill.ParseRecord(buf)
	if err != nil {
		return err
	}

	var tdoc *docxfill.Template
	if strings.HasPrefix(templatePath, "http://") || strings.HasPrefix(templatePath, "https://") {
		tdoc, err = docxfill.OpenTemplateWithURL(context.Background(), templatePath)
	} else {
		tdoc, err = docxfill.OpenTemplate(templatePath)
	}
	if err != nil {
		return err
	}

	renderOpts := docxfill.RenderOptions{}
	if opts.debug {
		renderOpts.Trace = stderr
	}
	if err := docxfill.RenderWith(tdoc.Document(), rec, renderOpts); err != nil {
		return err
	}

	outPath := opts.output
	if outPath == "" {
		base := filepath.Base(templatePath)
		outPath = strings.TrimSuffix(base, filepath.Ext(base)) + "-filled.docx"
	}
	if err := tdoc.ExportDocx(outPath); err != nil {
		return err
	}

	if opts.plaintext {
		fmt.Fprintln(stdout, tdoc.Plaintext())
	}
	color.New(color.FgGreen).Fprintf(stderr, "saved %s\n", outPath) // #nosec G104
	return nil
}

func newServeCmd() *cobra.Command {
	var cfgPath, envPath string
	var grace time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run HTTP service for document generation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgPath, envPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			stores, err := storage.Open(ctx, cfg)
			if err != nil {
				return err
			}

			color.New(color.FgCyan).Fprintf(cmd.ErrOrStderr(), "docxfill %s storage=%s\n", version, cfg.Storage.Backend) // #nosec G104
			return server.New(stores, cfg).ListenAndServe(ctx, cfg.Listen, grace)
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "YAML config file")
	cmd.Flags().StringVar(&envPath, "env", "", ".env file to load before reading environment")
	cmd.Flags().DurationVar(&grace, "grace", 5*time.Second, "Shutdown grace period")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
