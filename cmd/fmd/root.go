package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/rgonek/fider-markdown/metrics"
	"github.com/rgonek/fider-markdown/renderer"
	"github.com/rgonek/fider-markdown/schemes"
	"github.com/spf13/cobra"
)

type options struct {
	schemes     string
	schemesFile string
	configPath  string
	rawHTML     string
	warnings    bool
	metricsOut  string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "fmd",
		Short: "Render feedback markdown to sanitized HTML or plain text",
		Long: `fmd renders markdown with the same pipeline used for posts and comments.

Links and images are checked against an allow-list of URI scheme patterns;
http, https and relative references are always allowed.

Examples:
  fmd full post.md --schemes '^monero:[48],^bitcoin:(1|3|bc1)'
  echo '# Title' | fmd simple
  fmd plain post.md`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.schemes, "schemes", "", "Allowed URI scheme patterns, newline or comma separated")
	flags.StringVar(&opts.schemesFile, "schemes-file", "", "File with allowed URI scheme patterns, one per line")
	flags.StringVar(&opts.configPath, "config", "", "YAML renderer config file")
	flags.StringVar(&opts.rawHTML, "raw-html", "", "Raw HTML handling: escape|sanitize")
	flags.BoolVar(&opts.warnings, "warnings", false, "Log render warnings to stderr")
	flags.StringVar(&opts.metricsOut, "metrics-out", "", "Write render metrics in Prometheus text format to this file")

	root.AddCommand(
		newRenderCmd(opts, renderer.ModeFull, "Render sanitized HTML"),
		newRenderCmd(opts, renderer.ModeSimple, "Render sanitized HTML with headings as paragraphs"),
		newRenderCmd(opts, renderer.ModePlainText, "Render plain text"),
	)

	return root
}

func newRenderCmd(opts *options, mode renderer.Mode, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(mode) + " [file]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, mode, args)
		},
	}
}

func run(cmd *cobra.Command, opts *options, mode renderer.Mode, args []string) error {
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))

	input, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	cfg, closeFn, err := resolveConfig(opts, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	var registry *prom.Registry
	if opts.metricsOut != "" {
		registry = prom.NewRegistry()
		recorder, err := metrics.NewRecorder(registry)
		if err != nil {
			return err
		}
		cfg.Recorder = recorder
	}

	r, err := renderer.New(cfg)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	result, err := r.Render(ctx, input, mode)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	if opts.warnings {
		for _, w := range result.Warnings {
			logger.Warn(w.Message, "type", w.Type, "node", w.NodeType)
		}
	}

	if _, err := fmt.Fprintln(cmd.OutOrStdout(), result.Output); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	if registry != nil {
		if err := prom.WriteToTextfile(opts.metricsOut, registry); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(data), nil
}

// resolveConfig merges the config file with command line flags. Flags win
// over the file. The returned func releases the scheme file watcher.
func resolveConfig(opts *options, logger *slog.Logger) (renderer.Config, func(), error) {
	noop := func() {}

	var cfg renderer.Config
	if opts.configPath != "" {
		loaded, err := renderer.LoadConfig(opts.configPath)
		if err != nil {
			return renderer.Config{}, noop, err
		}
		cfg = loaded
	}

	if opts.rawHTML != "" {
		cfg.RawHTML = renderer.RawHTMLMode(strings.ToLower(strings.TrimSpace(opts.rawHTML)))
	}
	if opts.schemes != "" {
		cfg.AllowedSchemes = splitSchemes(opts.schemes)
	}

	if opts.schemesFile == "" {
		return cfg, noop, nil
	}
	if opts.schemes != "" {
		return renderer.Config{}, noop, errors.New("--schemes and --schemes-file are mutually exclusive")
	}

	file, err := schemes.NewFile(opts.schemesFile, schemes.WithLogger(logger))
	if err != nil {
		return renderer.Config{}, noop, err
	}
	cfg.Schemes = file
	return cfg, func() {
		if err := file.Close(); err != nil {
			logger.Warn("close scheme file", "path", file.Path(), "error", err)
		}
	}, nil
}

func splitSchemes(value string) string {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == '\n'
	})
	patterns := make([]string, 0, len(fields))
	for _, field := range fields {
		if field = strings.TrimSpace(field); field != "" {
			patterns = append(patterns, field)
		}
	}
	return strings.Join(patterns, "\n")
}
