package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/navstack/internal/adapter/output"
	"github.com/jmylchreest/navstack/internal/core"
	"github.com/jmylchreest/navstack/internal/script"
)

var replayOpts struct {
	format       string
	filter       string
	limit        int
	template     string
	animated     string
	delegateOnly bool
	strict       bool
}

var replayCmd = &cobra.Command{
	Use:   "replay <script.yaml>",
	Short: "Run a navigation script and print the event trace",
	Long: `Run a YAML navigation script headlessly and print every delegate
notification, transition and step outcome in order.

Animations advance on a virtual clock in fixed frames, so timestamps in
the trace are deterministic. Use "-" to read the script from stdin.

Examples:
  # Plain trace
  navstack replay session.yaml

  # JSON, delegate notifications only
  navstack replay session.yaml --format json --delegate-only

  # Force every step to be instant
  navstack replay session.yaml --animated=false

  # Only rejected steps
  navstack replay session.yaml --filter 'kind=step,detail~rejected'`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().StringVar(&replayOpts.format, "format", "plain",
		"Output format: plain, json")
	replayCmd.Flags().StringVar(&replayOpts.filter, "filter", "",
		"Filter expression, e.g. 'kind=did_show,screen=detail' or 'step>=2'")
	replayCmd.Flags().IntVar(&replayOpts.limit, "limit", 0,
		"Maximum number of events to print (0 = all)")
	replayCmd.Flags().StringVar(&replayOpts.template, "template", "",
		"Go template for plain output (fields: .Event, .Elapsed)")
	replayCmd.Flags().StringVar(&replayOpts.animated, "animated", "",
		"Override every step's animated flag (true/false)")
	replayCmd.Flags().BoolVar(&replayOpts.delegateOnly, "delegate-only", false,
		"Only print will_show/did_show events")
	replayCmd.Flags().BoolVar(&replayOpts.strict, "strict", false,
		"Panic on overlapping transitions instead of ignoring them")
}

func runReplay(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(replayOpts.format)
	if err != nil {
		return err
	}

	expr, err := core.ParseFilter(replayOpts.filter)
	if err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}

	s, err := loadScript(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}

	opts := script.RunOptions{
		Strict: replayOpts.strict || getConfig().Navigation.Strict,
		Logger: logger,
	}
	switch replayOpts.animated {
	case "":
	case "true":
		on := true
		opts.Animated = &on
	case "false":
		off := false
		opts.Animated = &off
	default:
		return fmt.Errorf("invalid --animated value %q (want true or false)", replayOpts.animated)
	}

	res, err := script.Run(s, opts)
	if err != nil {
		return fmt.Errorf("failed to run script: %w", err)
	}

	formatter := output.NewFormatter(format, output.FormatterOptions{
		Template:     replayOpts.template,
		ShowTime:     true,
		ShowStep:     true,
		DelegateOnly: replayOpts.delegateOnly,
	})
	events := core.FilterWithExpr(res.Events, expr)
	events = core.Filter(events, core.FilterOptions{Limit: replayOpts.limit})
	return formatter.Format(cmd.OutOrStdout(), events)
}

func loadScript(stdin io.Reader, path string) (*script.Script, error) {
	if path == "-" {
		return script.Load(stdin)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("script not found: %w", err)
	}
	return script.LoadFile(path)
}
