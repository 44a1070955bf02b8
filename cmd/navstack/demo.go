package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/navstack/internal/metrics"
	"github.com/jmylchreest/navstack/internal/transition"
	"github.com/jmylchreest/navstack/internal/tui"
)

var demoOpts struct {
	style       string
	metricsAddr string
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Launch the interactive navigation demo",
	Long: `Launch a terminal host that drives the navigation controller.

Screens come from the [demo] section of the config file. Editing the
config while the demo runs reloads animation settings.

Key bindings:
  →/l, enter  Push the next screen
  ←/h         Pop
  g           Pop to root
  s           Replace the whole stack
  esc         Tap the bar's back button
  b           Show/hide the bar
  m           Present/dismiss a modal screen
  a           Toggle animation
  x           Interrupt the running transition
  ?           Show help
  q           Quit`,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().StringVar(&demoOpts.style, "style", "",
		"Transition style: default or stack (overrides config)")
	demoCmd.Flags().StringVar(&demoOpts.metricsAddr, "metrics-addr", "",
		"Serve Prometheus metrics on this address, e.g. :9090 (overrides config)")
}

func runDemo(cmd *cobra.Command, args []string) error {
	c := getConfig()

	if demoOpts.style != "" {
		if _, err := transition.ParseStyle(demoOpts.style); err != nil {
			return err
		}
		c.Navigation.Style = demoOpts.style
	}

	addr := c.Metrics.Addr
	if demoOpts.metricsAddr != "" {
		addr = demoOpts.metricsAddr
	}

	var recorder *metrics.Recorder
	if addr != "" {
		recorder = metrics.NewRecorder()
		srv, err := recorder.Serve(addr, logger)
		if err != nil {
			return err
		}
		logger.Info("serving metrics", "addr", srv.Addr)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	return tui.Run(tui.RunOptions{
		Config:     c,
		ConfigPath: configPath(),
		Logger:     logger,
		Metrics:    recorder,
	})
}
