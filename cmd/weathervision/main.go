package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/weathervision/internal/api/http"
	"github.com/i474232898/weathervision/internal/controller"
	"github.com/i474232898/weathervision/internal/render"
	"github.com/i474232898/weathervision/internal/scheduler"
	"github.com/i474232898/weathervision/internal/tui"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "weathervision",
		Short:        "Offline-resilient weather dashboard",
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVar(&opts.offline, "offline", false, "start with connectivity forced offline")
	root.PersistentFlags().StringVar(&opts.dataPath, "data", "", "sqlite file for preferences (overrides WV_DATA_PATH)")

	root.AddCommand(serveCmd(opts), nowCmd(opts), widgetCmd(opts), tuiCmd(opts))
	root.RunE = tuiCmd(opts).RunE
	return root
}

func withApp(cmd *cobra.Command, opts *options, fn func(ctx context.Context, a *app) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, *opts)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func serveCmd(opts *options) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with scheduled refreshes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if port == "" {
					port = a.cfg.Port
				}
				a.ctrl.Boot(ctx)

				// Scheduler that periodically refreshes and probes connectivity.
				sched := scheduler.New(a.ctrl, a.monitor, a.cfg.RefreshInterval, a.cfg.ProbeInterval, a.log)
				if err := sched.Start(); err != nil {
					return fmt.Errorf("failed to start scheduler: %w", err)
				}
				defer sched.Stop()

				server := httpapi.NewApp("weathervision", a.registry, a.log)
				httpapi.RegisterRoutes(server, a.ctrl, httpapi.Options{
					Connectivity: a.monitor,
					Sound:        a.sound,
					Terminal:     a.terminal,
				})

				go func() {
					if err := server.Listen(":" + port); err != nil {
						a.log.Error("fiber server stopped", zap.Error(err))
					}
				}()
				a.log.Info("listening", zap.String("port", port))

				// Wait for termination signal
				<-ctx.Done()

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := server.ShutdownWithContext(shutdownCtx); err != nil {
					a.log.Error("error during shutdown", zap.Error(err))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (defaults to PORT)")
	return cmd
}

func nowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "now [place]",
		Short: "Print the current forecast once",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				a.ctrl.Boot(ctx)
				if q := strings.TrimSpace(strings.Join(args, " ")); q != "" {
					if _, err := a.ctrl.SelectQuery(ctx, q); err != nil {
						return fmt.Errorf("resolve %q: %w", q, err)
					}
				}
				v := a.ctrl.View()
				s := render.StylesFor(v)
				if v.Blocked() {
					fmt.Fprintln(cmd.OutOrStdout(), render.Notice(v.Notice, s))
					return fmt.Errorf("no forecast available")
				}
				fmt.Fprintln(cmd.OutOrStdout(), lipgloss.JoinVertical(lipgloss.Left,
					render.Status(v, s),
					render.Current(v, s),
					render.Hourly(v, s),
					render.Daily(v, s),
				))
				return nil
			})
		},
	}
}

func widgetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "widget",
		Short: "Print the compact next-hours summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if out := a.ctrl.Boot(ctx); out == controller.OutcomeUnavailable {
					return fmt.Errorf("no forecast available")
				}
				v := a.ctrl.View()
				fmt.Fprintln(cmd.OutOrStdout(), render.Widget(v, render.StylesFor(v)))
				return nil
			})
		},
	}
}

func tuiCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive dashboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				sched := scheduler.New(a.ctrl, a.monitor, a.cfg.RefreshInterval, a.cfg.ProbeInterval, a.log)
				if err := sched.Start(); err != nil {
					return fmt.Errorf("failed to start scheduler: %w", err)
				}
				defer sched.Stop()
				return tui.Run(ctx, a.ctrl, a.terminal)
			})
		},
	}
}
