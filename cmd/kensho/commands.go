package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/hyperjump/kensho/internal/cli"
	"github.com/hyperjump/kensho/internal/config"
	"github.com/hyperjump/kensho/internal/models"
	"github.com/hyperjump/kensho/internal/pipeline"
	"github.com/hyperjump/kensho/internal/server"
	"github.com/hyperjump/kensho/internal/watcher"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func newRunCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Verify every pending claim once",
		Long: `Verify every claim that does not yet have a result.

Books without a document are skipped and their claims stay pending. A document
too short to yield any chunk is still verified, with an empty context. A book
that fails mid-way is recorded and the run moves on; the command then exits
non-zero.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cli.ParseFormat(output)
			if err != nil {
				return err
			}
			components, err := initializeComponents(cmd.Context(), a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer components.Close()

			summary, err := components.Run(cmd.Context())
			if err != nil {
				return err
			}
			if err := cli.WriteSummary(cmd.OutOrStdout(), summary, format); err != nil {
				return err
			}
			if summary.Failed() {
				return errBooksFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text or json")
	return cmd
}

// watchFilter accepts changes to the claims file and to supported documents.
func watchFilter(cfg *config.Config) (dirs []string, filter watcher.Filter) {
	dirs = []string{filepath.Dir(cfg.Input.ClaimsPath), cfg.Input.DocumentsDir}
	filter = watcher.AnyOf(
		watcher.FileFilter(cfg.Input.ClaimsPath),
		watcher.ExtensionFilter(cfg.Input.DocumentsDir, cfg.Input.DocumentExtensions),
	)
	return dirs, filter
}

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run once, then re-run whenever claims or documents change",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			components, err := initializeComponents(ctx, a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer components.Close()

			runner := pipeline.NewRunner(ctx, components.Run, a.logger)
			dirs, filter := watchFilter(a.cfg)
			w := watcher.NewWatcher(dirs, filter, func(paths []string) {
				a.logger.Info("inputs changed", zap.Strings("paths", paths))
				runner.Trigger()
			},
				watcher.WithLogger(a.logger),
				watcher.WithDebounce(time.Duration(a.cfg.Watch.DebounceMs)*time.Millisecond),
			)
			if err := w.Start(ctx); err != nil {
				return fmt.Errorf("failed to start watcher: %w", err)
			}
			runner.Trigger()
			a.logger.Info("watching for changes", zap.Strings("directories", w.Directories()))

			<-ctx.Done()
			a.logger.Info("Shutting down...")
			w.Stop()
			runner.Wait()
			return nil
		},
	}
}

func newServeCmd(a *app) *cobra.Command {
	var enableRuns bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve results over HTTP",
		Long: `Serve the result log over a read-only HTTP API.

With --runs the server can also start verification runs via POST /api/v1/runs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var (
				srv    *server.Server
				runner *pipeline.Runner
			)
			if enableRuns {
				components, err := initializeComponents(ctx, a.cfg, a.logger)
				if err != nil {
					return err
				}
				defer components.Close()
				runner = pipeline.NewRunner(ctx, components.Run, a.logger)
				srv = server.NewServer(components.Store, runner, a.cfg, a.logger)
			} else {
				store, err := openStore(a.cfg)
				if err != nil {
					return err
				}
				defer store.Close()
				srv = server.NewServer(store, nil, a.cfg, a.logger)
			}

			errCh := make(chan error, 1)
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			a.logger.Info("Shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Stop(shutdownCtx)
			if runner != nil {
				runner.Wait()
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&enableRuns, "runs", false, "allow starting runs through the API")
	return cmd
}

func newResultsCmd(a *app) *cobra.Command {
	var (
		output string
		limit  int
		offset int
	)
	cmd := &cobra.Command{
		Use:   "results [story-id]",
		Short: "Print persisted results",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cli.ParseFormat(output)
			if err != nil {
				return err
			}
			store, err := openStore(a.cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			if len(args) == 1 {
				r, err := store.Get(ctx, args[0])
				if err != nil {
					return err
				}
				return cli.WriteResults(cmd.OutOrStdout(), []models.Result{*r}, format)
			}
			results, err := store.List(ctx, offset, limit)
			if err != nil {
				return err
			}
			return cli.WriteResults(cmd.OutOrStdout(), results, format)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text or json")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum results to print (0 = all)")
	cmd.Flags().IntVar(&offset, "offset", 0, "results to skip")
	return cmd
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create configuration",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if a.loadedFrom != "" {
				fmt.Fprintf(out, "# loaded from %s\n", a.loadedFrom)
			} else {
				fmt.Fprintln(out, "# built-in defaults")
			}
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(a.cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a config file with default values",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "config.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if dir := filepath.Dir(path); dir != "." {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return fmt.Errorf("failed to create %s: %w", dir, err)
				}
			}
			if err := config.Save(path, config.Default()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	cmd.AddCommand(show, initCmd)
	return cmd
}
