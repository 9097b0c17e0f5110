// Package main is the kensho CLI entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/hyperjump/kensho/internal/config"
	"github.com/hyperjump/kensho/pkg/utils"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kensho/config.yaml"

// errBooksFailed makes the process exit non-zero when a run aborted at least one book.
var errBooksFailed = errors.New("one or more books failed; their claims remain pending")

// overrideKeys are the settings that may come from a flag or a KENSHO_* variable.
var overrideKeys = []string{"debug", "claims", "documents", "results", "backend", "embedder", "oracle", "mode"}

// loadConfig loads config from path. When path is the default and does not exist, it
// falls back to config.yaml in the current directory and then to built-in defaults.
// Returns the config and the path that was actually loaded ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if _, err := os.Stat(path); err != nil {
			if cwd, cwdErr := os.Getwd(); cwdErr == nil {
				fallback := filepath.Join(cwd, "config.yaml")
				if _, statErr := os.Stat(fallback); statErr == nil {
					cfg, loadErr := config.Load(fallback)
					if loadErr != nil {
						return nil, "", loadErr
					}
					return cfg, fallback, nil
				}
			}
			return config.Default(), "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// applyOverrides copies flag and environment values that were explicitly set onto cfg.
func applyOverrides(cfg *config.Config, v *viper.Viper) {
	if v.IsSet("debug") {
		cfg.Debug = v.GetBool("debug")
	}
	if v.IsSet("claims") {
		cfg.Input.ClaimsPath = v.GetString("claims")
	}
	if v.IsSet("documents") {
		cfg.Input.DocumentsDir = v.GetString("documents")
	}
	if v.IsSet("results") {
		cfg.Output.ResultsPath = v.GetString("results")
	}
	if v.IsSet("backend") {
		cfg.Output.Backend = v.GetString("backend")
	}
	if v.IsSet("embedder") {
		cfg.Embedding.Provider = v.GetString("embedder")
	}
	if v.IsSet("oracle") {
		cfg.Oracle.Provider = v.GetString("oracle")
	}
	if v.IsSet("mode") {
		cfg.Retrieval.Mode = v.GetString("mode")
	}
}

// app carries state shared by every subcommand.
type app struct {
	configPath string
	v          *viper.Viper

	cfg        *config.Config
	loadedFrom string
	logger     *zap.Logger
}

// setup loads the config, applies overrides and builds the logger.
func (a *app) setup() error {
	cfg, loadedFrom, err := loadConfig(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyOverrides(cfg, a.v)
	config.ApplyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	a.cfg = cfg
	a.loadedFrom = loadedFrom
	a.logger = logger
	return nil
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	a.v.SetEnvPrefix("KENSHO")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "kensho",
		Short: "kensho - verify claims against long documents",
		Long: `kensho checks whether short claims about a book are consistent with its text.

Each book is split into semantic chunks and indexed once; every claim retrieves
its most similar passages and a language model returns a 0/1 verdict with a
rationale. Results are appended to a checkpoint, so interrupted runs resume
where they stopped.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", defaultConfigPath, "config file path")
	flags.Bool("debug", false, "enable debug logging")
	flags.String("claims", "", "claims table (.csv or .xlsx)")
	flags.String("documents", "", "directory holding one document per book")
	flags.String("results", "", "results file for the csv backend")
	flags.String("backend", "", "result store: csv or sqlite")
	flags.String("embedder", "", "embedding provider: ollama, openai, onnx, mock")
	flags.String("oracle", "", "oracle provider: ollama, openai, anthropic, gemini, static")
	flags.String("mode", "", "retrieval mode: dense or hybrid")
	for _, key := range overrideKeys {
		_ = a.v.BindPFlag(key, flags.Lookup(key))
	}

	root.AddCommand(
		newRunCmd(a),
		newWatchCmd(a),
		newServeCmd(a),
		newResultsCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "kensho version %s\n", version)
		},
	}
}

func main() {
	// A missing .env file is fine; variables may come from the environment.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
