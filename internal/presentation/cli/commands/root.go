// Package commands implements the CLI commands for quacktokenscope.
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ducktyper-ai/quacktokenscope/internal/application"
	"github.com/ducktyper-ai/quacktokenscope/internal/infrastructure/config"
	"github.com/ducktyper-ai/quacktokenscope/internal/presentation/cli/output"
)

// Version information - set at build time via ldflags.
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// GlobalFlags holds the global CLI flags.
type GlobalFlags struct {
	ConfigFile string
	Output     string
	Verbose    bool
}

// AppContext holds the application runtime context.
type AppContext struct {
	Config     *config.Config
	Formatter  *output.Formatter
	Flags      *GlobalFlags
	Container  *application.Container
	cancelFunc context.CancelFunc
}

var (
	globalFlags GlobalFlags
	appCtx      *AppContext
	appCtxMu    sync.RWMutex // Protects appCtx for thread-safe access
)

// NewRootCmd creates the root command for the quacktokenscope CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "qts",
		Short: "QuackTokenScope - Tokenizer comparison and cost estimation",
		Long: `QuackTokenScope (qts) compares how different tokenizers segment the
same text and what that segmentation costs across model pricing tables.

It runs a fleet of interchangeable tokenizers side by side, computes
frequency and summary statistics per variant, and estimates API costs
with what-if scenario sweeps.

Key features:
  • Four tokenizer variants: tiktoken, o200k, words, unigram
  • Per-variant frequency tables and summary statistics
  • Cost estimation with per-model pricing and hot-reloadable rates
  • What-if sweeps over output ratios, tokenizers, and models
  • Analysis report caching (in-memory, optionally SQLite-backed)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip initialization for help, version, init, and completion commands
			if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Name() == "completion" || cmd.Name() == "init" {
				return nil
			}
			return initializeApp()
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&globalFlags.ConfigFile, "config", "c", "", "config file path (default: ~/.quacktokenscope/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&globalFlags.Output, "output", "o", "text", "output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "enable verbose output")

	// Add subcommands
	rootCmd.AddCommand(NewVersionCmd())
	rootCmd.AddCommand(NewInitCmd())
	rootCmd.AddCommand(NewAnalyzeCmd())
	rootCmd.AddCommand(NewCostCmd())
	rootCmd.AddCommand(NewTokenizersCmd())
	rootCmd.AddCommand(NewCacheCmd())
	rootCmd.AddCommand(NewExploreCmd())

	return rootCmd
}

// initializeApp initializes the application context.
func initializeApp() error {
	// Determine output format
	format, err := output.ParseFormat(globalFlags.Output)
	if err != nil {
		return err
	}

	// Create formatter
	formatter := output.NewFormatter(
		output.WithFormat(format),
		output.WithColor(format != output.FormatJSON && output.IsColorSupported()),
	)

	// Load or create default config
	cfg, err := loadConfig(globalFlags.ConfigFile)
	if err != nil {
		if globalFlags.Verbose {
			formatter.Warning("Could not load config: %v, using defaults", err)
		}
		cfg = config.NewDefaultConfig()
	}

	// Validate config
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Initialize the application container with all dependencies
	container, err := application.NewContainer(cfg, globalFlags.Verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	// Create cancellable context for graceful shutdown
	_, cancel := context.WithCancel(context.Background())

	// Store app context with mutex protection
	appCtxMu.Lock()
	appCtx = &AppContext{
		Config:     cfg,
		Formatter:  formatter,
		Flags:      &globalFlags,
		Container:  container,
		cancelFunc: cancel,
	}
	appCtxMu.Unlock()

	// Start pricing hot reload in background
	if err := container.StartPricingWatch(); err != nil {
		if globalFlags.Verbose {
			formatter.Warning("Could not start pricing hot reload: %v", err)
		}
	}

	return nil
}

// loadConfig loads configuration from the specified file or default location.
func loadConfig(configPath string) (*config.Config, error) {
	loader, err := config.NewLoader("")
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}

	return loader.Load(configPath)
}

// GetAppContext returns the current application context.
// Returns nil if the app hasn't been initialized.
// Thread-safe via mutex protection.
func GetAppContext() *AppContext {
	appCtxMu.RLock()
	defer appCtxMu.RUnlock()
	return appCtx
}

// GetFormatter returns the output formatter.
// Creates a default formatter if app context is not initialized.
// Thread-safe via mutex protection.
func GetFormatter() *output.Formatter {
	appCtxMu.RLock()
	ctx := appCtx
	appCtxMu.RUnlock()

	if ctx != nil {
		return ctx.Formatter
	}
	return output.NewFormatter()
}

// GetContainer returns the application container.
// Returns nil if the app hasn't been initialized.
// Thread-safe via mutex protection.
func GetContainer() *application.Container {
	appCtxMu.RLock()
	ctx := appCtx
	appCtxMu.RUnlock()

	if ctx != nil {
		return ctx.Container
	}
	return nil
}

// ensureTokenizersReady initializes the tokenizer fleet, showing a spinner in
// text mode. Variants that fail stay unavailable; the call only errors when
// none is ready.
func ensureTokenizersReady(ctx context.Context, container *application.Container) error {
	if container.Orchestrator().Ready() {
		return nil
	}

	formatter := GetFormatter()
	var spinner *output.Spinner
	if formatter.Format() == output.FormatText {
		spinner = output.NewSpinner("Initializing tokenizers...",
			output.WithSpinnerColor(output.IsColorSupported()))
		spinner.Start()
	}

	err := container.InitializeTokenizers(ctx)

	if spinner != nil {
		if err != nil {
			spinner.StopWithError("tokenizer initialization failed")
		} else {
			spinner.Stop()
		}
	}

	if err != nil {
		return fmt.Errorf("failed to initialize tokenizers: %w", err)
	}

	if globalFlags.Verbose {
		for _, res := range container.Orchestrator().InitResults() {
			if res.Err != nil {
				formatter.Warning("%s unavailable: %v", res.Name, res.Err)
			} else {
				formatter.Info("%s ready via %s (%s)", res.Name, res.Strategy, res.Elapsed)
			}
		}
	}

	return nil
}

// Shutdown performs graceful shutdown of the application.
// Cancels the context and cleans up resources.
func Shutdown() {
	appCtxMu.Lock()
	defer appCtxMu.Unlock()

	if appCtx != nil {
		if appCtx.cancelFunc != nil {
			appCtx.cancelFunc()
		}
		if appCtx.Container != nil {
			_ = appCtx.Container.Close()
		}
	}
}

// Execute runs the root command with graceful shutdown support.
func Execute() {
	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Run command in a goroutine
	errChan := make(chan error, 1)
	go func() {
		rootCmd := NewRootCmd()
		errChan <- rootCmd.Execute()
	}()

	// Wait for either command completion or signal
	select {
	case err := <-errChan:
		if err != nil {
			formatter := GetFormatter()
			formatter.Error("%s", err.Error())
			Shutdown()
			os.Exit(1)
		}
	case sig := <-sigChan:
		formatter := GetFormatter()
		formatter.Warning("Received signal %v, shutting down...", sig)
		Shutdown()
		os.Exit(130) // Standard exit code for SIGINT
	}

	Shutdown()
}
