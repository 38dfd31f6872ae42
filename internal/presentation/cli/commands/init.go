package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ducktyper-ai/quacktokenscope/internal/infrastructure/config"
	"github.com/ducktyper-ai/quacktokenscope/internal/infrastructure/filesystem"
	"github.com/ducktyper-ai/quacktokenscope/internal/presentation/cli/output"
)

// InitResult holds the result of the init command for JSON output.
type InitResult struct {
	ConfigDir   string `json:"config_dir"`
	ConfigFile  string `json:"config_file"`
	ModelsDir   string `json:"models_dir"`
	Initialized bool   `json:"initialized"`
}

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize quacktokenscope configuration",
		Long: `Initialize the quacktokenscope configuration directory.

This command creates the ~/.quacktokenscope/ directory structure and
generates a config.yaml file with default settings.

The initialization process will:
  • Create ~/.quacktokenscope/ directory
  • Create ~/.quacktokenscope/models/ directory for trained tokenizer artifacts
  • Generate ~/.quacktokenscope/config.yaml with default settings`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing configuration")

	return cmd
}

func runInit(force bool) error {
	format := output.FormatText
	if globalFlags.Output == "json" {
		format = output.FormatJSON
	}
	formatter := output.NewFormatter(
		output.WithFormat(format),
		output.WithColor(format != output.FormatJSON && output.IsColorSupported()),
	)

	loader, err := config.NewLoader("")
	if err != nil {
		return fmt.Errorf("failed to create config loader: %w", err)
	}

	configPath := loader.DefaultConfigPath()
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration already exists at %s (use --force to overwrite)", configPath)
	}

	// Models directory for the unigram tokenizer artifacts
	store := filesystem.NewFileStore()
	modelsDir := filesystem.DefaultModelsDir()
	if err := store.CreateDirectory(modelsDir); err != nil {
		return fmt.Errorf("failed to create models directory: %w", err)
	}

	cfg := config.NewDefaultConfig()
	if err := loader.Save(cfg, ""); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	result := InitResult{
		ConfigDir:   loader.ConfigDir(),
		ConfigFile:  configPath,
		ModelsDir:   modelsDir,
		Initialized: true,
	}

	if format == output.FormatJSON {
		return formatter.JSON(result)
	}

	formatter.Success("Initialized quacktokenscope")
	formatter.Item("Config", result.ConfigFile)
	formatter.Item("Models", result.ModelsDir)
	formatter.Println("")
	formatter.Info("Run 'qts analyze \"some text\"' to get started.")

	return nil
}
