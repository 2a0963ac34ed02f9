package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/wudi/docscan/config"
	"github.com/wudi/docscan/observability"
	"github.com/wudi/docscan/observability/zaplog"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "docscan",
	Short: "Turn a photo of a document into a flat page and its text",
	Long: "docscan captures a document photo from a camera or file, finds the\n" +
		"page boundary, corrects the perspective, enhances the image and runs\n" +
		"OCR over it.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.Version = version
}

// setup loads the environment, the config file and the logger shared
// by all commands.
func setup() (config.Config, observability.Logger, error) {
	// A .env next to the binary is optional.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	log, err := zaplog.New(level)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, log, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
