package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-insight/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "face-insight",
	Short: "Describe the people in a photo using a vision-language model",
	Long: `FaceInsight sends a photo to a vision-language model and prints, for every
person it can see, an inferred gender, age and a short description.

The relay (serve) keeps the model API key on the server; analyze and tui
talk to a relay by default, or to a provider directly when configured.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/face-insight/config.toml)")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}

// loadConfig reads the config file named by --config plus the environment.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
