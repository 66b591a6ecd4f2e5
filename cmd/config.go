package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/surveyassist/themefinder/internal/config"
)

// configCmd groups configuration inspection commands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage themefinder configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Print the configuration the pipeline would run with, after resolving
environment variables, the .env file, the config file, and defaults. The
Gemini API key is redacted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()

		out, err := yaml.Marshal(cfg.Redacted())
		if err != nil {
			return fmt.Errorf("failed to render configuration: %w", err)
		}
		fmt.Print(string(out))

		if err := cfg.Validate(); err != nil {
			fmt.Printf("\nwarning: %v\n", err)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
