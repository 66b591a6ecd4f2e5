// Package cmd wires the CLI: one invocation mode that runs the analysis
// pipeline, plus a config inspection subcommand.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/surveyassist/themefinder/internal/config"
	"github.com/surveyassist/themefinder/internal/gcs"
	"github.com/surveyassist/themefinder/internal/pipeline"
	"github.com/surveyassist/themefinder/internal/themefinder"
)

var cfgFile string

// rootCmd runs the whole pipeline; there are no other invocation modes.
var rootCmd = &cobra.Command{
	Use:   "themefinder",
	Short: "Analyse survey free-text feedback with a hosted Gemini model",
	Long: `themefinder downloads pipe-delimited survey feedback from Cloud Storage,
extracts themes, sentiment positions and evidence flags using Gemini, and
writes the resulting JSON analysis back to Cloud Storage.

Configuration comes from environment variables (INPUT_BUCKET, INPUT_FILE,
OUTPUT_BUCKET, QUESTION), a .env file, an optional config file, or flags.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

// Execute runs the root command with signal-aware cancellation.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.themefinder.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug output")

	rootCmd.Flags().String("input-bucket", "", "bucket containing the feedback CSV (or set INPUT_BUCKET)")
	rootCmd.Flags().String("input-file", "", "object path of the feedback CSV (or set INPUT_FILE)")
	rootCmd.Flags().String("output-bucket", "", "bucket for the analysis JSON (or set OUTPUT_BUCKET)")
	rootCmd.Flags().String("question", "", "survey question being evaluated (or set QUESTION)")
	rootCmd.Flags().String("model", "", "Gemini model to use (or set MODEL)")

	// TODO: add error return here
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("input_bucket", rootCmd.Flags().Lookup("input-bucket"))
	viper.BindPFlag("input_file", rootCmd.Flags().Lookup("input-file"))
	viper.BindPFlag("output_bucket", rootCmd.Flags().Lookup("output-bucket"))
	viper.BindPFlag("question", rootCmd.Flags().Lookup("question"))
	viper.BindPFlag("model", rootCmd.Flags().Lookup("model"))
}

// initConfig reads the .env file, the optional config file, and environment
// variables.
func initConfig() {
	// Same role as python-dotenv in the original job; absence is fine.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigType("yaml")
			viper.SetConfigName(".themefinder")
		}
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("debug") {
			fmt.Println("Using config file:", viper.ConfigFileUsed())
		}
	}
}

func run(ctx context.Context) error {
	logger := newLogger(viper.GetBool("debug"))

	cfg := config.Load()
	// Configuration errors must surface before any network client exists.
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	store, err := gcs.NewClient(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	analyzer, err := themefinder.NewGeminiAnalyzer(ctx, cfg.Model, cfg.APIKey, logger)
	if err != nil {
		return err
	}

	_, err = pipeline.New(cfg, store, analyzer, logger).Run(ctx)
	return err
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
	}))
}
