// Package config resolves the job configuration from environment
// variables, an optional config file, and CLI flags via viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Defaults applied when the corresponding variable is unset.
const (
	DefaultInputFile      = "input/example_feedback_v2.csv"
	DefaultQuestion       = "Do you have any other feedback about this survey?"
	DefaultIDColumn       = "user"
	DefaultFeedbackColumn = "feedback_comments"
	DefaultModel          = "gemini-2.5-flash"
	DefaultOutputPrefix   = "output"
)

// Config holds everything one run needs. It is built once at startup and
// passed down; nothing below cmd/ reads viper directly.
type Config struct {
	InputBucket    string `yaml:"input_bucket"`
	InputFile      string `yaml:"input_file"`
	OutputBucket   string `yaml:"output_bucket"`
	OutputPrefix   string `yaml:"output_prefix"`
	Question       string `yaml:"question"`
	IDColumn       string `yaml:"id_column"`
	FeedbackColumn string `yaml:"feedback_column"`
	Model          string `yaml:"model"`
	APIKey         string `yaml:"api_key,omitempty"`
}

// Load resolves the configuration from viper. Cloud Run jobs inject
// STAGING_BUCKET/STAGING_FILE instead of INPUT_BUCKET/INPUT_FILE, so those
// aliases are honoured when the primary key is unset.
func Load() *Config {
	cfg := &Config{
		InputBucket:    firstNonEmpty(viper.GetString("input_bucket"), viper.GetString("staging_bucket")),
		InputFile:      firstNonEmpty(viper.GetString("input_file"), viper.GetString("staging_file"), DefaultInputFile),
		OutputBucket:   viper.GetString("output_bucket"),
		OutputPrefix:   firstNonEmpty(viper.GetString("output_prefix"), DefaultOutputPrefix),
		Question:       firstNonEmpty(viper.GetString("question"), DefaultQuestion),
		IDColumn:       firstNonEmpty(viper.GetString("id_column"), DefaultIDColumn),
		FeedbackColumn: firstNonEmpty(viper.GetString("feedback_column"), DefaultFeedbackColumn),
		Model:          firstNonEmpty(viper.GetString("model"), DefaultModel),
		APIKey:         viper.GetString("gemini_api_key"),
	}
	return cfg
}

// Validate reports missing required values. It must be called before any
// storage or model client is constructed so that configuration errors never
// reach the network.
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.InputBucket) == "" {
		missing = append(missing, "INPUT_BUCKET (or STAGING_BUCKET)")
	}
	if strings.TrimSpace(c.OutputBucket) == "" {
		missing = append(missing, "OUTPUT_BUCKET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}
	if strings.TrimSpace(c.InputFile) == "" {
		return fmt.Errorf("INPUT_FILE must not be empty")
	}
	return nil
}

// Redacted returns a copy safe for printing, with credential material masked.
func (c *Config) Redacted() *Config {
	out := *c
	if out.APIKey != "" {
		out.APIKey = "****"
	}
	return &out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
