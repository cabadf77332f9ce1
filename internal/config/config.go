// Package config resolves editor settings from the environment, with cobra
// flags taking precedence when a host binds them.
package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fpang/gemini-photo-editor/internal/chat"
	"github.com/fpang/gemini-photo-editor/internal/editor"
)

// Environment variable names.
const (
	EnvAPIKey         = "GEMINI_API_KEY"
	EnvImageModel     = "GEMINI_IMAGE_MODEL"
	EnvBaseURL        = "GEMINI_BASE_URL"
	EnvTransport      = "EDITOR_TRANSPORT"
	EnvTimeout        = "EDITOR_TIMEOUT"
	EnvDownloadPrefix = "EDITOR_DOWNLOAD_PREFIX"
	EnvAccessToken    = "EDITOR_ACCESS_TOKEN"
	EnvExportBucket   = "EDITOR_EXPORT_BUCKET"
	EnvSSMAPIKeyParam = "SSM_API_KEY_PARAM"
)

// DefaultSSMAPIKeyParam is the Parameter Store path of the Gemini key.
const DefaultSSMAPIKeyParam = "/photo-editor/prod/gemini-api-key"

// Config is the resolved editor configuration shared by every host.
type Config struct {
	APIKey         string
	Model          string
	BaseURL        string
	Transport      string
	Timeout        time.Duration
	DownloadPrefix string
	AccessToken    string
	ExportBucket   string
	SSMAPIKeyParam string
}

// EnvOrDefault returns the value of the named environment variable, or
// defaultVal if the variable is empty or unset.
func EnvOrDefault(envVar, defaultVal string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return defaultVal
}

// FromEnv reads the configuration from environment variables. An
// unparseable EDITOR_TIMEOUT is an error.
func FromEnv() (Config, error) {
	cfg := Config{
		APIKey:         strings.TrimSpace(os.Getenv(EnvAPIKey)),
		Model:          chat.GetImageModelName(),
		BaseURL:        os.Getenv(EnvBaseURL),
		Transport:      EnvOrDefault(EnvTransport, string(chat.TransportREST)),
		Timeout:        chat.DefaultTimeout,
		DownloadPrefix: EnvOrDefault(EnvDownloadPrefix, editor.ProductName),
		AccessToken:    os.Getenv(EnvAccessToken),
		ExportBucket:   os.Getenv(EnvExportBucket),
		SSMAPIKeyParam: EnvOrDefault(EnvSSMAPIKeyParam, DefaultSSMAPIKeyParam),
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s %q: %w", EnvTimeout, v, err)
		}
		cfg.Timeout = d
	}
	return cfg, nil
}

// BindFlags registers the shared editor flags on cmd, defaulting each to
// the current value so flags override the environment.
func (c *Config) BindFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&c.Model, "model", "m", c.Model, "Gemini image model to use")
	f.StringVar(&c.Transport, "transport", c.Transport, "Gemini transport: rest or sdk")
	f.DurationVar(&c.Timeout, "timeout", c.Timeout, "Timeout for one edit request (0 disables)")
	f.StringVar(&c.DownloadPrefix, "prefix", c.DownloadPrefix, "Filename prefix for downloaded edits")
	f.StringVar(&c.ExportBucket, "s3-bucket", c.ExportBucket, "S3 bucket to export edited images to (optional)")
}

// Validate checks values that have a closed set of options.
func (c Config) Validate() error {
	if _, err := chat.ParseTransport(c.Transport); err != nil {
		return err
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	return nil
}

// Configured reports whether an API key is present.
func (c Config) Configured() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// NewOrchestrator builds the edit orchestrator for this configuration. A
// missing API key is not an error: the orchestrator then reports
// NotConfigured on every submission.
func (c Config) NewOrchestrator(ctx context.Context) (*editor.Orchestrator, error) {
	transport, err := chat.ParseTransport(c.Transport)
	if err != nil {
		return nil, err
	}
	gen, err := chat.NewGenerator(ctx, transport, c.APIKey, c.Model, c.BaseURL)
	if err != nil {
		return nil, err
	}
	return editor.NewOrchestrator(c.APIKey, gen, editor.WithTimeout(c.Timeout)), nil
}
