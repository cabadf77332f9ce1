// Package lambdaboot provides Lambda cold-start bootstrap logic.
//
// The edit Lambda needs AWS config, the Gemini key from SSM Parameter Store,
// an optional S3 exporter, and a startup log line. Each helper is one step of
// that init sequence.
package lambdaboot

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"

	"github.com/fpang/gemini-photo-editor/internal/logging"
	"github.com/fpang/gemini-photo-editor/internal/s3util"
)

// AWSClients holds the core AWS SDK clients used at cold start.
type AWSClients struct {
	Config aws.Config
	SSM    *ssm.Client
}

// GetParameterAPI is the subset of *ssm.Client used to load secrets.
type GetParameterAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// InitAWS loads the default AWS config and returns it along with common clients.
func InitAWS(ctx context.Context) AWSClients {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load AWS config")
	}
	log.Debug().Str("region", cfg.Region).Msg("AWS config loaded")
	return AWSClients{
		Config: cfg,
		SSM:    ssm.NewFromConfig(cfg),
	}
}

// LoadGeminiKey returns the Gemini API key, preferring GEMINI_API_KEY and
// otherwise reading the SecureString parameter paramName. A missing key is
// not fatal: it is logged and "" is returned so the host can report
// NotConfigured.
func LoadGeminiKey(ctx context.Context, client GetParameterAPI, paramName string) string {
	if key := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); key != "" {
		return key
	}
	if client == nil || paramName == "" {
		log.Warn().Msg("No GEMINI_API_KEY and no SSM parameter; image editing disabled")
		return ""
	}

	ssmStart := time.Now()
	result, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &paramName,
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		log.Warn().Err(err).Str("param", paramName).Msg("Failed to read API key from SSM; image editing disabled")
		return ""
	}
	if result.Parameter == nil || result.Parameter.Value == nil {
		log.Warn().Str("param", paramName).Msg("SSM parameter has no value; image editing disabled")
		return ""
	}
	log.Debug().Str("param", paramName).Dur("elapsed", time.Since(ssmStart)).Msg("Gemini API key loaded from SSM")
	return strings.TrimSpace(*result.Parameter.Value)
}

// InitExporterOptional creates an S3 exporter for bucket, or returns nil
// (with a log line) when no bucket is configured.
func InitExporterOptional(cfg aws.Config, bucket string) *s3util.Exporter {
	if bucket == "" {
		log.Info().Msg("Export bucket not set; downloads are served inline")
		return nil
	}
	client := s3.NewFromConfig(cfg)
	return s3util.NewExporter(client, s3.NewPresignClient(client), bucket, 0)
}

// StartupLog is a convenience wrapper for the startup logger.
func StartupLog(name string, initStart time.Time) *logging.StartupLogger {
	return logging.NewStartupLogger(name).InitDuration(time.Since(initStart))
}
