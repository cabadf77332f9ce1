// Package main provides the Lambda entry point for the photo edit API.
//
// It serves the same session API as photo-web behind API Gateway (HTTP API,
// payload v2). Sessions live in the memory of one warm container, so the
// function is meant to run with reserved concurrency of one.
//
// Endpoints:
//
//	GET    /api/health                     health check (no token required)
//	GET    /api/config                     {"configured": bool, ...}
//	POST   /api/sessions                   create a session
//	GET    /api/sessions/{id}              session snapshot
//	POST   /api/sessions/{id}/image        multipart upload (field "file")
//	POST   /api/sessions/{id}/edit         {"prompt": "..."}
//	GET    /api/sessions/{id}/download     edited image, or redirect to S3
//	GET    /api/sessions/{id}/thumbnail    JPEG preview of the input
//	DELETE /api/sessions/{id}              reset and forget the session
package main

import (
	"context"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/rs/zerolog/log"

	"github.com/fpang/gemini-photo-editor/internal/config"
	"github.com/fpang/gemini-photo-editor/internal/editapi"
	"github.com/fpang/gemini-photo-editor/internal/lambdaboot"
	"github.com/fpang/gemini-photo-editor/internal/logging"
)

// sweepInterval is how often idle sessions are dropped.
const sweepInterval = time.Minute

func newHandler(ctx context.Context) *editapi.Handler {
	initStart := time.Now()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	aws := lambdaboot.InitAWS(ctx)
	cfg.APIKey = lambdaboot.LoadGeminiKey(ctx, aws.SSM, cfg.SSMAPIKeyParam)
	exporter := lambdaboot.InitExporterOptional(aws.Config, cfg.ExportBucket)

	orch, err := cfg.NewOrchestrator(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create edit orchestrator")
	}

	h := editapi.New(editapi.Options{
		Orchestrator:   orch,
		Exporter:       exporter,
		DownloadPrefix: cfg.DownloadPrefix,
		AccessToken:    cfg.AccessToken,
		Model:          cfg.Model,
	})

	lambdaboot.StartupLog("edit-lambda", initStart).
		CommitHash(commitHash).
		BuildTime(buildTime).
		S3Bucket("exportBucket", cfg.ExportBucket).
		SSMParam("geminiApiKey", cfg.SSMAPIKeyParam).
		Feature("configured", orch.Configured()).
		Feature("accessToken", cfg.AccessToken != "").
		Config("model", cfg.Model).
		Config("transport", cfg.Transport).
		Config("timeout", cfg.Timeout.String()).
		Log()

	return h
}

func main() {
	logging.InitJSON()

	ctx := context.Background()
	h := newHandler(ctx)
	go h.Sessions().Run(ctx, sweepInterval)

	adapter := httpadapter.NewV2(h.Routes())
	lambda.Start(adapter.ProxyWithContext)
}
