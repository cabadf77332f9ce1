// Package main provides a Model Context Protocol server over stdio that
// exposes the photo editor as one tool, edit_image.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/gemini-photo-editor/internal/auth"
	"github.com/fpang/gemini-photo-editor/internal/config"
	"github.com/fpang/gemini-photo-editor/internal/editor"
	"github.com/fpang/gemini-photo-editor/internal/logging"
)

const serverVersion = "v1.0.0"

var (
	cfg    config.Config
	cfgErr error
)

var rootCmd = &cobra.Command{
	Use:   "edit-mcp",
	Short: "MCP server exposing Gemini photo editing as a tool",
	Long: `edit-mcp speaks the Model Context Protocol on stdin/stdout and offers one
tool, edit_image {path, prompt, outputDir?}, which edits a local image with
Gemini, saves the result, and returns it as image content.

Logs go to stderr; stdout carries only protocol messages.`,
	Args: cobra.NoArgs,
	Run:  runMain,
}

func init() {
	cfg, cfgErr = config.FromEnv()
	cfg.BindFlags(rootCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newServer(orch *editor.Orchestrator, prefix string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: editor.ProductName, Version: serverVersion}, nil)
	tool := &editTool{orch: orch, prefix: prefix}
	mcp.AddTool(server, &mcp.Tool{
		Name:        "edit_image",
		Description: "Edit a local PNG, JPEG, or WEBP image (max 4 MB) with a text instruction using Gemini. Saves the result and returns it.",
	}, tool.handle)
	return server
}

func runMain(cmd *cobra.Command, args []string) {
	logging.Init()

	if cfgErr != nil {
		log.Fatal().Err(cfgErr).Msg("Invalid configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if !cfg.Configured() {
		cfg.APIKey = auth.LookupAPIKey()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch, err := cfg.NewOrchestrator(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create edit orchestrator")
	}

	logging.NewStartupLogger("edit-mcp").
		Feature("configured", orch.Configured()).
		Config("model", cfg.Model).
		Config("transport", cfg.Transport).
		Log()

	if err := newServer(orch, cfg.DownloadPrefix).Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("MCP server failed")
	}
}
