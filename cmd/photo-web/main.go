package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/gemini-photo-editor/internal/auth"
	"github.com/fpang/gemini-photo-editor/internal/config"
	"github.com/fpang/gemini-photo-editor/internal/editapi"
	"github.com/fpang/gemini-photo-editor/internal/logging"
)

//go:embed frontend
var frontendFS embed.FS

// CLI flags
var (
	portFlag int
)

var (
	cfg    config.Config
	cfgErr error
)

var rootCmd = &cobra.Command{
	Use:   "photo-web",
	Short: "Local web UI for editing photos with Gemini",
	Long: `Photo Web starts a local web server with a page for loading a photo,
describing an edit, previewing the result, and downloading it.

The API key comes from GEMINI_API_KEY or the encrypted credentials file.
Without one the page still loads and reports that editing is unavailable.

Examples:
  photo-web
  photo-web --port 9090
  photo-web --model gemini-3-pro-image-preview --transport sdk`,
	Args: cobra.NoArgs,
	Run:  runMain,
}

func init() {
	cfg, cfgErr = config.FromEnv()

	rootCmd.Flags().IntVar(&portFlag, "port", 8080, "Port to listen on")
	cfg.BindFlags(rootCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMain(cmd *cobra.Command, args []string) {
	logging.Init()
	initStart := time.Now()

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
	if !orch.Configured() {
		log.Warn().Msg("No Gemini API key found; the UI will report editing as unavailable")
	}

	frontendSub, err := fs.Sub(frontendFS, "frontend")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to access embedded frontend")
	}

	h := editapi.New(editapi.Options{
		Orchestrator:    orch,
		DownloadPrefix:  cfg.DownloadPrefix,
		AccessToken:     cfg.AccessToken,
		Model:           cfg.Model,
		AllowLocalPaths: true,
		Static:          http.FileServer(http.FS(frontendSub)),
	})
	go h.Sessions().Run(ctx, time.Minute)

	mux := h.Mux()
	mux.HandleFunc("/api/pick", handlePick)

	addr := fmt.Sprintf("127.0.0.1:%d", portFlag)
	srv := &http.Server{
		Addr:         addr,
		Handler:      editapi.Wrap(mux, cfg.AccessToken),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	if cfg.Timeout > srv.WriteTimeout {
		srv.WriteTimeout = cfg.Timeout + 10*time.Second
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		log.Info().Msg("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logging.NewStartupLogger("photo-web").
		InitDuration(time.Since(initStart)).
		Feature("configured", orch.Configured()).
		Feature("accessToken", cfg.AccessToken != "").
		Config("model", cfg.Model).
		Config("transport", cfg.Transport).
		Config("timeout", cfg.Timeout.String()).
		Config("addr", addr).
		Log()

	fmt.Printf("\n  Photo Editor: http://localhost:%d\n\n", portFlag)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
