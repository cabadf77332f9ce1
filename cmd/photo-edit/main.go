package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/gemini-photo-editor/internal/auth"
	"github.com/fpang/gemini-photo-editor/internal/cli"
	"github.com/fpang/gemini-photo-editor/internal/config"
	"github.com/fpang/gemini-photo-editor/internal/editor"
	"github.com/fpang/gemini-photo-editor/internal/filehandler"
	"github.com/fpang/gemini-photo-editor/internal/lambdaboot"
	"github.com/fpang/gemini-photo-editor/internal/logging"
	"github.com/fpang/gemini-photo-editor/internal/metrics"
)

// CLI flags
var (
	imageFlag    string
	promptFlag   string
	pickFlag     bool
	outDirFlag   string
	checkKeyFlag bool
)

var (
	cfg    config.Config
	cfgErr error
)

// rootCmd is the main Cobra command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "photo-edit",
	Short: "Edit a photo with a text instruction using Gemini",
	Long: `Photo Edit sends one image and one instruction to the Gemini image model
and saves the edited image next to your other edits.

The image must be PNG, JPEG, or WEBP and no larger than 4 MB.

Examples:
  photo-edit --image beach.jpg --prompt "make it golden hour"
  photo-edit -i cat.png -p "add a party hat" --out-dir ./edits
  photo-edit --pick                       # choose the file in a dialog, type the instruction
  photo-edit -i cat.png -p "add a hat" --check-key --transport sdk`,
	Args: cobra.NoArgs,
	Run:  runMain,
}

func init() {
	cfg, cfgErr = config.FromEnv()

	rootCmd.Flags().StringVarP(&imageFlag, "image", "i", "", "Path to the image to edit")
	rootCmd.Flags().StringVarP(&promptFlag, "prompt", "p", "", "Editing instruction (prompted for when omitted)")
	rootCmd.Flags().BoolVar(&pickFlag, "pick", false, "Choose the image with a native file dialog")
	rootCmd.Flags().StringVarP(&outDirFlag, "out-dir", "o", ".", "Directory to save the edited image in")
	rootCmd.Flags().BoolVar(&checkKeyFlag, "check-key", false, "Validate the API key with a minimal call before editing")
	cfg.BindFlags(rootCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// fail prints msg for the user and exits non-zero.
func fail(msg string) {
	fmt.Fprintln(os.Stderr, "Error:", msg)
	os.Exit(1)
}

// runMain is the main execution logic called by Cobra.
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
	if !cfg.Configured() {
		fail(editor.KindNotConfigured.UserMessage())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if checkKeyFlag {
		cli.CheckAPIKey(ctx, cfg.APIKey, cfg.BaseURL)
	}

	path := resolveImagePath()
	outDir := cli.ResolveOutputDirectory(outDirFlag)

	candidate, err := filehandler.LoadCandidate(path)
	if err != nil {
		log.Debug().Err(err).Msg("Cannot open image")
		fail(editor.KindReadFailure.UserMessage())
	}
	printImageInfo(path, candidate)

	session := editor.NewSession()
	if err := session.Load(ctx, candidate); err != nil {
		fail(editor.UserMessageOf(err))
	}

	prompt := promptFlag
	if strings.TrimSpace(prompt) == "" {
		prompt = cli.PromptForInstruction(os.Stdin, os.Stderr)
	}

	orch, err := cfg.NewOrchestrator(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create edit orchestrator")
	}

	fmt.Fprintf(os.Stderr, "Editing %s with %s...\n", candidate.Name, cfg.Model)
	start := time.Now()
	res, err := session.Edit(ctx, orch, prompt)
	elapsed := time.Since(start)
	metrics.Edit(editor.Outcome(res, err), elapsed)

	if err != nil {
		fail(editor.UserMessageOf(err))
	}
	if f, ok := res.(editor.Failure); ok {
		fail(editor.UserMessageOf(f.Err()))
	}

	dl, err := session.Download(cfg.DownloadPrefix)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare download")
	}
	saved, err := filehandler.SaveDownload(outDir, dl)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to save edited image")
	}

	snap := session.Snapshot()
	fmt.Printf("Saved %s (%s", saved, cli.FormatSize(int64(len(dl.Data))))
	if snap.Result != nil && snap.Result.Width > 0 {
		fmt.Printf(", %dx%d", snap.Result.Width, snap.Result.Height)
	}
	fmt.Printf(") in %s\n", cli.FormatDurationShort(elapsed))

	if cfg.ExportBucket != "" {
		exportDownload(ctx, session.ID(), dl)
	}
}

// resolveImagePath returns the --image path, or asks with a dialog when
// --pick is set.
func resolveImagePath() string {
	if imageFlag != "" {
		return imageFlag
	}
	if !pickFlag {
		fail("specify an image with --image or choose one with --pick")
	}
	path, err := cli.PickImage()
	if errors.Is(err, cli.ErrPickCanceled) {
		fail("no image selected")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("File picker failed")
	}
	return path
}

// printImageInfo shows the input's format, size, and any EXIF details.
func printImageInfo(path string, c editor.UploadCandidate) {
	line := fmt.Sprintf("%s: %s", c.Name, cli.FormatSize(c.Size))
	if info, err := filehandler.ProbeImage(path); err == nil {
		line += fmt.Sprintf(", %s %dx%d", info.Format, info.Width, info.Height)
	}
	fmt.Fprintln(os.Stderr, line)

	meta, err := filehandler.ExtractImageMetadata(path)
	if err != nil {
		log.Debug().Err(err).Msg("No image metadata")
		return
	}
	for _, s := range meta.Summary() {
		fmt.Fprintln(os.Stderr, "  "+s)
	}
}

// exportDownload uploads the saved edit to the export bucket and prints a
// temporary download link.
func exportDownload(ctx context.Context, sessionID string, dl editor.Download) {
	aws := lambdaboot.InitAWS(ctx)
	exporter := lambdaboot.InitExporterOptional(aws.Config, cfg.ExportBucket)
	key, url, err := exporter.Export(ctx, sessionID, dl)
	if err != nil {
		log.Error().Err(err).Str("bucket", cfg.ExportBucket).Msg("Export failed")
		return
	}
	fmt.Printf("Exported to s3://%s/%s\n%s\n", exporter.Bucket(), key, url)
}
