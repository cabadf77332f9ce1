package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"github.com/fpang/gemini-photo-editor/internal/editor"
	"github.com/fpang/gemini-photo-editor/internal/filehandler"
	"github.com/fpang/gemini-photo-editor/internal/metrics"
)

// EditImageInput is the argument schema of the edit_image tool.
type EditImageInput struct {
	Path      string `json:"path" jsonschema:"absolute path of a PNG, JPEG, or WEBP image of at most 4 MB"`
	Prompt    string `json:"prompt" jsonschema:"instruction describing the edit"`
	OutputDir string `json:"outputDir,omitempty" jsonschema:"directory to save the edited image in; defaults to the input's directory"`
}

// EditImageOutput is the structured result of a successful edit.
type EditImageOutput struct {
	SavedPath string `json:"savedPath"`
	MediaType string `json:"mediaType"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
}

// editTool runs one edit per call. Each call gets its own session.
type editTool struct {
	orch   *editor.Orchestrator
	prefix string
}

func toolError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
	}
}

func (t *editTool) handle(ctx context.Context, req *mcp.CallToolRequest, in EditImageInput) (*mcp.CallToolResult, EditImageOutput, error) {
	if in.Path == "" || !filepath.IsAbs(in.Path) || filehandler.ContainsPathTraversal(in.Path) {
		return toolError("path must be an absolute path to an image file"), EditImageOutput{}, nil
	}
	outDir := in.OutputDir
	if outDir == "" {
		outDir = filepath.Dir(in.Path)
	}

	candidate, err := filehandler.LoadCandidate(in.Path)
	if err != nil {
		log.Warn().Err(err).Str("path", in.Path).Msg("Cannot open image")
		return toolError(editor.KindReadFailure.UserMessage()), EditImageOutput{}, nil
	}

	session := editor.NewSession()
	if err := session.Load(ctx, candidate); err != nil {
		return toolError(editor.UserMessageOf(err)), EditImageOutput{}, nil
	}

	start := time.Now()
	res, err := session.Edit(ctx, t.orch, in.Prompt)
	elapsed := time.Since(start)
	outcome := editor.Outcome(res, err)
	metrics.Edit(outcome, elapsed)
	log.Info().Str("path", in.Path).Str("outcome", outcome).Dur("duration", elapsed).Msg("edit_image finished")

	if err != nil {
		return toolError(editor.UserMessageOf(err)), EditImageOutput{}, nil
	}
	if f, ok := res.(editor.Failure); ok {
		return toolError(editor.UserMessageOf(f.Err())), EditImageOutput{}, nil
	}

	dl, err := session.Download(t.prefix)
	if err != nil {
		return nil, EditImageOutput{}, fmt.Errorf("prepare download: %w", err)
	}
	saved, err := filehandler.SaveDownload(outDir, dl)
	if err != nil {
		return toolError(fmt.Sprintf("The edited image could not be saved: %v", err)), EditImageOutput{}, nil
	}

	out := EditImageOutput{SavedPath: saved, MediaType: dl.MediaType}
	if snap := session.Snapshot(); snap.Result != nil {
		out.Width, out.Height = snap.Result.Width, snap.Result.Height
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.ImageContent{Data: dl.Data, MIMEType: dl.MediaType},
			&mcp.TextContent{Text: "Saved edited image to " + saved},
		},
	}, out, nil
}
