package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"

	"stackscan/pkg/analyzer"
	"stackscan/pkg/detector"
	"stackscan/pkg/util"
)

type toolHandler struct {
	svc   *analyzer.Service
	token TokenFunc
}

type ruleSummary struct {
	Name         string        `json:"name"`
	Kind         detector.Kind `json:"type"`
	Files        []string      `json:"files,omitempty"`
	ManifestKeys []string      `json:"manifestKeys,omitempty"`
	Patterns     []string      `json:"patterns,omitempty"`
}

func (h *toolHandler) handleDetectDirectory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := request.GetString("path", "")
	if path == "" {
		return mcp.NewToolResultError("path is required"), nil
	}

	abs, err := util.ValidateProjectPath(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	report, err := h.svc.AnalyzeFS(os.DirFS(abs), util.ProjectName(abs))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("detection failed: %v", err)), nil
	}
	report.Repository.Path = abs

	return jsonResult(report)
}

func (h *toolHandler) handleAnalyzeRepository(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req := analyzer.Request{
		Owner:  request.GetString("owner", ""),
		Repo:   request.GetString("repo", ""),
		Branch: request.GetString("branch", ""),
	}
	if req.Owner == "" || req.Repo == "" {
		return mcp.NewToolResultError("owner and repo are required"), nil
	}

	var token string
	if h.token != nil {
		t, err := h.token()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("no GitHub token available: %v", err)), nil
		}
		token = t
	}

	report, err := h.svc.Analyze(ctx, token, req)
	switch {
	case errors.Is(err, analyzer.ErrUnauthorized):
		return mcp.NewToolResultError("GitHub token missing or rejected; run 'stackscan auth login' or set GITHUB_TOKEN"), nil
	case err != nil:
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	return jsonResult(report)
}

func (h *toolHandler) handleListRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var filter detector.Kind
	if k := request.GetString("kind", ""); k != "" {
		parsed, err := detector.ParseKind(k)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		filter = parsed
	}

	rules := h.svc.Engine().Catalog().Rules()
	out := make([]ruleSummary, 0, len(rules))
	for _, r := range rules {
		if filter != 0 && r.Kind != filter {
			continue
		}
		out = append(out, ruleSummary{
			Name:         r.Name,
			Kind:         r.Kind,
			Files:        r.Files,
			ManifestKeys: r.ManifestKeys,
			Patterns:     r.Patterns,
		})
	}

	return jsonResult(out)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
