// Package mcp exposes detection and repository analysis as MCP tools over stdio.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"stackscan/pkg/analyzer"
	"stackscan/pkg/detector"
)

// TokenFunc resolves the GitHub token used by analyze_repository
type TokenFunc func() (string, error)

// NewServer builds the MCP server without starting it
func NewServer(svc *analyzer.Service, token TokenFunc, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"stackscan",
		version,
		server.WithToolCapabilities(false),
		server.WithLogging(),
	)

	h := &toolHandler{svc: svc, token: token}

	s.AddTool(mcp.NewTool("detect_directory",
		mcp.WithDescription("Detect languages, frameworks, libraries and tools in a local project directory."),
		mcp.WithString("path", mcp.Description("Path to the project directory."), mcp.Required()),
		mcp.WithReadOnlyHintAnnotation(true),
	), h.handleDetectDirectory)

	s.AddTool(mcp.NewTool("analyze_repository",
		mcp.WithDescription("Analyze a GitHub repository's technology stack."),
		mcp.WithString("owner", mcp.Description("Repository owner (user or organization)."), mcp.Required()),
		mcp.WithString("repo", mcp.Description("Repository name."), mcp.Required()),
		mcp.WithString("branch", mcp.Description("Branch to analyze. Defaults to the repository's default branch.")),
		mcp.WithReadOnlyHintAnnotation(true),
	), h.handleAnalyzeRepository)

	s.AddTool(mcp.NewTool("list_rules",
		mcp.WithDescription("List the technologies the detector recognizes, in evaluation order."),
		mcp.WithString("kind", mcp.Description("Only list rules of this kind."),
			mcp.Enum(detector.KindFramework.String(), detector.KindLanguage.String(), detector.KindLibrary.String(), detector.KindTool.String())),
		mcp.WithReadOnlyHintAnnotation(true),
	), h.handleListRules)

	return s
}

// Serve runs the MCP server on stdin/stdout until the client disconnects
func Serve(_ context.Context, svc *analyzer.Service, token TokenFunc, version string) error {
	return server.ServeStdio(NewServer(svc, token, version))
}
