// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the Lattice knowledge-graph tools for LLM integration
// via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ashvale/lattice/internal/noteservice"
)

// Server wraps the MCP server with Lattice tools.
type Server struct {
	mcp *server.MCPServer
	svc *noteservice.Service
}

// New creates a new MCP server with all Lattice tools registered.
func New(svc *noteservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Lattice",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read the full content of a Markdown note."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the note (e.g. folder/note.md)")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("extract_links",
		mcp.WithDescription("Extract internal links, external links, embeds, and tags from a note, each with its line number."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the note")),
	), s.extractLinks)

	s.mcp.AddTool(mcp.NewTool("get_backlinks",
		mcp.WithDescription("Find all notes that link to the specified note."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the note to find backlinks for")),
	), s.getBacklinks)

	s.mcp.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Build the vault knowledge graph: notes as nodes, internal links as edges. Use kind=tags for the tag co-occurrence graph."),
		mcp.WithString("kind", mcp.Description("Graph kind: notes (default) or tags")),
	), s.getGraph)

	s.mcp.AddTool(mcp.NewTool("check_integrity",
		mcp.WithDescription("Report broken internal links and orphaned notes. Scope to one note or the whole vault."),
		mcp.WithString("scope", mcp.Description("Optional note path; empty checks the whole vault")),
	), s.checkIntegrity)

	s.mcp.AddTool(mcp.NewTool("rename_note",
		mcp.WithDescription("Move/rename a note and rewrite every referencing note's wikilinks. Set dry_run=true to preview."),
		mcp.WithString("old_path", mcp.Required(), mcp.Description("Current note path")),
		mcp.WithString("new_path", mcp.Required(), mcp.Description("New note path (must not exist)")),
		mcp.WithString("dry_run", mcp.Description("true to preview without changing files")),
	), s.renameNote)

	s.mcp.AddTool(mcp.NewTool("find_similar",
		mcp.WithDescription("Rank vault notes by similarity to a seed note (content, tags, frontmatter, links)."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Seed note path")),
		mcp.WithString("limit", mcp.Description("Max results (default 10)")),
		mcp.WithString("threshold", mcp.Description("Minimum overall score in [0,1] (default 0.3)")),
	), s.findSimilar)

	s.mcp.AddTool(mcp.NewTool("get_outline",
		mcp.WithDescription("Extract the heading tree of a note."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the note")),
	), s.getOutline)

	s.mcp.AddTool(mcp.NewTool("list_todos",
		mcp.WithDescription("List the checkbox tasks of a note with completion state and context."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the note")),
	), s.listTodos)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.svc.GetNote(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(note.Content), nil
}

func (s *Server) extractLinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ext, err := s.svc.ExtractLinks(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(ext)
}

func (s *Server) getBacklinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	bl, _, err := s.svc.Backlinks(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(bl) == 0 {
		return mcp.NewToolResultText("no backlinks found"), nil
	}
	return jsonResult(bl)
}

func (s *Server) getGraph(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind := "notes"
	if k, err := req.RequireString("kind"); err == nil && k != "" {
		kind = k
	}
	switch kind {
	case "notes":
		g, _, err := s.svc.NoteGraph(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(g)
	case "tags":
		g, _, err := s.svc.TagGraph(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(g)
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown graph kind: %s", kind)), nil
	}
}

func (s *Server) checkIntegrity(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	scope := ""
	if v, err := req.RequireString("scope"); err == nil {
		scope = v
	}
	report, err := s.svc.CheckIntegrity(ctx, scope)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(report)
}

func (s *Server) renameNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	oldPath, err := req.RequireString("old_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	newPath, err := req.RequireString("new_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dryRun := false
	if v, err := req.RequireString("dry_run"); err == nil {
		dryRun = strings.EqualFold(v, "true")
	}
	result, err := s.svc.Rename(ctx, oldPath, newPath, dryRun)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result)
}

func (s *Server) findSimilar(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := 10
	if v, err := req.RequireString("limit"); err == nil {
		if n, convErr := strconv.Atoi(v); convErr == nil && n > 0 {
			limit = n
		}
	}
	threshold := 0.3
	if v, err := req.RequireString("threshold"); err == nil {
		if f, convErr := strconv.ParseFloat(v, 64); convErr == nil && f >= 0 && f <= 1 {
			threshold = f
		}
	}
	results, _, err := s.svc.FindSimilar(ctx, path, limit, threshold)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("no similar notes above threshold"), nil
	}
	return jsonResult(results)
}

func (s *Server) getOutline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	outline, err := s.svc.Outline(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(outline)
}

func (s *Server) listTodos(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tasks, err := s.svc.Todos(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(tasks)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
