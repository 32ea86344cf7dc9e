// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes grafty tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/apcooley/grafty/internal/nodeservice"
	"github.com/apcooley/grafty/internal/patchset"
)

// Server wraps the MCP server with grafty tools.
type Server struct {
	mcp *server.MCPServer
	svc *nodeservice.Service
}

// New creates a new MCP server with all grafty tools registered.
func New(svc *nodeservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"grafty",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_nodes",
		mcp.WithDescription("List indexed structural nodes, optionally filtered by a glob "+
			"selector of the form pathGlob[:kindGlob[:nameGlob]]."),
		mcp.WithString("query", mcp.Description("Optional glob selector filter")),
	), s.listNodes)

	s.mcp.AddTool(mcp.NewTool("resolve_selector",
		mcp.WithDescription("Resolve a selector (node id, path:N-M line range, path:kind:name, "+
			"or fuzzy name) to a node. Returns the resolution status with candidates when "+
			"ambiguous. Read the grafty://selector-syntax resource for the full grammar."),
		mcp.WithString("selector", mcp.Required(), mcp.Description("Selector string")),
	), s.resolveSelector)

	s.mcp.AddTool(mcp.NewTool("read_node",
		mcp.WithDescription("Read the text of the structural node a selector resolves to."),
		mcp.WithString("selector", mcp.Required(), mcp.Description("Selector string")),
	), s.readNode)

	s.mcp.AddTool(mcp.NewTool("preview_patch",
		mcp.WithDescription("Validate a set of line-range mutations and return per-file "+
			"unified diffs without writing anything. Mutations are a JSON array of "+
			"{file_path, operation_kind, start_line, end_line, text}."),
		mcp.WithString("mutations", mcp.Required(), mcp.Description("JSON array of mutations")),
	), s.previewPatch)

	s.mcp.AddTool(mcp.NewTool("apply_patch",
		mcp.WithDescription("Apply a set of line-range mutations atomically across files: "+
			"all succeed or all roll back. Always preview first with preview_patch."),
		mcp.WithString("mutations", mcp.Required(), mcp.Description("JSON array of mutations")),
		mcp.WithBoolean("backup", mcp.Description("Write <path>.bak backups before modifying")),
	), s.applyPatch)

	s.mcp.AddTool(mcp.NewTool("get_selector_syntax",
		mcp.WithDescription("Returns the selector grammar and mutation format contract. "+
			"Call this before resolving selectors or building patches."),
	), s.getSelectorSyntax)

	// Resource: selector syntax contract.
	s.mcp.AddResource(
		mcp.NewResource("grafty://selector-syntax", "Selector Syntax",
			mcp.WithResourceDescription("Selector grammar and mutation format for grafty tools."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readSelectorSyntaxResource,
	)

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

func (s *Server) listNodes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := ""
	if q, err := req.RequireString("query"); err == nil {
		query = q
	}
	items, err := s.svc.ListNodes(ctx, query)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(items) == 0 {
		return mcp.NewToolResultText("no nodes found"), nil
	}
	out, _ := json.MarshalIndent(items, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) resolveSelector(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sel, err := req.RequireString("selector")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Resolve(ctx, sel)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(res, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readNode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sel, err := req.RequireString("selector")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	detail, err := s.svc.GetNode(ctx, sel)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cannot read node %q: %v", sel, err)), nil
	}
	header := fmt.Sprintf("%s %s %s (lines %d-%d)\n\n",
		detail.Node.ID, detail.Node.Kind, detail.Node.Name,
		detail.Node.StartLine, detail.Node.EndLine)
	return mcp.NewToolResultText(header + detail.Content), nil
}

func (s *Server) previewPatch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	muts, errResult := mutationsArg(req)
	if errResult != nil {
		return errResult, nil
	}
	res := s.svc.PreviewPatch(ctx, muts)
	return patchResult(res), nil
}

func (s *Server) applyPatch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	muts, errResult := mutationsArg(req)
	if errResult != nil {
		return errResult, nil
	}
	backup := req.GetBool("backup", false)
	res := s.svc.ApplyPatch(ctx, muts, patchset.ApplyOptions{Backup: backup})
	return patchResult(res), nil
}

// mutationsArg decodes the mutations JSON argument.
func mutationsArg(req mcp.CallToolRequest) ([]patchset.FileMutation, *mcp.CallToolResult) {
	raw, err := req.RequireString("mutations")
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	ps := patchset.New()
	if err := ps.LoadJSON(raw); err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("invalid mutations: %v", err))
	}
	return ps.Mutations, nil
}

// patchResult renders a patchset result as tool output, surfacing diffs
// and failure details.
func patchResult(res patchset.Result) *mcp.CallToolResult {
	var b strings.Builder
	b.WriteString(res.String())
	for _, path := range sortedDiffPaths(res.Diffs) {
		b.WriteString("\n\n")
		b.WriteString(res.Diffs[path])
	}
	if !res.Success {
		return mcp.NewToolResultError(b.String())
	}
	return mcp.NewToolResultText(b.String())
}

func sortedDiffPaths(diffs map[string]string) []string {
	out := make([]string, 0, len(diffs))
	for p := range diffs {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (s *Server) getSelectorSyntax(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(SelectorSyntaxContract), nil
}

func (s *Server) readSelectorSyntaxResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "grafty://selector-syntax",
			MIMEType: "text/markdown",
			Text:     SelectorSyntaxContract,
		},
	}, nil
}
