// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes revue's review tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/revue/internal/cadence"
	"github.com/starford/revue/internal/index"
	"github.com/starford/revue/internal/noteservice"
	"github.com/starford/revue/internal/watchlist"
)

const contractURI = "revue://cadence-format"

// Server wraps the MCP server with revue tools.
type Server struct {
	mcp *server.MCPServer
	svc *noteservice.Service
}

// New creates a new MCP server with all revue tools registered.
func New(svc *noteservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"revue",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_due_reviews",
		mcp.WithDescription("List watched notes that are due for review, due reminders, "+
			"upcoming reminders and snoozed notes."),
	), s.listDueReviews)

	s.mcp.AddTool(mcp.NewTool("review_status",
		mcp.WithDescription("Show the cadence, last review and next due time of a note."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the note (e.g. folder/note.md)")),
	), s.reviewStatus)

	s.mcp.AddTool(mcp.NewTool("mark_reviewed",
		mcp.WithDescription("Record that a watched note was reviewed just now."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the note")),
	), s.markReviewed)

	s.mcp.AddTool(mcp.NewTool("snooze_note",
		mcp.WithDescription("Push a watched note's next review forward by a number of hours."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the note")),
		mcp.WithNumber("hours", mcp.Required(), mcp.Description("Hours to snooze, greater than zero")),
	), s.snoozeNote)

	s.mcp.AddTool(mcp.NewTool("set_cadence",
		mcp.WithDescription("Write a review cadence into a note. The cadence uses the "+
			"key=value format described by get_cadence_contract or the "+contractURI+" resource."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the note")),
		mcp.WithString("cadence", mcp.Required(), mcp.Description("Cadence, e.g. type=weekly;days=1,3;time=08:00")),
	), s.setCadence)

	s.mcp.AddTool(mcp.NewTool("watch_note",
		mcp.WithDescription("Start watching a note for review. Notes without a cadence get the default interval."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the note")),
	), s.watchNote)

	s.mcp.AddTool(mcp.NewTool("describe_cadence",
		mcp.WithDescription("Explain a cadence line and when a never-reviewed note with it would be due."),
		mcp.WithString("line", mcp.Required(), mcp.Description("Cadence line or key=value list")),
	), s.describeCadence)

	s.mcp.AddTool(mcp.NewTool("get_cadence_contract",
		mcp.WithDescription("Returns the review cadence format contract. "+
			"Call this before setting cadences to ensure correct structure."),
	), s.getCadenceContract)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read the full content of a note."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the note")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List indexed notes, optionally filtered by review flag."),
		mcp.WithString("flag", mcp.Description("Optional filter: tracked, watch, reminder, dismissed or priority")),
	), s.listNotes)

	s.mcp.AddResource(
		mcp.NewResource(contractURI, "Cadence Format Contract",
			mcp.WithResourceDescription("How review cadences are written into note content."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readCadenceFormatResource,
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

func (s *Server) listDueReviews(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	b, err := s.svc.Watchlist(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(renderBuckets(b)), nil
}

func (s *Server) reviewStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entry, err := s.svc.Status(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(entry), nil
}

func (s *Server) markReviewed(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entry, err := s.svc.MarkReviewed(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("reviewed: %s (next review %s)",
		path, cadence.FormatDateTime(entry.NextDue))), nil
}

func (s *Server) snoozeNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	hours, err := req.RequireInt("hours")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entry, err := s.svc.Snooze(ctx, path, hours)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("snoozed: %s until %s",
		path, cadence.FormatDateTime(entry.NextDue))), nil
}

func (s *Server) setCadence(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := req.RequireString("cadence")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	spec := cadence.Decode(strings.TrimPrefix(strings.TrimSpace(raw), cadence.LinePrefix))
	entry, err := s.svc.SetCadence(ctx, path, spec)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("cadence set: %s (%s)", path, entry.Summary)), nil
}

func (s *Server) watchNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entry, err := s.svc.Watch(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("watching: %s (%s)", path, entry.Summary)), nil
}

func (s *Server) describeCadence(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	line, err := req.RequireString("line")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(cadence.Describe(line, s.svc.Now())), nil
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

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, _, err := s.svc.ListNotes(ctx, index.ListFilter{
		Flag:  req.GetString("flag", ""),
		Limit: 1000,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	paths := make([]string, len(items))
	for i, it := range items {
		paths[i] = it.Path
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) getCadenceContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(CadenceFormatContract), nil
}

func (s *Server) readCadenceFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contractURI,
			MIMEType: "text/markdown",
			Text:     CadenceFormatContract,
		},
	}, nil
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

// renderBuckets lists each non-empty bucket as a heading followed by one
// line per note.
func renderBuckets(b watchlist.Buckets) string {
	sections := []struct {
		title   string
		entries []watchlist.Entry
	}{
		{"Due for review", b.Overdue},
		{"Due reminders", b.DueReminders},
		{"Upcoming reminders", b.NotDueReminders},
		{"Snoozed", b.Snoozed},
	}

	var sb strings.Builder
	for _, sec := range sections {
		if len(sec.entries) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "## %s (%d)\n", sec.title, len(sec.entries))
		for _, e := range sec.entries {
			flag := ""
			if e.Note.Flags.Priority {
				flag = " [priority]"
			}
			fmt.Fprintf(&sb, "- %s%s: %s; %s\n", e.Note.ID, flag, e.Remaining, e.Summary)
		}
	}
	if sb.Len() == 0 {
		return "nothing to review"
	}
	return sb.String()
}
