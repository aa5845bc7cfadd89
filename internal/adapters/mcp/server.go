package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/pdf-highlights/internal/core/domain"
	"github.com/kirillkom/pdf-highlights/internal/core/ports"
)

const (
	serverName        = "pdf-highlights"
	toolExtract       = "extract_highlights"
	toolClassifyColor = "classify_color"
)

// Server exposes highlight extraction as MCP tools.
type Server struct {
	extractor ports.HighlightExtractor
	logger    *slog.Logger
	mcp       *server.MCPServer
}

func NewServer(extractor ports.HighlightExtractor, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		extractor: extractor,
		logger:    logger,
		mcp:       server.NewMCPServer(serverName, version, server.WithToolCapabilities(false)),
	}

	s.mcp.AddTool(mcp.NewTool(toolExtract,
		mcp.WithDescription("Extract highlight annotations from a local PDF file. "+
			"Returns a JSON array of {page, text, category, comment} in document order."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Absolute path of the PDF file to read"),
		),
	), s.handleExtract)

	s.mcp.AddTool(mcp.NewTool(toolClassifyColor,
		mcp.WithDescription("Map an RGB colour with channels in [0,1] to its highlight category."),
		mcp.WithNumber("r", mcp.Required(), mcp.Description("Red channel")),
		mcp.WithNumber("g", mcp.Required(), mcp.Description("Green channel")),
		mcp.WithNumber("b", mcp.Required(), mcp.Description("Blue channel")),
	), s.handleClassify)

	return s
}

// ServeStdio blocks serving MCP requests over stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) handleExtract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	records, err := s.extractor.Extract(ctx, path, func(p domain.Progress) {
		s.logger.Debug("mcp_extract_progress", "path", path, "current", p.Current, "total", p.Total)
	})
	if err != nil {
		s.logger.Warn("mcp_extract_failed", "path", path, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("marshal records: %w", err)
	}
	return mcp.NewToolResultText(string(payload)), nil
}

func (s *Server) handleClassify(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var c domain.RGB
	for name, dst := range map[string]*float64{"r": &c.R, "g": &c.G, "b": &c.B} {
		v, err := req.RequireFloat(name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		*dst = v
	}
	return mcp.NewToolResultText(domain.Classify(c)), nil
}
