package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/canopy"
	"github.com/aretw0/canopy/internal/logging"
	"github.com/aretw0/canopy/internal/presentation/outline"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Engine defines what the MCP server needs from the layout engine.
type Engine interface {
	Personalize(layout *domain.LayoutServiceData, segment string)
}

// Server wraps the engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance. A nil logger discards.
func NewServer(engine Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		engine:    engine,
		logger:    logger,
		mcpServer: server.NewMCPServer("canopy-mcp", strings.TrimSpace(canopy.Version)),
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, stopping MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: personalize_layout
	s.mcpServer.AddTool(mcp.NewTool("personalize_layout",
		mcp.WithDescription("Resolve the personalization experiences of a layout for one audience segment and return the resulting layout."),
		mcp.WithString("layout", mcp.Required(), mcp.Description("Layout service response as JSON")),
		mcp.WithString("segment", mcp.Required(), mcp.Description("Audience segment id")),
	), s.handlePersonalize)

	// TOOL: outline_layout
	s.mcpServer.AddTool(mcp.NewTool("outline_layout",
		mcp.WithDescription("Draw the component tree of a layout as a Mermaid flowchart, optionally highlighting what a segment sees."),
		mcp.WithString("layout", mcp.Required(), mcp.Description("Layout service response as JSON")),
		mcp.WithString("segment", mcp.Description("Audience segment id to highlight (optional)")),
	), s.handleOutline)
}

func (s *Server) handlePersonalize(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	layout, errResult := decodeLayout(request)
	if errResult != nil {
		return errResult, nil
	}
	segment, err := request.RequireString("segment")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.engine.Personalize(layout, segment)

	out, err := json.Marshal(layout)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) handleOutline(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	layout, errResult := decodeLayout(request)
	if errResult != nil {
		return errResult, nil
	}

	var overlay *outline.Overlay
	if segment := request.GetString("segment", ""); segment != "" {
		overlay = &outline.Overlay{Segment: segment}
	}
	return mcp.NewToolResultText(outline.GenerateMermaid(layout, overlay)), nil
}

func decodeLayout(request mcp.CallToolRequest) (*domain.LayoutServiceData, *mcp.CallToolResult) {
	raw, err := request.RequireString("layout")
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	var layout domain.LayoutServiceData
	if err := json.Unmarshal([]byte(raw), &layout); err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("invalid layout: %v", err))
	}
	return &layout, nil
}
