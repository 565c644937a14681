// Package mcp provides the tool-protocol (MCP) server for the causal memory
// engine. Two runtime modes share the same tool set: a line-oriented stdio
// mode for in-process hosting, and an HTTP/SSE mode for remote hosting.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/braidhq/braid/pkg/memory"
	"github.com/braidhq/braid/pkg/preprocess"
	"github.com/braidhq/braid/pkg/utils"
)

// Config holds the MCP server dependencies.
type Config struct {
	// Core is the shared memory engine instance.
	Core *memory.Core

	// Preprocessor optionally rewrites conceptual queries and powers the
	// suggest_query_terms tool. Nil disables both.
	Preprocessor *preprocess.Preprocessor

	// Logger is the configured zap logger.
	Logger *zap.Logger
}

// Server wraps an MCP server over the memory engine.
type Server struct {
	config Config
	mcpSrv *server.MCPServer
}

// NewServer creates the MCP server and registers the memory tools.
func NewServer(c Config) (*Server, error) {
	if c.Core == nil {
		return nil, errors.New("memory core is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	s := &Server{config: c}

	mcpSrv := server.NewMCPServer(
		"braid",
		utils.Version,
		server.WithToolCapabilities(true),
		server.WithLogging(),
	)

	mcpSrv.AddTool(buildAddEventTool(), s.handleAddEvent)
	mcpSrv.AddTool(buildQueryTool(), s.handleQuery)

	if c.Preprocessor != nil && c.Preprocessor.Enabled() {
		mcpSrv.AddTool(buildSuggestTool(), s.handleSuggest)
	}

	s.mcpSrv = mcpSrv
	return s, nil
}

// RunStdio serves framed protocol messages over stdin/stdout. Blocks until
// the stream closes.
func (s *Server) RunStdio() error {
	s.config.Logger.Info("starting MCP server on stdio")
	return server.ServeStdio(s.mcpSrv)
}

// RunSSE serves the HTTP/SSE transport on the given port, exposing
// GET / (liveness banner), GET /sse (event stream), and POST /messages
// (request sink).
func (s *Server) RunSSE(ctx context.Context, port int) error {
	sseSrv := server.NewSSEServer(
		s.mcpSrv,
		server.WithSSEEndpoint("/sse"),
		server.WithMessageEndpoint("/messages"),
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			sseSrv.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintf(w, "braid MCP server %s\nconnect: GET /sse, POST /messages\n", utils.Version)
	})

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		httpSrv.Shutdown(context.Background())
	}()

	s.config.Logger.Info("starting MCP server on SSE",
		zap.Int("port", port),
	)

	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
