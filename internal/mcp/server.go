// Package mcp exposes the paper library to Model Context Protocol clients:
// retrieval and listing as tools, and each paper as a resource.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/upb/research-assistant/corpus"
	"github.com/upb/research-assistant/internal/rag"
)

// ServerName is reported to clients during initialization
const ServerName = "research-assistant"

// Server is the MCP server over the document store and retrieval engine
type Server struct {
	store     *corpus.Store
	retriever rag.Retriever
	logger    *zap.Logger
	server    *mcp.Server
}

// NewServer creates an MCP server with all tools and resources registered
func NewServer(store *corpus.Store, retriever rag.Retriever, version string, logger *zap.Logger) (*Server, error) {
	if store == nil {
		return nil, errors.New("document store is required")
	}
	if retriever == nil {
		return nil, errors.New("retriever is required")
	}

	s := &Server{
		store:     store,
		retriever: retriever,
		logger:    logger,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    ServerName,
			Version: version,
		}, nil),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run serves MCP over stdio until ctx is cancelled or the client disconnects
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("mcp server listening on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the streamable HTTP handler for the server
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)
}

// RunHTTP serves MCP over streamable HTTP on addr until ctx is cancelled
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("mcp http shutdown failed", zap.Error(err))
		}
	}()

	s.logger.Info("mcp server listening", zap.String("addr", addr))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("mcp http server: %w", err)
	}
	return nil
}
