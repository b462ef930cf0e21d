package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/autograde/internal/logging"
	"github.com/aretw0/autograde/pkg/domain"
	"github.com/aretw0/autograde/pkg/session"
	"github.com/go-chi/cors"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"
)

const catalogURI = "autograde://catalog"

// Server exposes a session manager as an MCP server.
type Server struct {
	manager   *session.Manager
	mcpServer *server.MCPServer
	logger    *slog.Logger
	version   string
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithVersion sets the version announced to clients.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(manager *session.Manager, opts ...Option) *Server {
	s := &Server{
		manager: manager,
		logger:  logging.NewNop(),
		version: "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mcpServer = server.NewMCPServer("autograde-mcp", s.version)
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr: addr,
		Handler: cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Authorization", "X-Requested-With"},
		})(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "addr", addr)
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

		s.logger.Info("MCP server shutting down")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

// sessionArgs is shared by every tool.
type sessionArgs struct {
	SessionID string `mapstructure:"session_id"`
}

type submitArgs struct {
	SessionID    string            `mapstructure:"session_id"`
	ExerciseName string            `mapstructure:"exercise_name"`
	Command      string            `mapstructure:"command"`
	Cwd          string            `mapstructure:"cwd"`
	Output       string            `mapstructure:"output"`
	Env          map[string]string `mapstructure:"env"`
}

// decodeArgs maps loosely typed tool arguments onto a struct.
func decodeArgs(args map[string]any, target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(args)
}

func (s *Server) registerTools() {
	sessionParam := mcp.WithString("session_id", mcp.Required(), mcp.Description("Learner session identifier"))

	s.mcpServer.AddTool(mcp.NewTool("submit",
		mcp.WithDescription("Grade a command the learner ran against the named exercise."),
		sessionParam,
		mcp.WithString("exercise_name", mcp.Required(), mcp.Description("Exercise being attempted")),
		mcp.WithString("command", mcp.Description("The command line that was run")),
		mcp.WithString("cwd", mcp.Description("Working directory after the command")),
		mcp.WithString("output", mcp.Description("Captured output of the command")),
		mcp.WithObject("env", mcp.Description("Environment variables after the command")),
	), s.handleSubmit)

	s.mcpServer.AddTool(mcp.NewTool("start",
		mcp.WithDescription("Show the welcome message and the active exercise."),
		sessionParam,
	), s.handleStart)

	s.mcpServer.AddTool(mcp.NewTool("hint",
		mcp.WithDescription("Show the hint of the active exercise."),
		sessionParam,
	), s.handleHint)

	s.mcpServer.AddTool(mcp.NewTool("status",
		mcp.WithDescription("List every exercise and mark the active one."),
		sessionParam,
	), s.handleStatus)

	s.mcpServer.AddTool(mcp.NewTool("reset",
		mcp.WithDescription("Clear the session's progress."),
		sessionParam,
	), s.handleReset)
}

func (s *Server) sessionOf(req mcp.CallToolRequest) (string, error) {
	var args sessionArgs
	if err := decodeArgs(req.GetArguments(), &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	if args.SessionID == "" {
		return "", errors.New("session_id is required")
	}
	return args.SessionID, nil
}

func (s *Server) handleSubmit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args submitArgs
	if err := decodeArgs(req.GetArguments(), &args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	if args.SessionID == "" || args.ExerciseName == "" {
		return mcp.NewToolResultError("session_id and exercise_name are required"), nil
	}

	res, err := s.manager.Submit(ctx, args.SessionID, domain.UserState{
		ExerciseName: args.ExerciseName,
		Command:      args.Command,
		Cwd:          args.Cwd,
		Output:       args.Output,
		Environ:      args.Env,
	})
	if err != nil {
		return s.errorResult(err), nil
	}
	return mcp.NewToolResultText(res.Text), nil
}

func (s *Server) handleStart(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := s.sessionOf(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	msg, err := s.manager.StartMessage(ctx, id)
	if err != nil {
		return s.errorResult(err), nil
	}
	return mcp.NewToolResultText(msg), nil
}

func (s *Server) handleHint(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := s.sessionOf(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	hint, err := s.manager.Hint(ctx, id)
	if err != nil {
		return s.errorResult(err), nil
	}
	return mcp.NewToolResultText(hint), nil
}

func (s *Server) handleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := s.sessionOf(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entries, text, err := s.manager.Status(ctx, id)
	if err != nil {
		return s.errorResult(err), nil
	}
	return mcp.NewToolResultStructured(map[string]any{"exercises": entries}, text), nil
}

func (s *Server) handleReset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := s.sessionOf(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	idx, err := s.manager.Reset(ctx, id)
	if err != nil {
		return s.errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprint(idx)), nil
}

// errorResult turns grading errors into tool errors; only unexpected
// failures are logged.
func (s *Server) errorResult(err error) *mcp.CallToolResult {
	var rej *domain.RejectionError
	switch {
	case errors.As(err, &rej):
		return mcp.NewToolResultError(rej.Reason)
	case errors.Is(err, domain.ErrExerciseNotFound), errors.Is(err, domain.ErrAllComplete):
		return mcp.NewToolResultError(err.Error())
	default:
		s.logger.Error("MCP tool failed", "err", err)
		return mcp.NewToolResultError(fmt.Sprintf("internal error: %v", err))
	}
}

type catalogEntry struct {
	Name     string `json:"name"`
	Sequence int    `json:"sequence"`
	Hook     bool   `json:"hook"`
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(catalogURI, "Exercise Catalogue",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		exercises := s.manager.Catalog().Exercises
		entries := make([]catalogEntry, 0, len(exercises))
		for _, ex := range exercises {
			entries = append(entries, catalogEntry{Name: ex.Name, Sequence: ex.Sequence, Hook: ex.Eject != nil})
		}
		jsonBytes, err := json.Marshal(entries)
		if err != nil {
			return nil, fmt.Errorf("failed to encode catalogue: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      catalogURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
