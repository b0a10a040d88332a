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

	"github.com/aretw0/agentforge"
	"github.com/aretw0/agentforge/internal/logging"
	"github.com/aretw0/agentforge/pkg/domain"
	"github.com/aretw0/agentforge/pkg/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// CatalogURI is the resource exposing the integration catalog.
const CatalogURI = "agentforge://catalog"

// SessionResponse is the structured result of the session tools.
type SessionResponse struct {
	State  *domain.State     `json:"state" jsonschema_description:"The persisted wizard state"`
	View   domain.View       `json:"view" jsonschema_description:"The current step and its fields"`
	Diff   *domain.StateDiff `json:"diff,omitempty" jsonschema_description:"What the call changed"`
	Errors map[string]string `json:"errors,omitempty" jsonschema_description:"Field errors when the submission was rejected"`
	Exit   bool              `json:"exit,omitempty" jsonschema_description:"Set when going back from the first step"`
}

// ValidationResponse is the result of validate_fields.
type ValidationResponse struct {
	OK     bool              `json:"ok"`
	Errors map[string]string `json:"errors,omitempty"`
	Hints  map[string]string `json:"hints,omitempty"`
}

// SchemaArgs selects a derivation table entry.
type SchemaArgs struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// ValidateArgs are the arguments of validate_fields.
type ValidateArgs struct {
	Input  string            `json:"input"`
	Output string            `json:"output"`
	Values map[string]string `json:"values"`
}

// SessionArgs address a stored session.
type SessionArgs struct {
	SessionID string            `json:"session_id"`
	Values    map[string]string `json:"values,omitempty"`
}

// Server exposes a Wizard as an MCP server.
type Server struct {
	wizard    *agentforge.Wizard
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates an MCP server over wiz.
func NewServer(wiz *agentforge.Wizard, opts ...Option) *Server {
	s := &Server{
		wizard:    wiz,
		mcpServer: server.NewMCPServer("agentforge-mcp", strings.TrimSpace(agentforge.Version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, mainly for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://localhost" + addr
	if !strings.HasPrefix(addr, ":") {
		baseURL = "http://" + addr
	}
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
		s.logger.Info("MCP server listening (SSE)", "address", addr)
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

		s.logger.Info("shutting down MCP server")
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
	s.mcpServer.AddTool(mcp.NewTool("list_steps",
		mcp.WithDescription("List the wizard steps in order."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(s.wizard.Registry().Steps())
	})

	s.mcpServer.AddTool(mcp.NewTool("list_options",
		mcp.WithDescription("List the input sources and output channels the wizard offers."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(s.wizard.Catalog())
	})

	s.mcpServer.AddTool(mcp.NewTool("derive_schema",
		mcp.WithDescription("Return the configuration fields required by an input source and output channel."),
		mcp.WithString("input", mcp.Description("Input source id, e.g. shopify-reviews")),
		mcp.WithString("output", mcp.Description("Output channel id, e.g. slack-message")),
	), mcp.NewTypedToolHandler(s.handleDeriveSchema))

	s.mcpServer.AddTool(mcp.NewTool("validate_fields",
		mcp.WithDescription("Check configuration values against the derived schema. Only missing required values are errors."),
		mcp.WithString("input", mcp.Required(), mcp.Description("Input source id")),
		mcp.WithString("output", mcp.Required(), mcp.Description("Output channel id")),
		mcp.WithObject("values", mcp.Description("Field name to value")),
		mcp.WithOutputSchema[ValidationResponse](),
	), mcp.NewStructuredToolHandler(s.handleValidate))

	s.mcpServer.AddTool(mcp.NewTool("start_session",
		mcp.WithDescription("Start a wizard session, or resume it when the id already exists."),
		mcp.WithString("session_id", mcp.Description("Session id (generated when omitted)")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("advance_session",
		mcp.WithDescription("Submit values for the current step of a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
		mcp.WithObject("values", mcp.Description("Field name to value")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleAdvance))

	s.mcpServer.AddTool(mcp.NewTool("retreat_session",
		mcp.WithDescription("Go back one step, discarding the answers of the step re-entered."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleRetreat))

	s.mcpServer.AddTool(mcp.NewTool("generate_agent",
		mcp.WithDescription("Run generation for a completed session and return the agent configuration."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
		mcp.WithOutputSchema[domain.AgentConfiguration](),
	), mcp.NewStructuredToolHandler(s.handleGenerate))
}

func (s *Server) handleDeriveSchema(ctx context.Context, request mcp.CallToolRequest, args SchemaArgs) (*mcp.CallToolResult, error) {
	return jsonResult(s.wizard.Derive(args.Input, args.Output))
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest, args ValidateArgs) (ValidationResponse, error) {
	res := schema.Validate(s.wizard.Derive(args.Input, args.Output), args.Values)
	resp := ValidationResponse{OK: res.OK(), Hints: res.Hints}
	if !resp.OK {
		resp.Errors = res.Errors()
	}
	return resp, nil
}

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (SessionResponse, error) {
	state, err := s.wizard.StartSession(ctx, args.SessionID)
	if err != nil {
		return SessionResponse{}, err
	}
	return s.respond(ctx, agentforge.Transition{After: state}, false)
}

func (s *Server) handleAdvance(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (SessionResponse, error) {
	t, err := s.wizard.AdvanceSession(ctx, args.SessionID, args.Values)
	var vf *domain.ValidationFailure
	if errors.As(err, &vf) {
		resp, rerr := s.respond(ctx, t, false)
		resp.Errors = vf.Errors
		return resp, rerr
	}
	if err != nil {
		return SessionResponse{}, err
	}
	return s.respond(ctx, t, false)
}

func (s *Server) handleRetreat(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (SessionResponse, error) {
	t, err := s.wizard.RetreatSession(ctx, args.SessionID)
	if errors.Is(err, domain.ErrExitFlow) {
		return s.respond(ctx, t, true)
	}
	if err != nil {
		return SessionResponse{}, err
	}
	return s.respond(ctx, t, false)
}

func (s *Server) handleGenerate(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (domain.AgentConfiguration, error) {
	var token mcp.ProgressToken
	if request.Params.Meta != nil {
		token = request.Params.Meta.ProgressToken
	}
	total := len(s.wizard.Sequencer().Phases())
	completed := 0

	t, err := s.wizard.GenerateSession(ctx, args.SessionID, func(label string, percent float64) {
		completed++
		s.logger.Debug("generation phase", "session_id", args.SessionID, "phase", label, "percent", percent)
		if token == nil {
			return
		}
		srv := server.ServerFromContext(ctx)
		if srv == nil {
			return
		}
		err := srv.SendNotificationToClient(ctx, "notifications/progress", map[string]any{
			"progressToken": token,
			"progress":      completed,
			"total":         total,
			"message":       label,
		})
		if err != nil {
			s.logger.Debug("progress notification dropped", "err", err)
		}
	})
	if err != nil {
		return domain.AgentConfiguration{}, err
	}
	return t.After.Configuration.Copy(), nil
}

func (s *Server) respond(ctx context.Context, t agentforge.Transition, exit bool) (SessionResponse, error) {
	view, err := s.wizard.Render(ctx, t.After)
	if err != nil {
		return SessionResponse{}, err
	}
	return SessionResponse{State: t.After, View: view, Diff: t.Diff(), Exit: exit}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(CatalogURI, "Integration catalog",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		b, err := json.Marshal(s.wizard.Catalog())
		if err != nil {
			return nil, fmt.Errorf("failed to encode catalog: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      CatalogURI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
