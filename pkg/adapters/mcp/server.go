package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/maitre"
	"github.com/aretw0/maitre/internal/logging"
	"github.com/aretw0/maitre/internal/sanitize"
	"github.com/aretw0/maitre/pkg/domain"
	"github.com/aretw0/maitre/pkg/ports"
	"github.com/aretw0/maitre/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// GraphURI is the resource holding the Mermaid state diagram.
const GraphURI = "maitre://graph"

// BookingResponse is returned by every booking tool.
type BookingResponse struct {
	SessionID string          `json:"session_id" jsonschema_description:"Identifier to pass to send_message"`
	Reply     string          `json:"reply" jsonschema_description:"What the booking agent says next"`
	Status    string          `json:"status" jsonschema_description:"Collected fields, one per line"`
	Complete  bool            `json:"complete" jsonschema_description:"True once the conversation reached a final outcome"`
	Session   *domain.Session `json:"session" jsonschema_description:"Full session state"`
}

// StartArgs are the arguments of start_booking.
type StartArgs struct {
	SessionID string `json:"session_id,omitempty"`
}

// MessageArgs are the arguments of send_message.
type MessageArgs struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// SessionArgs are the arguments of get_booking.
type SessionArgs struct {
	SessionID string `json:"session_id"`
}

// Server exposes booking conversations as MCP tools.
type Server struct {
	engine     ports.ConversationEngine
	sessions   *session.Manager
	onComplete func(*domain.Session)
	logger     *slog.Logger
	mcpServer  *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithOnComplete registers a callback run once a session reaches a terminal outcome.
func WithOnComplete(fn func(*domain.Session)) Option {
	return func(s *Server) { s.onComplete = fn }
}

// WithLogger sets the server logger. MCP over stdio owns stdout, so logs must go elsewhere.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewServer creates a new MCP Server instance.
func NewServer(engine ports.ConversationEngine, sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		sessions:  sessions,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("maitre-mcp", maitre.Version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, mainly for tests.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
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
		Addr:    addr,
		Handler: mux,
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

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("start_booking",
		mcp.WithDescription("Start a new restaurant booking conversation and return the agent's greeting."),
		mcp.WithString("session_id", mcp.Description("Identifier for the new conversation (optional, generated when omitted)")),
		mcp.WithOutputSchema[BookingResponse](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("send_message",
		mcp.WithDescription("Send the customer's next message to a booking conversation."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Conversation identifier returned by start_booking")),
		mcp.WithString("message", mcp.Required(), mcp.Description("What the customer says")),
		mcp.WithOutputSchema[BookingResponse](),
	), mcp.NewStructuredToolHandler(s.handleMessage))

	s.mcpServer.AddTool(mcp.NewTool("get_booking",
		mcp.WithDescription("Get the collected details and status of a booking conversation."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Conversation identifier")),
		mcp.WithOutputSchema[BookingResponse](),
	), mcp.NewStructuredToolHandler(s.handleGet))

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the booking state machine as a Mermaid diagram."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(maitre.Diagram(s.engine.Inspect(), nil)), nil
	})
}

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest, args StartArgs) (BookingResponse, error) {
	sess, err := s.engine.Start(ctx, args.SessionID)
	if err != nil {
		return BookingResponse{}, fmt.Errorf("start failed: %w", err)
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return BookingResponse{}, err
	}
	s.logger.Info("session created", "session_id", sess.ID, "transport", "mcp")
	return respond(sess, sess.LastReply()), nil
}

func (s *Server) handleMessage(ctx context.Context, request mcp.CallToolRequest, args MessageArgs) (BookingResponse, error) {
	if args.SessionID == "" {
		return BookingResponse{}, errors.New("session_id is required")
	}
	clean, err := sanitize.Input(args.Message)
	if err != nil {
		s.logger.Warn("MCP input rejected", "err", err, "size", len(args.Message))
		return BookingResponse{}, fmt.Errorf("input rejected: %w", err)
	}

	var res *domain.TurnResult
	_, err = s.sessions.Update(ctx, args.SessionID, func(current *domain.Session) (*domain.Session, error) {
		out, err := s.engine.Turn(ctx, current, clean)
		if err != nil {
			return nil, err
		}
		res = out
		return out.Session, nil
	})
	if err != nil {
		s.logger.Warn("MCP turn failed", "session_id", args.SessionID, "err", err)
		return BookingResponse{}, err
	}

	if res.Session.ConversationComplete && s.onComplete != nil {
		s.onComplete(res.Session)
	}
	return respond(res.Session, res.Reply), nil
}

func (s *Server) handleGet(ctx context.Context, request mcp.CallToolRequest, args SessionArgs) (BookingResponse, error) {
	sess, err := s.sessions.Load(ctx, args.SessionID)
	if err != nil {
		return BookingResponse{}, err
	}
	return respond(sess, sess.LastReply()), nil
}

func respond(sess *domain.Session, reply string) BookingResponse {
	return BookingResponse{
		SessionID: sess.ID,
		Reply:     reply,
		Status:    sess.Details.Status(),
		Complete:  sess.ConversationComplete,
		Session:   sess,
	}
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(GraphURI, "Booking State Machine",
		mcp.WithMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      GraphURI,
				MIMEType: "text/plain",
				Text:     maitre.Diagram(s.engine.Inspect(), nil),
			},
		}, nil
	})
}
