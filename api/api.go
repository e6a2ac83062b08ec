package api

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/counterware/clerk/pkg/agent"
)

// ChatService is the slice of the turn driver the API needs. Narrowed to an
// interface so handler tests can run without real ports.
type ChatService interface {
	Turn(ctx context.Context, threadID, query string) (*agent.TurnResult, error)
	Resume(ctx context.Context, threadID string, resume agent.Resume) (*agent.TurnResult, error)
	History(ctx context.Context, threadID string) ([]agent.Message, error)
}

// Server is the HTTP server fronting the turn driver.
type Server struct {
	config Config
	chat   ChatService
	logger *slog.Logger
	app    *fiber.App
}

// NewServer creates a new API server. The chat service is injected so it can
// be shared with other entry points (e.g. the CLI chat command).
func NewServer(config Config, chat ChatService, logger *slog.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		chat:   chat,
		logger: logger.With("component", "api"),
		app:    app,
	}

	app.Get("/ping", s.handlePing)
	app.Post("/chat", s.handleChat)
	app.Post("/resume", s.handleResume)
	app.Get("/threads/:id/history", s.handleHistory)

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server", "listen", s.config.ListenAddr)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
