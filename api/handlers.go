package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/counterware/clerk/pkg/agent"
)

// ErrorResponse is the error body for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ChatRequest starts a turn. ThreadID is optional; a fresh thread id is
// minted when it is empty.
type ChatRequest struct {
	ThreadID string `json:"thread_id"`
	Query    string `json:"query"`
}

// ResumeRequest answers a pending interrupt on a thread.
type ResumeRequest struct {
	ThreadID string `json:"thread_id"`
	Data     string `json:"data"`
}

// ChatResponse is the outcome of a turn or resume: a final answer, or an
// interrupt the client must answer via /resume.
type ChatResponse struct {
	ThreadID  string           `json:"thread_id"`
	Answer    string           `json:"answer,omitempty"`
	Interrupt *agent.Interrupt `json:"interrupt,omitempty"`
}

// HistoryResponse is a thread's transcript.
type HistoryResponse struct {
	ThreadID string          `json:"thread_id"`
	Messages []agent.Message `json:"messages"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

func (s *Server) handleChat(c *fiber.Ctx) error {
	var req ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if req.Query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "query is required"})
	}

	threadID := req.ThreadID
	if threadID == "" {
		threadID = uuid.NewString()
	}

	result, err := s.chat.Turn(c.Context(), threadID, req.Query)
	if err != nil {
		if errors.Is(err, agent.ErrInterruptPending) {
			return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Error: "thread has a pending interrupt; resolve it via /resume"})
		}
		s.logger.Error("turn failed", "thread", threadID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "turn failed"})
	}

	return c.JSON(turnResponse(result))
}

func (s *Server) handleResume(c *fiber.Ctx) error {
	var req ResumeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if req.ThreadID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "thread_id is required"})
	}

	result, err := s.chat.Resume(c.Context(), req.ThreadID, agent.Resume{Data: req.Data})
	if err != nil {
		if errors.Is(err, agent.ErrNoPendingInterrupt) {
			return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Error: "thread has no pending interrupt"})
		}
		s.logger.Error("resume failed", "thread", req.ThreadID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "resume failed"})
	}

	return c.JSON(turnResponse(result))
}

func (s *Server) handleHistory(c *fiber.Ctx) error {
	threadID := c.Params("id")
	if threadID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "thread id required"})
	}

	messages, err := s.chat.History(c.Context(), threadID)
	if err != nil {
		if errors.Is(err, agent.ErrThreadNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "thread not found"})
		}
		s.logger.Error("loading history failed", "thread", threadID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "loading history failed"})
	}

	return c.JSON(HistoryResponse{ThreadID: threadID, Messages: messages})
}

func turnResponse(result *agent.TurnResult) ChatResponse {
	return ChatResponse{
		ThreadID:  result.ThreadID,
		Answer:    result.Answer,
		Interrupt: result.Interrupt,
	}
}
