package llmport

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/counterware/clerk/pkg/agent"
	"github.com/counterware/clerk/pkg/llm"
)

// Understander decides whether a query is actionable via a completion call.
type Understander struct {
	client llm.Client
	logger *slog.Logger
}

// NewUnderstander creates the LLM-backed understanding port.
func NewUnderstander(client llm.Client, logger *slog.Logger) *Understander {
	return &Understander{
		client: client,
		logger: logger.With("port", "understanding"),
	}
}

// Understand classifies the query against the catalog's capabilities.
func (u *Understander) Understand(ctx context.Context, query string, history []agent.Message) (*agent.UnderstandResult, error) {
	prompt := fmt.Sprintf(understandPrompt, query, historyJSON(history))

	var result agent.UnderstandResult
	if err := completeJSON(ctx, u.client, u.logger, []llm.Message{
		{Role: llm.RoleUser, Content: prompt},
	}, &result); err != nil {
		return nil, err
	}

	if !result.NeedsClarification {
		result.ClarifyingQuestion = ""
	}
	return &result, nil
}

var _ agent.Understander = (*Understander)(nil)
