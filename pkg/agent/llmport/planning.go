package llmport

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/counterware/clerk/pkg/agent"
	"github.com/counterware/clerk/pkg/llm"
)

// Planner produces the advisory step list via a completion call.
type Planner struct {
	client llm.Client
	logger *slog.Logger
}

// NewPlanner creates the LLM-backed planning port.
func NewPlanner(client llm.Client, logger *slog.Logger) *Planner {
	return &Planner{
		client: client,
		logger: logger.With("port", "planning"),
	}
}

// Plan builds a step list biased toward a single structured query.
func (p *Planner) Plan(ctx context.Context, query string, history []agent.Message) ([]string, error) {
	prompt := fmt.Sprintf(planPrompt, query, historyJSON(history), sampleRecord)

	var result struct {
		Plan []string `json:"plan"`
	}
	if err := completeJSON(ctx, p.client, p.logger, []llm.Message{
		{Role: llm.RoleUser, Content: prompt},
	}, &result); err != nil {
		return nil, err
	}

	return result.Plan, nil
}

var _ agent.Planner = (*Planner)(nil)
