package llmport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/counterware/clerk/pkg/agent"
	"github.com/counterware/clerk/pkg/llm"
)

// NotFoundAnswer is returned verbatim when neither the catalog nor the web
// produced anything. Keeping it fixed guarantees no fabricated content.
const NotFoundAnswer = "I couldn't find anything matching your request in our catalog or from the web. Could you try rephrasing, or ask about available brands, categories, or prices?"

// Responder synthesizes the final answer via a completion call.
type Responder struct {
	client llm.Client
	logger *slog.Logger
}

// NewResponder creates the LLM-backed responder port.
func NewResponder(client llm.Client, logger *slog.Logger) *Responder {
	return &Responder{
		client: client,
		logger: logger.With("port", "responder"),
	}
}

// Respond builds the final answer from the capped item listing and web
// results. When both are empty it answers with NotFoundAnswer without
// calling the completion backend at all.
func (r *Responder) Respond(ctx context.Context, in agent.RespondInput) (string, error) {
	if in.TotalCount == 0 && webEmpty(in) {
		return NotFoundAnswer, nil
	}

	items := "[]"
	if len(in.Items) > 0 {
		if raw, err := json.Marshal(in.Items); err == nil {
			items = string(raw)
		}
	}

	web := "none"
	if !webEmpty(in) {
		if raw, err := json.Marshal(in.WebResults); err == nil {
			web = string(raw)
		}
	}

	prompt := fmt.Sprintf(respondPrompt, in.Query, in.TotalCount, items, web, in.TotalCount)

	var result struct {
		Answer string `json:"answer"`
	}
	if err := completeJSON(ctx, r.client, r.logger, []llm.Message{
		{Role: llm.RoleSystem, Content: prompt},
		{Role: llm.RoleUser, Content: fmt.Sprintf("Please generate a response for my query: %s", in.Query)},
	}, &result); err != nil {
		return "", err
	}

	return result.Answer, nil
}

func webEmpty(in agent.RespondInput) bool {
	return in.WebResults == nil ||
		(in.WebResults.Answer == "" && len(in.WebResults.Snippets) == 0 && len(in.WebResults.Images) == 0)
}

var _ agent.Responder = (*Responder)(nil)
