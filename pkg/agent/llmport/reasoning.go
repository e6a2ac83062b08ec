package llmport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/counterware/clerk/pkg/agent"
	"github.com/counterware/clerk/pkg/catalog"
	"github.com/counterware/clerk/pkg/llm"
)

// reasonOutput is the shared reply shape for both reasoning phases.
type reasonOutput struct {
	Thought          string `json:"thought"`
	ResultSufficient bool   `json:"resultSufficient"`
	NeedsWebSearch   bool   `json:"needsWebSearch"`
	StructuredQuery  string `json:"structuredQuery"`
	SemanticQuery    string `json:"semanticQuery"`
	WebQuery         string `json:"webQuery"`
}

// Reasoner implements both reasoning sub-contracts with one prompt whose
// phase is selected by the database-searched flag.
type Reasoner struct {
	client llm.Client
	logger *slog.Logger
}

// NewReasoner creates the LLM-backed reasoning port.
func NewReasoner(client llm.Client, logger *slog.Logger) *Reasoner {
	return &Reasoner{
		client: client,
		logger: logger.With("port", "reasoning"),
	}
}

// Generate produces search directives before any search round.
func (r *Reasoner) Generate(ctx context.Context, query string, history []agent.Message, plan []string) (*agent.GenerateResult, error) {
	out, err := r.reason(ctx, query, history, false, nil)
	if err != nil {
		return nil, err
	}

	return &agent.GenerateResult{
		Thought:         out.Thought,
		StructuredQuery: out.StructuredQuery,
		SemanticQuery:   out.SemanticQuery,
	}, nil
}

// Evaluate judges whether the merged results answer the query.
func (r *Reasoner) Evaluate(ctx context.Context, query string, history []agent.Message, merged []catalog.Record) (*agent.EvaluateResult, error) {
	out, err := r.reason(ctx, query, history, true, merged)
	if err != nil {
		return nil, err
	}

	result := &agent.EvaluateResult{
		Thought:          out.Thought,
		ResultSufficient: out.ResultSufficient,
		NeedsWebSearch:   out.NeedsWebSearch,
		WebQuery:         out.WebQuery,
	}
	if result.ResultSufficient {
		result.NeedsWebSearch = false
	}
	return result, nil
}

func (r *Reasoner) reason(ctx context.Context, query string, history []agent.Message, searched bool, merged []catalog.Record) (*reasonOutput, error) {
	results := "[]"
	if len(merged) > 0 {
		if raw, err := json.Marshal(merged); err == nil {
			results = string(raw)
		}
	}

	prompt := fmt.Sprintf(reasonPrompt, query, historyJSON(history), searched, results, sampleRecord)

	var out reasonOutput
	if err := completeJSON(ctx, r.client, r.logger, []llm.Message{
		{Role: llm.RoleUser, Content: prompt},
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

var _ agent.Reasoner = (*Reasoner)(nil)
