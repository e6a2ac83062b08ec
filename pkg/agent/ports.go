package agent

import (
	"context"

	"github.com/counterware/clerk/pkg/catalog"
	"github.com/counterware/clerk/pkg/websearch"
)

// UnderstandResult is the understanding port's decision about a query.
type UnderstandResult struct {
	NeedsClarification bool   `json:"needsClarification"`
	Reason             string `json:"reason,omitempty"`
	ClarifyingQuestion string `json:"clarifyingQuestion,omitempty"`
}

// Understander decides whether a query is actionable or needs the human to
// restate it. Business outcomes never error; errors are transport failures.
type Understander interface {
	Understand(ctx context.Context, query string, history []Message) (*UnderstandResult, error)
}

// Planner produces an advisory step list for resolving the query.
type Planner interface {
	Plan(ctx context.Context, query string, history []Message) ([]string, error)
}

// GenerateResult is reasoning phase 1: the search directives. An empty
// directive means "skip this backend".
type GenerateResult struct {
	Thought         string `json:"thought,omitempty"`
	StructuredQuery string `json:"structuredQuery,omitempty"`
	SemanticQuery   string `json:"semanticQuery,omitempty"`
}

// EvaluateResult is reasoning phase 2: the sufficiency judgement on the
// merged search results.
type EvaluateResult struct {
	Thought          string `json:"thought,omitempty"`
	ResultSufficient bool   `json:"resultSufficient"`
	NeedsWebSearch   bool   `json:"needsWebSearch"`
	WebQuery         string `json:"webQuery,omitempty"`
}

// Reasoner is one capability with two explicit sub-contracts, selected by
// whether the database has been searched yet this turn.
type Reasoner interface {
	// Generate produces search directives before any search round.
	Generate(ctx context.Context, query string, history []Message, plan []string) (*GenerateResult, error)

	// Evaluate judges whether the merged results answer the query.
	Evaluate(ctx context.Context, query string, history []Message, merged []catalog.Record) (*EvaluateResult, error)
}

// StructuredSearcher executes a pipeline query against the structured store.
type StructuredSearcher interface {
	Search(ctx context.Context, pipeline string) ([]catalog.Record, error)
}

// SemanticSearcher runs nearest-neighbor search. An empty query is a valid
// no-op signal and returns empty without touching the backend.
type SemanticSearcher interface {
	Search(ctx context.Context, query string) ([]catalog.Record, error)
}

// WebSearcher escalates to open web search.
type WebSearcher interface {
	Search(ctx context.Context, query string) (*websearch.Result, error)
}

// RespondInput is the constrained view the responder sees. Items is already
// capped by the graph; TotalCount carries the true result count so the
// answer can state it even when the listing is truncated.
type RespondInput struct {
	Query      string
	History    []Message
	Items      []catalog.Record
	TotalCount int
	WebResults *websearch.Result
}

// Responder synthesizes the final natural-language answer.
type Responder interface {
	Respond(ctx context.Context, in RespondInput) (string, error)
}

// Ports bundles every capability the orchestration graph calls.
type Ports struct {
	Understander Understander
	Planner      Planner
	Reasoner     Reasoner
	Structured   StructuredSearcher
	Semantic     SemanticSearcher
	Web          WebSearcher
	Responder    Responder
}
