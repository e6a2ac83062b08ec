// Package agent contains the conversation orchestrator: the per-turn state
// machine that routes a query through understanding, planning, search, and
// response, plus the driver that runs turns against persisted threads.
package agent

import (
	"github.com/counterware/clerk/pkg/catalog"
	"github.com/counterware/clerk/pkg/websearch"
)

// Message roles in the conversation transcript.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry in a conversation transcript.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// State is the single mutable record threaded through every step of a turn.
// It is created fresh per turn, seeded with the thread's history, and every
// node reads and writes its own slice of it.
type State struct {
	// History is the full transcript. Append-only within a turn.
	History []Message `json:"history"`

	// CurrentQuery is the query being resolved this turn. Set by the
	// driver, rewritten by the clarification loop.
	CurrentQuery string `json:"currentQuery"`

	// NeedsClarification gates the clarification loop before planning.
	NeedsClarification bool   `json:"needsClarification"`
	ClarifyingQuestion string `json:"clarifyingQuestion,omitempty"`

	// Plan is the advisory step list produced by planning.
	Plan []string `json:"plan,omitempty"`

	// Thoughts accumulates reasoning traces in invocation order.
	Thoughts []string `json:"thoughts,omitempty"`

	// DatabaseSearched reports that at least one structured+semantic
	// round has completed. It selects the reasoning phase.
	DatabaseSearched bool `json:"databaseSearched"`

	// Search directives produced by reasoning phase 1 (web query by
	// phase 2). An empty directive means "skip this backend".
	StructuredQuery string `json:"structuredQuery,omitempty"`
	SemanticQuery   string `json:"semanticQuery,omitempty"`
	WebQuery        string `json:"webQuery,omitempty"`

	// Per-branch results of the most recent search round. Cleared once
	// aggregation merges them.
	StructuredResults []catalog.Record `json:"structuredResults,omitempty"`
	SemanticResults   []catalog.Record `json:"semanticResults,omitempty"`

	// MergedResults is the fan-in of both branches, overwritten each
	// aggregation.
	MergedResults []catalog.Record `json:"mergedResults,omitempty"`

	// Reasoning phase 2 decisions.
	ResultSufficient bool `json:"resultSufficient"`
	NeedsWebSearch   bool `json:"needsWebSearch"`

	// WebResults is populated only when a web search executes.
	WebResults *websearch.Result `json:"webResults,omitempty"`

	// FinalAnswer ends the turn once set.
	FinalAnswer string `json:"finalAnswer,omitempty"`
}

// NewState creates the state for a fresh turn: prior history plus the new
// user query, everything else zeroed.
func NewState(history []Message, query string) *State {
	h := make([]Message, 0, len(history)+1)
	h = append(h, history...)
	h = append(h, Message{Role: RoleUser, Content: query})
	return &State{
		History:      h,
		CurrentQuery: query,
	}
}

// AppendAssistant appends an assistant message to the transcript.
func (s *State) AppendAssistant(content string) {
	s.History = append(s.History, Message{Role: RoleAssistant, Content: content})
}

// AppendUser appends a user message to the transcript.
func (s *State) AppendUser(content string) {
	s.History = append(s.History, Message{Role: RoleUser, Content: content})
}
