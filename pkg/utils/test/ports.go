package testutils

import (
	"context"
	"fmt"

	"github.com/counterware/clerk/pkg/agent"
	"github.com/counterware/clerk/pkg/catalog"
	"github.com/counterware/clerk/pkg/websearch"
)

// StubUnderstander replays scripted understanding results in call order.
// The last result repeats once the script runs out.
type StubUnderstander struct {
	Results []*agent.UnderstandResult
	Err     error
	Queries []string

	next int
}

func (s *StubUnderstander) Understand(_ context.Context, query string, _ []agent.Message) (*agent.UnderstandResult, error) {
	s.Queries = append(s.Queries, query)
	if s.Err != nil {
		return nil, s.Err
	}
	if len(s.Results) == 0 {
		return &agent.UnderstandResult{}, nil
	}
	result := s.Results[s.next]
	if s.next < len(s.Results)-1 {
		s.next++
	}
	return result, nil
}

// StubPlanner returns a fixed plan.
type StubPlanner struct {
	Steps []string
	Err   error
	Calls int
}

func (s *StubPlanner) Plan(_ context.Context, _ string, _ []agent.Message) ([]string, error) {
	s.Calls++
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Steps, nil
}

// StubReasoner returns fixed phase-1 and phase-2 results and counts calls.
type StubReasoner struct {
	GenerateResult *agent.GenerateResult
	GenerateErr    error
	EvaluateResult *agent.EvaluateResult
	EvaluateErr    error

	GenerateCalls int
	EvaluateCalls int

	// LastMerged captures the merged results Evaluate saw.
	LastMerged []catalog.Record
}

func (s *StubReasoner) Generate(_ context.Context, _ string, _ []agent.Message, _ []string) (*agent.GenerateResult, error) {
	s.GenerateCalls++
	if s.GenerateErr != nil {
		return nil, s.GenerateErr
	}
	if s.GenerateResult == nil {
		return &agent.GenerateResult{}, nil
	}
	return s.GenerateResult, nil
}

func (s *StubReasoner) Evaluate(_ context.Context, _ string, _ []agent.Message, merged []catalog.Record) (*agent.EvaluateResult, error) {
	s.EvaluateCalls++
	s.LastMerged = merged
	if s.EvaluateErr != nil {
		return nil, s.EvaluateErr
	}
	if s.EvaluateResult == nil {
		return &agent.EvaluateResult{ResultSufficient: true}, nil
	}
	return s.EvaluateResult, nil
}

// StubSearcher answers both search ports with fixed records.
type StubSearcher struct {
	Records []catalog.Record
	Err     error
	Queries []string
}

func (s *StubSearcher) Search(_ context.Context, query string) ([]catalog.Record, error) {
	s.Queries = append(s.Queries, query)
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Records, nil
}

// StubWebSearcher answers the web search port with a fixed result.
type StubWebSearcher struct {
	Result  *websearch.Result
	Err     error
	Queries []string
}

func (s *StubWebSearcher) Search(_ context.Context, query string) (*websearch.Result, error) {
	s.Queries = append(s.Queries, query)
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Result, nil
}

// StubResponder formats a deterministic answer from its input so tests can
// assert on counts and listings without a language model.
type StubResponder struct {
	Answer string
	Err    error
	Inputs []agent.RespondInput
}

func (s *StubResponder) Respond(_ context.Context, in agent.RespondInput) (string, error) {
	s.Inputs = append(s.Inputs, in)
	if s.Err != nil {
		return "", s.Err
	}
	if s.Answer != "" {
		return s.Answer, nil
	}
	return fmt.Sprintf("found %d results, showing %d", in.TotalCount, len(in.Items)), nil
}

// NewStubPorts wires a full set of permissive stubs: no clarification, a
// one-step plan, empty searches, sufficient results.
func NewStubPorts() agent.Ports {
	return agent.Ports{
		Understander: &StubUnderstander{},
		Planner:      &StubPlanner{Steps: []string{"Step 1: search the catalog"}},
		Reasoner:     &StubReasoner{},
		Structured:   &StubSearcher{},
		Semantic:     &StubSearcher{},
		Web:          &StubWebSearcher{},
		Responder:    &StubResponder{},
	}
}
