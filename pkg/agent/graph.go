package agent

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/counterware/clerk/pkg/catalog"
)

// Graph node names. Persisted in snapshots so a resume re-enters exactly the
// node that suspended.
const (
	NodeUnderstanding  = "understanding"
	NodeClarification  = "clarification"
	NodePlanning       = "planning"
	NodeReasoning      = "reasoning"
	NodeParallelSearch = "parallel_search"
	NodeAggregate      = "aggregate"
	NodeWebSearch      = "web_search"
	NodeRespond        = "respond"
)

// maxListedItems caps how many records the responder is handed; the true
// total still reaches it via RespondInput.TotalCount.
const maxListedItems = 10

// Outcome is the result of running the graph: either a completed turn
// (Interrupt nil, state carries the final answer) or a suspension (Interrupt
// set, Node names where the resume must re-enter).
type Outcome struct {
	State     *State
	Node      string
	Interrupt *Interrupt
}

// Suspended reports whether the run stopped on an interrupt.
func (o *Outcome) Suspended() bool {
	return o.Interrupt != nil
}

// Graph is the turn state machine. It owns no I/O of its own; every effect
// goes through a capability port.
type Graph struct {
	ports  Ports
	logger *slog.Logger
}

// NewGraph creates the orchestration graph over the given ports.
func NewGraph(ports Ports, logger *slog.Logger) *Graph {
	return &Graph{
		ports:  ports,
		logger: logger.With("component", "graph"),
	}
}

// Run executes the graph from startNode until the turn completes or a node
// suspends. A non-nil resume is delivered to startNode only; nodes reached
// afterwards never see it. Port transport failures on the search branches
// degrade to empty results; everything else propagates.
func (g *Graph) Run(ctx context.Context, st *State, startNode string, resume *Resume) (*Outcome, error) {
	node := startNode
	for {
		g.logger.Debug("entering node", "node", node)

		next, interrupt, err := g.step(ctx, st, node, resume)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", node, err)
		}
		resume = nil

		if interrupt != nil {
			return &Outcome{State: st, Node: node, Interrupt: interrupt}, nil
		}
		if next == "" {
			return &Outcome{State: st}, nil
		}
		node = next
	}
}

func (g *Graph) step(ctx context.Context, st *State, node string, resume *Resume) (string, *Interrupt, error) {
	switch node {
	case NodeUnderstanding:
		return g.understanding(ctx, st)
	case NodeClarification:
		return g.clarification(st, resume)
	case NodePlanning:
		return g.planning(ctx, st)
	case NodeReasoning:
		return g.reasoning(ctx, st, resume)
	case NodeParallelSearch:
		return g.parallelSearch(ctx, st)
	case NodeAggregate:
		return g.aggregate(st)
	case NodeWebSearch:
		return g.webSearch(ctx, st)
	case NodeRespond:
		return g.respond(ctx, st)
	default:
		return "", nil, fmt.Errorf("unknown node: %s", node)
	}
}

func (g *Graph) understanding(ctx context.Context, st *State) (string, *Interrupt, error) {
	result, err := g.ports.Understander.Understand(ctx, st.CurrentQuery, st.History)
	if err != nil {
		return "", nil, err
	}

	st.NeedsClarification = result.NeedsClarification
	st.ClarifyingQuestion = result.ClarifyingQuestion

	if st.NeedsClarification {
		return NodeClarification, nil, nil
	}
	return NodePlanning, nil, nil
}

// clarification suspends with the clarifying question; on resume it rewrites
// the current query from the human's answer and loops back to understanding.
func (g *Graph) clarification(st *State, resume *Resume) (string, *Interrupt, error) {
	if resume == nil {
		st.AppendAssistant(st.ClarifyingQuestion)
		return "", &Interrupt{Kind: KindClarification, Message: st.ClarifyingQuestion}, nil
	}

	st.AppendUser(resume.Data)
	st.CurrentQuery = resume.Data
	st.NeedsClarification = false
	st.ClarifyingQuestion = ""
	return NodeUnderstanding, nil, nil
}

func (g *Graph) planning(ctx context.Context, st *State) (string, *Interrupt, error) {
	plan, err := g.ports.Planner.Plan(ctx, st.CurrentQuery, st.History)
	if err != nil {
		return "", nil, err
	}

	st.Plan = plan
	return NodeReasoning, nil, nil
}

// reasoning is re-entered twice per successful turn: phase 1 generates search
// directives, phase 2 judges the merged results. The phase switch is the
// DatabaseSearched flag, nothing else. The web-search confirmation interrupt
// is raised here, after evaluation, so the resume lands back in this node
// with the phase-2 decision already committed to state.
func (g *Graph) reasoning(ctx context.Context, st *State, resume *Resume) (string, *Interrupt, error) {
	if !st.DatabaseSearched {
		result, err := g.ports.Reasoner.Generate(ctx, st.CurrentQuery, st.History, st.Plan)
		if err != nil {
			return "", nil, err
		}

		if result.Thought != "" {
			st.Thoughts = append(st.Thoughts, result.Thought)
		}
		st.StructuredQuery = result.StructuredQuery
		st.SemanticQuery = result.SemanticQuery
		return NodeParallelSearch, nil, nil
	}

	if resume != nil {
		if resume.Approved() {
			return NodeWebSearch, nil, nil
		}
		st.NeedsWebSearch = false
		return NodeRespond, nil, nil
	}

	result, err := g.ports.Reasoner.Evaluate(ctx, st.CurrentQuery, st.History, st.MergedResults)
	if err != nil {
		return "", nil, err
	}

	if result.Thought != "" {
		st.Thoughts = append(st.Thoughts, result.Thought)
	}
	st.ResultSufficient = result.ResultSufficient
	st.NeedsWebSearch = result.NeedsWebSearch
	st.WebQuery = result.WebQuery

	if st.ResultSufficient || !st.NeedsWebSearch {
		return NodeRespond, nil, nil
	}

	msg := fmt.Sprintf("The catalog doesn't fully answer this. Should I run a web search for %q? (yes/no)", st.WebQuery)
	return "", &Interrupt{Kind: KindWebSearch, Message: msg}, nil
}

// parallelSearch fans out to both backends unconditionally; an empty
// directive is a skip signal each searcher handles itself. Backend failures
// are logged and degrade to empty results so one broken store never kills
// the turn. The errgroup Wait is the fan-in barrier: aggregate always sees
// both branches finished.
func (g *Graph) parallelSearch(ctx context.Context, st *State) (string, *Interrupt, error) {
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		records, err := g.ports.Structured.Search(groupCtx, st.StructuredQuery)
		if err != nil {
			g.logger.Error("structured search failed", "error", err)
			records = nil
		}
		st.StructuredResults = records
		return nil
	})

	group.Go(func() error {
		records, err := g.ports.Semantic.Search(groupCtx, st.SemanticQuery)
		if err != nil {
			g.logger.Error("semantic search failed", "error", err)
			records = nil
		}
		st.SemanticResults = records
		return nil
	})

	if err := group.Wait(); err != nil {
		return "", nil, err
	}
	return NodeAggregate, nil, nil
}

// aggregate is the fan-in: merge structured-then-semantic, clear the branch
// slots, mark the database searched, and loop back for phase-2 reasoning.
func (g *Graph) aggregate(st *State) (string, *Interrupt, error) {
	merged := make([]catalog.Record, 0, len(st.StructuredResults)+len(st.SemanticResults))
	merged = append(merged, st.StructuredResults...)
	merged = append(merged, st.SemanticResults...)

	st.MergedResults = merged
	st.StructuredResults = nil
	st.SemanticResults = nil
	st.DatabaseSearched = true

	g.logger.Debug("aggregated search results", "merged", len(merged))
	return NodeReasoning, nil, nil
}

func (g *Graph) webSearch(ctx context.Context, st *State) (string, *Interrupt, error) {
	result, err := g.ports.Web.Search(ctx, st.WebQuery)
	if err != nil {
		g.logger.Error("web search failed", "error", err)
		result = nil
	}
	st.WebResults = result
	return NodeRespond, nil, nil
}

func (g *Graph) respond(ctx context.Context, st *State) (string, *Interrupt, error) {
	items := st.MergedResults
	if len(items) > maxListedItems {
		items = items[:maxListedItems]
	}

	answer, err := g.ports.Responder.Respond(ctx, RespondInput{
		Query:      st.CurrentQuery,
		History:    st.History,
		Items:      items,
		TotalCount: len(st.MergedResults),
		WebResults: st.WebResults,
	})
	if err != nil {
		return "", nil, err
	}

	st.FinalAnswer = answer
	st.AppendAssistant(answer)
	return "", nil, nil
}
