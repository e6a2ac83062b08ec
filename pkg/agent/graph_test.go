package agent_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/counterware/clerk/pkg/agent"
	"github.com/counterware/clerk/pkg/catalog"
	"github.com/counterware/clerk/pkg/logger"
	testutils "github.com/counterware/clerk/pkg/utils/test"
	"github.com/counterware/clerk/pkg/websearch"
)

// itemizingResponder renders its input deterministically so answers can be
// asserted without a language model.
type itemizingResponder struct {
	Inputs []agent.RespondInput
}

func (r *itemizingResponder) Respond(_ context.Context, in agent.RespondInput) (string, error) {
	r.Inputs = append(r.Inputs, in)
	items, _ := json.Marshal(in.Items)
	return fmt.Sprintf("total %d: %s", in.TotalCount, items), nil
}

var _ = Describe("Graph", func() {
	var (
		understander *testutils.StubUnderstander
		planner      *testutils.StubPlanner
		reasoner     *testutils.StubReasoner
		structured   *testutils.StubSearcher
		semantic     *testutils.StubSearcher
		web          *testutils.StubWebSearcher
		responder    *itemizingResponder
		graph        *agent.Graph
	)

	BeforeEach(func() {
		understander = &testutils.StubUnderstander{}
		planner = &testutils.StubPlanner{Steps: []string{"Step 1: query the catalog"}}
		reasoner = &testutils.StubReasoner{}
		structured = &testutils.StubSearcher{}
		semantic = &testutils.StubSearcher{}
		web = &testutils.StubWebSearcher{}
		responder = &itemizingResponder{}

		graph = agent.NewGraph(agent.Ports{
			Understander: understander,
			Planner:      planner,
			Reasoner:     reasoner,
			Structured:   structured,
			Semantic:     semantic,
			Web:          web,
			Responder:    responder,
		}, logger.Nop())
	})

	run := func(ctx context.Context, query string) (*agent.Outcome, *agent.State) {
		state := agent.NewState(nil, query)
		outcome, err := graph.Run(ctx, state, agent.NodeUnderstanding, nil)
		Expect(err).NotTo(HaveOccurred())
		return outcome, state
	}

	Describe("a count query", func() {
		BeforeEach(func() {
			reasoner.GenerateResult = &agent.GenerateResult{
				Thought:         "count everything",
				StructuredQuery: `[{"$count": "count"}]`,
				SemanticQuery:   "",
			}
			reasoner.EvaluateResult = &agent.EvaluateResult{
				Thought:          "the count answers it",
				ResultSufficient: true,
			}
			structured.Records = []catalog.Record{{"count": float64(42)}}
		})

		It("runs one search round and answers with the count", func(ctx SpecContext) {
			outcome, state := run(ctx, "How many cheeses do you have?")

			Expect(outcome.Suspended()).To(BeFalse())
			Expect(state.DatabaseSearched).To(BeTrue())
			Expect(state.MergedResults).To(HaveLen(1))
			Expect(state.FinalAnswer).To(ContainSubstring("42"))

			Expect(reasoner.GenerateCalls).To(Equal(1))
			Expect(reasoner.EvaluateCalls).To(Equal(1))
			Expect(structured.Queries).To(ConsistOf(`[{"$count": "count"}]`))
			Expect(semantic.Queries).To(ConsistOf(""))
			Expect(web.Queries).To(BeEmpty())
		})

		It("evaluates only after both branches delivered", func(ctx SpecContext) {
			_, state := run(ctx, "How many cheeses do you have?")

			Expect(reasoner.LastMerged).To(Equal(state.MergedResults))
			Expect(state.StructuredResults).To(BeEmpty())
			Expect(state.SemanticResults).To(BeEmpty())
		})

		It("appends thoughts in reasoning order", func(ctx SpecContext) {
			_, state := run(ctx, "How many cheeses do you have?")

			Expect(state.Thoughts).To(Equal([]string{"count everything", "the count answers it"}))
		})
	})

	Describe("the clarification loop", func() {
		BeforeEach(func() {
			understander.Results = []*agent.UnderstandResult{
				{NeedsClarification: true, ClarifyingQuestion: "What would you like to know about our products?"},
				{NeedsClarification: false},
			}
		})

		It("suspends on a greeting and resumes with the rewritten query", func(ctx SpecContext) {
			state := agent.NewState(nil, "hi")
			outcome, err := graph.Run(ctx, state, agent.NodeUnderstanding, nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(outcome.Suspended()).To(BeTrue())
			Expect(outcome.Interrupt.Kind).To(Equal(agent.KindClarification))
			Expect(outcome.Interrupt.Message).To(ContainSubstring("What would you like"))
			Expect(outcome.Node).To(Equal(agent.NodeClarification))
			Expect(planner.Calls).To(BeZero())

			outcome, err = graph.Run(ctx, state, outcome.Node, &agent.Resume{Data: "show me cheddar"})
			Expect(err).NotTo(HaveOccurred())

			Expect(outcome.Suspended()).To(BeFalse())
			Expect(understander.Queries).To(Equal([]string{"hi", "show me cheddar"}))
			Expect(state.CurrentQuery).To(Equal("show me cheddar"))
			Expect(planner.Calls).To(Equal(1))
		})

		It("never reaches planning while clarification is needed", func(ctx SpecContext) {
			understander.Results = []*agent.UnderstandResult{
				{NeedsClarification: true, ClarifyingQuestion: "Which brand?"},
				{NeedsClarification: true, ClarifyingQuestion: "Which category?"},
				{NeedsClarification: false},
			}

			state := agent.NewState(nil, "stuff")
			outcome, err := graph.Run(ctx, state, agent.NodeUnderstanding, nil)
			Expect(err).NotTo(HaveOccurred())

			for round := 0; outcome.Suspended(); round++ {
				Expect(planner.Calls).To(BeZero())
				Expect(round).To(BeNumerically("<", 5))

				outcome, err = graph.Run(ctx, state, outcome.Node, &agent.Resume{Data: fmt.Sprintf("answer %d", round)})
				Expect(err).NotTo(HaveOccurred())
			}

			Expect(planner.Calls).To(Equal(1))
		})

		It("keeps the transcript in chronological order across the loop", func(ctx SpecContext) {
			state := agent.NewState(nil, "hi")
			outcome, err := graph.Run(ctx, state, agent.NodeUnderstanding, nil)
			Expect(err).NotTo(HaveOccurred())

			_, err = graph.Run(ctx, state, outcome.Node, &agent.Resume{Data: "show me cheddar"})
			Expect(err).NotTo(HaveOccurred())

			roles := make([]string, 0, len(state.History))
			for _, m := range state.History {
				roles = append(roles, m.Role)
			}
			// user query, clarifying question, user answer, final answer
			Expect(roles).To(Equal([]string{
				agent.RoleUser, agent.RoleAssistant, agent.RoleUser, agent.RoleAssistant,
			}))
		})
	})

	Describe("web search escalation", func() {
		BeforeEach(func() {
			reasoner.GenerateResult = &agent.GenerateResult{
				StructuredQuery: `[{"$match": {"category": "brie"}}]`,
			}
			reasoner.EvaluateResult = &agent.EvaluateResult{
				ResultSufficient: false,
				NeedsWebSearch:   true,
				WebQuery:         "french cheese characteristics",
			}
			web.Result = &websearch.Result{Answer: "French cheese is diverse."}
		})

		It("asks for confirmation before searching the web", func(ctx SpecContext) {
			state := agent.NewState(nil, "Tell me about French cheese")
			outcome, err := graph.Run(ctx, state, agent.NodeUnderstanding, nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(outcome.Suspended()).To(BeTrue())
			Expect(outcome.Interrupt.Kind).To(Equal(agent.KindWebSearch))
			Expect(outcome.Interrupt.Message).To(ContainSubstring("web search"))
			Expect(outcome.Node).To(Equal(agent.NodeReasoning))
			Expect(web.Queries).To(BeEmpty())
		})

		It("declining answers from database results only", func(ctx SpecContext) {
			state := agent.NewState(nil, "Tell me about French cheese")
			outcome, err := graph.Run(ctx, state, agent.NodeUnderstanding, nil)
			Expect(err).NotTo(HaveOccurred())

			outcome, err = graph.Run(ctx, state, outcome.Node, &agent.Resume{Data: "no"})
			Expect(err).NotTo(HaveOccurred())

			Expect(outcome.Suspended()).To(BeFalse())
			Expect(state.NeedsWebSearch).To(BeFalse())
			Expect(state.WebResults).To(BeNil())
			Expect(web.Queries).To(BeEmpty())
			Expect(reasoner.EvaluateCalls).To(Equal(1), "decline must not re-evaluate")
		})

		It("approving runs the web search and hands results to the responder", func(ctx SpecContext) {
			state := agent.NewState(nil, "Tell me about French cheese")
			outcome, err := graph.Run(ctx, state, agent.NodeUnderstanding, nil)
			Expect(err).NotTo(HaveOccurred())

			outcome, err = graph.Run(ctx, state, outcome.Node, &agent.Resume{Data: "yes"})
			Expect(err).NotTo(HaveOccurred())

			Expect(outcome.Suspended()).To(BeFalse())
			Expect(web.Queries).To(ConsistOf("french cheese characteristics"))
			Expect(responder.Inputs).To(HaveLen(1))
			Expect(responder.Inputs[0].WebResults.Answer).To(Equal("French cheese is diverse."))
		})

		It("treats anything but the exact string yes as a decline", func(ctx SpecContext) {
			state := agent.NewState(nil, "Tell me about French cheese")
			outcome, err := graph.Run(ctx, state, agent.NodeUnderstanding, nil)
			Expect(err).NotTo(HaveOccurred())

			_, err = graph.Run(ctx, state, outcome.Node, &agent.Resume{Data: "Yes"})
			Expect(err).NotTo(HaveOccurred())
			Expect(web.Queries).To(BeEmpty())
		})

		It("degrades a web search failure to an empty web result", func(ctx SpecContext) {
			web.Err = errors.New("tavily down")
			web.Result = nil

			state := agent.NewState(nil, "Tell me about French cheese")
			outcome, err := graph.Run(ctx, state, agent.NodeUnderstanding, nil)
			Expect(err).NotTo(HaveOccurred())

			outcome, err = graph.Run(ctx, state, outcome.Node, &agent.Resume{Data: "yes"})
			Expect(err).NotTo(HaveOccurred())

			Expect(outcome.Suspended()).To(BeFalse())
			Expect(state.WebResults).To(BeNil())
			Expect(state.FinalAnswer).NotTo(BeEmpty())
		})
	})

	Describe("insufficient results without web search", func() {
		It("still resolves via respond", func(ctx SpecContext) {
			reasoner.EvaluateResult = &agent.EvaluateResult{
				ResultSufficient: false,
				NeedsWebSearch:   false,
			}

			outcome, state := run(ctx, "anything")
			Expect(outcome.Suspended()).To(BeFalse())
			Expect(state.FinalAnswer).NotTo(BeEmpty())
		})
	})

	Describe("result listing cap", func() {
		It("hands the responder at most 10 items and the true total", func(ctx SpecContext) {
			records := make([]catalog.Record, 25)
			for i := range records {
				records[i] = catalog.Record{"sku": fmt.Sprintf("SKU-%03d", i)}
			}
			structured.Records = records

			_, state := run(ctx, "show me everything")

			Expect(responder.Inputs).To(HaveLen(1))
			Expect(responder.Inputs[0].Items).To(HaveLen(10))
			Expect(responder.Inputs[0].TotalCount).To(Equal(25))
			Expect(state.FinalAnswer).To(ContainSubstring("total 25"))
		})
	})

	Describe("backend degradation", func() {
		It("survives a structured store failure with semantic results", func(ctx SpecContext) {
			structured.Err = errors.New("store down")
			semantic.Records = []catalog.Record{{"sku": "CH-001"}}

			outcome, state := run(ctx, "sharp cheese")

			Expect(outcome.Suspended()).To(BeFalse())
			Expect(state.MergedResults).To(HaveLen(1))
		})

		It("survives both backends failing", func(ctx SpecContext) {
			structured.Err = errors.New("store down")
			semantic.Err = errors.New("index down")

			outcome, state := run(ctx, "sharp cheese")

			Expect(outcome.Suspended()).To(BeFalse())
			Expect(state.MergedResults).To(BeEmpty())
			Expect(state.DatabaseSearched).To(BeTrue())
		})
	})

	Describe("merge ordering", func() {
		It("lists structured results before semantic ones", func(ctx SpecContext) {
			structured.Records = []catalog.Record{{"sku": "S-1"}}
			semantic.Records = []catalog.Record{{"sku": "V-1"}}

			_, state := run(ctx, "cheese")

			Expect(state.MergedResults[0].SKU()).To(Equal("S-1"))
			Expect(state.MergedResults[1].SKU()).To(Equal("V-1"))
		})
	})

	Describe("port transport failures", func() {
		It("propagate with the failing node named", func(ctx SpecContext) {
			understander.Err = errors.New("completion unavailable")

			state := agent.NewState(nil, "hi")
			_, err := graph.Run(ctx, state, agent.NodeUnderstanding, nil)
			Expect(err).To(MatchError(ContainSubstring("understanding")))
		})
	})
})
