package agent_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/counterware/clerk/pkg/agent"
	"github.com/counterware/clerk/pkg/logger"
	"github.com/counterware/clerk/pkg/threads/inmemory"
	testutils "github.com/counterware/clerk/pkg/utils/test"
)

var _ = Describe("Driver", func() {
	var (
		understander *testutils.StubUnderstander
		reasoner     *testutils.StubReasoner
		responder    *testutils.StubResponder
		store        *inmemory.Store
		driver       *agent.Driver
	)

	newDriver := func() *agent.Driver {
		return agent.NewDriver(agent.Ports{
			Understander: understander,
			Planner:      &testutils.StubPlanner{Steps: []string{"Step 1: search"}},
			Reasoner:     reasoner,
			Structured:   &testutils.StubSearcher{},
			Semantic:     &testutils.StubSearcher{},
			Web:          &testutils.StubWebSearcher{},
			Responder:    responder,
		}, store, logger.Nop())
	}

	BeforeEach(func() {
		understander = &testutils.StubUnderstander{}
		reasoner = &testutils.StubReasoner{}
		responder = &testutils.StubResponder{Answer: "here you go"}
		store = inmemory.NewStore()
		driver = newDriver()
	})

	It("completes a plain turn and persists the transcript", func(ctx SpecContext) {
		result, err := driver.Turn(ctx, "t1", "show me cheddar")
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Answer).To(Equal("here you go"))
		Expect(result.Interrupt).To(BeNil())

		history, err := driver.History(ctx, "t1")
		Expect(err).NotTo(HaveOccurred())
		Expect(history).To(HaveLen(2))
		Expect(history[0].Content).To(Equal("show me cheddar"))
		Expect(history[1].Content).To(Equal("here you go"))
	})

	It("seeds the next turn from the persisted history", func(ctx SpecContext) {
		_, err := driver.Turn(ctx, "t1", "first question")
		Expect(err).NotTo(HaveOccurred())

		_, err = driver.Turn(ctx, "t1", "second question")
		Expect(err).NotTo(HaveOccurred())

		history, err := driver.History(ctx, "t1")
		Expect(err).NotTo(HaveOccurred())
		Expect(history).To(HaveLen(4))
		Expect(history[2].Content).To(Equal("second question"))
	})

	It("keeps threads independent", func(ctx SpecContext) {
		_, err := driver.Turn(ctx, "t1", "about cheddar")
		Expect(err).NotTo(HaveOccurred())

		history, err := driver.History(ctx, "t2")
		Expect(history).To(BeEmpty())
		Expect(err).To(MatchError(agent.ErrThreadNotFound))
	})

	Describe("interrupt protocol", func() {
		BeforeEach(func() {
			understander.Results = []*agent.UnderstandResult{
				{NeedsClarification: true, ClarifyingQuestion: "What product are you after?"},
				{NeedsClarification: false},
			}
		})

		It("surfaces the interrupt and accepts exactly one resume", func(ctx SpecContext) {
			result, err := driver.Turn(ctx, "t1", "hi")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Answer).To(BeEmpty())
			Expect(result.Interrupt).NotTo(BeNil())
			Expect(result.Interrupt.Kind).To(Equal(agent.KindClarification))

			resumed, err := driver.Resume(ctx, "t1", agent.Resume{Data: "show me cheddar"})
			Expect(err).NotTo(HaveOccurred())
			Expect(resumed.Answer).To(Equal("here you go"))
			Expect(resumed.Interrupt).To(BeNil())
		})

		It("rejects a new turn while an interrupt is pending", func(ctx SpecContext) {
			_, err := driver.Turn(ctx, "t1", "hi")
			Expect(err).NotTo(HaveOccurred())

			_, err = driver.Turn(ctx, "t1", "another question")
			Expect(err).To(MatchError(agent.ErrInterruptPending))
		})

		It("rejects a resume with nothing pending", func(ctx SpecContext) {
			understander.Results = nil

			_, err := driver.Turn(ctx, "t1", "show me cheddar")
			Expect(err).NotTo(HaveOccurred())

			_, err = driver.Resume(ctx, "t1", agent.Resume{Data: "yes"})
			Expect(err).To(MatchError(agent.ErrNoPendingInterrupt))
		})

		It("rejects a resume for an unknown thread", func(ctx SpecContext) {
			_, err := driver.Resume(ctx, "ghost", agent.Resume{Data: "yes"})
			Expect(err).To(MatchError(agent.ErrNoPendingInterrupt))
		})

		It("rejects a second resume after the first resolved", func(ctx SpecContext) {
			_, err := driver.Turn(ctx, "t1", "hi")
			Expect(err).NotTo(HaveOccurred())

			_, err = driver.Resume(ctx, "t1", agent.Resume{Data: "show me cheddar"})
			Expect(err).NotTo(HaveOccurred())

			_, err = driver.Resume(ctx, "t1", agent.Resume{Data: "again"})
			Expect(err).To(MatchError(agent.ErrNoPendingInterrupt))
		})

		It("survives a restart between suspend and resume", func(ctx SpecContext) {
			_, err := driver.Turn(ctx, "t1", "hi")
			Expect(err).NotTo(HaveOccurred())

			// A new driver over the same store stands in for a restarted
			// process; only the persisted snapshot carries the thread.
			restarted := newDriver()
			resumed, err := restarted.Resume(ctx, "t1", agent.Resume{Data: "show me cheddar"})
			Expect(err).NotTo(HaveOccurred())
			Expect(resumed.Answer).To(Equal("here you go"))
		})
	})

	Describe("failed turns", func() {
		It("persists only the user's message", func(ctx SpecContext) {
			understander.Err = errors.New("completion unavailable")

			_, err := driver.Turn(ctx, "t1", "show me cheddar")
			Expect(err).To(HaveOccurred())

			history, err := driver.History(ctx, "t1")
			Expect(err).NotTo(HaveOccurred())
			Expect(history).To(HaveLen(1))
			Expect(history[0].Role).To(Equal(agent.RoleUser))
		})

		It("lets a later turn proceed normally", func(ctx SpecContext) {
			understander.Err = errors.New("completion unavailable")
			_, err := driver.Turn(ctx, "t1", "show me cheddar")
			Expect(err).To(HaveOccurred())

			understander.Err = nil
			result, err := driver.Turn(ctx, "t1", "show me cheddar")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Answer).To(Equal("here you go"))
		})
	})
})
