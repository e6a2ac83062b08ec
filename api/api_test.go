package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/counterware/clerk/pkg/agent"
	"github.com/counterware/clerk/pkg/logger"
)

// fakeChat scripts the chat service without real ports.
type fakeChat struct {
	turnResult   *agent.TurnResult
	turnErr      error
	resumeResult *agent.TurnResult
	resumeErr    error
	history      []agent.Message
	historyErr   error

	turnThread string
	turnQuery  string
	resumeData string
}

func (f *fakeChat) Turn(_ context.Context, threadID, query string) (*agent.TurnResult, error) {
	f.turnThread = threadID
	f.turnQuery = query
	if f.turnErr != nil {
		return nil, f.turnErr
	}
	if f.turnResult != nil {
		return f.turnResult, nil
	}
	return &agent.TurnResult{ThreadID: threadID, Answer: "ok"}, nil
}

func (f *fakeChat) Resume(_ context.Context, threadID string, resume agent.Resume) (*agent.TurnResult, error) {
	f.resumeData = resume.Data
	if f.resumeErr != nil {
		return nil, f.resumeErr
	}
	if f.resumeResult != nil {
		return f.resumeResult, nil
	}
	return &agent.TurnResult{ThreadID: threadID, Answer: "resumed"}, nil
}

func (f *fakeChat) History(_ context.Context, _ string) ([]agent.Message, error) {
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return f.history, nil
}

var _ = Describe("Server", func() {
	var (
		chat   *fakeChat
		server *Server
	)

	BeforeEach(func() {
		chat = &fakeChat{}
		server = NewServer(Config{ListenAddr: ":0"}, chat, logger.Nop())
	})

	postJSON := func(path string, body any) *http.Response {
		raw, err := json.Marshal(body)
		Expect(err).NotTo(HaveOccurred())
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		resp, err := server.app.Test(req)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	decode := func(resp *http.Response, out any) {
		defer resp.Body.Close()
		Expect(json.NewDecoder(resp.Body).Decode(out)).To(Succeed())
	}

	Describe("GET /ping", func() {
		It("pongs", func() {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
		})
	})

	Describe("POST /chat", func() {
		It("runs a turn and returns the answer", func() {
			resp := postJSON("/chat", ChatRequest{ThreadID: "t1", Query: "show me cheddar"})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body ChatResponse
			decode(resp, &body)
			Expect(body.ThreadID).To(Equal("t1"))
			Expect(body.Answer).To(Equal("ok"))
			Expect(chat.turnQuery).To(Equal("show me cheddar"))
		})

		It("mints a thread id when none is given", func() {
			resp := postJSON("/chat", ChatRequest{Query: "hello"})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body ChatResponse
			decode(resp, &body)
			Expect(body.ThreadID).NotTo(BeEmpty())
			Expect(chat.turnThread).To(Equal(body.ThreadID))
		})

		It("surfaces an interrupt instead of an answer", func() {
			chat.turnResult = &agent.TurnResult{
				ThreadID: "t1",
				Interrupt: &agent.Interrupt{
					Kind:    agent.KindClarification,
					Message: "What are you after?",
				},
			}

			resp := postJSON("/chat", ChatRequest{ThreadID: "t1", Query: "hi"})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body ChatResponse
			decode(resp, &body)
			Expect(body.Answer).To(BeEmpty())
			Expect(body.Interrupt.Kind).To(Equal(agent.KindClarification))
		})

		It("rejects an empty query", func() {
			resp := postJSON("/chat", ChatRequest{ThreadID: "t1"})
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("maps a pending interrupt to 409", func() {
			chat.turnErr = agent.ErrInterruptPending
			resp := postJSON("/chat", ChatRequest{ThreadID: "t1", Query: "hello"})
			Expect(resp.StatusCode).To(Equal(http.StatusConflict))
		})
	})

	Describe("POST /resume", func() {
		It("delivers the resume data", func() {
			resp := postJSON("/resume", ResumeRequest{ThreadID: "t1", Data: "yes"})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(chat.resumeData).To(Equal("yes"))
		})

		It("requires a thread id", func() {
			resp := postJSON("/resume", ResumeRequest{Data: "yes"})
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("maps a missing interrupt to 409", func() {
			chat.resumeErr = agent.ErrNoPendingInterrupt
			resp := postJSON("/resume", ResumeRequest{ThreadID: "t1", Data: "yes"})
			Expect(resp.StatusCode).To(Equal(http.StatusConflict))
		})
	})

	Describe("GET /threads/:id/history", func() {
		It("returns the transcript", func() {
			chat.history = []agent.Message{
				{Role: agent.RoleUser, Content: "hi"},
				{Role: agent.RoleAssistant, Content: "hello"},
			}

			req := httptest.NewRequest(http.MethodGet, "/threads/t1/history", nil)
			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body HistoryResponse
			decode(resp, &body)
			Expect(body.Messages).To(HaveLen(2))
		})

		It("maps unknown threads to 404", func() {
			chat.historyErr = agent.ErrThreadNotFound

			req := httptest.NewRequest(http.MethodGet, "/threads/ghost/history", nil)
			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})
	})
})
