package testutils

import (
	"context"
	"fmt"

	"github.com/counterware/clerk/pkg/llm"
)

// ScriptedClient is a test completion client that replays canned replies in
// order. It records every request for assertion.
type ScriptedClient struct {
	Replies []string

	// Err, when set, is returned instead of a reply.
	Err error

	// Requests accumulates the messages of every Complete call.
	Requests [][]llm.Message

	next int
}

func NewScriptedClient(replies ...string) *ScriptedClient {
	return &ScriptedClient{Replies: replies}
}

func (c *ScriptedClient) Complete(_ context.Context, msgs []llm.Message) (string, error) {
	c.Requests = append(c.Requests, msgs)

	if c.Err != nil {
		return "", c.Err
	}
	if c.next >= len(c.Replies) {
		return "", fmt.Errorf("scripted client exhausted after %d replies", len(c.Replies))
	}

	reply := c.Replies[c.next]
	c.next++
	return reply, nil
}

func (c *ScriptedClient) Close() error {
	return nil
}
