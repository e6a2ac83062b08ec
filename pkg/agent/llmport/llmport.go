// Package llmport implements the agent's language-model-backed capability
// ports (understanding, planning, reasoning, responding) on top of pkg/llm.
// Each port renders a prompt, requests a JSON object, and decodes it into
// the port's typed result. Malformed replies are retried a bounded number of
// times before the turn fails.
package llmport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/counterware/clerk/pkg/agent"
	"github.com/counterware/clerk/pkg/llm"
)

// maxAttempts bounds retries on malformed or failed completions.
const maxAttempts = 3

// completeJSON runs a completion and decodes the JSON reply into out,
// retrying transport failures and undecodable output.
func completeJSON(ctx context.Context, client llm.Client, logger *slog.Logger, msgs []llm.Message, out any) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		reply, err := client.Complete(ctx, msgs)
		if err != nil {
			lastErr = err
			logger.Warn("completion failed", "attempt", attempt, "error", err)
			continue
		}

		if err := llm.DecodeJSON(reply, out); err != nil {
			lastErr = err
			logger.Warn("undecodable completion output", "attempt", attempt, "error", err)
			continue
		}

		return nil
	}
	return fmt.Errorf("after %d attempts: %w", maxAttempts, lastErr)
}

// historyJSON renders a transcript for prompt interpolation.
func historyJSON(history []agent.Message) string {
	if len(history) == 0 {
		return "[]"
	}
	raw, err := json.Marshal(history)
	if err != nil {
		return "[]"
	}
	return string(raw)
}
