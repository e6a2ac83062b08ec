package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/counterware/clerk/pkg/eventstream"
	"github.com/counterware/clerk/pkg/eventstream/nop"
)

// Snapshot is the persisted per-thread record: the last state, plus the
// suspended node and its interrupt when the thread is parked mid-turn.
type Snapshot struct {
	State *State `json:"state"`

	// Node names the graph node that suspended; empty when idle.
	Node string `json:"node,omitempty"`

	// PendingInterrupt is the outstanding interrupt, nil when idle.
	PendingInterrupt *Interrupt `json:"pendingInterrupt,omitempty"`
}

// ThreadStore persists thread snapshots. Load returns ErrThreadNotFound for
// unknown threads; the driver treats that as a fresh thread.
type ThreadStore interface {
	Load(ctx context.Context, threadID string) (*Snapshot, error)
	Save(ctx context.Context, threadID string, snap *Snapshot) error
	Close() error
}

// TurnResult is what a turn (or resume) hands back to the caller: a final
// answer, or an interrupt awaiting human input.
type TurnResult struct {
	ThreadID  string     `json:"threadId"`
	Answer    string     `json:"answer,omitempty"`
	Interrupt *Interrupt `json:"interrupt,omitempty"`
}

// Driver is the outer turn loop. It enforces single-writer-per-thread,
// seeds each turn's state from the persisted history, runs the graph, and
// persists the outcome. At most one interrupt is outstanding per thread.
type Driver struct {
	graph  *Graph
	store  ThreadStore
	events eventstream.Publisher
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// DriverOption configures the driver.
type DriverOption func(*Driver)

// WithPublisher sets the turn event publisher. Defaults to the nop publisher.
func WithPublisher(p eventstream.Publisher) DriverOption {
	return func(d *Driver) {
		d.events = p
	}
}

// NewDriver creates a turn driver over the given ports and thread store.
func NewDriver(ports Ports, store ThreadStore, logger *slog.Logger, opts ...DriverOption) *Driver {
	d := &Driver{
		graph:  NewGraph(ports, logger),
		store:  store,
		events: nop.NewPublisher(),
		logger: logger.With("component", "driver"),
		locks:  make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// threadLock returns the mutex for a thread id, creating it on first use.
// Locks are never reclaimed; a parked thread costs one mutex.
func (d *Driver) threadLock(threadID string) *sync.Mutex {
	d.mu.Lock()
	defer d.mu.Unlock()

	lock, ok := d.locks[threadID]
	if !ok {
		lock = &sync.Mutex{}
		d.locks[threadID] = lock
	}
	return lock
}

// Turn starts a new turn on the thread. The thread must not be suspended;
// a pending interrupt must be resolved through Resume first.
func (d *Driver) Turn(ctx context.Context, threadID, query string) (*TurnResult, error) {
	lock := d.threadLock(threadID)
	lock.Lock()
	defer lock.Unlock()

	var history []Message
	snap, err := d.store.Load(ctx, threadID)
	switch {
	case errors.Is(err, ErrThreadNotFound):
		// fresh thread
	case err != nil:
		return nil, fmt.Errorf("loading thread %s: %w", threadID, err)
	default:
		if snap.PendingInterrupt != nil {
			return nil, fmt.Errorf("thread %s: %w", threadID, ErrInterruptPending)
		}
		if snap.State != nil {
			history = snap.State.History
		}
	}

	state := NewState(history, query)

	outcome, err := d.graph.Run(ctx, state, NodeUnderstanding, nil)
	if err != nil {
		// Persist only the user's message so a retried turn sees a
		// consistent transcript.
		d.saveFailed(ctx, threadID, state)
		return nil, err
	}

	return d.finish(ctx, threadID, query, outcome)
}

// Resume delivers the human's answer to a suspended thread. The thread must
// have exactly one outstanding interrupt; the resume re-enters the node that
// raised it.
func (d *Driver) Resume(ctx context.Context, threadID string, resume Resume) (*TurnResult, error) {
	lock := d.threadLock(threadID)
	lock.Lock()
	defer lock.Unlock()

	snap, err := d.store.Load(ctx, threadID)
	if errors.Is(err, ErrThreadNotFound) {
		return nil, fmt.Errorf("thread %s: %w", threadID, ErrNoPendingInterrupt)
	}
	if err != nil {
		return nil, fmt.Errorf("loading thread %s: %w", threadID, err)
	}
	if snap.PendingInterrupt == nil {
		return nil, fmt.Errorf("thread %s: %w", threadID, ErrNoPendingInterrupt)
	}

	outcome, err := d.graph.Run(ctx, snap.State, snap.Node, &resume)
	if err != nil {
		d.saveFailed(ctx, threadID, snap.State)
		return nil, err
	}

	return d.finish(ctx, threadID, snap.State.CurrentQuery, outcome)
}

// History returns the persisted transcript for a thread.
func (d *Driver) History(ctx context.Context, threadID string) ([]Message, error) {
	snap, err := d.store.Load(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if snap.State == nil {
		return nil, nil
	}
	return snap.State.History, nil
}

// finish persists the outcome and publishes the turn event. Persistence
// failures are fatal for the turn; publish failures are only logged.
func (d *Driver) finish(ctx context.Context, threadID, query string, outcome *Outcome) (*TurnResult, error) {
	snap := &Snapshot{State: outcome.State}
	if outcome.Suspended() {
		snap.Node = outcome.Node
		snap.PendingInterrupt = outcome.Interrupt
	}

	if err := d.store.Save(ctx, threadID, snap); err != nil {
		return nil, fmt.Errorf("saving thread %s: %w", threadID, err)
	}

	event := &eventstream.TurnEvent{
		SchemaVersion: eventstream.SchemaVersionV1,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		ThreadID:      threadID,
		Query:         query,
		Searched:      outcome.State.DatabaseSearched,
		ResultCount:   len(outcome.State.MergedResults),
	}

	result := &TurnResult{ThreadID: threadID}
	if outcome.Suspended() {
		result.Interrupt = outcome.Interrupt
		event.EventType = eventstream.EventTypeTurnSuspended
		event.InterruptKind = outcome.Interrupt.Kind
	} else {
		result.Answer = outcome.State.FinalAnswer
		event.EventType = eventstream.EventTypeTurnCompleted
		event.Answer = outcome.State.FinalAnswer
	}

	if err := d.events.PublishTurn(ctx, event); err != nil {
		d.logger.Error("publishing turn event failed", "thread", threadID, "error", err)
	}

	return result, nil
}

// saveFailed persists the transcript after a failed turn. The failed turn's
// intermediate state is discarded; only history survives.
func (d *Driver) saveFailed(ctx context.Context, threadID string, state *State) {
	snap := &Snapshot{State: &State{History: state.History}}
	if err := d.store.Save(ctx, threadID, snap); err != nil {
		d.logger.Error("saving thread after failed turn", "thread", threadID, "error", err)
	}
}
