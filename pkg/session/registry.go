// Package session owns the mapping from session ids to reusable conversational
// contexts, including creation on miss, reuse on hit, explicit destruction,
// and the periodic idle sweep.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/nanobridge-dev/nanobridge/pkg/errors"
)

// Conversation is a reusable multi-turn context. Implementations keep their
// own turn history; the registry only manages lifetime.
type Conversation interface {
	Prompt(ctx context.Context, text string) (string, error)
	Destroy()
}

// Config holds the initialization parameters for a new conversation. The
// system prompt is applied exactly once, at creation; a hit on an existing
// session ignores it entirely.
type Config struct {
	SystemPrompt string
	Temperature  *float64
	TopK         *int
}

// Factory constructs the underlying conversation for a new session.
type Factory func(ctx context.Context, cfg Config) (Conversation, error)

type entry struct {
	conv      Conversation
	cfg       Config
	createdAt time.Time
	lastUsed  time.Time
	inUse     int
}

// Registry maps session ids to live conversations.
//
// Callers must not use the same session id concurrently; the registry protects
// its own map but does not serialize uses of one conversation.
type Registry struct {
	factory       Factory
	maxIdle       time.Duration
	sweepInterval time.Duration
	logger        *zap.Logger

	mu      sync.Mutex
	entries map[string]*entry
}

// Option configures a Registry.
type Option func(*Registry)

// WithMaxIdle sets the idle window after which an unused session is evicted.
func WithMaxIdle(d time.Duration) Option {
	return func(r *Registry) { r.maxIdle = d }
}

// WithSweepInterval sets how often the idle sweep runs.
func WithSweepInterval(d time.Duration) Option {
	return func(r *Registry) { r.sweepInterval = d }
}

// WithLogger sets the registry logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// NewRegistry creates a session registry.
func NewRegistry(factory Factory, opts ...Option) *Registry {
	r := &Registry{
		factory:       factory,
		maxIdle:       30 * time.Minute,
		sweepInterval: 10 * time.Minute,
		logger:        zap.NewNop(),
		entries:       make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the conversation for id, creating it when id is empty or
// unknown. The returned id is the one callers should persist for reuse. Every
// successful Resolve must be paired with a Release so the sweep knows the
// session is no longer mid-use.
func (r *Registry) Resolve(ctx context.Context, id string, cfg Config) (string, Conversation, error) {
	r.mu.Lock()
	if id != "" {
		if e, ok := r.entries[id]; ok {
			e.lastUsed = time.Now()
			e.inUse++
			r.mu.Unlock()
			return id, e.conv, nil
		}
	}
	r.mu.Unlock()

	if id == "" {
		id = uuid.NewString()
	}

	// Construction can be slow, keep it outside the lock.
	conv, err := r.factory(ctx, cfg)
	if err != nil {
		return "", nil, apperrors.New(apperrors.ErrCodeSessionCreate, "failed to create session", err)
	}

	now := time.Now()
	e := &entry{
		conv:      conv,
		cfg:       cfg,
		createdAt: now,
		lastUsed:  now,
		inUse:     1,
	}

	r.mu.Lock()
	if existing, ok := r.entries[id]; ok {
		// Another caller created the same id while we were constructing.
		// Theirs wins; discard ours.
		existing.lastUsed = time.Now()
		existing.inUse++
		r.mu.Unlock()
		conv.Destroy()
		return id, existing.conv, nil
	}
	r.entries[id] = e
	r.mu.Unlock()

	r.logger.Debug("session created", zap.String("session_id", id))
	return id, conv, nil
}

// Release marks the end of a use started by Resolve and touches lastUsed.
func (r *Registry) Release(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[id]; ok {
		if e.inUse > 0 {
			e.inUse--
		}
		e.lastUsed = time.Now()
	}
}

// Destroy removes the session and releases its conversation. It is a no-op
// for unknown ids. A resolve racing with Destroy either gets the conversation
// before removal or creates a brand-new one afterwards; it never observes a
// half-destroyed state.
func (r *Registry) Destroy(id string) {
	r.mu.Lock()
	e, ok := r.entries[id]
	if ok {
		delete(r.entries, id)
	}
	r.mu.Unlock()

	if ok {
		e.conv.Destroy()
		r.logger.Debug("session destroyed", zap.String("session_id", id))
	}
}

// Sweep evicts every idle session whose last use is older than the idle
// window. Sessions currently mid-use are skipped regardless of age. Returns
// the number of sessions evicted.
func (r *Registry) Sweep() int {
	cutoff := time.Now().Add(-r.maxIdle)

	r.mu.Lock()
	var evicted []*entry
	for id, e := range r.entries {
		if e.inUse == 0 && e.lastUsed.Before(cutoff) {
			delete(r.entries, id)
			evicted = append(evicted, e)
		}
	}
	r.mu.Unlock()

	for _, e := range evicted {
		e.conv.Destroy()
	}

	if len(evicted) > 0 {
		r.logger.Info("idle sessions evicted", zap.Int("count", len(evicted)))
	}
	return len(evicted)
}

// Run drives the periodic sweep until ctx is cancelled, then destroys all
// remaining sessions.
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(r.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Close()
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Close destroys every session in the registry.
func (r *Registry) Close() {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[string]*entry)
	r.mu.Unlock()

	for _, e := range entries {
		e.conv.Destroy()
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Contains reports whether id is a live session.
func (r *Registry) Contains(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[id]
	return ok
}
