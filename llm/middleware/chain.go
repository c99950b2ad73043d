// Package middleware provides the orchestrator's onion-model hook chain:
// an ordered list of (ctx, next) steps sharing one mutable Context per call.
package middleware

import (
	"context"
	"sync"
	"time"
)

// Context is the shared mutable state every hook in a chain sees. A hook
// either calls Next exactly once, or short-circuits by setting Response (or
// Err) and not calling Next.
type Context struct {
	Binding   string
	RequestID string
	Request   any
	Response  any
	Err       error
	StartedAt time.Time
	EndedAt   time.Time
}

// Next invokes the remainder of the chain.
type Next func(ctx context.Context, mc *Context) error

// Hook wraps Next with additional behavior around it.
type Hook func(next Next) Next

// Chain is an ordered, concurrency-safe list of hooks.
type Chain struct {
	mu    sync.RWMutex
	hooks []Hook
}

// NewChain creates a chain from an initial hook list.
func NewChain(hooks ...Hook) *Chain {
	return &Chain{hooks: hooks}
}

// Use appends a hook to the end of the chain.
func (c *Chain) Use(h Hook) *Chain {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, h)
	return c
}

// Then wraps innermost, the reliability-stack call, with every hook in
// registration order: the first registered hook runs outermost, so hooks
// execute in registration order on the way down and reverse on the way up.
func (c *Chain) Then(innermost Next) Next {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := innermost
	for i := len(c.hooks) - 1; i >= 0; i-- {
		n = c.hooks[i](n)
	}
	return n
}

// Len reports the number of hooks registered.
func (c *Chain) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.hooks)
}
