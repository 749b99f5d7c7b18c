// Package datasync keeps an in-memory, server-confirmed view of one API
// collection. State changes only after the server has accepted a mutation.
package datasync

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrClosed is returned by operations on, or settling after, a closed collection.
var ErrClosed = errors.New("datasync: collection closed")

// Resource is the transport a Collection synchronises with. T is the entity,
// C the create input and P the partial-update input.
type Resource[T, C, P any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, input C) (T, error)
	Update(ctx context.Context, id uint, patch P) (T, error)
	Delete(ctx context.Context, id uint) error
}

// Options describe the entity a Collection holds.
type Options[T any] struct {
	// Singular and Plural name the entity in failure messages ("task", "tasks").
	Singular string
	Plural   string

	ID func(T) uint

	// Merge combines the cached element with the server's update response.
	// Nil keeps the server response as is.
	Merge func(prev, next T) T

	// Created normalises an entity returned by Create before it is cached.
	Created func(T) T

	Logger *slog.Logger
}

// Collection is an ordered cache of T plus the operations that mutate it
// through a Resource. It is safe for concurrent use.
type Collection[T, C, P any] struct {
	res  Resource[T, C, P]
	opts Options[T]

	mu        sync.Mutex
	items     []T
	loading   int
	errMsg    string
	mounted   bool
	closed    bool
	seq       int
	inflight  map[int]context.CancelFunc
	listeners map[int]func()
}

func New[T, C, P any](res Resource[T, C, P], opts Options[T]) *Collection[T, C, P] {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Collection[T, C, P]{
		res:       res,
		opts:      opts,
		items:     []T{},
		inflight:  make(map[int]context.CancelFunc),
		listeners: make(map[int]func()),
	}
}

// Items returns a copy of the cached entities in order.
func (c *Collection[T, C, P]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Get returns the cached entity with id.
func (c *Collection[T, C, P]) Get(id uint) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range c.items {
		if c.opts.ID(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// IsLoading is true only while a Refresh is in flight.
func (c *Collection[T, C, P]) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading > 0
}

// Err returns the message of the last failed operation, or "" when a later
// Refresh succeeded or nothing failed yet.
func (c *Collection[T, C, P]) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// OnChange registers fn to run after every state change. The returned func
// unregisters it. fn runs without the collection lock held.
func (c *Collection[T, C, P]) OnChange(fn func()) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	id := c.seq
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// Mount refreshes the collection the first time it is called and is a no-op afterwards.
func (c *Collection[T, C, P]) Mount(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.mounted {
		c.mu.Unlock()
		return nil
	}
	c.mounted = true
	c.mu.Unlock()
	return c.Refresh(ctx)
}

// Refresh replaces the cache with the server's list. On failure the previous
// items are kept and Err reports "Failed to load <plural>".
func (c *Collection[T, C, P]) Refresh(ctx context.Context) error {
	ctx, done, err := c.begin(ctx)
	if err != nil {
		return err
	}
	defer done()

	c.mu.Lock()
	c.loading++
	c.mu.Unlock()
	c.notify()
	defer func() {
		c.mu.Lock()
		c.loading--
		c.mu.Unlock()
		c.notify()
	}()

	items, err := c.res.List(ctx)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if err != nil {
		c.errMsg = "Failed to load " + c.opts.Plural
		c.mu.Unlock()
		c.opts.Logger.Error("refresh failed", "entity", c.opts.Plural, "error", err)
		return err
	}
	c.items = make([]T, len(items))
	copy(c.items, items)
	c.errMsg = ""
	c.mu.Unlock()
	return nil
}

// Create sends input to the server and appends the returned entity to the end
// of the cache, whatever the server's sort order.
func (c *Collection[T, C, P]) Create(ctx context.Context, input C) (T, error) {
	var zero T
	ctx, done, err := c.begin(ctx)
	if err != nil {
		return zero, err
	}
	defer done()

	item, err := c.res.Create(ctx, input)
	if err != nil {
		return zero, c.fail(err, "Failed to create "+c.opts.Singular)
	}
	if c.opts.Created != nil {
		item = c.opts.Created(item)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return zero, ErrClosed
	}
	c.items = append(c.items, item)
	c.mu.Unlock()
	c.notify()
	return item, nil
}

// Update sends patch for id and replaces the cached element with the merged
// server response. Other elements are untouched.
func (c *Collection[T, C, P]) Update(ctx context.Context, id uint, patch P) (T, error) {
	var zero T
	ctx, done, err := c.begin(ctx)
	if err != nil {
		return zero, err
	}
	defer done()

	next, err := c.res.Update(ctx, id, patch)
	if err != nil {
		return zero, c.fail(err, "Failed to update "+c.opts.Singular)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return zero, ErrClosed
	}
	result := next
	for i, prev := range c.items {
		if c.opts.ID(prev) != id {
			continue
		}
		merged := next
		if c.opts.Merge != nil {
			merged = c.opts.Merge(prev, next)
		}
		c.items[i] = merged
		result = merged
	}
	c.mu.Unlock()
	c.notify()
	return result, nil
}

// Delete removes id on the server and then from the cache.
func (c *Collection[T, C, P]) Delete(ctx context.Context, id uint) error {
	ctx, done, err := c.begin(ctx)
	if err != nil {
		return err
	}
	defer done()

	if err := c.res.Delete(ctx, id); err != nil {
		return c.fail(err, "Failed to delete "+c.opts.Singular)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	kept := c.items[:0]
	for _, item := range c.items {
		if c.opts.ID(item) != id {
			kept = append(kept, item)
		}
	}
	c.items = kept
	c.mu.Unlock()
	c.notify()
	return nil
}

// Close cancels every in-flight request and drops the cache. Results that
// settle afterwards are discarded.
func (c *Collection[T, C, P]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.items = []T{}
	cancels := make([]context.CancelFunc, 0, len(c.inflight))
	for _, cancel := range c.inflight {
		cancels = append(cancels, cancel)
	}
	c.inflight = map[int]context.CancelFunc{}
	c.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

// begin registers a cancellable request so Close can abort it.
func (c *Collection[T, C, P]) begin(ctx context.Context) (context.Context, func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, nil, ErrClosed
	}
	reqCtx, cancel := context.WithCancel(ctx)
	c.seq++
	id := c.seq
	c.inflight[id] = cancel
	return reqCtx, func() {
		c.mu.Lock()
		delete(c.inflight, id)
		c.mu.Unlock()
		cancel()
	}, nil
}

// fail records msg for a failed mutation and returns the cause for the caller.
func (c *Collection[T, C, P]) fail(err error, msg string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.errMsg = msg
	c.mu.Unlock()
	c.opts.Logger.Error(msg, "error", err)
	c.notify()
	return err
}

func (c *Collection[T, C, P]) notify() {
	c.mu.Lock()
	fns := make([]func(), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
