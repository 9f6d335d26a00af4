package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"todolist-backend/internal/domain"
)

// State describes the controller's view lifecycle.
type State int

const (
	StateLoading State = iota
	StateReady
	StateError
)

// Notifier receives a user-facing description of a failed action together
// with the underlying error. Failures are transient: the view stays usable
// and no retry is attempted automatically.
type Notifier func(action string, err error)

// IdentitySource returns the identity the controller should present todos
// for, typically wired to the session's current user. A change in the
// returned value invalidates the loaded list.
type IdentitySource func() string

// ListController maintains the in-memory todo list for one view. Local
// state mutates only on confirmed server responses: add, toggle and delete
// all apply what the server returned, never a client-side guess. Concurrent
// actions on different items are safe; the mutex serializes reconciliation,
// not the requests themselves.
type ListController struct {
	api      *Client
	identity IdentitySource
	notify   Notifier

	mu        sync.Mutex
	state     State
	items     []Todo
	loadedFor string
	adding    bool
}

func NewListController(api *Client, identity IdentitySource, notify Notifier) *ListController {
	if notify == nil {
		notify = func(string, error) {}
	}
	return &ListController{
		api:      api,
		identity: identity,
		notify:   notify,
		state:    StateLoading,
	}
}

// State returns the current view state.
func (c *ListController) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Items returns a copy of the current view model.
func (c *ListController) Items() []Todo {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Todo, len(c.items))
	copy(out, c.items)
	return out
}

// Load fetches the identity's todos, newest-first, replacing the local
// list. On failure the list stays empty and the view enters StateError.
func (c *ListController) Load(ctx context.Context) error {
	who := c.identity()

	todos, err := c.api.ListTodos(ctx)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = StateError
		c.items = nil
		c.loadedFor = ""
		c.notify("load todos", err)
		return err
	}
	c.state = StateReady
	c.items = todos
	c.loadedFor = who
	return nil
}

// Refresh re-fetches when the current identity differs from the one the
// list was loaded for. Returns true when a reload happened.
func (c *ListController) Refresh(ctx context.Context) (bool, error) {
	c.mu.Lock()
	stale := c.loadedFor != c.identity()
	c.mu.Unlock()
	if !stale {
		return false, nil
	}
	return true, c.Load(ctx)
}

// Add submits a new todo. Empty or whitespace-only titles are rejected
// locally, before any request is sent. While a submission is in flight
// further Adds are refused, mirroring a disabled submit control. On success
// the server's returned row is prepended.
func (c *ListController) Add(ctx context.Context, title string, description *string) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return fmt.Errorf("%w: title cannot be empty", domain.ErrValidation)
	}

	c.mu.Lock()
	if c.adding {
		c.mu.Unlock()
		return fmt.Errorf("%w: a submission is already in flight", domain.ErrValidation)
	}
	c.adding = true
	c.mu.Unlock()

	todo, err := c.api.CreateTodo(ctx, CreateTodoRequest{Title: trimmed, Description: description})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.adding = false
	if err != nil {
		c.notify("add todo", err)
		return err
	}
	c.items = append([]Todo{*todo}, c.items...)
	return nil
}

// Toggle flips an item's completed flag. The local copy is reconciled from
// the server's returned row rather than the client's guessed flip, so two
// racing mutations on the same item cannot leave the view diverged from
// server truth. A not-found response means the row vanished remotely; the
// ghost item is dropped after reporting.
func (c *ListController) Toggle(ctx context.Context, id string) error {
	c.mu.Lock()
	idx := c.indexOf(id)
	if idx < 0 {
		c.mu.Unlock()
		return fmt.Errorf("%w: no such item %s", domain.ErrNotFound, id)
	}
	next := !c.items[idx].Completed
	c.mu.Unlock()

	todo, err := c.api.UpdateTodo(ctx, id, UpdateTodoRequest{Completed: &next})

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.notify("toggle todo", err)
		if errors.Is(err, domain.ErrNotFound) {
			c.remove(id)
		}
		return err
	}
	if idx = c.indexOf(id); idx >= 0 {
		c.items[idx] = *todo
	}
	return nil
}

// Delete removes an item. The local list changes only on confirmed
// success, except that a not-found response also drops the item: it is
// already gone remotely.
func (c *ListController) Delete(ctx context.Context, id string) error {
	err := c.api.DeleteTodo(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.notify("delete todo", err)
		if errors.Is(err, domain.ErrNotFound) {
			c.remove(id)
		}
		return err
	}
	c.remove(id)
	return nil
}

// indexOf and remove require c.mu held.
func (c *ListController) indexOf(id string) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *ListController) remove(id string) {
	if i := c.indexOf(id); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
}
