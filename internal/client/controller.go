package client

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"thingstodo/internal/core/domain"
	"thingstodo/internal/core/model/request"
	"thingstodo/internal/core/model/response"
)

// Key identifies a list item. Placeholders get a temporary key from a space
// that can never collide with store ids.
type Key struct {
	temp uuid.UUID
	id   int64
}

func Temporary(token uuid.UUID) Key { return Key{temp: token} }

func Persisted(id int64) Key { return Key{id: id} }

func (k Key) IsTemporary() bool { return k.temp != uuid.Nil }

// ID returns the store id, or 0 for a temporary key.
func (k Key) ID() int64 { return k.id }

func (k Key) String() string {
	if k.IsTemporary() {
		return "tmp:" + k.temp.String()
	}

	return fmt.Sprintf("%d", k.id)
}

type Item struct {
	Key     Key
	Todo    response.TodoResponse
	Loading bool
}

func (i Item) IsOverdue(now time.Time) bool {
	return i.Todo.DueDate != nil && i.Todo.DueDate.Before(now)
}

type Draft struct {
	Title   string
	DueDate string
}

// Controller holds the list a client renders. Adds and deletes are applied
// locally first and then confirmed against the server in the background.
type Controller struct {
	api    API
	logger *slog.Logger
	now    func() time.Time

	mu          sync.Mutex
	items       []Item
	draft       Draft
	subscribers []chan struct{}

	inflight sync.WaitGroup
}

func NewController(api API, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}

	return &Controller{
		api:    api,
		logger: logger.With("component", "controller"),
		now:    time.Now,
	}
}

// Items returns a copy of the current list.
func (c *Controller) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]Item(nil), c.items...)
}

func (c *Controller) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.draft
}

func (c *Controller) SetDraft(draft Draft) {
	c.mu.Lock()
	c.draft = draft
	c.mu.Unlock()

	c.notify()
}

// Subscribe returns a channel that receives a value after every change.
// Notifications coalesce; a slow reader sees at least one pending signal.
func (c *Controller) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)

	c.mu.Lock()
	c.subscribers = append(c.subscribers, ch)
	c.mu.Unlock()

	return ch
}

// Wait blocks until every background request has settled.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

// Load performs the initial fetch. A failure is logged and the list kept.
func (c *Controller) Load(ctx context.Context) {
	if err := c.Refresh(ctx); err != nil {
		c.logger.ErrorContext(ctx, "Failed to fetch todos", "error", err)
	}
}

// Refresh replaces the whole list with the server's, dropping placeholders.
func (c *Controller) Refresh(ctx context.Context) error {
	todos, err := c.api.List(ctx)
	if err != nil {
		return err
	}

	items := make([]Item, 0, len(todos))
	for _, todo := range todos {
		items = append(items, Item{Key: Persisted(todo.ID), Todo: todo})
	}

	c.mu.Lock()
	c.items = items
	c.mu.Unlock()

	c.notify()

	return nil
}

// Add prepends a loading placeholder, clears the draft and creates the todo
// in the background. It reports false for a blank title.
func (c *Controller) Add(ctx context.Context, title, dueDate string) (Key, bool) {
	if strings.TrimSpace(title) == "" {
		return Key{}, false
	}

	key := Temporary(uuid.New())

	placeholder := Item{
		Key: key,
		Todo: response.TodoResponse{
			Title:     title,
			CreatedAt: c.now().UTC(),
		},
		Loading: true,
	}

	if due, err := domain.ParseDueDate(dueDate); err == nil {
		placeholder.Todo.DueDate = due
	}

	c.mu.Lock()
	c.items = append([]Item{placeholder}, c.items...)
	c.draft = Draft{}
	c.mu.Unlock()

	c.notify()

	c.inflight.Add(1)

	go func() {
		defer c.inflight.Done()

		_, err := c.api.Create(ctx, request.CreateTodoRequest{Title: &title, DueDate: dueDate})

		if err != nil {
			c.logger.ErrorContext(ctx, "Failed to add todo", "error", err, "key", key.String())
			c.remove(key)
			return
		}

		c.Load(ctx)
	}()

	return key, true
}

// Delete removes the item immediately and restores the pre-delete list if
// the server call fails. Placeholders cannot be deleted.
func (c *Controller) Delete(ctx context.Context, key Key) bool {
	if key.IsTemporary() {
		return false
	}

	c.mu.Lock()
	snapshot := append([]Item(nil), c.items...)
	c.items = without(c.items, key)
	c.mu.Unlock()

	c.notify()

	c.inflight.Add(1)

	go func() {
		defer c.inflight.Done()

		if err := c.api.Delete(ctx, key.ID()); err != nil {
			c.logger.ErrorContext(ctx, "Failed to delete todo", "error", err, "id", key.ID())

			c.mu.Lock()
			c.items = snapshot
			c.mu.Unlock()

			c.notify()
		}
	}()

	return true
}

func (c *Controller) remove(key Key) {
	c.mu.Lock()
	c.items = without(c.items, key)
	c.mu.Unlock()

	c.notify()
}

func (c *Controller) notify() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, ch := range c.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func without(items []Item, key Key) []Item {
	out := make([]Item, 0, len(items))

	for _, item := range items {
		if item.Key != key {
			out = append(out, item)
		}
	}

	return out
}
