package listing

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrConfirmationNotFound = errors.New("confirmation not found or already resolved")

type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
)

type Notification struct {
	Kind    NotificationKind `json:"kind"`
	Title   string           `json:"title"`
	Message string           `json:"message"`
}

// Confirmation is a destructive action waiting for the user's answer.
type Confirmation struct {
	ID          string    `json:"id"`
	Screen      string    `json:"screen"`
	Title       string    `json:"title"`
	Prompt      string    `json:"prompt"`
	ConfirmText string    `json:"confirm_text"`
	Destructive bool      `json:"destructive"`
	CreatedAt   time.Time `json:"created_at"`
}

type pendingAction struct {
	Confirmation
	run func(ctx context.Context) (Notification, error)
}

// Confirmations holds the pending actions of one session. Registering an
// action never performs it; only Confirm does, at most once.
type Confirmations struct {
	mu    sync.Mutex
	items map[string]pendingAction
}

func NewConfirmations() *Confirmations {
	return &Confirmations{items: make(map[string]pendingAction)}
}

func (c *Confirmations) Register(conf Confirmation, run func(ctx context.Context) (Notification, error)) Confirmation {
	conf.ID = uuid.NewString()
	conf.CreatedAt = time.Now()

	c.mu.Lock()
	c.items[conf.ID] = pendingAction{Confirmation: conf, run: run}
	c.mu.Unlock()
	return conf
}

// Confirm removes the pending action and runs it. A second Confirm with the
// same id returns ErrConfirmationNotFound.
func (c *Confirmations) Confirm(ctx context.Context, id string) (Notification, error) {
	c.mu.Lock()
	p, ok := c.items[id]
	delete(c.items, id)
	c.mu.Unlock()
	if !ok {
		return Notification{}, ErrConfirmationNotFound
	}
	return p.run(ctx)
}

func (c *Confirmations) Cancel(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[id]; !ok {
		return ErrConfirmationNotFound
	}
	delete(c.items, id)
	return nil
}

// Clear drops every pending action without running it.
func (c *Confirmations) Clear() {
	c.mu.Lock()
	c.items = make(map[string]pendingAction)
	c.mu.Unlock()
}

func (c *Confirmations) Get(id string) (Confirmation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.items[id]
	return p.Confirmation, ok
}

// Pending lists the open confirmations, oldest first.
func (c *Confirmations) Pending() []Confirmation {
	c.mu.Lock()
	out := make([]Confirmation, 0, len(c.items))
	for _, p := range c.items {
		out = append(out, p.Confirmation)
	}
	c.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
