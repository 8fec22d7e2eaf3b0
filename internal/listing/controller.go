package listing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"storefront_gateway/internal/clients"
	"storefront_gateway/internal/domain"
)

const DefaultDebounce = 500 * time.Millisecond

var (
	ErrReadOnly     = errors.New("screen does not support this action")
	ErrItemNotFound = errors.New("item is not on the displayed page")
)

// Subject is how prompts and notifications refer to one item.
type Subject struct {
	ID   int64
	Noun string
	// Ref names the item inside a sentence, e.g. `order #12`.
	Ref string
	// Display names the item at the start of a sentence, e.g. `Order #12`.
	Display string
}

// Adapter connects a Controller to one API resource.
type Adapter[T any] interface {
	List(ctx context.Context, params *domain.ListParams) (*domain.PaginatedResponse[T], error)
	Delete(ctx context.Context, id int64) (string, error)
	Describe(item T) Subject
}

// Action is a confirm-then-execute operation on one displayed item.
type Action[T any] struct {
	Title       string
	ConfirmText string
	Destructive bool
	Prompt      func(s Subject) string
	Run         func(ctx context.Context, item T) (string, error)
	Success     func(s Subject) string
	Failure     string
}

// Screen is the type-erased view of a Controller used by HTTP handlers.
type Screen interface {
	Name() string
	Loaded() bool
	Load(ctx context.Context, page int) error
	Reload(ctx context.Context) error
	SetFilter(ctx context.Context, field, value string) <-chan error
	ClearFilters(ctx context.Context) error
	Params(page int) *domain.ListParams
	RequestDelete(id int64) (Confirmation, error)
	DismissNotification()
	Snapshot() any
}

// View is an immutable snapshot of a list screen.
type View[T any] struct {
	Screen        string                 `json:"screen"`
	Items         []T                    `json:"items"`
	Meta          *domain.PaginationMeta `json:"meta"`
	Filters       map[string]string      `json:"filters"`
	Query         string                 `json:"query"`
	Loading       bool                   `json:"loading"`
	SearchPending bool                   `json:"search_pending"`
	Error         string                 `json:"error,omitempty"`
	Notification  *Notification          `json:"notification,omitempty"`
}

type Options struct {
	Debounce time.Duration
	Logger   *logrus.Logger
}

// Controller drives one filtered, paginated list screen. Loads are numbered;
// a response that arrives after a newer load was issued is dropped.
type Controller[T any] struct {
	cfg      Config
	adapter  Adapter[T]
	confirms *Confirmations
	debounce *debouncer
	log      *logrus.Entry

	mu          sync.Mutex
	values      map[string]string
	result      *domain.PaginatedResponse[T]
	loadedWith  *domain.ListParams
	currentPage int
	loading     bool
	gen         uint64
	errMsg      string
	notice      *Notification
}

func NewController[T any](cfg Config, adapter Adapter[T], confirms *Confirmations, opts Options) *Controller[T] {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	if cfg.LoadFailure == "" {
		cfg.LoadFailure = fmt.Sprintf("Failed to load %s. Please try again.", strings.ReplaceAll(cfg.Name, "-", " "))
	}
	return &Controller[T]{
		cfg:         cfg,
		adapter:     adapter,
		confirms:    confirms,
		debounce:    newDebouncer(opts.Debounce),
		log:         logger.WithField("screen", cfg.Name),
		values:      cfg.defaults(),
		currentPage: 1,
	}
}

func (c *Controller[T]) Name() string {
	return c.cfg.Name
}

func (c *Controller[T]) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result != nil || c.gen > 0
}

// Params returns the query the next load of page would send.
func (c *Controller[T]) Params(page int) *domain.ListParams {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.Params(c.values, page)
}

// Load fetches page with the current filters. On failure the previously
// displayed page is kept and a user-facing message is set.
func (c *Controller[T]) Load(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}
	c.mu.Lock()
	c.gen++
	gen := c.gen
	params := c.cfg.Params(c.values, page)
	c.loading = true
	c.mu.Unlock()

	c.log.Debugf("Loading page %d: %s", page, params.Encode())
	resp, err := c.adapter.List(ctx, params)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		c.log.Debugf("Dropping stale response for %s", params.Encode())
		return nil
	}
	c.loading = false
	if err != nil {
		c.errMsg = clients.UserMessage(err, c.cfg.LoadFailure)
		c.log.Warnf("Load failed: %v", err)
		return fmt.Errorf("failed to load %s: %w", c.cfg.Name, err)
	}
	resp.Normalize()
	c.result = resp
	c.loadedWith = params
	c.currentPage = resp.Meta.CurrentPage
	c.errMsg = ""
	return nil
}

// Reload fetches the current page again. When the page no longer exists,
// for example after deleting its last item, the last page is loaded instead.
func (c *Controller[T]) Reload(ctx context.Context) error {
	c.mu.Lock()
	page := c.currentPage
	c.mu.Unlock()

	if err := c.Load(ctx, page); err != nil {
		return err
	}

	c.mu.Lock()
	last := 1
	empty := true
	if c.result != nil {
		last = c.result.Meta.LastPage
		empty = len(c.result.Data) == 0
	}
	c.mu.Unlock()
	if empty && page > last {
		return c.Load(ctx, last)
	}
	return nil
}

// SetFilter stores the value and reloads page 1. Search fields reload after
// the debounce delay; a newer search change cancels the pending one, whose
// channel then receives ErrCanceled. Invalid input is rejected without a
// request.
func (c *Controller[T]) SetFilter(ctx context.Context, name, value string) <-chan error {
	f, ok := c.cfg.field(name)
	if !ok {
		return done(&FilterError{Field: name, Value: value, Reason: "unknown field"})
	}
	v, err := f.Normalize(value)
	if err != nil {
		return done(err)
	}

	c.mu.Lock()
	c.values[name] = v
	c.mu.Unlock()

	if f.Kind == FieldSearch {
		detached := context.WithoutCancel(ctx)
		return c.debounce.Schedule(func() error {
			return c.Load(detached, 1)
		})
	}
	return done(c.Load(ctx, 1))
}

// ClearFilters resets every field to its default and loads page 1.
func (c *Controller[T]) ClearFilters(ctx context.Context) error {
	c.debounce.Cancel()
	c.mu.Lock()
	c.values = c.cfg.defaults()
	c.mu.Unlock()
	return c.Load(ctx, 1)
}

func (c *Controller[T]) RequestDelete(id int64) (Confirmation, error) {
	if c.cfg.ReadOnly {
		return Confirmation{}, ErrReadOnly
	}
	return c.RequestAction(id, Action[T]{
		Title:       "Delete " + title(c.nounFor(id)),
		ConfirmText: "Delete",
		Destructive: true,
		Prompt: func(s Subject) string {
			return fmt.Sprintf("Are you sure you want to delete %s? This action cannot be undone.", s.Ref)
		},
		Run: func(ctx context.Context, _ T) (string, error) {
			return c.adapter.Delete(ctx, id)
		},
		Success: func(s Subject) string {
			return fmt.Sprintf("%s has been deleted successfully.", s.Display)
		},
		Failure: fmt.Sprintf("Failed to delete %s. Please try again.", c.nounFor(id)),
	})
}

// RequestAction registers a confirmation for an item on the displayed page.
// Nothing is sent to the API until the confirmation is accepted.
func (c *Controller[T]) RequestAction(id int64, action Action[T]) (Confirmation, error) {
	item, ok := c.item(id)
	if !ok {
		return Confirmation{}, ErrItemNotFound
	}
	subject := c.adapter.Describe(item)

	conf := Confirmation{
		Screen:      c.cfg.Name,
		Title:       action.Title,
		Prompt:      action.Prompt(subject),
		ConfirmText: action.ConfirmText,
		Destructive: action.Destructive,
	}
	return c.confirms.Register(conf, func(ctx context.Context) (Notification, error) {
		msg, err := action.Run(ctx, item)
		if err != nil {
			n := Notification{Kind: NotifyError, Title: "Error", Message: clients.UserMessage(err, action.Failure)}
			c.setNotice(n)
			c.log.Warnf("%s on %s failed: %v", action.Title, subject.Ref, err)
			return n, err
		}
		if action.Success != nil {
			msg = action.Success(subject)
		}
		n := Notification{Kind: NotifySuccess, Title: "Success", Message: msg}
		c.setNotice(n)
		c.log.Infof("%s on %s done", action.Title, subject.Ref)
		if err := c.Reload(ctx); err != nil {
			c.log.Warnf("Reload after %s failed: %v", action.Title, err)
		}
		return n, nil
	}), nil
}

func (c *Controller[T]) item(id int64) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	if c.result == nil {
		return zero, false
	}
	for _, it := range c.result.Data {
		if c.adapter.Describe(it).ID == id {
			return it, true
		}
	}
	return zero, false
}

func (c *Controller[T]) nounFor(id int64) string {
	if it, ok := c.item(id); ok {
		if n := c.adapter.Describe(it).Noun; n != "" {
			return n
		}
	}
	return "item"
}

func (c *Controller[T]) setNotice(n Notification) {
	c.mu.Lock()
	c.notice = &n
	c.mu.Unlock()
}

func (c *Controller[T]) DismissNotification() {
	c.mu.Lock()
	c.notice = nil
	c.mu.Unlock()
}

func (c *Controller[T]) View() View[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View[T]{
		Screen:        c.cfg.Name,
		Items:         []T{},
		Filters:       maps.Clone(c.values),
		Loading:       c.loading,
		SearchPending: c.debounce.Pending(),
		Error:         c.errMsg,
	}
	if c.result != nil {
		v.Items = append(v.Items, c.result.Data...)
		meta := c.result.Meta
		v.Meta = &meta
	}
	if c.loadedWith != nil {
		v.Query = c.loadedWith.Encode()
	}
	if c.notice != nil {
		n := *c.notice
		v.Notification = &n
	}
	return v
}

func (c *Controller[T]) Snapshot() any {
	return c.View()
}

func done(err error) <-chan error {
	ch := make(chan error, 1)
	ch <- err
	return ch
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
