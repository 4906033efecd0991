// Package usecasetest provides in-memory collaborators for use case tests.
package usecasetest

import (
	"context"
	"sync"
	"time"

	"github.com/fastygo/storecore/domain"
	"github.com/fastygo/storecore/internal/engine"
)

// Catalog serves a fixed snapshot.
type Catalog struct {
	Snapshot *domain.Snapshot
}

// NewCatalog builds a fresh snapshot from products.
func NewCatalog(products ...domain.Product) *Catalog {
	return &Catalog{Snapshot: domain.NewSnapshot(products, time.Now(), time.Hour)}
}

func (c *Catalog) Get(context.Context) *domain.Snapshot {
	if c.Snapshot == nil {
		return domain.EmptySnapshot(time.Hour)
	}
	return c.Snapshot
}

// Product builds a minimal normalized product.
func Product(id domain.ProductID, title string) domain.Product {
	return domain.Product{
		ID:       id,
		Title:    title,
		Brand:    "Unknown",
		Category: "misc",
		Images:   []string{},
		Tags:     []string{"misc"},
	}
}

// Users is a map-backed repository.UserRepository keyed by email.
type Users struct {
	mu    sync.Mutex
	byKey map[string]*domain.User
	Err   error
}

func NewUsers(users ...domain.User) *Users {
	u := &Users{byKey: make(map[string]*domain.User)}
	for i := range users {
		user := users[i]
		u.byKey[user.Email] = &user
	}
	return u
}

func (u *Users) GetByUserID(_ context.Context, userID string) (*domain.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return nil, u.Err
	}
	for _, user := range u.byKey {
		if user.UserID != "" && user.UserID == userID {
			copied := *user
			return &copied, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (u *Users) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return nil, u.Err
	}
	user, ok := u.byKey[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (u *Users) Create(_ context.Context, user *domain.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return u.Err
	}
	if _, ok := u.byKey[user.Email]; ok {
		return domain.ErrEmailTaken
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	copied := *user
	u.byKey[user.Email] = &copied
	return nil
}

func (u *Users) SetUserID(_ context.Context, email, userID string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return u.Err
	}
	user, ok := u.byKey[email]
	if !ok || user.UserID != "" {
		return domain.ErrUserNotFound
	}
	user.UserID = userID
	return nil
}

// Transactions is a slice-backed repository.TransactionRepository.
type Transactions struct {
	mu        sync.Mutex
	Items     []domain.Transaction
	ReadErr   error
	AppendErr error
}

func (t *Transactions) Append(_ context.Context, tx *domain.Transaction) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.AppendErr != nil {
		return t.AppendErr
	}
	t.Items = append(t.Items, *tx)
	return nil
}

func (t *Transactions) All(context.Context) ([]domain.Transaction, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ReadErr != nil {
		return nil, t.ReadErr
	}
	return append([]domain.Transaction{}, t.Items...), nil
}

func (t *Transactions) ByUser(_ context.Context, userID string) ([]domain.Transaction, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ReadErr != nil {
		return nil, t.ReadErr
	}
	out := []domain.Transaction{}
	for _, tx := range t.Items {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out, nil
}

// Call records one engine invocation.
type Call struct {
	Engine  string
	Args    []string
	Payload []byte
}

// Engines dispatches to in-process functions through a real engine
// registry and records every call.
type Engines struct {
	mu         sync.Mutex
	Calls      []Call
	dispatcher *engine.Dispatcher
}

func NewEngines(funcs map[string]engine.Func) *Engines {
	registry := engine.NewRegistry()
	for name, fn := range funcs {
		registry.Register(name, fn)
	}
	return &Engines{dispatcher: engine.NewDispatcher(registry, engine.Config{}, nil)}
}

func (e *Engines) Invoke(ctx context.Context, name string, args []string, payload []byte) (engine.Document, error) {
	e.mu.Lock()
	e.Calls = append(e.Calls, Call{Engine: name, Args: args, Payload: payload})
	e.mu.Unlock()
	return e.dispatcher.Invoke(ctx, name, args, payload)
}

// Count returns how many times the engine was invoked.
func (e *Engines) Count(name string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, c := range e.Calls {
		if c.Engine == name {
			n++
		}
	}
	return n
}

// Reply returns an engine that always prints body.
func Reply(body string) engine.Func {
	return func(context.Context, []string, []byte) ([]byte, error) {
		return []byte(body), nil
	}
}

// Crash returns an engine that always exits non-zero.
func Crash() engine.Func {
	return func(context.Context, []string, []byte) ([]byte, error) {
		return nil, &engine.Error{Kind: engine.KindExit, Code: 1, Stderr: "segfault"}
	}
}
