package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultName is the name of the primary handle.
	DefaultName = "[DEFAULT]"
	// SecondaryName is tried when the primary handle already exists.
	SecondaryName = "secondary"
)

// ErrDuplicateHandle is returned by Open when a handle name is taken.
var ErrDuplicateHandle = errors.New("store handle already exists")

// Opener dials a backend from static configuration.
type Opener func(ctx context.Context) (Backend, error)

// Registry owns the process's store handles. It is created at startup,
// passed to whoever needs a handle and closed at shutdown.
type Registry struct {
	loc *time.Location
	log logrus.FieldLogger

	mu      sync.Mutex
	clients map[string]*Client
	order   []string
}

func NewRegistry(loc *time.Location, log logrus.FieldLogger) *Registry {
	return &Registry{
		loc:     loc,
		log:     log,
		clients: make(map[string]*Client),
	}
}

// Open creates a handle under name. It fails with ErrDuplicateHandle when
// the name is already registered.
func (r *Registry) Open(ctx context.Context, name string, open Opener) (*Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[name]; ok {
		return nil, fmt.Errorf("open %q: %w", name, ErrDuplicateHandle)
	}
	backend, err := open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", name, err)
	}
	client := NewClient(name, backend, r.loc, r.log)
	r.clients[name] = client
	r.order = append(r.order, name)
	return client, nil
}

// Get returns a registered handle.
func (r *Registry) Get(name string) (*Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	client, ok := r.clients[name]
	return client, ok
}

// Initialize opens the default handle. When it already exists a secondary
// handle is attempted, and failing that the default is reused. Any other
// failure is logged and yields nil.
func (r *Registry) Initialize(ctx context.Context, open Opener) *Client {
	client, err := r.Open(ctx, DefaultName, open)
	if err == nil {
		return client
	}
	if !errors.Is(err, ErrDuplicateHandle) {
		r.log.WithError(err).Error("initialize store")
		return nil
	}

	client, err = r.Open(ctx, SecondaryName, open)
	if err == nil {
		return client
	}
	if errors.Is(err, ErrDuplicateHandle) {
		existing, _ := r.Get(DefaultName)
		return existing
	}
	r.log.WithError(err).Error("initialize secondary store")
	return nil
}

// Close closes every handle in reverse order of creation.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []error
	for i := len(r.order) - 1; i >= 0; i-- {
		name := r.order[i]
		if err := r.clients[name].Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %q: %w", name, err))
		}
		delete(r.clients, name)
	}
	r.order = nil
	return errors.Join(errs...)
}
