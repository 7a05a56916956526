package internal

import (
	"fmt"
	"slices"
	"sync"

	"github.com/dmitrymomot/argos/pkg/pathpattern"
)

// Supported HTTP methods for route registration.
var supportedMethods = []string{
	"GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS", "PATCH", "TRACE", "CONNECT",
}

// IsValidMethod reports whether m is a supported method. Comparison is exact.
func IsValidMethod(m string) bool {
	return slices.Contains(supportedMethods, m)
}

// RouteEntry is a registered route. It is immutable after registration.
type RouteEntry struct {
	Handler RouteHandler
	Method  string
	Pattern pathpattern.Pattern
	Mode    Mode
}

// FilterEntry is a registered filter. It is immutable after registration.
type FilterEntry struct {
	Predicate Predicate
	Handler   FilterHandler
	Name      string
	Order     int
	Blocking  bool
}

// FilterOption configures a FilterEntry at registration.
type FilterOption func(*FilterEntry)

// WithFilterName names the filter for logs and metrics.
func WithFilterName(name string) FilterOption {
	return func(f *FilterEntry) {
		f.Name = name
	}
}

// WithBlocking marks a filter as doing blocking work. Blocking filters run on
// the server's bounded offload pool; the chain still waits for the decision.
func WithBlocking() FilterOption {
	return func(f *FilterEntry) {
		f.Blocking = true
	}
}

// Registry holds routes and filters during the startup phase.
// All methods are safe for concurrent use. Once Freeze is called the registry
// rejects further registrations and serving reads the lock-free Table.
type Registry struct {
	table   *Table
	routes  []RouteEntry
	filters []FilterEntry
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry used by the package-level
// registration helpers.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// RegisterRoute appends a route. Routes are resolved in registration order.
func (r *Registry) RegisterRoute(method, template string, mode Mode, h RouteHandler) error {
	if !IsValidMethod(method) {
		return fmt.Errorf("%w: %q", ErrInvalidMethod, method)
	}
	if !mode.valid() {
		return fmt.Errorf("%w: %d", ErrUnknownMode, mode)
	}
	if h == nil {
		return fmt.Errorf("%w: route %s %s", ErrNilHandler, method, template)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.table != nil {
		return ErrRegistryFrozen
	}
	r.routes = append(r.routes, RouteEntry{
		Method:  method,
		Pattern: pathpattern.Compile(template),
		Mode:    mode,
		Handler: h,
	})
	return nil
}

// RegisterFilter inserts a filter keeping the sequence sorted by ascending
// order; filters with equal order keep their registration order.
func (r *Registry) RegisterFilter(pred Predicate, order int, h FilterHandler, opts ...FilterOption) error {
	if pred == nil {
		return fmt.Errorf("%w: nil predicate", ErrInvalidPredicate)
	}
	if order < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidOrder, order)
	}
	if h == nil {
		return fmt.Errorf("%w: filter %s=%s", ErrNilHandler, pred.Kind(), pred.String())
	}

	entry := FilterEntry{Predicate: pred, Order: order, Handler: h}
	for _, opt := range opts {
		opt(&entry)
	}
	if entry.Name == "" {
		entry.Name = pred.Kind() + "=" + pred.String()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.table != nil {
		return ErrRegistryFrozen
	}
	// Insert after the last filter whose order is <= the new one.
	idx := len(r.filters)
	for idx > 0 && r.filters[idx-1].Order > order {
		idx--
	}
	r.filters = slices.Insert(r.filters, idx, entry)
	return nil
}

// Routes returns a copy of the routes in registration order.
func (r *Registry) Routes() []RouteEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.routes)
}

// Filters returns a copy of the filters sorted by ascending order.
func (r *Registry) Filters() []FilterEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.filters)
}

// Freeze ends the registration phase and returns the immutable snapshot.
// Calling Freeze again returns the same Table.
func (r *Registry) Freeze() *Table {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.table == nil {
		r.table = &Table{
			routes:  slices.Clone(r.routes),
			filters: slices.Clone(r.filters),
		}
	}
	return r.table
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.table != nil
}

// Table is a read-only snapshot of a frozen Registry, shared by reference
// across all serving goroutines without locking.
type Table struct {
	routes  []RouteEntry
	filters []FilterEntry
}

// Routes returns the routes in registration order. Callers must not modify
// the returned slice.
func (t *Table) Routes() []RouteEntry {
	return t.routes
}

// Filters returns the filters sorted by ascending order. Callers must not
// modify the returned slice.
func (t *Table) Filters() []FilterEntry {
	return t.filters
}
