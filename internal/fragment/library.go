package fragment

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
)

// Module is implemented by every compiled-in fragment catalogue.
type Module interface {
	Register(lib *Library)
}

// Library holds the registered fragments for one application instance.
// Registration happens at startup; lookups are safe from many goroutines.
type Library struct {
	mu        sync.RWMutex
	fragments map[string]*Fragment
	logger    *slog.Logger
}

// Option configures a Library.
type Option func(*Library)

// WithLogger sets the logger registrations are reported to. Without it the
// library logs nothing.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Library) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLibrary creates an empty library.
func NewLibrary(opts ...Option) *Library {
	l := &Library{
		fragments: make(map[string]*Fragment),
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Register adds a compiled fragment. required is copied and de-duplicated.
func (l *Library) Register(name string, required []string, fn TemplateFunc) error {
	return l.add(&Fragment{name: name, required: dedupe(required), template: fn, source: SourceCompiled})
}

// MustRegister is Register for compiled-in catalogues, where a bad
// registration is a programming error.
func (l *Library) MustRegister(name string, required []string, fn TemplateFunc) {
	if err := l.Register(name, required, fn); err != nil {
		panic(err)
	}
}

func (l *Library) add(f *Fragment) error {
	if f.name == "" {
		return fmt.Errorf("fragment name must not be empty")
	}
	if f.template == nil {
		return fmt.Errorf("fragment %q: template must not be nil", f.name)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, ok := l.fragments[f.name]; ok {
		return fmt.Errorf("fragment %q from %s: %w (first registered from %s)", f.name, f.source, ErrDuplicateFragment, existing.source)
	}
	l.logger.Debug("Registering fragment.", "name", f.name, "required", f.required, "source", f.source)
	l.fragments[f.name] = f
	return nil
}

// Get returns the named fragment or an *UnknownFragmentError.
func (l *Library) Get(name string) (*Fragment, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	f, ok := l.fragments[name]
	if !ok {
		return nil, &UnknownFragmentError{Name: name}
	}
	return f, nil
}

// Has reports whether name is registered.
func (l *Library) Has(name string) bool {
	_, err := l.Get(name)
	return err == nil
}

// Names returns every registered name in sorted order.
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Sorted(maps.Keys(l.fragments))
}

// Fragments returns every registered fragment ordered by name.
func (l *Library) Fragments() []*Fragment {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*Fragment, 0, len(l.fragments))
	for _, name := range slices.Sorted(maps.Keys(l.fragments)) {
		out = append(out, l.fragments[name])
	}
	return out
}

// Len returns the number of registered fragments.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.fragments)
}
