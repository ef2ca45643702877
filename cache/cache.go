// Package cache provides the process-wide registry of parsed
// description files.
//
// Files are parsed at most once per name, on first request, behind a
// per-name initialization guard, and are immutable once published.
// The cache itself is the only shared mutable state; published files
// are safe for unlimited concurrent reads.
package cache

import (
	"fmt"
	"sync"

	"github.com/exiletools/statdesc/descfile"
	"github.com/exiletools/statdesc/merge"
	"github.com/exiletools/statdesc/quantifier"
)

// Source supplies the raw text of a description file by name. It is
// the adapter to whatever holds the files (an archive reader, the
// filesystem, a test fixture); the cache never does I/O itself.
type Source func(name string) (string, error)

// Option configures a Cache.
type Option func(*Cache)

// WithRegistry sets the quantifier registry files are parsed against.
// Hosts install data-dependent quantifiers into it before the first
// Get. Default is the built-in set.
func WithRegistry(reg *quantifier.Registry) Option {
	return func(c *Cache) { c.reg = reg }
}

// WithCustomOverlay merges the given description-file text into every
// file the cache loads. Overlay entries replace same-key entries of
// the loaded file. A malformed overlay surfaces on the first Get.
func WithCustomOverlay(text string) Option {
	return func(c *Cache) { c.overlayText = &text }
}

// Cache is a lazily-populated, immutable-after-build registry of
// parsed description files.
type Cache struct {
	src         Source
	reg         *quantifier.Registry
	overlayText *string
	overlay     *descfile.File
	overlayErr  error

	mu        sync.Mutex
	files     map[string]*entry
	custom    map[string]*descfile.File
	hardcoded map[string]*descfile.File
}

type entry struct {
	once sync.Once
	file *descfile.File
	err  error
}

// New creates a cache reading file text through src.
func New(src Source, opts ...Option) *Cache {
	c := &Cache{
		src:       src,
		reg:       quantifier.New(),
		files:     make(map[string]*entry),
		custom:    make(map[string]*descfile.File),
		hardcoded: make(map[string]*descfile.File),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.overlayText != nil {
		c.overlay, c.overlayErr = descfile.Parse(*c.overlayText, c.reg)
	}
	return c
}

// Get returns the parsed file for name, building it on first call.
// Concurrent first callers share a single parse. A parse failure is
// returned to every waiting caller and leaves nothing cached, so a
// later Get retries against the (possibly fixed) source.
func (c *Cache) Get(name string) (*descfile.File, error) {
	if c.overlayErr != nil {
		return nil, fmt.Errorf("custom overlay: %w", c.overlayErr)
	}

	c.mu.Lock()
	if f, ok := c.custom[name]; ok {
		c.mu.Unlock()
		return f, nil
	}
	e, ok := c.files[name]
	if !ok {
		e = &entry{}
		c.files[name] = e
	}
	c.mu.Unlock()

	e.once.Do(func() {
		e.file, e.err = c.build(name)
	})
	if e.err != nil {
		c.mu.Lock()
		// Drop the failed entry only if it is still the one we built,
		// so a concurrent retry is not discarded.
		if c.files[name] == e {
			delete(c.files, name)
		}
		c.mu.Unlock()
		return nil, e.err
	}
	return e.file, nil
}

func (c *Cache) build(name string) (*descfile.File, error) {
	text, err := c.src(name)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	f, err := descfile.Parse(text, c.reg)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	if c.overlay != nil {
		f = merge.Merge(f, c.overlay)
	}
	return f, nil
}

// SetCustom parses text and installs it as the store served for name,
// shadowing the source without touching already-cached entries.
func (c *Cache) SetCustom(name, text string) error {
	f, err := descfile.Parse(text, c.reg)
	if err != nil {
		return fmt.Errorf("parsing custom %s: %w", name, err)
	}
	c.mu.Lock()
	c.custom[name] = f
	c.mu.Unlock()
	return nil
}

// SetHardcoded parses text and installs it in the hardcoded namespace,
// a template set kept apart from files the source supplies.
func (c *Cache) SetHardcoded(name, text string) error {
	f, err := descfile.Parse(text, c.reg)
	if err != nil {
		return fmt.Errorf("parsing hardcoded %s: %w", name, err)
	}
	c.mu.Lock()
	c.hardcoded[name] = f
	c.mu.Unlock()
	return nil
}

// Hardcoded returns the hardcoded store installed under name.
func (c *Cache) Hardcoded(name string) (*descfile.File, error) {
	c.mu.Lock()
	f, ok := c.hardcoded[name]
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no hardcoded translation file %q", name)
	}
	return f, nil
}

// Reset drops every cached, custom and hardcoded entry. It exists for
// test isolation; production callers never evict.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.files = make(map[string]*entry)
	c.custom = make(map[string]*descfile.File)
	c.hardcoded = make(map[string]*descfile.File)
	c.mu.Unlock()
}
