// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package catalog

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gogpu/shaderwall"
	"github.com/gogpu/shaderwall/effect"
)

// Source is one effect source unit.
type Source struct {
	// Ref identifies the source, typically its path.
	Ref string

	// Text is the complete source.
	Text string
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the catalog logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Catalog) { c.log = l }
}

// WithPlatformVersion skips effects whose minimum platform version is
// above v. An empty v accepts every effect.
func WithPlatformVersion(v string) Option {
	return func(c *Catalog) { c.platform = v }
}

// WithDebounce sets how long Watch waits for file events to settle before
// re-discovering.
func WithDebounce(d time.Duration) Option {
	return func(c *Catalog) { c.debounce = d }
}

// Catalog holds the current snapshot. It is safe for concurrent use.
type Catalog struct {
	log      *slog.Logger
	platform string
	debounce time.Duration

	current atomic.Pointer[Snapshot]
}

// New creates a catalog with an empty snapshot.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		log:      shaderwall.Logger(),
		debounce: 150 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.current.Store(&Snapshot{index: map[string]int{}})
	return c
}

// Discover parses and validates every source, publishes the resulting
// snapshot and returns it. Invalid sources are logged and skipped. When
// two sources declare the same id the later one wins.
func (c *Catalog) Discover(sources []Source) *Snapshot {
	snap := &Snapshot{index: make(map[string]int, len(sources))}

	for _, src := range sources {
		d, err := c.load(src)
		if err != nil {
			c.log.Warn("catalog: skipping effect source", "ref", src.Ref, "err", err)
			snap.failures = append(snap.failures, Failure{Ref: src.Ref, Err: err})
			continue
		}
		c.checkDefaults(d)
		e := entry{desc: d, source: src.Text}
		if i, dup := snap.index[d.ID]; dup {
			c.log.Warn("catalog: duplicate effect id, later source wins",
				"id", d.ID, "previous", snap.entries[i].desc.SourceRef, "ref", src.Ref)
			snap.entries[i] = e
			continue
		}
		snap.index[d.ID] = len(snap.entries)
		snap.entries = append(snap.entries, e)
	}

	c.current.Store(snap)
	c.log.Info("catalog: published", "effects", len(snap.entries), "skipped", len(snap.failures))
	return snap
}

func (c *Catalog) load(src Source) (*effect.Descriptor, error) {
	d, err := effect.Parse(src.Text, src.Ref)
	if err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if !d.SupportsPlatform(c.platform) {
		return nil, &effect.ValidationError{
			ID:       d.ID,
			Problems: []string{fmt.Sprintf("requires platform %s, have %s", d.MinPlatformVersion, c.platform)},
		}
	}
	return d, nil
}

// checkDefaults warns about colour and vector defaults that will not
// decode. The effect stays usable; those parameters are left unset.
func (c *Catalog) checkDefaults(d *effect.Descriptor) {
	for i := range d.Parameters {
		p := &d.Parameters[i]
		if _, err := p.Floats(p.Default); err != nil {
			c.log.Warn("catalog: parameter default does not decode",
				"id", d.ID, "param", p.ID, "default", p.Default, "err", err)
		}
	}
}

// Snapshot returns the current snapshot.
func (c *Catalog) Snapshot() *Snapshot {
	return c.current.Load()
}

// Get returns the descriptor for id from the current snapshot.
func (c *Catalog) Get(id string) (*effect.Descriptor, bool) {
	return c.Snapshot().Get(id)
}

// All returns every descriptor of the current snapshot in discovery order.
func (c *Catalog) All() []*effect.Descriptor {
	return c.Snapshot().All()
}
