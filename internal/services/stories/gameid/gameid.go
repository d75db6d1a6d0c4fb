// Package gameid generates game ids of the form
// {installation}_{yyyymmdd}_{hhmm}_{n}.
package gameid

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
)

// MaxSuffix is the largest random suffix.
const MaxSuffix = 9999

// Generator hands out unique game ids. It is safe for concurrent use.
type Generator struct {
	mu           sync.Mutex
	installation string
	now          func() time.Time
	rng          *rand.Rand
	issued       map[string]struct{}
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithRand overrides the suffix source.
func WithRand(rng *rand.Rand) Option {
	return func(g *Generator) { g.rng = rng }
}

// New returns a generator for installation.
func New(installation string, seed int64, opts ...Option) (*Generator, error) {
	installation = strings.TrimSpace(installation)
	if installation == "" {
		return nil, errors.New("installation id is required")
	}
	if strings.ContainsAny(installation, "_ /") {
		return nil, fmt.Errorf("installation id %q must not contain '_', '/' or spaces", installation)
	}
	g := &Generator{
		installation: installation,
		now:          time.Now,
		rng:          rand.New(rand.NewSource(seed)),
		issued:       make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Reserve marks an existing id as taken, used after loading stored games.
func (g *Generator) Reserve(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.issued[id] = struct{}{}
}

// Next returns a new id. It fails only when every suffix for the current
// minute has been issued.
func (g *Generator) Next() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	stamp := g.now().UTC().Format("20060102_1504")
	start := g.rng.Intn(MaxSuffix) + 1
	for i := 0; i < MaxSuffix; i++ {
		n := (start+i-1)%MaxSuffix + 1
		id := fmt.Sprintf("%s_%s_%d", g.installation, stamp, n)
		if _, taken := g.issued[id]; taken {
			continue
		}
		g.issued[id] = struct{}{}
		return id, nil
	}
	return "", fmt.Errorf("no game ids left for %s", stamp)
}
