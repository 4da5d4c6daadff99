// Package netpolicy decides whether the panel may use the network.
package netpolicy

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"placepage/internal/domain"
)

// Static answers every check the same way, synchronously.
type Static struct{ Allowed bool }

func (s Static) Check(done func(domain.Policy)) { done(domain.Policy{NetworkAllowed: s.Allowed}) }

// Prompter parks checks until the user answers. A remembered answer
// resolves later checks at once.
type Prompter struct {
	mu         sync.Mutex
	pending    []func(domain.Policy)
	remembered *bool
}

func NewPrompter() *Prompter { return &Prompter{} }

func (p *Prompter) Check(done func(domain.Policy)) {
	p.mu.Lock()
	if p.remembered != nil {
		allowed := *p.remembered
		p.mu.Unlock()
		done(domain.Policy{NetworkAllowed: allowed})
		return
	}
	p.pending = append(p.pending, done)
	n := len(p.pending)
	p.mu.Unlock()
	log.Debug().Int("pending", n).Msg("network policy: waiting for user")
}

// Resolve answers every parked check. With remember set the answer also
// applies to future checks.
func (p *Prompter) Resolve(allowed, remember bool) int {
	p.mu.Lock()
	q := p.pending
	p.pending = nil
	if remember {
		p.remembered = &allowed
	}
	p.mu.Unlock()
	for _, done := range q {
		done(domain.Policy{NetworkAllowed: allowed})
	}
	return len(q)
}

func (p *Prompter) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// FromMode builds the policy named by NETWORK_POLICY: always, never or ask.
func FromMode(mode string) (domain.NetworkPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "always":
		return Static{Allowed: true}, nil
	case "never":
		return Static{Allowed: false}, nil
	case "ask":
		return NewPrompter(), nil
	}
	return nil, fmt.Errorf("unknown network policy %q", mode)
}

// Connectivity is a flag flipped by the platform; safe for concurrent use.
type Connectivity struct{ up atomic.Bool }

func NewConnectivity(up bool) *Connectivity {
	c := &Connectivity{}
	c.up.Store(up)
	return c
}

func (c *Connectivity) IsConnected() bool { return c.up.Load() }

func (c *Connectivity) Set(up bool) { c.up.Store(up) }

// Navigation tracks the routing state the panel reads.
type Navigation struct{ navigating, planning atomic.Bool }

func (n *Navigation) IsNavigating() bool { return n.navigating.Load() }

func (n *Navigation) IsPlanning() bool { return n.planning.Load() }

func (n *Navigation) Set(navigating, planning bool) {
	n.navigating.Store(navigating)
	n.planning.Store(planning)
}
