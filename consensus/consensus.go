// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package consensus

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"strings"
	"sync"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/siemens/extip/source"
	"github.com/siemens/extip/types"
)

// Policy governs how the results of multiple sources are reduced to a single
// answer.
type Policy int

var _ pflag.Value = (*Policy)(nil)

// The resolution policies; the zero value is PolicyRandom.
const (
	// PolicyRandom tests the sources one by one in fresh random order until
	// there's one success and returns it as the result.
	PolicyRandom Policy = iota
	// PolicyAll queries all sources concurrently, ignores the sources
	// returning errors, and returns the address with the most replies as
	// the result.
	PolicyAll
	// PolicyFirst tests the sources one by one in configured order until
	// there's one success and returns it as the result.
	PolicyFirst
)

// String returns the clear-text representation of a Policy value.
func (p Policy) String() string {
	switch p {
	case PolicyRandom:
		return "random"
	case PolicyAll:
		return "all"
	case PolicyFirst:
		return "first"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// Set parses a policy name; it implements [github.com/spf13/pflag.Value] so
// a Policy can directly serve as a CLI flag.
func (p *Policy) Set(s string) error {
	switch strings.ToLower(s) {
	case "random":
		*p = PolicyRandom
	case "all":
		*p = PolicyAll
	case "first":
		*p = PolicyFirst
	default:
		return fmt.Errorf("unknown policy %q (expected all, first, or random)", s)
	}
	return nil
}

// Type returns the flag value type name.
func (p Policy) Type() string { return "policy" }

// Consensus aggregates the configured sources of external IP information
// under a resolution policy and an address family filter. A Consensus is
// immutable; build one using a [Builder] and then resolve as often as
// needed, each resolution being independent of the previous ones.
type Consensus struct {
	voters []source.Source
	policy Policy
	family source.Family
	log    *zap.Logger
	news   chan<- types.SourcedAddress
}

// Builder incrementally accumulates sources and settings and finally
// produces an immutable [Consensus].
type Builder struct {
	voters []source.Source
	policy Policy
	family source.Family
	log    *zap.Logger
	news   chan<- types.SourcedAddress
}

// NewBuilder returns an empty consensus builder, defaulting to
// [PolicyRandom], [source.FamilyAny], and no-op logging.
func NewBuilder() *Builder {
	return &Builder{
		log: zap.NewNop(),
	}
}

// AddSources appends sources to the builder; it can be called multiple
// times, accumulating across calls.
func (b *Builder) AddSources(sources ...source.Source) *Builder {
	b.voters = append(b.voters, sources...)
	return b
}

// WithPolicy sets the resolution policy.
func (b *Builder) WithPolicy(policy Policy) *Builder {
	b.policy = policy
	return b
}

// WithFamily sets the address family filter passed to every source query.
func (b *Builder) WithFamily(family source.Family) *Builder {
	b.family = family
	return b
}

// WithLogger sets the logger receiving per-source diagnostics during
// resolution.
func (b *Builder) WithLogger(log *zap.Logger) *Builder {
	b.log = log
	return b
}

// Notify registers a news channel receiving a [types.SourcedAddress] update
// whenever a source query starts, answers, or fails. Sends are abandoned
// when the resolution context gets cancelled, so a sluggish consumer cannot
// wedge a resolution beyond its cancellation.
func (b *Builder) Notify(news chan<- types.SourcedAddress) *Builder {
	b.news = news
	return b
}

// Build returns the configured immutable Consensus.
func (b *Builder) Build() *Consensus {
	voters := make([]source.Source, len(b.voters))
	copy(voters, b.voters)
	return &Consensus{
		voters: voters,
		policy: b.policy,
		family: b.family,
		log:    b.log,
		news:   b.news,
	}
}

// Resolve queries the configured sources according to the configured policy
// and returns the resulting external IP address, or nil if no source
// produced a usable answer. Per-source failures never propagate; they are
// logged and published on the news channel, and only the complete absence of
// any success yields nil.
//
// Under [PolicyAll], the address reported by the most sources wins; among
// addresses tied for the highest count, the one whose first successful
// answer came from the earliest configured source wins, making the outcome
// deterministic for a fixed source order.
func (c *Consensus) Resolve(ctx context.Context) net.IP {
	switch c.policy {
	case PolicyAll:
		return c.all(ctx)
	case PolicyFirst:
		return c.sequential(ctx, orderedIndices(len(c.voters)))
	default:
		return c.sequential(ctx, rand.Perm(len(c.voters)))
	}
}

// all queries every source concurrently, waits for all of them, and then
// tallies the successfully reported addresses by value.
func (c *Consensus) all(ctx context.Context) net.IP {
	answers := make([]net.IP, len(c.voters))
	var wg sync.WaitGroup
	for idx, voter := range c.voters {
		wg.Add(1)
		go func(idx int, voter source.Source) {
			defer wg.Done()
			answers[idx], _ = c.query(ctx, voter)
		}(idx, voter)
	}
	wg.Wait()

	type slot struct {
		ip    net.IP
		count int
		first int // index of the earliest source reporting this address
	}
	tally := map[string]*slot{}
	for idx, ip := range answers {
		if ip == nil {
			continue
		}
		key := ip.String()
		if s, ok := tally[key]; ok {
			s.count++
			continue
		}
		tally[key] = &slot{ip: ip, count: 1, first: idx}
	}
	var winner *slot
	for _, s := range tally {
		if winner == nil || s.count > winner.count ||
			(s.count == winner.count && s.first < winner.first) {
			winner = s
		}
	}
	if winner == nil {
		c.log.Debug("no source produced an answer")
		return nil
	}
	c.log.Debug("consensus reached",
		zap.String("ip", winner.ip.String()), zap.Int("votes", winner.count))
	return winner.ip
}

// sequential queries the sources one at a time in the specified index order,
// short-circuiting on the first success. Sources after the succeeding one
// are never queried.
func (c *Consensus) sequential(ctx context.Context, order []int) net.IP {
	for _, idx := range order {
		if ip, err := c.query(ctx, c.voters[idx]); err == nil {
			return ip
		}
	}
	c.log.Debug("tried all sources without success")
	return nil
}

// query runs a single source query, publishing its lifecycle on the news
// channel and logging its outcome.
func (c *Consensus) query(ctx context.Context, voter source.Source) (net.IP, error) {
	c.notify(ctx, voter.String(), "", types.Querying, nil)
	ip, err := voter.Query(ctx, c.family)
	if err != nil {
		c.log.Warn("source failed",
			zap.String("source", voter.String()), zap.Error(err))
		c.notify(ctx, voter.String(), "", types.Failed, err)
		return nil, err
	}
	c.log.Debug("source answered",
		zap.String("source", voter.String()), zap.String("ip", ip.String()))
	c.notify(ctx, voter.String(), ip.String(), types.Answered, nil)
	return ip, nil
}

// notify publishes a sourced address update, unless no news channel is
// registered. A blocked send is abandoned when the context gets cancelled.
func (c *Consensus) notify(ctx context.Context, origin, addr string, q types.Quality, err error) {
	if c.news == nil {
		return
	}
	update := &types.SourcedAddressValue{
		Origin:                origin,
		QualifiedAddressValue: types.NewQualifiedAddressValue(addr, q, err),
	}
	select {
	case c.news <- update:
	case <-ctx.Done():
	}
}

// orderedIndices returns 0..n-1 in configured order.
func orderedIndices(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}
