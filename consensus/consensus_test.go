// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package consensus

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/siemens/extip/source"
	"github.com/siemens/extip/types"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/onsi/gomega/gleak"
)

// fakeSource is a canned-answer source that counts its invocations and
// records the requested address families.
type fakeSource struct {
	name string
	ip   net.IP
	err  error

	mu       sync.Mutex
	calls    int
	families []source.Family
}

func (f *fakeSource) String() string { return f.name }

func (f *fakeSource) Query(_ context.Context, family source.Family) (net.IP, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.families = append(f.families, family)
	return f.ip, f.err
}

func (f *fakeSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeSource) Families() []source.Family {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]source.Family(nil), f.families...)
}

func answering(name string, ip string) *fakeSource {
	return &fakeSource{name: name, ip: net.ParseIP(ip)}
}

func failing(name string) *fakeSource {
	return &fakeSource{name: name, err: source.ErrNoRecord}
}

var _ = Describe("consensus resolution", func() {

	BeforeEach(func() {
		goodgos := Goroutines()
		DeferCleanup(func() {
			Eventually(Goroutines).WithTimeout(3 * time.Second).WithPolling(250 * time.Millisecond).
				ShouldNot(HaveLeaked(goodgos))
		})
	})

	It("returns the address of a lone successful source", func(ctx context.Context) {
		cns := NewBuilder().
			AddSources(answering("a", "203.0.113.1")).
			Build()
		Expect(cns.Resolve(ctx)).To(Equal(net.ParseIP("203.0.113.1")))
	})

	It("elects the unanimous address under the all policy", func(ctx context.Context) {
		cns := NewBuilder().
			AddSources(
				answering("a", "203.0.113.1"),
				answering("b", "203.0.113.1"),
				answering("c", "203.0.113.1")).
			WithPolicy(PolicyAll).
			Build()
		Expect(cns.Resolve(ctx)).To(Equal(net.ParseIP("203.0.113.1")))
	})

	It("elects the majority address under the all policy", func(ctx context.Context) {
		cns := NewBuilder().
			AddSources(
				answering("a", "203.0.113.1"),
				answering("b", "203.0.113.1"),
				answering("c", "203.0.113.2")).
			WithPolicy(PolicyAll).
			Build()
		Expect(cns.Resolve(ctx)).To(Equal(net.ParseIP("203.0.113.1")))
	})

	It("breaks vote ties in favor of the earliest answering source", func(ctx context.Context) {
		// Both addresses collect two votes each; the tie goes to the address
		// first reported by the earliest configured source.
		cns := NewBuilder().
			AddSources(
				answering("a", "203.0.113.2"),
				answering("b", "203.0.113.1"),
				answering("c", "203.0.113.1"),
				answering("d", "203.0.113.2")).
			WithPolicy(PolicyAll).
			Build()
		for i := 0; i < 10; i++ {
			Expect(cns.Resolve(ctx)).To(Equal(net.ParseIP("203.0.113.2")))
		}
	})

	It("ignores failing sources under the all policy", func(ctx context.Context) {
		cns := NewBuilder().
			AddSources(answering("a", "203.0.113.1"), failing("b")).
			WithPolicy(PolicyAll).
			Build()
		Expect(cns.Resolve(ctx)).To(Equal(net.ParseIP("203.0.113.1")))
	})

	It("answers nil under every policy when all sources fail", func(ctx context.Context) {
		for _, policy := range []Policy{PolicyAll, PolicyFirst, PolicyRandom} {
			cns := NewBuilder().
				AddSources(failing("a"), failing("b")).
				WithPolicy(policy).
				Build()
			Expect(cns.Resolve(ctx)).To(BeNil(), "policy %s", policy)
		}
	})

	It("answers nil when no sources are configured", func(ctx context.Context) {
		for _, policy := range []Policy{PolicyAll, PolicyFirst, PolicyRandom} {
			Expect(NewBuilder().WithPolicy(policy).Build().Resolve(ctx)).To(
				BeNil(), "policy %s", policy)
		}
	})

	It("walks sources in order and short-circuits under the first policy", func(ctx context.Context) {
		fail := failing("a")
		answer := answering("b", "203.0.113.1")
		untouched := answering("c", "203.0.113.2")
		cns := NewBuilder().
			AddSources(fail, answer, untouched).
			WithPolicy(PolicyFirst).
			Build()
		Expect(cns.Resolve(ctx)).To(Equal(net.ParseIP("203.0.113.1")))
		Expect(fail.Calls()).To(Equal(1))
		Expect(answer.Calls()).To(Equal(1))
		Expect(untouched.Calls()).To(BeZero())
	})

	It("shuffles the traversal order afresh under the random policy", func(ctx context.Context) {
		a := answering("a", "203.0.113.1")
		b := answering("b", "203.0.113.2")
		cns := NewBuilder().
			AddSources(a, b).
			WithPolicy(PolicyRandom).
			Build()
		const trials = 100
		seen := map[string]int{}
		for i := 0; i < trials; i++ {
			ip := cns.Resolve(ctx)
			Expect(ip).NotTo(BeNil())
			seen[ip.String()]++
		}
		// Exactly one source gets queried per resolution, as both always
		// succeed.
		Expect(a.Calls() + b.Calls()).To(Equal(trials))
		Expect(seen).To(HaveKey("203.0.113.1"))
		Expect(seen).To(HaveKey("203.0.113.2"))
	})

	It("passes the configured family filter to every source", func(ctx context.Context) {
		a := answering("a", "203.0.113.1")
		b := answering("b", "203.0.113.1")
		cns := NewBuilder().
			AddSources(a, b).
			WithPolicy(PolicyAll).
			WithFamily(source.FamilyIPv4).
			Build()
		Expect(cns.Resolve(ctx)).NotTo(BeNil())
		Expect(a.Families()).To(ConsistOf(source.FamilyIPv4))
		Expect(b.Families()).To(ConsistOf(source.FamilyIPv4))
	})

	It("accumulates sources across multiple builder calls", func(ctx context.Context) {
		a := failing("a")
		b := answering("b", "203.0.113.1")
		c := answering("c", "203.0.113.1")
		cns := NewBuilder().
			AddSources(a).
			AddSources(b, c).
			WithPolicy(PolicyAll).
			Build()
		Expect(cns.Resolve(ctx)).To(Equal(net.ParseIP("203.0.113.1")))
		// All accumulated sources took part in the vote.
		Expect(a.Calls()).To(Equal(1))
		Expect(b.Calls()).To(Equal(1))
		Expect(c.Calls()).To(Equal(1))
	})

	It("resolves repeatedly and independently on the same consensus", func(ctx context.Context) {
		a := answering("a", "203.0.113.1")
		cns := NewBuilder().AddSources(a).WithPolicy(PolicyAll).Build()
		Expect(cns.Resolve(ctx)).To(Equal(net.ParseIP("203.0.113.1")))
		Expect(cns.Resolve(ctx)).To(Equal(net.ParseIP("203.0.113.1")))
		Expect(a.Calls()).To(Equal(2))
	})

	It("parses policy flag values", func() {
		var p Policy
		Expect(p.Set("all")).To(Succeed())
		Expect(p).To(Equal(PolicyAll))
		Expect(p.Set("first")).To(Succeed())
		Expect(p).To(Equal(PolicyFirst))
		Expect(p.Set("random")).To(Succeed())
		Expect(p).To(Equal(PolicyRandom))
		Expect(p.Set("by-decree")).NotTo(Succeed())
		Expect(p.Type()).To(Equal("policy"))
		Expect(PolicyAll.String()).To(Equal("all"))
	})

	It("publishes the query lifecycle on the news channel", func(ctx context.Context) {
		news := make(chan types.SourcedAddress, 8)
		cns := NewBuilder().
			AddSources(answering("a", "203.0.113.1"), failing("b")).
			WithPolicy(PolicyFirst).
			Notify(news).
			Build()
		Expect(cns.Resolve(ctx)).NotTo(BeNil())
		close(news)

		updates := map[string][]types.Quality{}
		for update := range news {
			updates[update.Source()] = append(updates[update.Source()], update.Qual())
		}
		Expect(updates).To(HaveKeyWithValue("a",
			[]types.Quality{types.Querying, types.Answered}))
		Expect(updates).NotTo(HaveKey("b")) // never reached after the success
	})

})
