// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package source

import (
	"context"
	"net"

	"github.com/miekg/dns"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"
)

// serveDNS runs a local DNS echo service with the specified handler,
// returning its address in host:port form.
func serveDNS(handler dns.HandlerFunc) string {
	pc := Successful(net.ListenPacket("udp", "127.0.0.1:0"))
	srv := &dns.Server{PacketConn: pc, Handler: handler}
	go func() { _ = srv.ActivateAndServe() }()
	DeferCleanup(func() { Expect(srv.Shutdown()).To(Succeed()) })
	return pc.LocalAddr().String()
}

// answering replies to every query with the specified canned record data,
// matching the query's record type.
func answering(a, txt string) dns.HandlerFunc {
	return func(w dns.ResponseWriter, req *dns.Msg) {
		m := new(dns.Msg)
		m.SetReply(req)
		name := req.Question[0].Name
		switch req.Question[0].Qtype {
		case dns.TypeA:
			if a != "" {
				m.Answer = append(m.Answer,
					Successful(dns.NewRR(name+" 60 IN A "+a)))
			}
		case dns.TypeTXT:
			if txt != "" {
				m.Answer = append(m.Answer,
					Successful(dns.NewRR(name+` 60 IN TXT "`+txt+`"`)))
			}
		}
		_ = w.WriteMsg(m)
	}
}

var _ = Describe("DNS echo sources", func() {

	It("returns the echoed address record", func(ctx context.Context) {
		addr := serveDNS(answering("203.0.113.99", ""))
		src := NewDNSSource(addr, dns.TypeA, "myip.example.org")
		Expect(src.Query(ctx, FamilyAny)).To(Equal(net.ParseIP("203.0.113.99").To4()))
	})

	It("returns the address echoed inside a TXT record", func(ctx context.Context) {
		addr := serveDNS(answering("", "203.0.113.99"))
		src := NewDNSSource(addr, dns.TypeTXT, "o-o.myaddr.example.org")
		Expect(src.Query(ctx, FamilyAny)).To(Equal(net.ParseIP("203.0.113.99")))
	})

	It("rejects a TXT-echoed address of the wrong family", func(ctx context.Context) {
		addr := serveDNS(answering("", "203.0.113.99"))
		src := NewDNSSource(addr, dns.TypeTXT, "o-o.myaddr.example.org")
		_, err := src.Query(ctx, FamilyIPv6)
		Expect(err).To(MatchError(ErrNoRecord))
	})

	It("signals empty resolutions", func(ctx context.Context) {
		addr := serveDNS(answering("", ""))
		src := NewDNSSource(addr, dns.TypeA, "myip.example.org")
		_, err := src.Query(ctx, FamilyAny)
		Expect(err).To(MatchError(ErrNoRecord))
	})

	It("skips unparseable TXT data", func(ctx context.Context) {
		addr := serveDNS(answering("", "your address, good sir, is unknowable"))
		src := NewDNSSource(addr, dns.TypeTXT, "o-o.myaddr.example.org")
		_, err := src.Query(ctx, FamilyAny)
		Expect(err).To(MatchError(ErrNoRecord))
	})

	It("refuses family/record-type mismatches without any network round-trip", func(ctx context.Context) {
		// 192.0.2.0/24 is TEST-NET-1; if the guard were broken these
		// queries would time out rather than fail immediately.
		src := NewDNSSource("192.0.2.1", dns.TypeA, "myip.example.org")
		_, err := src.Query(ctx, FamilyIPv6)
		Expect(err).To(MatchError(ErrUnsupportedFamily))

		src = NewDNSSource("192.0.2.1", dns.TypeAAAA, "myip.example.org")
		_, err = src.Query(ctx, FamilyIPv4)
		Expect(err).To(MatchError(ErrUnsupportedFamily))
	})

	It("describes itself by server, record type, and record", func() {
		Expect(NewDNSSource("resolver1.opendns.com", dns.TypeA, "myip.opendns.com").String()).
			To(Equal("dns resolver1.opendns.com A myip.opendns.com"))
	})

})
