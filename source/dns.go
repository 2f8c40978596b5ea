// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package source

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"
)

// DNSTimeout bounds a single DNS echo exchange, unless the caller's context
// is stricter.
const DNSTimeout = 5 * time.Second

// DNSSource obtains the external IP address from a DNS echo service: a
// nameserver that answers queries for a well-known record with the address
// of the query sender (either directly as an A/AAAA record, or as the text
// of a TXT record).
type DNSSource struct {
	server string // nameserver host name, resolved through the system resolver
	qtype  uint16 // dns.TypeA, dns.TypeAAAA, or dns.TypeTXT
	record string // the echoing record to query for
	client *dns.Client
}

var _ Source = (*DNSSource)(nil)

// NewDNSSource returns a DNS echo source querying the specified nameserver
// host for the given record. qtype must be one of [dns.TypeA],
// [dns.TypeAAAA], and [dns.TypeTXT]. The nameserver defaults to port 53
// unless an explicit "host:port" is given.
func NewDNSSource(server string, qtype uint16, record string) *DNSSource {
	return &DNSSource{
		server: server,
		qtype:  qtype,
		record: record,
		client: &dns.Client{Timeout: DNSTimeout},
	}
}

func (s *DNSSource) String() string {
	return fmt.Sprintf("dns %s %s %s", s.server, dns.TypeToString[s.qtype], s.record)
}

// Query resolves the nameserver host and then asks it for the echoing
// record, returning the first echoed address of the requested family.
func (s *DNSSource) Query(ctx context.Context, family Family) (net.IP, error) {
	// An address-record query can only ever echo its own family.
	if (family == FamilyIPv4 && s.qtype == dns.TypeAAAA) ||
		(family == FamilyIPv6 && s.qtype == dns.TypeA) {
		return nil, ErrUnsupportedFamily
	}
	addr, err := s.resolveServer(ctx, family)
	if err != nil {
		return nil, err
	}
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(s.record), s.qtype)
	reply, _, err := s.client.ExchangeContext(ctx, msg, addr)
	if err != nil {
		return nil, fmt.Errorf("querying %s for %s: %w", s.server, s.record, err)
	}
	for _, rr := range reply.Answer {
		switch rr := rr.(type) {
		case *dns.A:
			return rr.A, nil
		case *dns.AAAA:
			return rr.AAAA, nil
		case *dns.TXT:
			for _, txt := range rr.Txt {
				ip := net.ParseIP(txt)
				if ip == nil {
					continue
				}
				if !family.Matches(ip) {
					return nil, fmt.Errorf("%w: echoed %s address %s",
						ErrNoRecord, familyOf(ip), ip)
				}
				return ip, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %s %s from %s",
		ErrNoRecord, dns.TypeToString[s.qtype], s.record, s.server)
}

// resolveServer looks up the nameserver's own address through the system
// resolver, restricted to the family the echo exchange will travel over, and
// returns it in host:port form ready for exchanging. Nameservers given as IP
// literals skip the bootstrap lookup.
func (s *DNSSource) resolveServer(ctx context.Context, family Family) (string, error) {
	host, port := s.server, "53"
	if h, p, err := net.SplitHostPort(s.server); err == nil {
		host, port = h, p
	}
	if net.ParseIP(host) != nil {
		return net.JoinHostPort(host, port), nil
	}
	network := "ip"
	switch {
	case s.qtype == dns.TypeA || family == FamilyIPv4:
		network = "ip4"
	case s.qtype == dns.TypeAAAA || family == FamilyIPv6:
		network = "ip6"
	}
	ips, err := net.DefaultResolver.LookupIP(ctx, network, host)
	if err != nil {
		return "", fmt.Errorf("resolving nameserver %s: %w", host, err)
	}
	if len(ips) == 0 {
		return "", fmt.Errorf("%w: nameserver %s", ErrNoRecord, host)
	}
	return net.JoinHostPort(ips[0].String(), port), nil
}
