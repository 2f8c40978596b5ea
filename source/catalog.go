// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package source

import "github.com/miekg/dns"

// HTTPSources returns the catalog of well-known HTTP(S) echo services.
func HTTPSources() []Source {
	v4 := []string{
		"https://icanhazip.com/",
		"https://myexternalip.com/raw",
		"https://ifconfig.io/ip",
		"https://ipecho.net/plain",
		"https://checkip.amazonaws.com/",
		"https://ident.me/",
		"http://whatismyip.akamai.com/",
		"https://myip.dnsomatic.com/",
		"https://diagnostic.opendns.com/myip",
	}
	sources := make([]Source, 0, len(v4)+2)
	for _, url := range v4 {
		sources = append(sources, NewHTTPSource(url))
	}
	sources = append(sources,
		NewHTTPSourceFamily("https://ipv6.icanhazip.com/", FamilyIPv6),
		NewHTTPSourceFamily("https://v6.ident.me/", FamilyIPv6),
	)
	return sources
}

// DNSSources returns the catalog of well-known DNS echo services.
func DNSSources() []Source {
	return []Source{
		NewDNSSource("resolver1.opendns.com", dns.TypeA, "myip.opendns.com"),
		NewDNSSource("resolver1.opendns.com", dns.TypeAAAA, "myip.opendns.com"),
		NewDNSSource("ns1.google.com", dns.TypeTXT, "o-o.myaddr.l.google.com"),
	}
}

// GatewaySources returns the sources asking the local gateway device
// directly, via UPnP IGD and NAT-PMP. These only ever work behind a
// cooperating home/office router, but then don't depend on any third-party
// internet service.
func GatewaySources() []Source {
	return []Source{
		NewIGDSource(),
		NewNATPMPSource(),
	}
}

// DefaultSources returns the full catalog of external IP sources.
func DefaultSources() []Source {
	sources := HTTPSources()
	sources = append(sources, DNSSources()...)
	sources = append(sources, GatewaySources()...)
	return sources
}
