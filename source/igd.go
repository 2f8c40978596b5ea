// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package source

import (
	"context"
	"fmt"
	"net"

	"github.com/huin/goupnp/dcps/internetgateway1"
	"github.com/huin/goupnp/dcps/internetgateway2"

	"github.com/siemens/extip/oneshot"
)

// IGDSource obtains the external IP address from the local router, provided
// it implements the UPnP Internet Gateway Device interface. Gateway
// discovery blocks an OS thread for seconds, so each query runs detached on
// a throw-away worker goroutine through the oneshot bridge. No background
// resources outlive a query, so sources need no Stop/Close.
type IGDSource struct{}

var _ Source = (*IGDSource)(nil)

// NewIGDSource returns a source asking the local UPnP internet gateway for
// its external address.
func NewIGDSource() *IGDSource {
	return &IGDSource{}
}

func (s *IGDSource) String() string {
	return "upnp-igd"
}

// queryOutcome travels through the oneshot bridge from the discovery worker
// back to the query.
type queryOutcome struct {
	ip  net.IP
	err error
}

// Query discovers the gateway and asks it for its external IPv4 address.
// IGD only ever reports IPv4, so IPv6 queries fail immediately, without
// spawning any discovery worker.
func (s *IGDSource) Query(ctx context.Context, family Family) (net.IP, error) {
	if family == FamilyIPv6 {
		return nil, ErrUnsupportedFamily
	}
	op := oneshot.Go(nil, func() queryOutcome {
		ip, err := igdExternalIP()
		return queryOutcome{ip: ip, err: err}
	})
	outcome, err := op.Wait(ctx)
	if err != nil {
		return nil, err
	}
	return outcome.ip, outcome.err
}

// igdExternal is the subset of the goupnp WAN*Connection clients needed for
// external address queries; all IGDv1/IGDv2 WANIPConnection and
// WANPPPConnection clients implement it.
type igdExternal interface {
	GetExternalIPAddress() (string, error)
}

// igdExternalIP discovers the internet gateway device, preferring IGDv2
// clients over IGDv1 ones, and asks it for the external address.
func igdExternalIP() (net.IP, error) {
	client, err := discoverIGDClient()
	if err != nil {
		return nil, err
	}
	addr, err := client.GetExternalIPAddress()
	if err != nil {
		return nil, fmt.Errorf("gateway refused external address query: %w", err)
	}
	ip := net.ParseIP(addr)
	if ip == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}
	return ip, nil
}

// discoverIGDClient runs SSDP discovery for the WAN connection services of
// IGDv2 and IGDv1 devices, returning the first client found.
func discoverIGDClient() (igdExternal, error) {
	if clients, _, err := internetgateway2.NewWANIPConnection2Clients(); err == nil && len(clients) > 0 {
		return clients[0], nil
	}
	if clients, _, err := internetgateway2.NewWANIPConnection1Clients(); err == nil && len(clients) > 0 {
		return clients[0], nil
	}
	if clients, _, err := internetgateway2.NewWANPPPConnection1Clients(); err == nil && len(clients) > 0 {
		return clients[0], nil
	}
	if clients, _, err := internetgateway1.NewWANIPConnection1Clients(); err == nil && len(clients) > 0 {
		return clients[0], nil
	}
	if clients, _, err := internetgateway1.NewWANPPPConnection1Clients(); err == nil && len(clients) > 0 {
		return clients[0], nil
	}
	return nil, fmt.Errorf("%w: no UPnP WAN connection service answered", ErrNoGateway)
}
