// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package source

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/jackpal/gateway"
	natpmp "github.com/jackpal/go-nat-pmp"

	"github.com/siemens/extip/oneshot"
)

// NATPMPTimeout bounds the NAT-PMP exchange with the gateway.
const NATPMPTimeout = 3 * time.Second

// NATPMPSource obtains the external IP address from the local default
// gateway using the NAT port mapping protocol. Gateway discovery and the
// NAT-PMP exchange block, so each query runs detached on a throw-away
// worker goroutine through the oneshot bridge. No background resources
// outlive a query, so sources need no Stop/Close.
type NATPMPSource struct{}

var _ Source = (*NATPMPSource)(nil)

// NewNATPMPSource returns a source asking the local default gateway for its
// external address via NAT-PMP.
func NewNATPMPSource() *NATPMPSource {
	return &NATPMPSource{}
}

func (s *NATPMPSource) String() string {
	return "nat-pmp"
}

// Query discovers the default gateway and asks it for its external IPv4
// address. NAT-PMP only ever reports IPv4, so IPv6 queries fail
// immediately, without spawning any discovery worker.
func (s *NATPMPSource) Query(ctx context.Context, family Family) (net.IP, error) {
	if family == FamilyIPv6 {
		return nil, ErrUnsupportedFamily
	}
	op := oneshot.Go(nil, func() queryOutcome {
		ip, err := natpmpExternalIP()
		return queryOutcome{ip: ip, err: err}
	})
	outcome, err := op.Wait(ctx)
	if err != nil {
		return nil, err
	}
	return outcome.ip, outcome.err
}

// natpmpExternalIP locates the default gateway and requests its external
// address over NAT-PMP.
func natpmpExternalIP() (net.IP, error) {
	gw, err := gateway.DiscoverGateway()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoGateway, err)
	}
	client := natpmp.NewClientWithTimeout(gw, NATPMPTimeout)
	reply, err := client.GetExternalAddress()
	if err != nil {
		return nil, fmt.Errorf("gateway %s refused NAT-PMP external address query: %w", gw, err)
	}
	addr := reply.ExternalIPAddress
	return net.IPv4(addr[0], addr[1], addr[2], addr[3]), nil
}
