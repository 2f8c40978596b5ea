// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package source

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// HTTPTimeout bounds a single HTTP echo query, unless the caller's context
// is stricter.
const HTTPTimeout = 5 * time.Second

// Echo service replies are a single address line; anything longer is junk.
const maxEchoBody = 256

// HTTPSource obtains the external IP address from an HTTP(S) echo service
// that replies with the client's address as its plain response body, without
// any additional processing (if not trimming the string).
type HTTPSource struct {
	url    string
	family Family
	client *http.Client
}

var _ Source = (*HTTPSource)(nil)

// NewHTTPSource returns an HTTP echo source for the specified URL, assuming
// the service echoes IPv4 addresses.
func NewHTTPSource(url string) *HTTPSource {
	return NewHTTPSourceFamily(url, FamilyIPv4)
}

// NewHTTPSourceFamily returns an HTTP echo source for the specified URL,
// echoing addresses of the specified family.
func NewHTTPSourceFamily(url string, family Family) *HTTPSource {
	return &HTTPSource{
		url:    url,
		family: family,
		client: &http.Client{Timeout: HTTPTimeout},
	}
}

func (s *HTTPSource) String() string {
	return "http " + s.url
}

// Query contacts the echo service and parses its response body into an IP
// address of the requested family.
func (s *HTTPSource) Query(ctx context.Context, family Family) (net.IP, error) {
	if !s.family.covers(family) {
		return nil, ErrUnsupportedFamily
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("contacting %s: %w", s.url, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("contacting %s: %w", s.url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("contacting %s: unexpected HTTP status %s", s.url, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxEchoBody))
	if err != nil {
		return nil, fmt.Errorf("reading reply from %s: %w", s.url, err)
	}
	reply := strings.TrimSpace(string(body))
	ip := net.ParseIP(reply)
	if ip == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, reply)
	}
	if !family.Matches(ip) || !s.family.Matches(ip) {
		return nil, fmt.Errorf("%w: got %s address %s", ErrNoRecord, familyOf(ip), ip)
	}
	return ip, nil
}

// familyOf returns the concrete family of an IP address.
func familyOf(ip net.IP) Family {
	if ip.To4() != nil {
		return FamilyIPv4
	}
	return FamilyIPv6
}
