// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package verify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/go-ping/ping"

	"github.com/siemens/extip/types"
)

// Pinger verifies elected external IP addresses by pinging them and then
// streaming the final [types.QualifiedAddress] verdicts to a result/output
// channel. Pingers use a goroutine-limited worker pool.
type Pinger struct {
	count               int           // number of pings to send.
	interval            time.Duration // distance between pings.
	thresholdPercentage uint          // percentage of successful pings for a reachable IP address.
	unprivileged        bool          // if true, uses UDP-based pings instead of privileged ICMPs.

	workers  *workerpool.WorkerPool      // workers for running incoming verification jobs concurrently.
	verdicts chan types.QualifiedAddress // results/status stream channel.
	stopOnce sync.Once
}

// PingerOption can be passed to New when creating new Pinger objects.
type PingerOption func(*Pinger)

// New returns a new [Pinger] with a maximum worker pool of the specified
// size as well as a verdict stream. The verdict channel will not only send
// the final verdicts, but also the addresses in verification as they get
// submitted.
//
// The new pinger defaults to pinging 3 times at intervals of 1s between each
// ping. The reachability threshold defaults to 50(%).
//
// The pinger can be configured during creation using several options:
//   - [WithCount]
//   - [WithInterval]
//   - [WithThresholdPercentage]
//   - [AsUnprivileged]
func New(size int, options ...PingerOption) (*Pinger, <-chan types.QualifiedAddress) {
	verdicts := make(chan types.QualifiedAddress, size)
	pinger := &Pinger{
		count:               3,
		interval:            time.Second,
		thresholdPercentage: 50,
		workers:             workerpool.New(size),
		verdicts:            verdicts,
	}
	for _, opt := range options {
		opt(pinger)
	}
	return pinger, verdicts
}

// WithCount sets the number of pings for testing reachability of an IP
// address.
func WithCount(count uint) PingerOption {
	return func(p *Pinger) {
		p.count = int(count)
	}
}

// WithInterval sets the interval between consecutive pings.
func WithInterval(interval time.Duration) PingerOption {
	return func(p *Pinger) {
		p.interval = interval
	}
}

// AsUnprivileged tells the Pinger to carry out unprivileged pings using UDP
// instead of ICMP packets.
func AsUnprivileged() PingerOption {
	return func(p *Pinger) {
		p.unprivileged = true
	}
}

// WithThresholdPercentage takes a percentage between 0 and 100 that
// specifies the percentage of successful ping responses required in order to
// consider the pinged IP address reachable.
func WithThresholdPercentage(threshold uint) PingerOption {
	if threshold > 100 {
		panic(fmt.Errorf("Pinger: threshold must be a percentage between 0 <= threshold <= 100, got: %d",
			threshold))
	}
	return func(p *Pinger) {
		p.thresholdPercentage = threshold
	}
}

// Verify the specified IP address by pinging it. The verdict is then sent to
// the channel returned together with the newly created [Pinger].
// Additionally, an initial notice for the address in verification is also
// sent beforehand.
//
// If the specified context gets cancelled the pending verifications won't be
// echoed to the verdict stream at all, and in particular not even as
// unreachable. However, spurious verdicts might still appear on the verdict
// stream due to uncontrollable order of verdict sending and context
// cancellation detection.
//
// An address is considered unreachable if the percentage of successfully
// received ping replies doesn't reach or cross the Pinger's threshold. This
// allows for some legroom.
func (p *Pinger) Verify(ctx context.Context, addr string) {
	p.verify(ctx, &types.QualifiedAddressValue{
		Address: addr,
		Quality: types.Verifying,
	})
}

// VerifyQA verifies the specified [types.QualifiedAddress] and works
// otherwise like [Pinger.Verify] for a plain address string. The verdict
// keeps the concrete type of the passed qualified address, so sourced
// addresses come out as sourced addresses again.
func (p *Pinger) VerifyQA(ctx context.Context, addr types.QualifiedAddress) {
	p.verify(ctx, addr.WithNewQuality(types.Verifying, nil))
}

// verify does the real work of pinging an address. The caller is expected to
// pass in a qualified address with its quality already set to Verifying, to
// avoid an unnecessary clone.
func (p *Pinger) verify(ctx context.Context, verdict types.QualifiedAddress) {
	// Allow cancelling a blocked verdict send to avoid leaking goroutines.
	select {
	case p.verdicts <- verdict: // not yet the final one ;)
	case <-ctx.Done():
		return
	}
	p.workers.Submit(func() {
		verdict := verdict.WithNewQuality(types.Unreachable, nil)
		defer func() {
			// Again, allow cancelling a blocked verdict send to avoid
			// leaking goroutines.
			select {
			case p.verdicts <- verdict: // final one this time.
			case <-ctx.Done():
				return
			}
		}()
		// A quick and non-blocking check to see if the context has been
		// cancelled before we start our work...
		select {
		case <-ctx.Done():
			verdict = verdict.WithNewQuality(types.Unreachable, ctx.Err())
			return
		default:
		}
		if err := p.ping(ctx, verdict.Addr()); err != nil {
			verdict = verdict.WithNewQuality(types.Unreachable, err)
			return
		}
		verdict = verdict.WithNewQuality(types.Verified, nil)
	})
}

// ping sends the configured number of pings and reports nil if enough
// replies came back in time.
func (p *Pinger) ping(ctx context.Context, addr string) error {
	pinger, err := ping.NewPinger(addr)
	if err != nil {
		return err
	}
	pinger.SetPrivileged(!p.unprivileged)
	pinger.Count = p.count
	pinger.Interval = p.interval
	// Always limit waiting for the last ping to get reflected (or not)!
	pinger.Timeout = time.Duration(int64(p.interval) * int64(p.count+2))
	// While the ping is running, we need to monitor the context in case it
	// becomes "done" by either getting cancelled or reaching its deadline.
	// The done channel here works "the other way round" in the sense that it
	// terminates the concurrent context monitoring.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			pinger.Stop()
		case <-done:
		}
	}()
	// Now start making some noise...
	if err := pinger.Run(); err != nil {
		return err
	}
	// Was the context done?
	if err := ctx.Err(); err != nil {
		return err
	}
	stats := pinger.Statistics()
	if stats.PacketsRecv < pinger.Count*int(p.thresholdPercentage)/100 {
		return errors.New("no replies or too many losses")
	}
	return nil
}

// StopWait waits for all queued verification tasks to get processed and then
// finally closes the verdict channel.
func (p *Pinger) StopWait() {
	p.stopOnce.Do(func() {
		p.workers.StopWait()
		close(p.verdicts)
	})
}
