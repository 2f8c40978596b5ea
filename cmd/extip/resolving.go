// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gosuri/uilive"
	"go.uber.org/zap"

	"github.com/siemens/extip/consensus"
	"github.com/siemens/extip/source"
	"github.com/siemens/extip/types"
	"github.com/siemens/extip/verify"
)

// electedOrigin is the status line under which the elected address and its
// optional verification verdict are displayed.
const electedOrigin = "(elected)"

// ResolveAndReport assembles the source catalog, resolves the external IP
// address under the configured policy, and renders the per-source progress
// live to the terminal. With --verify, the elected address is additionally
// pinged for reachability before reporting.
func ResolveAndReport(ctx context.Context) error {
	logger := zap.NewNop()
	if *debug {
		var err error
		if logger, err = zap.NewDevelopment(); err != nil {
			return fmt.Errorf("cannot set up debug logging: %w", err)
		}
	}

	sources := source.HTTPSources()
	sources = append(sources, source.DNSSources()...)
	if !*noGateway {
		sources = append(sources, source.GatewaySources()...)
	}

	// Create an empty (concurrency-safe) status map, seed it so that all
	// sources show up as pending right away, and immediately fire off the
	// rendering goroutine. The rendering will only stop after tracking has
	// finished because the news channel has been closed. We then render a
	// final update and end rendering, signalling the end of our activities
	// via renderingDone.
	news := make(chan types.SourcedAddress, 2*len(sources)+4)
	status := consensus.NewStatusMap()
	for _, src := range sources {
		status.Update(&types.SourcedAddressValue{Origin: src.String()})
	}
	trackingDone := make(chan struct{})
	renderingDone := make(chan struct{})

	go func() {
		_ = status.Track(ctx, news)
		close(trackingDone)
	}()
	go func() {
		// Avoid uilive's background updating mode using Start(): it may
		// trigger anytime with the rendering into the buffer not yet
		// complete, making the terminal output very flickery. Instead we
		// trigger an explicit flush after having completed the rendering.
		term := uilive.New()
		renderer := newRenderer(term, policy, family)
		renderer.Indentation = int(*indentation)
		defer func() {
			renderData(term, renderer, status)
			renderer.Stop()
			close(renderingDone)
		}()
		renderData(term, renderer, status)
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				renderData(term, renderer, status)
			case <-trackingDone:
				return
			}
		}
	}()

	rctx := ctx
	if *timeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}
	ip := consensus.NewBuilder().
		AddSources(sources...).
		WithPolicy(policy).
		WithFamily(family).
		WithLogger(logger).
		Notify(news).
		Build().
		Resolve(rctx)

	switch {
	case ip != nil && *verifyElected:
		// Push the elected address through the verification stage,
		// forwarding its verdicts into the news stream so the display picks
		// them up like any other status update.
		pinger, verdicts := verify.New(1, verify.AsUnprivileged())
		forwarded := make(chan struct{})
		go func() {
			defer close(forwarded)
			for verdict := range verdicts {
				elected, ok := verdict.(types.SourcedAddress)
				if !ok {
					continue
				}
				select {
				case news <- elected:
				case <-ctx.Done():
				}
			}
		}()
		pinger.VerifyQA(ctx, &types.SourcedAddressValue{
			Origin:                electedOrigin,
			QualifiedAddressValue: types.NewQualifiedAddressValue(ip.String(), types.Verifying, nil),
		})
		pinger.StopWait()
		<-forwarded
	case ip != nil:
		select {
		case news <- &types.SourcedAddressValue{
			Origin:                electedOrigin,
			QualifiedAddressValue: types.NewQualifiedAddressValue(ip.String(), types.Answered, nil),
		}:
		case <-ctx.Done():
		}
	}
	close(news)
	<-trackingDone
	<-renderingDone

	if ip == nil {
		return fmt.Errorf("cannot determine the external IP address: no source answered")
	}
	fmt.Println(ip.String())
	return nil
}

// renderData gets the current per-source status data and then renders (and
// flushes) it to the terminal.
func renderData(term *uilive.Writer, r *renderer, data *consensus.StatusMap) {
	r.Render(data.Get())
	term.Flush()
}
