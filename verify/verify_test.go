// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package verify

import (
	"context"
	"fmt"
	"time"

	"github.com/siemens/extip/types"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/onsi/gomega/gleak"
)

var _ = Describe("pinger", func() {

	BeforeEach(func() {
		goodgos := Goroutines()
		DeferCleanup(func() {
			Eventually(Goroutines).WithTimeout(3 * time.Second).WithPolling(250 * time.Millisecond).
				ShouldNot(HaveLeaked(goodgos))
		})
	})

	It("handles multiple stops", func() {
		pinger, _ := New(1)
		for i := 0; i < 2; i++ {
			By(fmt.Sprintf("%d round", i+1))
			done := make(chan struct{})
			go func() {
				defer GinkgoRecover()
				pinger.StopWait()
				close(done)
			}()
			Eventually(done).WithTimeout(1 * time.Second).Should(BeClosed())
		}
	})

	It("rejects nonsense thresholds", func() {
		Expect(func() { WithThresholdPercentage(101) }).To(Panic())
	})

	It("announces the verification before passing its verdict", NodeTimeout(30*time.Second), func(ctx context.Context) {
		pinger, courtTV := New(1, AsUnprivileged())
		defer pinger.StopWait()
		// ".invalid" names never resolve, so the address fails verification
		// without a single ping ever leaving the host.
		pinger.Verify(ctx, "nowhere.invalid")
		var verdict types.QualifiedAddress
		Eventually(courtTV).WithTimeout(10 * time.Second).Should(Receive(&verdict))
		Expect(verdict.Addr()).To(Equal("nowhere.invalid"))
		Expect(verdict.Qual()).To(Equal(types.Verifying))
		Eventually(courtTV).WithTimeout(10 * time.Second).Should(Receive(&verdict))
		Expect(verdict.Qual()).To(Equal(types.Unreachable))
		Expect(verdict.Err()).To(HaveOccurred())
	})

	It("keeps the concrete type of sourced addresses", NodeTimeout(30*time.Second), func(ctx context.Context) {
		pinger, courtTV := New(1, AsUnprivileged())
		defer pinger.StopWait()
		pinger.VerifyQA(ctx, &types.SourcedAddressValue{
			Origin:                "(elected)",
			QualifiedAddressValue: types.QualifiedAddressValue{Address: "nowhere.invalid"},
		})
		var verdict types.QualifiedAddress
		Eventually(courtTV).WithTimeout(10 * time.Second).Should(Receive(&verdict))
		sourced, ok := verdict.(types.SourcedAddress)
		Expect(ok).To(BeTrue(), "verdict lost its source information")
		Expect(sourced.Source()).To(Equal("(elected)"))
		Expect(sourced.Qual()).To(Equal(types.Verifying))
		Eventually(courtTV).WithTimeout(10 * time.Second).Should(Receive(&verdict))
		sourced, ok = verdict.(types.SourcedAddress)
		Expect(ok).To(BeTrue(), "verdict lost its source information")
		Expect(sourced.Source()).To(Equal("(elected)"))
		Expect(sourced.Qual()).To(Equal(types.Unreachable))
	})

	It("never verifies after cancellation", NodeTimeout(30*time.Second), func(ctx context.Context) {
		pinger, courtTV := New(1,
			AsUnprivileged(),
			WithCount(1),
			WithInterval(100*time.Millisecond),
			WithThresholdPercentage(1))
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		pinger.Verify(cctx, "127.0.0.1")
		pinger.StopWait()
		// Depending on how far the verification got before noticing the
		// cancellation, zero or more verdicts may have slipped out; none of
		// them may claim the address to be verified.
		for verdict := range courtTV {
			Expect(verdict.Qual()).NotTo(Equal(types.Verified))
		}
	})

})
