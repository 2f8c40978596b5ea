// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/siemens/extip/consensus"
	"github.com/siemens/extip/source"
)

var (
	policy          consensus.Policy
	family          source.Family
	timeout         *time.Duration
	indentation     *uint
	spinnerInterval *time.Duration
	noGateway       *bool
	verifyElected   *bool
	debug           *bool
)

func newRootCmd() (rootCmd *cobra.Command) {
	rootCmd = &cobra.Command{
		Use:     "extip [flags]",
		Short:   "extip determines the host's externally visible IP address by multi-source consensus",
		Version: "1.0",
		Args:    cobra.NoArgs,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if *indentation > 80 {
				return fmt.Errorf("--indent width out of range [0..80]")
			}
			if *spinnerInterval < 10*time.Millisecond {
				return fmt.Errorf("--spinner must be at least 10ms")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return ResolveAndReport(context.Background())
		},
	}
	// Sets up the flags.
	rootCmd.PersistentFlags().Var(&policy,
		"policy", "resolution policy: all, first, or random")
	rootCmd.PersistentFlags().Var(&family,
		"family", "address family: any, ipv4, or ipv6")
	timeout = rootCmd.PersistentFlags().Duration(
		"timeout", 30*time.Second, "overall resolution deadline")
	noGateway = rootCmd.PersistentFlags().Bool(
		"no-gateway", false, "skip the local gateway (UPnP IGD, NAT-PMP) sources")
	verifyElected = rootCmd.PersistentFlags().Bool(
		"verify", false, "ping the elected address to verify its reachability")
	debug = rootCmd.PersistentFlags().Bool(
		"debug", false, "enable debugging output")
	indentation = rootCmd.PersistentFlags().Uint(
		"indent", 3, "indentation width")
	spinnerInterval = rootCmd.PersistentFlags().Duration(
		"spinner", 100*time.Millisecond, "spinner interval")
	return
}
