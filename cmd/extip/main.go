// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package main

import (
	"os"
)

func main() {
	// Cobra already renders the error message on Execute failure; printing
	// err here again would duplicate it, see also:
	// https://github.com/spf13/cobra/issues/304
	if err := newRootCmd().Execute(); err != nil {
		osExit(1)
	}
}

// Indirection for CLI unit tests.
var osExit = os.Exit
