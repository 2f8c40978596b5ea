// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package main

import "github.com/muesli/termenv"

var (
	pendingStyle  = termenv.Style{}.Foreground(termenv.ANSIYellow)
	answeredStyle = termenv.Style{}.Foreground(termenv.ANSIGreen)
	failedStyle   = termenv.Style{}.Foreground(termenv.ANSIRed)
)

var sourceNameStyle = termenv.Style{}.Bold()
