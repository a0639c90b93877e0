// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package term decides whether an output file is a terminal that may
// use color and renders the few styles the REPL wants. Styling is host-side polish;
// the interpreter core never writes escape codes.
package term

import (
	"os"

	"golang.org/x/sys/unix"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	_, err := unix.IoctlGetTermios(int(f.Fd()), ioctlReadTermios)
	return err == nil
}

// A Styler renders text with ANSI styles when enabled and passes it
// through untouched otherwise.
type Styler struct {
	enabled bool
}

// NewStyler returns a Styler that colors only if f is a terminal.
func NewStyler(f *os.File) *Styler {
	return &Styler{enabled: IsTerminal(f)}
}

// Dim renders s in the terminal's faint style.
func (st *Styler) Dim(s string) string {
	if !st.enabled {
		return s
	}
	return "\x1b[2m" + s + "\x1b[0m"
}

// Bold renders s in the terminal's bold style.
func (st *Styler) Bold(s string) string {
	if !st.enabled {
		return s
	}
	return "\x1b[1m" + s + "\x1b[0m"
}

// Clear returns the escape sequence that clears the screen and homes
// the cursor, or "" when styling is off.
func (st *Styler) Clear() string {
	if !st.enabled {
		return ""
	}
	return "\x1b[2J\x1b[H"
}
