/*
 * MIT License
 *
 * Copyright (c) 2019 Nicolas JUHEL
 * Copyright (c) 2026 rbroemeling/udplogger contributors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

// Package cliutil carries the small pieces of startup ceremony shared by
// every udplogger binary: a colored banner and jwalterweatherman wiring for
// cobra's own diagnostic output.
package cliutil

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"golang.org/x/term"

	"github.com/rbroemeling/udplogger/logger"
)

// Stdout returns an io.Writer safe for colored output on every platform
// the corpus targets: mattn/go-colorable strips (or translates) ANSI
// sequences automatically when they are not supported, the way the
// teacher's console package assumes a colorable sink.
func Stdout() io.Writer {
	return colorable.NewColorableStdout()
}

// PrintBanner prints a one-line startup banner naming the binary and
// version. The name is colored only when stdout is a terminal
// (golang.org/x/term), matching shell/tty's terminal-gated color behavior;
// otherwise the line is printed plain.
func PrintBanner(name, version string) {
	out := Stdout()
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintf(out, "%s %s\n", name, version)
		return
	}

	bold := color.New(color.FgCyan, color.Bold)
	_, _ = bold.Fprintf(out, "%s", name)
	fmt.Fprintf(out, " %s\n", version)
}

// NewLogger builds the binary's root logger and routes cobra/jwalterweatherman
// diagnostics through it at the same level.
func NewLogger(component string, lvl logger.Level) *logger.Logger {
	l := logger.New(component, logger.Options{Level: lvl})
	l.SetSPF13Level(lvl)
	return l
}
