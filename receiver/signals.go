/*
 * MIT License
 *
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

package receiver

import (
	"os"
	"os/signal"
	"syscall"
)

// signalWatcher is the Go equivalent of spec.md C8's self-pipe discipline:
// os/signal.Notify already does the "async-safe handler records into a set,
// the loop reads it between iterations" dance for us, delivering onto a
// channel instead of a raw sigset_t. The channel is large enough that a
// TERM and a HUP arriving back-to-back are never dropped, only queued for
// the next loop iteration, matching §4.7's "the loop never drops signals".
type signalWatcher struct {
	ch chan os.Signal
}

func newSignalWatcher() *signalWatcher {
	w := &signalWatcher{ch: make(chan os.Signal, 4)}
	signal.Notify(w.ch, syscall.SIGTERM, syscall.SIGHUP)
	return w
}

func (w *signalWatcher) stop() {
	signal.Stop(w.ch)
	close(w.ch)
}
