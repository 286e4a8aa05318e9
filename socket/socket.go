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

// Package socket implements the datagram socket primitives (spec.md C1):
// binding a UDP/IPv4 endpoint with address reuse and optional broadcast
// permission.
package socket

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"syscall"

	"golang.org/x/sys/unix"
)

// SocketError wraps a failure creating the socket or setting one of its
// options, before bind(2) is ever attempted.
type SocketError struct {
	Op  string
	Err error
}

func (e *SocketError) Error() string {
	return fmt.Sprintf("socket: %s: %v", e.Op, e.Err)
}

func (e *SocketError) Unwrap() error { return e.Err }

// BindError wraps a failure from the kernel rejecting the bind itself.
type BindError struct {
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("socket: bind %s: %v", e.Addr, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

// options controls how Bind configures the socket before binding it.
type options struct {
	broadcast bool
	reuseAddr bool
}

// Option configures Bind. Bind always sets reuseAddr before applying any
// Option, matching the original C code's unconditional SO_REUSEADDR.
type Option func(*options)

// WithBroadcast enables SO_BROADCAST, required by receivers that send
// beacons to a broadcast address (spec.md C6/C10) but never needed by the
// publisher, which only ever sends unicast replies to known targets.
func WithBroadcast() Option {
	return func(o *options) { o.broadcast = true }
}

// Bind creates a UDP/IPv4 socket, sets SO_REUSEADDR (and, if requested,
// SO_BROADCAST), and binds it to INADDR_ANY:port. port == 0 yields an
// ephemeral port, matching the original bind_socket(0, ...) convention used
// by client-side beacon senders.
//
// Go's net package multiplexes all sockets through the runtime's
// integrated netpoller, so there is no equivalent of the original code's
// explicit non-blocking toggle to configure here: every *net.UDPConn Bind
// returns is already safe to read and write from multiple goroutines
// without blocking the OS thread.
func Bind(port int, opts ...Option) (*net.UDPConn, error) {
	var o options
	o.reuseAddr = true
	for _, fn := range opts {
		fn(&o)
	}

	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var sockErr error
			err := c.Control(func(fd uintptr) {
				if o.reuseAddr {
					if e := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); e != nil {
						sockErr = &SocketError{Op: "setsockopt(SO_REUSEADDR)", Err: e}
						return
					}
				}
				if o.broadcast {
					if e := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_BROADCAST, 1); e != nil {
						sockErr = &SocketError{Op: "setsockopt(SO_BROADCAST)", Err: e}
						return
					}
				}
			})
			if err != nil {
				return &SocketError{Op: "rawconn.Control", Err: err}
			}
			return sockErr
		},
	}

	addr := net.JoinHostPort("0.0.0.0", strconv.Itoa(port))
	pc, err := lc.ListenPacket(nil, "udp4", addr)
	if err != nil {
		var se *SocketError
		if errors.As(err, &se) {
			return nil, se
		}
		return nil, &BindError{Addr: addr, Err: err}
	}

	conn, ok := pc.(*net.UDPConn)
	if !ok {
		_ = pc.Close()
		return nil, &SocketError{Op: "listen", Err: fmt.Errorf("unexpected packet conn type %T", pc)}
	}

	return conn, nil
}
