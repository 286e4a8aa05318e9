/*
 * MIT License
 *
 * Copyright (c) 2010 Nexopia.com, Inc.
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

// Package receiver implements the symmetric client side of the wire
// protocol (spec.md C6/C7/C8): a beacon emitter and a single cooperative
// event loop that multiplexes beacon ticks, inbound datagrams and signals
// into one linear stream of callbacks.
package receiver

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"syscall"
	"time"

	"github.com/rbroemeling/udplogger/discovery"
	"github.com/rbroemeling/udplogger/logger"
	"github.com/rbroemeling/udplogger/socket"
	"github.com/rbroemeling/udplogger/wire"
)

// DefaultPort is the publisher's well-known listen port, used whenever a
// configured or discovered host does not specify one.
const DefaultPort = 43824

// DefaultBeaconInterval is the receiver library's default beacon cadence.
const DefaultBeaconInterval = 30 * time.Second

// Config is the receiver's immutable-after-startup configuration
// (spec.md §3 "Receiver configuration").
type Config struct {
	BeaconInterval time.Duration
	Endpoints      []*net.UDPAddr
}

// ResolveEndpoints turns a (possibly empty) list of "host[:port]" strings
// into concrete publisher addresses. An empty hosts list is populated by
// enumerating the host's broadcast addresses (C10), matching spec.md §3:
// "If the list is empty at configuration time, it is populated by
// enumerating the host's IPv4 broadcast addresses and defaulting the port."
func ResolveEndpoints(hosts []string, defaultPort int) ([]*net.UDPAddr, error) {
	if len(hosts) == 0 {
		bcasts, err := discovery.BroadcastAddrs()
		if err != nil {
			return nil, err
		}
		out := make([]*net.UDPAddr, 0, len(bcasts))
		for _, ip := range bcasts {
			out = append(out, &net.UDPAddr{IP: ip, Port: defaultPort})
		}
		return out, nil
	}

	out := make([]*net.UDPAddr, 0, len(hosts))
	for _, h := range hosts {
		host, portStr, err := net.SplitHostPort(h)
		if err != nil {
			host, portStr = h, strconv.Itoa(defaultPort)
		}

		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("receiver: invalid port in %q: %w", h, err)
		}

		ips, err := net.LookupIP(host)
		if err != nil {
			return nil, fmt.Errorf("receiver: resolving %q: %w", host, err)
		}

		var v4 net.IP
		for _, ip := range ips {
			if v4 = ip.To4(); v4 != nil {
				break
			}
		}
		if v4 == nil {
			return nil, fmt.Errorf("receiver: %q has no IPv4 address", host)
		}

		out = append(out, &net.UDPAddr{IP: v4, Port: port})
	}
	return out, nil
}

// Handlers are the user-supplied callbacks dispatched from the event loop
// (spec.md §4.7). They run synchronously in the loop and must not block
// indefinitely.
type Handlers struct {
	// OnDatagram is invoked with the sender endpoint and the received
	// bytes, defensively NUL-terminated, for every non-beacon-loop
	// datagram the client receives.
	OnDatagram func(from *net.UDPAddr, data []byte)

	// OnReload runs on SIGHUP (e.g. reopen an output file).
	OnReload func()

	// OnShutdown runs on SIGTERM, immediately before Run returns.
	OnShutdown func()
}

// Client is the receiver-side half of the wire protocol: one bound UDP
// socket, a beacon schedule, and the cooperative event loop of C7.
type Client struct {
	cfg  Config
	conn *net.UDPConn
	log  *logger.Logger
}

// New binds the client's socket (with broadcast permission, since
// Config.Endpoints may include broadcast addresses) and returns a Client
// ready for Run.
func New(cfg Config, log *logger.Logger) (*Client, error) {
	if cfg.BeaconInterval <= 0 {
		cfg.BeaconInterval = DefaultBeaconInterval
	}

	conn, err := socket.Bind(0, socket.WithBroadcast())
	if err != nil {
		return nil, err
	}

	if log == nil {
		log = logger.New("receiver", logger.Options{})
	}

	return &Client{cfg: cfg, conn: conn, log: log}, nil
}

// Close releases the bound socket.
func (c *Client) Close() error { return c.conn.Close() }

// LocalAddr returns the socket's bound local address.
func (c *Client) LocalAddr() *net.UDPAddr {
	return c.conn.LocalAddr().(*net.UDPAddr)
}

// datagramEvent is one inbound, non-beacon datagram handed from the reader
// goroutine to Run's select loop.
type datagramEvent struct {
	from *net.UDPAddr
	data []byte
}

// Run is the single cooperative loop of C7: it beacons immediately on
// entry (spec.md §4.6: "The first beacon must be emitted immediately on
// startup"), then multiplexes the beacon ticker, inbound datagrams and
// signals until ctx is cancelled or SIGTERM is observed. Per the design
// notes in spec.md §9, Go has no single-threaded blocking multiplexer over
// a socket read and a ticker, so the datagram side runs in its own
// goroutine feeding a channel the select reads from; this preserves the
// loop's linear ordering guarantee (spec.md §4.7) since exactly one of
// ticker/datagram/signal is serviced per loop iteration, in channel-receive
// order, never concurrently with a handler.
func (c *Client) Run(ctx context.Context, h Handlers) error {
	c.beacon()

	ticker := time.NewTicker(c.cfg.BeaconInterval)
	defer ticker.Stop()

	sw := newSignalWatcher()
	defer sw.stop()

	datagramCh := make(chan datagramEvent, 16)
	readErrCh := make(chan error, 1)
	go c.readLoop(ctx, datagramCh, readErrCh)

	for {
		select {
		case <-ctx.Done():
			return nil

		case err := <-readErrCh:
			return err

		case <-ticker.C:
			c.beacon()

		case sig, ok := <-sw.ch:
			if !ok {
				continue
			}
			switch sig {
			case syscall.SIGHUP:
				if h.OnReload != nil {
					h.OnReload()
				}
			case syscall.SIGTERM:
				if h.OnShutdown != nil {
					h.OnShutdown()
				}
				return nil
			}

		case ev := <-datagramCh:
			if h.OnDatagram != nil {
				h.OnDatagram(ev.from, ev.data)
			}
		}
	}
}

// readLoop feeds datagramCh until ctx is done or the socket read fails.
func (c *Client) readLoop(ctx context.Context, out chan<- datagramEvent, errCh chan<- error) {
	buf := make([]byte, wire.PacketMaximumSize)
	for {
		n, addr, err := c.conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			errCh <- err
			return
		}

		data := ensureNULTerminated(buf[:n])
		select {
		case out <- datagramEvent{from: addr, data: data}:
		case <-ctx.Done():
			return
		}
	}
}

// ensureNULTerminated copies data and appends a trailing NUL if one is not
// already present, matching spec.md §4.7's "NUL-terminate defensively"
// before handing a datagram to the user handler.
func ensureNULTerminated(data []byte) []byte {
	if len(data) > 0 && data[len(data)-1] == 0 {
		out := make([]byte, len(data))
		copy(out, data)
		return out
	}
	out := make([]byte, len(data)+1)
	copy(out, data)
	return out
}

// beacon implements C6: send one beacon datagram to every configured
// publisher endpoint. A send failure to one endpoint is logged and does not
// prevent beaconing the others.
func (c *Client) beacon() {
	frame := wire.BuildBeacon()
	for _, ep := range c.cfg.Endpoints {
		if _, err := c.conn.WriteToUDP(frame, ep); err != nil {
			c.log.WarnErr("beacon send failed", err)
		}
	}
}
