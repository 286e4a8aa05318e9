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

// Package publisher implements the producer daemon's two execution contexts
// (spec.md §5): E1 ingest/fan-out (C5) and E2 beacon-receive/prune (C4),
// sharing a target.Table guarded by its own mutex.
package publisher

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rbroemeling/udplogger/logger"
	"github.com/rbroemeling/udplogger/metrics"
	"github.com/rbroemeling/udplogger/socket"
	"github.com/rbroemeling/udplogger/target"
	"github.com/rbroemeling/udplogger/wire"
)

// InputBufferSize bounds a single stdin line, matching spec.md C5 step 1's
// "up to INPUT_BUFFER_SIZE bytes".
const InputBufferSize = 64 * 1024

// Config is the publisher's immutable-after-startup configuration
// (spec.md §3 "Publisher configuration").
type Config struct {
	ListenPort    int
	MaxTargetAge  time.Duration
	PruneInterval time.Duration
	Tag           string
}

// Publisher owns one bound UDP socket, one target table and the per-process
// serial counter. The zero value is not usable; construct one with New.
// Per spec.md §9's design note, this replaces the original's global
// (conf, targets, mutex) state with an owned value exposing methods.
type Publisher struct {
	cfg     Config
	conn    *net.UDPConn
	table   *target.Table
	log     *logger.Logger
	metrics *metrics.Publisher
	serial  atomic.Uint64
}

// New binds the publisher's listen socket and returns a ready Publisher. A
// nil log gets a default; a nil m gets a fresh, unshared metrics.Publisher.
func New(cfg Config, log *logger.Logger, m *metrics.Publisher) (*Publisher, error) {
	if len(cfg.Tag) > wire.TagMaxLength {
		return nil, fmt.Errorf("publisher: tag %q exceeds %d bytes", cfg.Tag, wire.TagMaxLength)
	}

	conn, err := socket.Bind(cfg.ListenPort)
	if err != nil {
		return nil, err
	}

	if log == nil {
		log = logger.New("publisher", logger.Options{})
	}
	if m == nil {
		m = metrics.NewPublisher()
	}

	return &Publisher{cfg: cfg, conn: conn, table: target.New(), log: log, metrics: m}, nil
}

// Addr returns the socket's bound local address, useful when Config.ListenPort is 0.
func (p *Publisher) Addr() *net.UDPAddr {
	return p.conn.LocalAddr().(*net.UDPAddr)
}

// Table exposes the target table for introspection (the admin package's
// /targets endpoint and metrics collection); it is never mutated outside
// beaconLoop.
func (p *Publisher) Table() *target.Table { return p.table }

// Metrics exposes the publisher's prometheus collectors.
func (p *Publisher) Metrics() *metrics.Publisher { return p.metrics }

// Serial returns the most recently assigned frame serial, for introspection.
func (p *Publisher) Serial() uint64 { return p.serial.Load() }

// Close releases the bound socket.
func (p *Publisher) Close() error { return p.conn.Close() }

// Run drives E1 (ingest/fan-out, reading r until EOF) and E2
// (beacon-receive/prune) concurrently via an errgroup, matching spec.md §5's
// two-context model. Run returns once E1 reaches EOF; per spec.md §5's
// cancellation note the beacon/prune context is not gracefully joined in the
// original, but here it is signalled to stop via context cancellation so Run
// returns deterministically rather than leaking a goroutine.
func (p *Publisher) Run(ctx context.Context, r io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// A beacon-loop failure is logged but not returned, so it does not
		// cancel gctx and E1 keeps running (without target refresh).
		if err := p.beaconLoop(gctx); err != nil && gctx.Err() == nil {
			p.log.ErrorErr("beacon loop stopped", err)
		}
		return nil
	})

	g.Go(func() error {
		err := p.ingestLoop(gctx, r)
		cancel()
		return err
	})

	return g.Wait()
}

// beaconLoop implements C4: it waits on the socket with a timeout equal to
// the prune cadence and, on every wakeup (datagram or timeout alike),
// unconditionally prunes the table. A receive error other than a timeout is
// fatal to this loop only (spec.md §4.4/§7): Run logs it and E1 continues.
func (p *Publisher) beaconLoop(ctx context.Context) error {
	buf := make([]byte, wire.BeaconPacketSize+64)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err := p.conn.SetReadDeadline(time.Now().Add(p.cfg.PruneInterval)); err != nil {
			return err
		}

		n, addr, err := p.conn.ReadFromUDP(buf)
		now := time.Now()

		switch {
		case err == nil:
			if wire.IsBeacon(buf[:n]) {
				p.table.Upsert(addr.IP, addr.Port, now)
				p.metrics.BeaconsReceived.Inc()
			}
		case isTimeout(err):
			// Wakeup with nothing to read: still prune below.
		default:
			return err
		}

		p.table.Prune(now, p.cfg.MaxTargetAge)
		p.metrics.TargetsCurrent.Set(float64(p.table.Len()))
	}
}

func isTimeout(err error) bool {
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}

// ingestLoop implements C5: read stdin lines, frame them, fan out under the
// table's mutex. The advisory IsEmpty check (spec.md §5) only skips framing;
// the serial counter still advances for a skipped line (scenario S1).
func (p *Publisher) ingestLoop(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, InputBufferSize), InputBufferSize)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line := scanner.Bytes()
		serial := p.serial.Add(1)
		p.metrics.SerialCurrent.Set(float64(serial))

		if p.table.IsEmpty() {
			p.metrics.LinesSkipped.Inc()
			continue
		}

		frame := wire.BuildFrame(serial, p.cfg.Tag, line)
		p.sendToAll(frame)
	}

	return scanner.Err()
}

// sendToAll iterates the table under its mutex (spec.md §5 E1 acquiring the
// lock "for the duration of one line's fan-out") and sends frame to every
// live target. A per-target send error is logged and does not stop the
// remaining sends (spec.md §7 "Transient send errors").
func (p *Publisher) sendToAll(frame []byte) {
	p.table.Range(func(t target.Target) {
		_, err := p.conn.WriteToUDP(frame, &net.UDPAddr{IP: t.Addr, Port: t.Port})
		if err != nil {
			p.metrics.FramesSendErrors.Inc()
			p.log.WarnErr("sendto failed", err)
			return
		}
		p.metrics.FramesSent.Inc()
	})
}
