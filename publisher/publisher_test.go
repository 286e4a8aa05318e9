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

package publisher_test

import (
	"context"
	"io"
	"net"
	"strings"
	"time"

	"github.com/rbroemeling/udplogger/publisher"
	"github.com/rbroemeling/udplogger/socket"
	"github.com/rbroemeling/udplogger/wire"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func newTestPublisher() *publisher.Publisher {
	p, err := publisher.New(publisher.Config{
		ListenPort:    0,
		MaxTargetAge:  200 * time.Millisecond,
		PruneInterval: 20 * time.Millisecond,
		Tag:           "web",
	}, nil, nil)
	Expect(err).NotTo(HaveOccurred())
	return p
}

func beaconFrom(conn *net.UDPConn, to *net.UDPAddr) {
	_, err := conn.WriteToUDP(wire.BuildBeacon(), to)
	Expect(err).NotTo(HaveOccurred())
}

var _ = Describe("Publisher", func() {
	var p *publisher.Publisher

	AfterEach(func() {
		if p != nil {
			_ = p.Close()
		}
	})

	It("S1: skips framing with no receivers but still advances the serial", func() {
		p = newTestPublisher()

		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()

		err := p.Run(ctx, strings.NewReader("GET /x 200\n"))
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Serial()).To(Equal(uint64(1)))
		Expect(p.Table().Len()).To(Equal(0))
	})

	It("S2/P1: a beaconing receiver appears as a target and receives framed lines", func() {
		p = newTestPublisher()

		recv, err := socket.Bind(0)
		Expect(err).NotTo(HaveOccurred())
		defer recv.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
		defer cancel()

		pr, pw := io.Pipe()
		done := make(chan error, 1)
		go func() { done <- p.Run(ctx, pr) }()

		beaconFrom(recv, p.Addr())
		time.Sleep(50 * time.Millisecond) // allow beaconLoop to observe and upsert

		_, err = pw.Write([]byte("GET /x 200\n"))
		Expect(err).NotTo(HaveOccurred())

		buf := make([]byte, wire.PacketMaximumSize)
		Expect(recv.SetReadDeadline(time.Now().Add(200 * time.Millisecond))).To(Succeed())
		n, _, err := recv.ReadFromUDP(buf)
		Expect(err).NotTo(HaveOccurred())

		frame := wire.ParseFrame(buf[:n])
		Expect(frame.Serial).To(Equal(uint64(1)))
		Expect(frame.Tag).To(Equal("web"))
		Expect(string(frame.Line)).To(Equal("GET /x 200"))

		cancel()
		_ = pw.Close()
		<-done
	})

	It("S3/P4: two receivers each get every line with strictly increasing serials", func() {
		p = newTestPublisher()

		r1, err := socket.Bind(0)
		Expect(err).NotTo(HaveOccurred())
		defer r1.Close()
		r2, err := socket.Bind(0)
		Expect(err).NotTo(HaveOccurred())
		defer r2.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
		defer cancel()

		pr, pw := io.Pipe()
		done := make(chan error, 1)
		go func() { done <- p.Run(ctx, pr) }()

		beaconFrom(r1, p.Addr())
		beaconFrom(r2, p.Addr())
		time.Sleep(50 * time.Millisecond)

		input := "line one\nline two\nline three\n"
		_, err = pw.Write([]byte(input))
		Expect(err).NotTo(HaveOccurred())

		for _, recv := range []*net.UDPConn{r1, r2} {
			Expect(recv.SetReadDeadline(time.Now().Add(250 * time.Millisecond))).To(Succeed())
			var serials []uint64
			for i := 0; i < 3; i++ {
				buf := make([]byte, wire.PacketMaximumSize)
				n, _, err := recv.ReadFromUDP(buf)
				Expect(err).NotTo(HaveOccurred())
				serials = append(serials, wire.ParseFrame(buf[:n]).Serial)
			}
			Expect(serials).To(Equal([]uint64{1, 2, 3}))
		}

		cancel()
		_ = pw.Close()
		<-done
	})

	It("P2: re-beaconing the same endpoint does not duplicate its target entry", func() {
		p = newTestPublisher()

		recv, err := socket.Bind(0)
		Expect(err).NotTo(HaveOccurred())
		defer recv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		pr, pw := io.Pipe()
		done := make(chan error, 1)
		go func() { done <- p.Run(ctx, pr) }()

		beaconFrom(recv, p.Addr())
		beaconFrom(recv, p.Addr())
		beaconFrom(recv, p.Addr())
		time.Sleep(50 * time.Millisecond)

		Expect(p.Table().Len()).To(Equal(1))

		cancel()
		_ = pw.Close()
		<-done
	})

	It("S4: a target is pruned after max_target_age + prune_interval and receives nothing further", func() {
		p = newTestPublisher()

		recv, err := socket.Bind(0)
		Expect(err).NotTo(HaveOccurred())
		defer recv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		pr, pw := io.Pipe()
		done := make(chan error, 1)
		go func() { done <- p.Run(ctx, pr) }()

		beaconFrom(recv, p.Addr())
		time.Sleep(50 * time.Millisecond)
		Expect(p.Table().Len()).To(Equal(1))

		time.Sleep(300 * time.Millisecond) // > MaxTargetAge + PruneInterval
		Expect(p.Table().Len()).To(Equal(0))

		_, err = pw.Write([]byte("still alive\n"))
		Expect(err).NotTo(HaveOccurred())
		_ = pw.Close()
		Expect(<-done).To(Succeed())

		Expect(recv.SetReadDeadline(time.Now().Add(20 * time.Millisecond))).To(Succeed())
		buf := make([]byte, wire.PacketMaximumSize)
		_, _, err = recv.ReadFromUDP(buf)
		Expect(err).To(HaveOccurred())
	})
})
