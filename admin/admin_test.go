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

package admin_test

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rbroemeling/udplogger/admin"
	"github.com/rbroemeling/udplogger/publisher"
	"github.com/rbroemeling/udplogger/socket"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Server", func() {
	var p *publisher.Publisher

	BeforeEach(func() {
		var err error
		p, err = publisher.New(publisher.Config{
			ListenPort:    0,
			MaxTargetAge:  time.Second,
			PruneInterval: 100 * time.Millisecond,
		}, nil, nil)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		_ = p.Close()
	})

	It("serves /healthz, /metrics and /targets", func() {
		lc, err := socket.Bind(0)
		Expect(err).NotTo(HaveOccurred())
		addr := lc.LocalAddr().(*net.UDPAddr)
		Expect(lc.Close()).To(Succeed())

		srv := admin.New(addr.String(), p)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() { _ = srv.Run(ctx) }()
		time.Sleep(50 * time.Millisecond)

		resp, err := http.Get("http://" + addr.String() + "/healthz")
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		resp, err = http.Get("http://" + addr.String() + "/metrics")
		Expect(err).NotTo(HaveOccurred())
		body, _ := io.ReadAll(resp.Body)
		Expect(string(body)).To(ContainSubstring("udplogger_publisher_targets_current"))

		resp, err = http.Get("http://" + addr.String() + "/targets")
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
	})
})
