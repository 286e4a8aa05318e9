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

package logger_test

import (
	"bytes"

	"github.com/rbroemeling/udplogger/logger"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Logger", func() {
	It("writes through to the configured output", func() {
		var buf bytes.Buffer
		l := logger.New("test", logger.Options{Level: logger.DebugLevel, Output: &buf})
		l.Info("hello")
		Expect(buf.String()).To(ContainSubstring("hello"))
		Expect(buf.String()).To(ContainSubstring("component=test"))
	})

	It("suppresses levels below the configured threshold", func() {
		var buf bytes.Buffer
		l := logger.New("test", logger.Options{Level: logger.WarnLevel, Output: &buf})
		l.Info("should not appear")
		Expect(buf.String()).To(BeEmpty())
	})

	It("WarnErr is a no-op on a nil error", func() {
		var buf bytes.Buffer
		l := logger.New("test", logger.Options{Level: logger.WarnLevel, Output: &buf})
		l.WarnErr("msg", nil)
		Expect(buf.String()).To(BeEmpty())
	})

	It("ParseLevel defaults to InfoLevel for unrecognized input", func() {
		Expect(logger.ParseLevel("bogus")).To(Equal(logger.InfoLevel))
		Expect(logger.ParseLevel("DEBUG")).To(Equal(logger.DebugLevel))
	})
})
