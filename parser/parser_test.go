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

package parser_test

import (
	"bytes"
	"net"
	"strings"

	"github.com/rbroemeling/udplogger/parser"
	"github.com/rbroemeling/udplogger/wire"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type stringer interface {
	String() string
}

var _ = Describe("Parse", func() {
	It("matches the S5 scenario exactly", func() {
		raw := "42\x1Eweb\x1Ev2\x1EGET\x1E200\x1E123\x1E0\x1E0\x1E1\x1E+\x1E/a\x1E-\x1E1.2.3.4\x1Eexample.com\x1Eagent\x1E-\x1E-\x1Etext/html\x1E7\x1E21\x1Emale\x1E100\x1Eplus"

		e := parser.Parse([]byte(raw))

		Expect(e.Serial).To(Equal(uint64(42)))
		Expect(e.Tag).To(Equal("web"))
		Expect(e.Version).To(Equal(2))
		Expect(e.Method).To(Equal(parser.MethodGet))
		Expect(e.Status).To(Equal(200))
		Expect(e.BodySize).To(Equal(uint32(123)))
		Expect(e.Host).To(Equal("example.com"))
		Expect(e.ContentType).To(Equal("text/html"))
		Expect(e.QueryString).To(Equal(""))
		Expect(e.ForwardedFor).To(Equal(""))
		Expect(e.Referer).To(Equal(""))
		Expect(e.RemoteAddress.String()).To(Equal("1.2.3.4"))
		Expect(e.UserAgent).To(Equal("agent"))
		Expect(e.UserID).To(Equal(uint64(7)))
		Expect(e.UserAge).To(Equal(uint16(21)))
		Expect(e.UserSex).To(Equal(parser.SexMale))
		Expect(e.UserLocation).To(Equal("100"))
		Expect(e.UserType).To(Equal(parser.UserTypePlus))
	})

	It("defaults version to 1 and leaves host/content-type empty", func() {
		frame := wire.BuildFrame(1, "web", []byte("GET\x1E200\x1E0\x1E0\x1E0\x1E0\x1E+\x1E/\x1E-\x1E1.2.3.4\x1Eagent\x1E-\x1E-\x1E-\x1E0\x1Emale\x1E-\x1Eanon"))
		e := parser.Parse(frame)
		Expect(e.Version).To(Equal(1))
		Expect(e.Host).To(Equal(""))
		Expect(e.ContentType).To(Equal(""))
		Expect(e.Method).To(Equal(parser.MethodGet))
	})

	It("accepts every byte sequence up to PacketMaximumSize without error (P6)", func() {
		garbage := bytes.Repeat([]byte{0xFF, 0x00, 0x1E, 'x'}, wire.PacketMaximumSize/4)
		Expect(func() { parser.Parse(garbage) }).ToNot(Panic())
	})

	It("defaults unparseable integer fields to zero", func() {
		frame := wire.BuildFrame(1, "", []byte("GET\x1Enotanumber\x1E0\x1E0\x1E0\x1E0\x1E+\x1E/\x1E-\x1E1.2.3.4\x1Eagent\x1E-\x1E-\x1E-\x1E0\x1Emale\x1E-\x1Eanon"))
		e := parser.Parse(frame)
		Expect(e.Status).To(Equal(0))
	})

	It("defaults an unparseable remote address to the zero address", func() {
		frame := wire.BuildFrame(1, "", []byte("GET\x1E200\x1E0\x1E0\x1E0\x1E0\x1E+\x1E/\x1E-\x1Enotanip\x1Eagent\x1E-\x1E-\x1E-\x1E0\x1Emale\x1E-\x1Eanon"))
		e := parser.Parse(frame)
		Expect(e.RemoteAddress.Equal(net.IPv4zero)).To(BeTrue())
	})

	DescribeTable("enum round-trip (P7)",
		func(canonical string, parsed stringer) {
			Expect(strings.ToLower(parsed.String())).To(Equal(strings.ToLower(canonical)))
		},
		Entry("GET", "GET", parser.MethodGet),
		Entry("POST", "POST", parser.MethodPost),
		Entry("male", "male", parser.SexMale),
		Entry("plus", "plus", parser.UserTypePlus),
	)
})
