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

// Package parser implements the line-parse projection (spec.md C9): it
// splits a framed datagram's log-line payload into the structured Entry
// used by downstream tools (filter, stats aggregator).
package parser

import (
	"net"
	"strconv"
	"strings"

	"github.com/rbroemeling/udplogger/wire"
)

// Entry is the parsed projection of one framed log datagram (spec.md §3).
// Unset string fields are represented as "" here; the wire literal "-" is
// mapped to "" on parse.
type Entry struct {
	Serial  uint64
	Tag     string
	Version int

	Method           Method
	Status           int
	BodySize         uint32
	BytesIn          uint32
	BytesOut         uint32
	TimeUsed         uint32
	ConnectionStatus ConnectionStatus
	RequestURL       string
	QueryString      string
	RemoteAddress    net.IP
	Host             string // v2 only; "" for v1
	UserAgent        string
	ForwardedFor     string
	Referer          string
	ContentType      string // v2 only; "" for v1
	UserID           uint64
	UserAge          uint16
	UserSex          Sex
	UserLocation     string
	UserType         UserType
}

// unsetLiteral is the wire-level spelling of an absent string field.
const unsetLiteral = "-"

func parseString(s string) string {
	if s == unsetLiteral {
		return ""
	}
	return s
}

func parseUint32(s string) uint32 {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0
	}
	return uint32(v)
}

func parseUint64(s string) uint64 {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseUint16(s string) uint16 {
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0
	}
	return uint16(v)
}

func parseInt(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}

func parseIPv4(s string) net.IP {
	ip := net.ParseIP(s)
	if ip == nil {
		return net.IPv4zero
	}
	if v4 := ip.To4(); v4 != nil {
		return v4
	}
	return net.IPv4zero
}

// fieldSpec is one (field, parser) pair, grounded on the design note in
// spec.md §9 asking for a declarative schema table rather than a raw
// function-pointer array.
type fieldSpec struct {
	name  string
	parse func(e *Entry, raw string)
}

var schemaV1 = []fieldSpec{
	{"method", func(e *Entry, v string) { e.Method = parseMethod(v) }},
	{"status", func(e *Entry, v string) { e.Status = parseInt(v) }},
	{"body_size", func(e *Entry, v string) { e.BodySize = parseUint32(v) }},
	{"bytes_in", func(e *Entry, v string) { e.BytesIn = parseUint32(v) }},
	{"bytes_out", func(e *Entry, v string) { e.BytesOut = parseUint32(v) }},
	{"time_used", func(e *Entry, v string) { e.TimeUsed = parseUint32(v) }},
	{"connection_status", func(e *Entry, v string) { e.ConnectionStatus = parseConnectionStatus(v) }},
	{"request_url", func(e *Entry, v string) { e.RequestURL = parseString(v) }},
	{"query_string", func(e *Entry, v string) { e.QueryString = parseString(v) }},
	{"remote_address", func(e *Entry, v string) { e.RemoteAddress = parseIPv4(v) }},
	{"user_agent", func(e *Entry, v string) { e.UserAgent = parseString(v) }},
	{"forwarded_for", func(e *Entry, v string) { e.ForwardedFor = parseString(v) }},
	{"referer", func(e *Entry, v string) { e.Referer = parseString(v) }},
	{"user_id", func(e *Entry, v string) { e.UserID = parseUint64(v) }},
	{"user_age", func(e *Entry, v string) { e.UserAge = parseUint16(v) }},
	{"user_sex", func(e *Entry, v string) { e.UserSex = parseSex(v) }},
	{"user_location", func(e *Entry, v string) { e.UserLocation = parseString(v) }},
	{"user_type", func(e *Entry, v string) { e.UserType = parseUserType(v) }},
}

// schemaV2 inserts the "host" field after remote_address and "content_type"
// after referer, per spec.md §4.9's versioning rule.
var schemaV2 = []fieldSpec{
	{"method", func(e *Entry, v string) { e.Method = parseMethod(v) }},
	{"status", func(e *Entry, v string) { e.Status = parseInt(v) }},
	{"body_size", func(e *Entry, v string) { e.BodySize = parseUint32(v) }},
	{"bytes_in", func(e *Entry, v string) { e.BytesIn = parseUint32(v) }},
	{"bytes_out", func(e *Entry, v string) { e.BytesOut = parseUint32(v) }},
	{"time_used", func(e *Entry, v string) { e.TimeUsed = parseUint32(v) }},
	{"connection_status", func(e *Entry, v string) { e.ConnectionStatus = parseConnectionStatus(v) }},
	{"request_url", func(e *Entry, v string) { e.RequestURL = parseString(v) }},
	{"query_string", func(e *Entry, v string) { e.QueryString = parseString(v) }},
	{"remote_address", func(e *Entry, v string) { e.RemoteAddress = parseIPv4(v) }},
	{"host", func(e *Entry, v string) { e.Host = parseString(v) }},
	{"user_agent", func(e *Entry, v string) { e.UserAgent = parseString(v) }},
	{"forwarded_for", func(e *Entry, v string) { e.ForwardedFor = parseString(v) }},
	{"referer", func(e *Entry, v string) { e.Referer = parseString(v) }},
	{"content_type", func(e *Entry, v string) { e.ContentType = parseString(v) }},
	{"user_id", func(e *Entry, v string) { e.UserID = parseUint64(v) }},
	{"user_age", func(e *Entry, v string) { e.UserAge = parseUint16(v) }},
	{"user_sex", func(e *Entry, v string) { e.UserSex = parseSex(v) }},
	{"user_location", func(e *Entry, v string) { e.UserLocation = parseString(v) }},
	{"user_type", func(e *Entry, v string) { e.UserType = parseUserType(v) }},
}

// Parse decodes one raw framed datagram into an Entry. Parsing is total
// (P6): it never returns an error. A short field list leaves trailing
// Entry fields at their zero value; a version-2 marker in the first
// post-tag field switches to schemaV2 (spec.md §4.9).
func Parse(datagram []byte) Entry {
	f := wire.ParseFrame(datagram)

	e := Entry{Serial: f.Serial, Tag: f.Tag, Version: 1}

	fields := strings.Split(string(f.Line), string(rune(wire.DelimiterByte)))
	if len(fields) > 0 && strings.EqualFold(fields[0], "v2") {
		e.Version = 2
		fields = fields[1:]
	}

	schema := schemaV1
	if e.Version == 2 {
		schema = schemaV2
	}

	for i, spec := range schema {
		if i >= len(fields) {
			break
		}
		spec.parse(&e, fields[i])
	}

	return e
}
