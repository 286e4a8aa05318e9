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

// Package wire implements the udplogger wire format: the framed log
// datagram (serial, tag, trimmed line) and the beacon datagram.
package wire

import (
	"bytes"
	"fmt"
)

const (
	// DelimiterByte separates the fields of a framed log datagram.
	DelimiterByte byte = 0x1E

	// TagMaxLength is the maximum length, in bytes, of a publisher tag.
	TagMaxLength = 10

	// SerialMaxLength bounds the ASCII-decimal serial field (uint64 max is 20 digits).
	SerialMaxLength = 20

	// PacketMaximumSize is the largest outgoing framed datagram, matching
	// spec.md §6: (20+1) + (10+1) + 8192.
	PacketMaximumSize = (SerialMaxLength + 1) + (TagMaxLength + 1) + 8192

	// LogPayloadMaxLength is the longest trimmed log line that fits in a
	// frame whatever the serial and tag lengths, derived from
	// PacketMaximumSize. BuildFrame caps the whole frame at
	// PacketMaximumSize, so a frame with a shorter serial or tag can carry a
	// longer line.
	LogPayloadMaxLength = PacketMaximumSize - (SerialMaxLength + 1) - (TagMaxLength + 1) - 1

	// BeaconIdentifier is the literal string every beacon datagram begins with.
	BeaconIdentifier = "UDPLOGGER BEACON"

	// BeaconPacketSize is the fixed size of a beacon datagram on the wire.
	BeaconPacketSize = 32
)

// Trim shrinks buf in place to the largest prefix whose final byte is not
// ASCII whitespace, and returns the resulting length. It satisfies P8
// (trim(trim(x)) == trim(x)) because it only ever removes trailing
// whitespace bytes.
func Trim(buf []byte) int {
	n := len(buf)
	for n > 0 && isSpace(buf[n-1]) {
		n--
	}
	return n
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	default:
		return false
	}
}

// BuildBeacon returns a BeaconPacketSize-byte datagram beginning with
// BeaconIdentifier; the remaining bytes are zero and must be ignored by
// receivers (spec.md §6).
func BuildBeacon() []byte {
	b := make([]byte, BeaconPacketSize)
	copy(b, BeaconIdentifier)
	return b
}

// IsBeacon reports whether buf's leading bytes match BeaconIdentifier.
// Any datagram shape other than an exact prefix match is rejected
// (spec.md §4.4: "Ignore datagrams of any other shape").
func IsBeacon(buf []byte) bool {
	if len(buf) < len(BeaconIdentifier) {
		return false
	}
	return bytes.Equal(buf[:len(BeaconIdentifier)], []byte(BeaconIdentifier))
}

// BuildFrame assembles a framed log datagram: "<serial>" US tag US line NUL.
// If the assembled frame would exceed PacketMaximumSize, the log payload
// is truncated (never the serial or tag, per invariant I3) so the frame
// still fits and is still NUL-terminated (invariant I2).
func BuildFrame(serial uint64, tag string, line []byte) []byte {
	if len(tag) > TagMaxLength {
		tag = tag[:TagMaxLength]
	}

	n := Trim(line)
	line = line[:n]

	serialStr := fmt.Sprintf("%d", serial)

	head := len(serialStr) + 1 + len(tag) + 1
	maxPayload := PacketMaximumSize - head - 1
	if len(line) > maxPayload {
		line = line[:maxPayload]
		// Truncation must never leave a trailing partial whitespace run
		// that re-triggers Trim on the receive side to drop more than the
		// sender intended; re-trim once after cut.
		n = Trim(line)
		line = line[:n]
	}

	buf := make([]byte, 0, head+len(line)+1)
	buf = append(buf, serialStr...)
	buf = append(buf, DelimiterByte)
	buf = append(buf, tag...)
	buf = append(buf, DelimiterByte)
	buf = append(buf, line...)
	buf = append(buf, 0)
	return buf
}

// Frame is the decoded form of a framed log datagram's outer envelope:
// serial, tag and the remaining payload (not yet NUL-trimmed by the caller
// if the caller wants raw bytes; ParseFrame already strips the NUL).
type Frame struct {
	Serial uint64
	Tag    string
	Line   []byte
}

// ParseFrame splits a raw datagram on the two leading delimiter bytes and
// returns the decoded envelope. Parsing is total (P6): a malformed serial
// becomes 0, a missing delimiter yields an empty tag and/or line rather
// than an error, and everything from the first NUL byte onward (or the
// end of buf if there is none) is dropped.
func ParseFrame(buf []byte) Frame {
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}

	var f Frame

	i := bytes.IndexByte(buf, DelimiterByte)
	if i < 0 {
		f.Serial = parseUint(buf)
		return f
	}
	f.Serial = parseUint(buf[:i])
	rest := buf[i+1:]

	j := bytes.IndexByte(rest, DelimiterByte)
	if j < 0 {
		f.Tag = string(rest)
		return f
	}
	f.Tag = string(rest[:j])
	f.Line = rest[j+1:]
	return f
}

func parseUint(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0
		}
		v = v*10 + uint64(c-'0')
	}
	return v
}
