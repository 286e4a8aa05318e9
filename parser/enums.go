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

package parser

import "strings"

// Method is the HTTP request method enum (spec.md §6).
type Method uint8

const (
	MethodUnknown Method = iota
	MethodOptions
	MethodGet
	MethodHead
	MethodPost
	MethodPut
	MethodDelete
	MethodTrace
	MethodConnect
)

var methodNames = map[Method]string{
	MethodUnknown: "unknown",
	MethodOptions: "OPTIONS",
	MethodGet:     "GET",
	MethodHead:    "HEAD",
	MethodPost:    "POST",
	MethodPut:     "PUT",
	MethodDelete:  "DELETE",
	MethodTrace:   "TRACE",
	MethodConnect: "CONNECT",
}

func (m Method) String() string {
	if s, ok := methodNames[m]; ok {
		return s
	}
	return "unknown"
}

func parseMethod(s string) Method {
	switch strings.ToUpper(s) {
	case "OPTIONS":
		return MethodOptions
	case "GET":
		return MethodGet
	case "HEAD":
		return MethodHead
	case "POST":
		return MethodPost
	case "PUT":
		return MethodPut
	case "DELETE":
		return MethodDelete
	case "TRACE":
		return MethodTrace
	case "CONNECT":
		return MethodConnect
	default:
		return MethodUnknown
	}
}

// ConnectionStatus is the connection-state enum (spec.md §6).
type ConnectionStatus uint8

const (
	ConnectionUnknown ConnectionStatus = iota
	ConnectionAborted
	ConnectionKeepAlive
	ConnectionClose
)

func (c ConnectionStatus) String() string {
	switch c {
	case ConnectionAborted:
		return "aborted"
	case ConnectionKeepAlive:
		return "keep_alive"
	case ConnectionClose:
		return "close"
	default:
		return "unknown"
	}
}

func parseConnectionStatus(s string) ConnectionStatus {
	switch strings.ToUpper(s) {
	case "X":
		return ConnectionAborted
	case "+":
		return ConnectionKeepAlive
	case "-":
		return ConnectionClose
	default:
		return ConnectionUnknown
	}
}

// Sex is the user-sex enum (spec.md §6).
type Sex uint8

const (
	SexUnknown Sex = iota
	SexMale
	SexFemale
)

func (s Sex) String() string {
	switch s {
	case SexMale:
		return "male"
	case SexFemale:
		return "female"
	default:
		return "unknown"
	}
}

func parseSex(s string) Sex {
	switch strings.ToUpper(s) {
	case "MALE":
		return SexMale
	case "FEMALE":
		return SexFemale
	default:
		return SexUnknown
	}
}

// UserType is the user-type enum (spec.md §6).
type UserType uint8

const (
	UserTypeUnknown UserType = iota
	UserTypePlus
	UserTypeUser
	UserTypeAnon
)

func (u UserType) String() string {
	switch u {
	case UserTypePlus:
		return "plus"
	case UserTypeUser:
		return "user"
	case UserTypeAnon:
		return "anon"
	default:
		return "unknown"
	}
}

func parseUserType(s string) UserType {
	switch strings.ToUpper(s) {
	case "PLUS":
		return UserTypePlus
	case "USER":
		return UserTypeUser
	case "ANON":
		return UserTypeAnon
	default:
		return UserTypeUnknown
	}
}
