// The MIT License (MIT)
//
// # Copyright (c) 2016 xtaci
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package transport resolves endpoints and opens the UDP sockets that
// carry wire frames, including multicast egress/ingress.
package transport

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Endpoint is a parsed IPv4 address and port, e.g. from "239.1.1.1:5000".
type Endpoint struct {
	IP   [4]byte
	Port uint16
}

// IsMulticast reports whether ip falls in 224.0.0.0/4.
func IsMulticast(ip [4]byte) bool {
	return ip[0] >= 224 && ip[0] <= 239
}

// ParseIPv4 parses a dotted-quad address with no surrounding whitespace.
func ParseIPv4(s string) ([4]byte, bool) {
	var out [4]byte
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return out, false
	}
	for i, p := range parts {
		if p == "" {
			return out, false
		}
		v, err := strconv.ParseUint(p, 10, 16)
		if err != nil || v > 255 {
			return out, false
		}
		out[i] = byte(v)
	}
	return out, true
}

// ParseEndpoint parses "a.b.c.d:port" with port in [1,65535].
func ParseEndpoint(s string) (Endpoint, bool) {
	colon := strings.LastIndexByte(s, ':')
	if colon < 0 {
		return Endpoint{}, false
	}
	ipPart, portPart := s[:colon], s[colon+1:]
	if ipPart == "" || portPart == "" {
		return Endpoint{}, false
	}
	ip, ok := ParseIPv4(ipPart)
	if !ok {
		return Endpoint{}, false
	}
	p, err := strconv.ParseUint(portPart, 10, 16)
	if err != nil || p == 0 {
		return Endpoint{}, false
	}
	return Endpoint{IP: ip, Port: uint16(p)}, true
}

// String renders the endpoint back to "a.b.c.d:port".
func (e Endpoint) String() string {
	return strconv.Itoa(int(e.IP[0])) + "." + strconv.Itoa(int(e.IP[1])) + "." +
		strconv.Itoa(int(e.IP[2])) + "." + strconv.Itoa(int(e.IP[3])) + ":" + strconv.Itoa(int(e.Port))
}

// ErrInvalidEndpoint is returned when an endpoint string fails to parse.
var ErrInvalidEndpoint = errors.New("transport: invalid endpoint")
