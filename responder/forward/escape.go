// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package forward

import "strings"

const upperhex = "0123456789ABCDEF"

// Percent-encoding here must reproduce the sigv4 canonical form byte for
// byte, or the relay's signature check rejects the callback. net/url is not
// usable for this: QueryEscape emits '+' for spaces and lowercase hex escapes.

func shouldEscape(c byte) bool {
	if 'A' <= c && c <= 'Z' || 'a' <= c && c <= 'z' || '0' <= c && c <= '9' {
		return false
	}
	switch c {
	case '-', '.', '_', '~':
		return false
	}
	return true
}

func escape(s string, keepSlash bool) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !shouldEscape(c) || (keepSlash && c == '/') {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(upperhex[c>>4])
		sb.WriteByte(upperhex[c&0xf])
	}
	return sb.String()
}

// escapePath encodes a decoded object path, keeping segment separators.
func escapePath(s string) string {
	return escape(s, true)
}

// escapeComponent encodes one decoded query key or value.
func escapeComponent(s string) string {
	return escape(s, false)
}
