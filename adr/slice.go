// adr/slice.go
// Copyright(c) 2024-2026 edst contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package adr

import (
	"slices"
	"strings"
	"unicode"
)

// routeToken is a token of route text along with its byte offset.
type routeToken struct {
	text  string
	start int
}

func tokenizeRoute(route string) []routeToken {
	var tokens []routeToken
	start := -1
	for i, ch := range route {
		if ch == '.' || unicode.IsSpace(ch) {
			if start != -1 {
				tokens = append(tokens, routeToken{text: strings.ToUpper(route[start:i]), start: start})
				start = -1
			}
		} else if start == -1 {
			start = i
		}
	}
	if start != -1 {
		tokens = append(tokens, routeToken{text: strings.ToUpper(route[start:]), start: start})
	}
	return tokens
}

// Slice returns the part of the ADR's route text that precedes the given
// fix. If the fix isn't in the route text, it is located in the ADR's
// expanded fixes and the text is cut before the first fix after it that
// is in the route text; if there is no such fix, the whole route is
// returned. Matching is by whole token, so "ORW" does not match in
// "ORWEL".
func Slice(a ADR, fix string) string {
	tokens := tokenizeRoute(a.Route)
	tokenStart := func(fix string) (int, bool) {
		idx := slices.IndexFunc(tokens, func(t routeToken) bool { return t.text == fix })
		if idx == -1 {
			return 0, false
		}
		return tokens[idx].start, true
	}

	if start, ok := tokenStart(fix); ok {
		return a.Route[:start]
	}

	if idx := slices.Index(a.RouteFixes, fix); idx != -1 {
		for _, next := range a.RouteFixes[idx+1:] {
			if start, ok := tokenStart(next); ok {
				return a.Route[:start]
			}
		}
	}

	return a.Route
}
