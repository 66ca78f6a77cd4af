// adr/amend.go
// Copyright(c) 2024-2026 edst contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package adr

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/CaptainTux/VATSIM-TDLS-backend/aviation"
)

// AmendmentResult is an ADR applied to a filed route: the part of the ADR
// to issue followed by the remainder of the filed route.
type AmendmentResult struct {
	AdrAmendment string   `json:"adr_amendment"`
	Route        string   `json:"route"`
	Order        int      `json:"order"`
	RouteGroups  []string `json:"route_groups"`
}

// Amend applies the ADR to the filed route. If the filed route already
// starts with the ADR's route, no amendment is needed and the result has
// an empty AdrAmendment. If none of the ADR's transitions fire, false is
// returned along with a result holding the unchanged, formatted route.
func (e *Engine) Amend(filedRoute string, a ADR) (AmendmentResult, bool) {
	result := AmendmentResult{Order: a.Order, RouteGroups: slices.Clone(a.RouteGroups)}
	r := ParseFiledRoute(filedRoute, e.nav)

	if isRoutePrefix(a.Route, r) {
		result.Route = e.nav.FormatRoute(r.literal)
		return result, true
	}

	m, ok := Evaluate(a, r, e.lg)
	if !ok {
		e.lg.Debug("no ADR transition fired", slog.String("adr", a.Id), slog.String("route", filedRoute))
		result.Route = e.nav.FormatRoute(r.literal)
		return result, false
	}

	tail, ok := r.TailFrom(m.Anchor)
	if !ok {
		// Append anchors are on the route by construction and the others
		// are literal tokens, so this shouldn't happen.
		e.lg.Warnf("%s: anchor %s not on filed route %q", a.Id, m.Anchor, filedRoute)
		tail = r.literal
	}

	result.AdrAmendment = strings.TrimRight(Slice(a, m.Anchor), ". \t")
	result.Route = e.nav.FormatRoute(tail)
	return result, true
}

// isRoutePrefix reports whether the ADR route's tokens begin the filed
// route; separators and DCT are ignored.
func isRoutePrefix(adrRoute string, r FiledRoute) bool {
	tokens := aviation.RouteTokens(adrRoute)
	return len(tokens) > 0 && len(tokens) <= len(r.literal) && slices.Equal(tokens, r.literal[:len(tokens)])
}
