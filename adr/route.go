// adr/route.go
// Copyright(c) 2024-2026 edst contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package adr

import (
	"slices"

	"github.com/CaptainTux/VATSIM-TDLS-backend/aviation"
)

// FiledRoute holds both views of a filed route: the literal tokens as
// filed and the expanded sequence of fixes, both derived from the same
// route text.
type FiledRoute struct {
	text     string
	literal  []string
	expanded []string
	// For each expanded fix, the index of the literal token the route
	// continues with after it.
	resume []int
}

// ParseFiledRoute tokenizes the route and expands it with rf.
func ParseFiledRoute(route string, rf RouteFormatter) FiledRoute {
	r := FiledRoute{
		text:     route,
		literal:  aviation.RouteTokens(route),
		expanded: rf.ExpandRoute(route),
	}

	// Walk the expansion alongside the literal tokens. Fixes that are
	// literal tokens advance the cursor; fixes that were inserted by
	// airway expansion resume at the airway token.
	cursor := 0
	for _, fix := range r.expanded {
		next := cursor
		for next < len(r.literal) && !slices.Contains(r.expanded, r.literal[next]) {
			// Airway or procedure token.
			next++
		}
		if next < len(r.literal) && r.literal[next] == fix {
			cursor = next + 1
		}
		r.resume = append(r.resume, cursor)
	}
	return r
}

func (r FiledRoute) Text() string { return r.text }

func (r FiledRoute) Literal() []string { return slices.Clone(r.literal) }

func (r FiledRoute) Expanded() []string { return slices.Clone(r.expanded) }

func (r FiledRoute) HasLiteral(fix string) bool { return slices.Contains(r.literal, fix) }

func (r FiledRoute) HasExpanded(fix string) bool { return slices.Contains(r.expanded, fix) }

// TailFrom returns the literal route tokens starting at the given fix.
// If the fix is only reached along an airway, the tail starts with the
// fix followed by the rest of the literal route from that airway on, so
// that TailFrom("DPK") on "KJFK LGA J60 ORW" gives "DPK J60 ORW".
func (r FiledRoute) TailFrom(fix string) ([]string, bool) {
	if i := slices.Index(r.literal, fix); i != -1 {
		return slices.Clone(r.literal[i:]), true
	}
	if j := slices.Index(r.expanded, fix); j != -1 {
		return append([]string{fix}, r.literal[r.resume[j]:]...), true
	}
	return nil, false
}
