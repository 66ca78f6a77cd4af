// aviation/route.go
// Copyright(c) 2024-2026 edst contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"strings"
	"unicode"

	"github.com/CaptainTux/VATSIM-TDLS-backend/util"
)

// DirectToken is the filed-route token for direct legs; it carries no
// fix and is dropped when a route is tokenized.
const DirectToken = "DCT"

// RouteTokens splits a route string into its tokens. Both the filed form
// ("KJFK DCT LGA J60 ORW") and the dotted EDST form ("KJFK..LGA.J60.ORW")
// are accepted.
func RouteTokens(route string) []string {
	fields := strings.FieldsFunc(strings.ToUpper(route), func(r rune) bool {
		return r == '.' || unicode.IsSpace(r)
	})
	return util.FilterSlice(fields, func(f string) bool { return f != DirectToken })
}

// isConnector reports whether the token joins fixes rather than being a
// fix itself: airways and procedures.
func (db *NavDatabase) isConnector(token string) bool {
	if db.IsAirway(token) {
		return true
	}
	if db.IsFix(token) {
		return false
	}
	return LooksLikeAirway(token) || LooksLikeProcedure(token)
}

// ExpandRoute returns the full sequence of fixes along the route: airway
// references are replaced with the fixes they pass through and procedure
// and airway tokens themselves are dropped.
func (db *NavDatabase) ExpandRoute(route string) []string {
	tokens := RouteTokens(route)

	var fixes []string
	for i, tok := range tokens {
		if !db.isConnector(tok) {
			fixes = append(fixes, tok)
			continue
		}

		if i == 0 || i+1 == len(tokens) {
			// Nothing to expand between.
			continue
		}
		for _, airway := range db.Airways[tok] {
			if between, ok := airway.FixesBetween(tokens[i-1], tokens[i+1]); ok {
				fixes = append(fixes, between...)
				break
			}
		}
	}
	return fixes
}

// FormatRoute returns the canonical dotted form of the route given by the
// tokens: a single dot next to airways and procedures and two dots
// between consecutive fixes. Tokens may themselves hold dotted route
// text; formatting an already formatted route leaves it unchanged.
func (db *NavDatabase) FormatRoute(tokens []string) string {
	toks := RouteTokens(strings.Join(tokens, " "))

	var sb strings.Builder
	prevConnector := false
	for i, tok := range toks {
		connector := db.isConnector(tok)
		if i > 0 {
			sb.WriteString(util.Select(connector || prevConnector, ".", ".."))
		}
		sb.WriteString(tok)
		prevConnector = connector
	}
	return sb.String()
}
