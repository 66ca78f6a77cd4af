// aviation/airway.go
// Copyright(c) 2024-2026 edst contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"regexp"
	"slices"

	"github.com/CaptainTux/VATSIM-TDLS-backend/util"
)

///////////////////////////////////////////////////////////////////////////
// Airways

type AirwayFix struct {
	Fix string `json:"fix"`
}

// Airway is one contiguous segment of a named airway; an airway name may
// map to multiple disjoint segments.
type Airway struct {
	Name  string      `json:"-"`
	Fixes []AirwayFix `json:"fixes"`
}

// FixesBetween returns the fixes along the airway strictly between fix0
// and fix1, in the order flown from fix0 to fix1. The airway may be flown
// in either direction.
func (a Airway) FixesBetween(fix0, fix1 string) ([]string, bool) {
	start := slices.IndexFunc(a.Fixes, func(f AirwayFix) bool { return f.Fix == fix0 })
	end := slices.IndexFunc(a.Fixes, func(f AirwayFix) bool { return f.Fix == fix1 })
	if start == -1 || end == -1 {
		return nil, false
	}

	var fixes []string
	delta := util.Select(start < end, 1, -1)
	// Index so that we return fixes exclusive of fix0 and fix1
	for i := start + delta; i != end; i += delta {
		fixes = append(fixes, a.Fixes[i].Fix)
	}
	return fixes, true
}

var (
	// J60, Q22, V1, T210, UL9...
	airwayRE = regexp.MustCompile(`^[A-Z]{1,2}[0-9]{1,4}$`)
	// DEEZZ5, GREKI7, CAMRN4...
	procedureRE = regexp.MustCompile(`^[A-Z]{3,5}[0-9][A-Z]?$`)
)

// LooksLikeAirway reports whether the token has the shape of an airway
// identifier. It is used when the navigation database doesn't know about
// the airway.
func LooksLikeAirway(token string) bool {
	return airwayRE.MatchString(token)
}

// LooksLikeProcedure reports whether the token has the shape of a SID or
// STAR identifier.
func LooksLikeProcedure(token string) bool {
	return procedureRE.MatchString(token)
}
