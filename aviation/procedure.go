// aviation/procedure.go
// Copyright(c) 2024-2026 edst contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"slices"
	"strings"
)

// DepartureProcedure is a SID along with the airports it serves and its
// runway transitions.
type DepartureProcedure struct {
	Procedure string           `json:"procedure" yaml:"procedure" msgpack:"procedure"`
	Routes    []ProcedureRoute `json:"routes" yaml:"routes" msgpack:"routes"`
}

type ProcedureRoute struct {
	Airports   []string `json:"airports" yaml:"airports" msgpack:"airports"`
	Transition string   `json:"transition" yaml:"transition" msgpack:"transition"`
}

// AllRunwaysTransition is the transition name for procedure routes that
// are valid from every runway.
const AllRunwaysTransition = "ALL"

func (r ProcedureRoute) ServesAirport(airport string) bool {
	return slices.Contains(r.Airports, strings.ToUpper(airport))
}

// MatchesRunway reports whether the route's transition is for the given
// runway ("RW04L" and "RW04B" style transitions are matched by prefix) or
// is valid for all runways.
func (r ProcedureRoute) MatchesRunway(rwy string) bool {
	if strings.HasPrefix(r.Transition, AllRunwaysTransition) {
		return true
	}
	return slices.ContainsFunc(runwayForms(rwy), func(rwy string) bool {
		prefix := "RW" + rwy
		if !strings.HasPrefix(r.Transition, prefix) {
			return false
		}
		// Don't let runway 1 match RW13L.
		rest := r.Transition[len(prefix):]
		return rest == "" || rest[0] < '0' || rest[0] > '9'
	})
}

func (dp DepartureProcedure) ServesAirport(airport string) bool {
	return slices.ContainsFunc(dp.Routes, func(r ProcedureRoute) bool { return r.ServesAirport(airport) })
}

// MatchesRunway reports whether any of the procedure's routes from the
// given airport can be flown from one of the given runways.
func (dp DepartureProcedure) MatchesRunway(airport string, runways []string) bool {
	for _, r := range dp.Routes {
		if !r.ServesAirport(airport) {
			continue
		}
		if slices.ContainsFunc(runways, r.MatchesRunway) {
			return true
		}
	}
	return false
}

// TidyRunway strips configuration annotations from a runway identifier:
// "13.JFK-ILS-13" gives "13".
func TidyRunway(r string) string {
	r, _, _ = strings.Cut(r, ".")
	r = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(r)), "RW")
	return r
}

// runwayForms returns the spellings a runway may have in transition
// names; CIFP pads runway numbers to two digits but not every source does.
func runwayForms(rwy string) []string {
	rwy = cleanRunway(TidyRunway(rwy))
	if rwy == "" {
		return nil
	}
	forms := []string{rwy}
	if len(rwy) == 1 || (len(rwy) == 2 && (rwy[1] < '0' || rwy[1] > '9')) {
		forms = append(forms, "0"+rwy)
	} else if rwy[0] == '0' {
		forms = append(forms, rwy[1:])
	}
	return forms
}

func cleanRunway(rwy string) string {
	// Find the prefix that is an actual runway specifier: digits possibly
	// followed by L/R/C/W.
	for i, ch := range rwy {
		if ch >= '0' && ch <= '9' {
			continue
		} else if ch == 'L' || ch == 'R' || ch == 'C' || ch == 'W' {
			return rwy[:i+1]
		} else {
			return rwy[:i]
		}
	}
	return rwy
}
