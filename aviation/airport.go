// aviation/airport.go
// Copyright(c) 2024-2026 edst contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"slices"
	"strings"
)

type Airport struct {
	Id      string   `json:"-"`
	Name    string   `json:"name"`
	Country string   `json:"country"`
	ARTCC   string   `json:"artcc"`
	Runways []string `json:"runways"`
}

// Region returns the catalog partition for the airport: its owning ARTCC,
// lower-cased.
func (ap Airport) Region() string {
	return strings.ToLower(ap.ARTCC)
}

func (ap Airport) HasRunway(rwy string) bool {
	forms := runwayForms(rwy)
	return slices.ContainsFunc(ap.Runways, func(r string) bool {
		return slices.Contains(forms, cleanRunway(TidyRunway(r)))
	})
}

// TidyAircraftType returns the bare ICAO type designator from a filed
// aircraft type that may carry a weight class prefix and/or an equipment
// suffix: "H/B744/L" and "B744/L" both give "B744".
func TidyAircraftType(actype string) string {
	f := strings.Split(strings.ToUpper(strings.TrimSpace(actype)), "/")
	switch len(f) {
	case 1:
		return f[0]
	case 2:
		if len(f[0]) == 1 {
			return f[1]
		}
		return f[0]
	default:
		return f[1]
	}
}
