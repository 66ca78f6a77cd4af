// aviation/aviation_test.go
// Copyright(c) 2024-2026 edst contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func makeTestNavDB() *NavDatabase {
	db := MakeNavDatabase()
	db.Merge(NavDataFile{
		Airports: map[string]Airport{
			"KJFK": {Name: "John F Kennedy Intl", ARTCC: "ZNY", Runways: []string{"4L", "4R", "13L", "13R", "22L", "22R", "31L", "31R"}},
			"KBOS": {Name: "Boston Logan Intl", ARTCC: "ZBW"},
		},
		Fixes: []string{"LGA", "ORW", "MERIT", "GREKI", "BDR", "WAVEY"},
		Airways: map[string][]Airway{
			"J60": {{Fixes: []AirwayFix{{"LGA"}, {"DPK"}, {"CMK"}, {"ORW"}}}},
			"Q22": {
				{Fixes: []AirwayFix{{"WAVEY"}, {"SHIPP"}, {"ZIZZI"}}},
				{Fixes: []AirwayFix{{"BDR"}, {"HFD"}, {"PUT"}}},
			},
		},
		AircraftClasses: map[string][]string{
			"B738": {"NATJET"},
			"C172": {"NATPROP"},
		},
	})
	return db
}

func TestRouteTokens(t *testing.T) {
	for _, tc := range []struct {
		route string
		want  []string
	}{
		{"KJFK DCT LGA J60 ORW", []string{"KJFK", "LGA", "J60", "ORW"}},
		{"KJFK..LGA.J60.ORW", []string{"KJFK", "LGA", "J60", "ORW"}},
		{"  kjfk  merit\tbdr.. ", []string{"KJFK", "MERIT", "BDR"}},
		{"", nil},
	} {
		if diff := cmp.Diff(tc.want, RouteTokens(tc.route)); diff != "" {
			t.Errorf("RouteTokens(%q) mismatch (-want +got):\n%s", tc.route, diff)
		}
	}
}

func TestExpandRoute(t *testing.T) {
	db := makeTestNavDB()

	for _, tc := range []struct {
		route string
		want  []string
	}{
		{"KJFK DCT LGA J60 ORW", []string{"KJFK", "LGA", "DPK", "CMK", "ORW"}},
		{"ORW J60 LGA", []string{"ORW", "CMK", "DPK", "LGA"}},
		{"KJFK..BDR.Q22.PUT", []string{"KJFK", "BDR", "HFD", "PUT"}},
		{"KJFK DEEZZ5 CANDR J60 ORW", []string{"KJFK", "CANDR", "ORW"}},
		{"J60 LGA", []string{"LGA"}},
	} {
		if diff := cmp.Diff(tc.want, db.ExpandRoute(tc.route)); diff != "" {
			t.Errorf("ExpandRoute(%q) mismatch (-want +got):\n%s", tc.route, diff)
		}
	}
}

func TestFormatRoute(t *testing.T) {
	db := makeTestNavDB()

	for _, tc := range []struct {
		tokens []string
		want   string
	}{
		{[]string{"KJFK", "DCT", "LGA", "J60", "ORW"}, "KJFK..LGA.J60.ORW"},
		{[]string{"KJFK DEEZZ5 CANDR"}, "KJFK.DEEZZ5.CANDR"},
		{[]string{"LGA"}, "LGA"},
		{nil, ""},
	} {
		if got := db.FormatRoute(tc.tokens); got != tc.want {
			t.Errorf("FormatRoute(%q) = %q, expected %q", tc.tokens, got, tc.want)
		}
	}
}

func TestFormatRouteStable(t *testing.T) {
	db := makeTestNavDB()

	for _, r := range []string{
		"KJFK DCT LGA J60 ORW",
		"KJFK..MERIT..BDR.Q22.PUT",
		"KJFK DEEZZ5 CANDR DCT GREKI J60 ORW KBOS",
		"LGA",
	} {
		once := db.FormatRoute([]string{r})
		twice := db.FormatRoute(RouteTokens(once))
		if once != twice {
			t.Errorf("%q: formatted %q, reformatted %q", r, once, twice)
		}
		// Expanded routes are all fixes, so they format as direct legs
		// and are equally stable.
		exp := db.FormatRoute(db.ExpandRoute(r))
		if again := db.FormatRoute([]string{exp}); again != exp {
			t.Errorf("%q: expanded %q, reformatted %q", r, exp, again)
		}
	}
}

func TestAirwayFixesBetween(t *testing.T) {
	aw := Airway{Name: "J60", Fixes: []AirwayFix{{"LGA"}, {"DPK"}, {"CMK"}, {"ORW"}}}

	if got, ok := aw.FixesBetween("LGA", "ORW"); !ok || !slices.Equal(got, []string{"DPK", "CMK"}) {
		t.Errorf("forward: %v, %v", got, ok)
	}
	if got, ok := aw.FixesBetween("CMK", "LGA"); !ok || !slices.Equal(got, []string{"DPK"}) {
		t.Errorf("backward: %v, %v", got, ok)
	}
	if got, ok := aw.FixesBetween("DPK", "CMK"); !ok || len(got) != 0 {
		t.Errorf("adjacent: %v, %v", got, ok)
	}
	if _, ok := aw.FixesBetween("LGA", "BDR"); ok {
		t.Errorf("expected failure for fix not on airway")
	}
}

func TestLookupAirport(t *testing.T) {
	db := makeTestNavDB()

	if ap, ok := db.LookupAirport("JFK"); !ok || ap.Id != "KJFK" || ap.Region() != "zny" {
		t.Errorf("JFK lookup: %+v, %v", ap, ok)
	}
	if ap, ok := db.LookupAirport("kbos"); !ok || ap.ARTCC != "ZBW" {
		t.Errorf("kbos lookup: %+v, %v", ap, ok)
	}
	if _, ok := db.LookupAirport("XXXX"); ok {
		t.Errorf("unexpected airport found")
	}
	if !db.Airports["KJFK"].HasRunway("RW04L") || db.Airports["KJFK"].HasRunway("9") {
		t.Errorf("HasRunway mismatch")
	}
}

func TestNationalityClasses(t *testing.T) {
	db := makeTestNavDB()

	for actype, want := range map[string][]string{
		"B738":     {"NATJET"},
		"B738/L":   {"NATJET"},
		"H/B738/L": {"NATJET"},
		"c172":     {"NATPROP"},
		"ZZZZ":     nil,
	} {
		if diff := cmp.Diff(want, db.NationalityClasses(actype)); diff != "" {
			t.Errorf("%s: mismatch (-want +got):\n%s", actype, diff)
		}
	}
}

func TestProcedureRunwayMatch(t *testing.T) {
	for _, tc := range []struct {
		transition string
		rwy        string
		want       bool
	}{
		{"RW04L", "4L", true},
		{"RW04L", "04L", true},
		{"RW04L", "RW04L", true},
		{"RW04L", "4R", false},
		{"RW4L", "04L", true},
		{"RW13L", "1", false},
		{"RW13L", "13", true},
		{"RW04B", "4", true},
		{"ALL", "31R", true},
		{"RW31R", "", false},
	} {
		r := ProcedureRoute{Airports: []string{"KJFK"}, Transition: tc.transition}
		if got := r.MatchesRunway(tc.rwy); got != tc.want {
			t.Errorf("%s / %q: got %v, expected %v", tc.transition, tc.rwy, got, tc.want)
		}
	}

	dp := DepartureProcedure{
		Procedure: "DEEZZ5",
		Routes: []ProcedureRoute{
			{Airports: []string{"KLGA"}, Transition: "RW04"},
			{Airports: []string{"KJFK"}, Transition: "RW31L"},
		},
	}
	if !dp.ServesAirport("kjfk") || dp.ServesAirport("KEWR") {
		t.Errorf("ServesAirport mismatch")
	}
	if dp.MatchesRunway("KJFK", []string{"4"}) {
		t.Errorf("runway 4 transition only serves KLGA")
	}
	if !dp.MatchesRunway("KJFK", []string{"22R", "31L"}) {
		t.Errorf("expected 31L to match")
	}
}

func TestLoadNavDatabase(t *testing.T) {
	dir := t.TempDir()
	write := func(name, contents string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(contents), 0o600); err != nil {
			t.Fatal(err)
		}
		return p
	}

	base := write("base.json", `{
  "airports": {"KJFK": {"artcc": "ZNY"}},
  "fixes": ["LGA", "ORW"],
  "airways": {"J60": [{"fixes": [{"fix": "LGA"}, {"fix": "DPK"}, {"fix": "ORW"}]}]},
  "aircraft_classes": {"B738": ["NATJET"]}
}`)
	override := write("override.json", `{"aircraft_classes": {"B738": ["NATJET", "NATUSA"]}}`)

	db, err := LoadNavDatabase(nil, base, override)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"NATJET", "NATUSA"}, db.NationalityClasses("B738")); diff != "" {
		t.Errorf("later files should override (-want +got):\n%s", diff)
	}
	if !db.IsFix("DPK") || !db.IsAirway("J60") {
		t.Errorf("airway fixes should be registered")
	}

	bad := write("bad.json", `{"airports": {"KXYZ": {}}}`)
	if _, err := LoadNavDatabase(nil, bad); !errors.Is(err, ErrInvalidNavData) {
		t.Errorf("expected ErrInvalidNavData, got %v", err)
	}
	if _, err := LoadNavDatabase(nil, write("nav.yaml", "")); !errors.Is(err, ErrUnsupportedNavFormat) {
		t.Errorf("expected ErrUnsupportedNavFormat, got %v", err)
	}
	if _, err := LoadNavDatabase(nil); !errors.Is(err, ErrNoNavDataFiles) {
		t.Errorf("expected ErrNoNavDataFiles, got %v", err)
	}
}
