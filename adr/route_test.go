// adr/route_test.go
// Copyright(c) 2024-2026 edst contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package adr

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFiledRoute(t *testing.T) {
	nav := makeTestNav()
	r := ParseFiledRoute("KJFK DCT LGA J60 ORW DCT BOS", nav)

	if r.Text() != "KJFK DCT LGA J60 ORW DCT BOS" {
		t.Errorf("Text() = %q", r.Text())
	}
	if diff := cmp.Diff([]string{"KJFK", "LGA", "J60", "ORW", "BOS"}, r.Literal()); diff != "" {
		t.Errorf("literal mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"KJFK", "LGA", "DPK", "CMK", "ORW", "BOS"}, r.Expanded()); diff != "" {
		t.Errorf("expanded mismatch (-want +got):\n%s", diff)
	}
	if !r.HasLiteral("LGA") || r.HasLiteral("DPK") || !r.HasExpanded("DPK") {
		t.Errorf("Has* mismatch")
	}

	for fix, want := range map[string][]string{
		"KJFK": {"KJFK", "LGA", "J60", "ORW", "BOS"},
		"LGA":  {"LGA", "J60", "ORW", "BOS"},
		"DPK":  {"DPK", "J60", "ORW", "BOS"},
		"CMK":  {"CMK", "J60", "ORW", "BOS"},
		"ORW":  {"ORW", "BOS"},
		"BOS":  {"BOS"},
	} {
		got, ok := r.TailFrom(fix)
		if !ok {
			t.Errorf("%s: not found", fix)
		} else if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("TailFrom(%s) mismatch (-want +got):\n%s", fix, diff)
		}
	}
	if _, ok := r.TailFrom("MERIT"); ok {
		t.Errorf("MERIT isn't on the route")
	}

	// The accessors return copies.
	lit := r.Literal()
	lit[0] = "XXXX"
	if r.Literal()[0] != "KJFK" {
		t.Errorf("Literal() aliased internal state")
	}
}

func TestSlice(t *testing.T) {
	for _, tc := range []struct {
		name   string
		route  string
		fixes  []string
		fix    string
		expect string
	}{
		{name: "literal", route: "KJFK DCT LGA DCT BDR", fix: "LGA", expect: "KJFK DCT "},
		{name: "dotted", route: "KJFK..MERIT.J60.ORW", fix: "MERIT", expect: "KJFK.."},
		{name: "first token", route: "KJFK DCT LGA", fix: "KJFK", expect: ""},
		{name: "whole token", route: "KJFK DCT ORWEL DCT ORW", fix: "ORW", expect: "KJFK DCT ORWEL DCT "},
		{
			name:   "via expansion",
			route:  "KJFK DCT LGA J60 ORW",
			fixes:  []string{"KJFK", "LGA", "DPK", "CMK", "ORW"},
			fix:    "DPK",
			expect: "KJFK DCT LGA J60 ",
		},
		{
			name:   "past the literal route",
			route:  "KJFK DCT LGA J60",
			fixes:  []string{"KJFK", "LGA", "DPK"},
			fix:    "DPK",
			expect: "KJFK DCT LGA J60",
		},
		{name: "unknown", route: "KJFK DCT LGA", fix: "BOS", expect: "KJFK DCT LGA"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			a := ADR{Route: tc.route, RouteFixes: tc.fixes}
			if got := Slice(a, tc.fix); got != tc.expect {
				t.Errorf("Slice(%q, %s) = %q, expected %q", tc.route, tc.fix, got, tc.expect)
			}
		})
	}
}
