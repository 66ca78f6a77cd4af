// catalog/file_test.go
// Copyright(c) 2024-2026 edst contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/CaptainTux/VATSIM-TDLS-backend/adr"
	"github.com/CaptainTux/VATSIM-TDLS-backend/aviation"
	"github.com/CaptainTux/VATSIM-TDLS-backend/util"

	"github.com/google/go-cmp/cmp"
)

const testCatalogJSON = `{
  "regions": {
    "ZNY": [
      {
        "id": "zny-1", "dep": "KJFK", "route": "KJFK DCT LGA DCT BDR",
        "route_fixes": "KJFK LGA BDR",
        "transition_fixes": ["LGA"],
        "transition_fixes_details": [{"tfix": "LGA", "info": "Explicit"}],
        "dp": "", "min_alt": 18000, "top_alt": 35000,
        "aircraft_class": ["NATJET"], "order": 1, "route_groups": ["NORTH"]
      },
      {
        "id": "zny-2", "dep": "KJFK", "route": "KJFK DEEZZ5 CANDR DCT LGA",
        "route_fixes": ["KJFK", "CANDR", "LGA"],
        "transition_fixes": ["LGA"],
        "transition_fixes_details": {"LGA": "Append"},
        "dp": "DEEZZ5", "min_alt": 0, "top_alt": 60000,
        "aircraft_class": ["NATALL"], "order": 2, "route_groups": ["NORTH", "JETS"]
      },
      {
        "id": "zny-3", "dep": "KEWR", "route": "KEWR DCT ORW",
        "route_fixes": ["KEWR", "ORW"],
        "transition_fixes": ["ORW"],
        "transition_fixes_details": [{"tfix": "ORW", "info": "Implicit-BDR"}],
        "dp": "", "min_alt": 0, "top_alt": 60000,
        "aircraft_class": ["NATPROP"], "order": 1, "route_groups": ["EAST"]
      }
    ],
    "zbw": [
      {
        "id": "zbw-1", "dep": "KBOS", "route": "KBOS DCT PUT",
        "route_fixes": ["KBOS", "PUT"],
        "transition_fixes": ["PUT"],
        "transition_fixes_details": [{"tfix": "PUT", "info": "Explicit"}],
        "dp": "", "min_alt": 0, "top_alt": 60000,
        "aircraft_class": ["NATJET"], "order": 1, "route_groups": ["WEST"]
      }
    ]
  },
  "procedures": [
    {"procedure": "DEEZZ5", "routes": [{"airports": ["KJFK"], "transition": "RW31L"}, {"airports": ["KJFK"], "transition": "RW04L"}]},
    {"procedure": "SKORR5", "routes": [{"airports": ["KJFK", "KLGA"], "transition": "ALL"}]}
  ]
}`

const testCatalogYAML = `
regions:
  zny:
    - id: zny-1
      dep: KJFK
      route: KJFK DCT LGA DCT BDR
      route_fixes: [KJFK, LGA, BDR]
      transition_fixes: LGA
      transition_fixes_details:
        - tfix: LGA
          info: Explicit
      dp: ""
      min_alt: 18000
      top_alt: 35000
      aircraft_class: [NATJET]
      order: 1
      route_groups: [NORTH]
    - id: zny-2
      dep: KJFK
      route: KJFK DEEZZ5 CANDR DCT LGA
      route_fixes: KJFK CANDR LGA
      transition_fixes: [LGA]
      transition_fixes_details:
        LGA: Append
      dp: DEEZZ5
      min_alt: 0
      top_alt: 60000
      aircraft_class: [NATALL]
      order: 2
      route_groups: [NORTH, JETS]
    - id: zny-3
      dep: KEWR
      route: KEWR DCT ORW
      route_fixes: [KEWR, ORW]
      transition_fixes: [ORW]
      transition_fixes_details:
        ORW: Implicit-BDR
      min_alt: 0
      top_alt: 60000
      aircraft_class: [NATPROP]
      order: 1
      route_groups: [EAST]
  zbw:
    - id: zbw-1
      dep: KBOS
      route: KBOS DCT PUT
      route_fixes: [KBOS, PUT]
      transition_fixes: [PUT]
      transition_fixes_details: {PUT: Explicit}
      min_alt: 0
      top_alt: 60000
      aircraft_class: [NATJET]
      order: 1
      route_groups: [WEST]
procedures:
  - procedure: DEEZZ5
    routes:
      - {airports: [KJFK], transition: RW31L}
      - {airports: [KJFK], transition: RW04L}
  - procedure: SKORR5
    routes:
      - {airports: [KJFK, KLGA], transition: ALL}
`

func writeTestFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func loadTestCatalog(t *testing.T) *File {
	t.Helper()
	f, err := LoadFile(writeTestFile(t, "catalog.json", testCatalogJSON))
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestLoadFileFormats(t *testing.T) {
	fromJSON := loadTestCatalog(t)

	if diff := cmp.Diff([]string{"zbw", "zny"}, util.SortedMapKeys(fromJSON.Regions)); diff != "" {
		t.Errorf("regions should be lower-cased (-want +got):\n%s", diff)
	}
	if fromJSON.NumADRs() != 4 {
		t.Errorf("expected 4 ADRs, got %d", fromJSON.NumADRs())
	}

	fromYAML, err := LoadFile(writeTestFile(t, "catalog.yaml", testCatalogYAML))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(fromJSON, fromYAML); diff != "" {
		t.Errorf("YAML catalog mismatch (-json +yaml):\n%s", diff)
	}

	dir := t.TempDir()
	for _, name := range []string{"snap.msgpack.zst", "snap.msgpack", "snap.json.zst", "snap.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			w, err := os.Create(path)
			if err != nil {
				t.Fatal(err)
			}
			if err := EncodeFile(name, w, fromJSON); err != nil {
				t.Fatal(err)
			}
			if err := w.Close(); err != nil {
				t.Fatal(err)
			}

			f, err := LoadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(fromJSON, f); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadFileErrors(t *testing.T) {
	if _, err := LoadFile(writeTestFile(t, "catalog.txt", "")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
	if err := EncodeFile("catalog.csv", &strings.Builder{}, &File{}); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}

	_, err := LoadFile(writeTestFile(t, "bad.json", "{\n  \"regions\": {\n    \"zny\": 12\n  }\n}"))
	if err == nil || !strings.Contains(err.Error(), "bad.json") {
		t.Errorf("expected error naming the file, got %v", err)
	}

	if _, err := LoadFiles(nil); !errors.Is(err, ErrNoCatalogFiles) {
		t.Errorf("expected ErrNoCatalogFiles, got %v", err)
	}
}

func TestLoadFilesMerge(t *testing.T) {
	base := writeTestFile(t, "base.json", testCatalogJSON)
	override := writeTestFile(t, "override.yaml", `
regions:
  ZNY:
    - id: zny-2
      dep: KJFK
      route: KJFK DCT MERIT
      route_fixes: KJFK MERIT
      transition_fixes: MERIT
      transition_fixes_details: {MERIT: Explicit}
      top_alt: 60000
      aircraft_class: [NATALL]
    - id: zny-9
      dep: KJFK
      route: KJFK DCT GREKI
      route_fixes: KJFK GREKI
      transition_fixes: GREKI
      transition_fixes_details: {GREKI: Explicit}
      top_alt: 60000
      aircraft_class: [NATALL]
procedures:
  - procedure: DEEZZ5
    routes:
      - {airports: [KJFK], transition: ALL}
`)

	f, err := LoadFiles(nil, base, override)
	if err != nil {
		t.Fatal(err)
	}

	var ids []string
	for _, r := range f.Regions["zny"] {
		ids = append(ids, r.Id)
	}
	if diff := cmp.Diff([]string{"zny-1", "zny-2", "zny-3", "zny-9"}, ids); diff != "" {
		t.Errorf("merged order mismatch (-want +got):\n%s", diff)
	}
	if f.Regions["zny"][1].Route != "KJFK DCT MERIT" {
		t.Errorf("zny-2 not replaced: %+v", f.Regions["zny"][1])
	}
	if len(f.Procedures) != 2 || f.Procedures[0].Routes[0].Transition != aviation.AllRunwaysTransition {
		t.Errorf("DEEZZ5 not replaced: %+v", f.Procedures)
	}
}

func TestCheck(t *testing.T) {
	nav := aviation.MakeNavDatabase()
	nav.Merge(aviation.NavDataFile{Airports: map[string]aviation.Airport{
		"KJFK": {ARTCC: "ZNY"},
		"KEWR": {ARTCC: "ZNY"},
		"KBOS": {ARTCC: "ZBW"},
	}})

	var e util.ErrorLogger
	loadTestCatalog(t).Check(&e, nav)
	if e.HaveErrors() {
		t.Fatalf("unexpected errors: %s", e.String())
	}

	bad := &File{
		Regions: map[string][]adr.Record{
			"zny": {
				{Id: "a", Departure: "KJFK", Route: "KJFK DCT LGA", TransitionFixes: adr.FixList{"LGA"},
					TransitionDetails: adr.TransitionDetails{{Fix: "LGA", Info: "Explicit"}}, TopAltitude: 100, AircraftClasses: []string{"NATALL"}},
				{Id: "a", Departure: "KBOS", Route: "KBOS DCT PUT", TransitionFixes: adr.FixList{"PUT"},
					TransitionDetails: adr.TransitionDetails{{Fix: "PUT", Info: "Implicit"}}, TopAltitude: 100, AircraftClasses: []string{"NATALL"}},
				{Route: "KJFK DCT LGA"},
			},
		},
		Procedures: []aviation.DepartureProcedure{{Procedure: "DEEZZ5", Routes: []aviation.ProcedureRoute{{Transition: "RW31L"}}}},
	}
	e = util.ErrorLogger{}
	bad.Check(&e, nav)

	errs := strings.Join(e.Errors(), "\n")
	for _, want := range []string{
		"region zny / ADR a: id is used by multiple ADRs",
		`region zny / ADR a: departure airport "KBOS" is in "zbw", not "zny"`,
		"region zny / ADR a: ADR a: PUT: Implicit trigger must name a trigger fix",
		"region zny / ADR #3: no id specified",
		"region zny / ADR #3: no departure airport specified",
		"region zny / ADR #3: no aircraft classes specified",
		"region zny / ADR #3: no transition fixes specified",
		`procedure DEEZZ5: route for transition "RW31L" has no airports`,
	} {
		if !strings.Contains(errs, want) {
			t.Errorf("missing error %q in:\n%s", want, errs)
		}
	}
}
