// aviation/navdb.go
// Copyright(c) 2024-2026 edst contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/CaptainTux/VATSIM-TDLS-backend/log"
	"github.com/CaptainTux/VATSIM-TDLS-backend/util"

	"golang.org/x/sync/errgroup"
)

///////////////////////////////////////////////////////////////////////////
// NavDatabase

// NavDatabase holds the reference data needed to work with filed routes:
// airports and their owning ARTCCs, fixes, airways, and the nationality
// classes of aircraft types. It is read-only once loaded and may be shared
// between goroutines.
type NavDatabase struct {
	Airports        map[string]Airport
	Fixes           map[string]struct{}
	Airways         map[string][]Airway
	AircraftClasses map[string][]string
}

// NavDataFile is the on-disk JSON representation of (part of) a
// NavDatabase.
type NavDataFile struct {
	Airports        map[string]Airport  `json:"airports"`
	Fixes           []string            `json:"fixes"`
	Airways         map[string][]Airway `json:"airways"`
	AircraftClasses map[string][]string `json:"aircraft_classes"`
}

func MakeNavDatabase() *NavDatabase {
	return &NavDatabase{
		Airports:        make(map[string]Airport),
		Fixes:           make(map[string]struct{}),
		Airways:         make(map[string][]Airway),
		AircraftClasses: make(map[string][]string),
	}
}

// LoadNavDatabase loads and merges the given navigation data files; files
// are read in parallel but merged in the order given, so later files
// override earlier ones.
func LoadNavDatabase(lg *log.Logger, paths ...string) (*NavDatabase, error) {
	if len(paths) == 0 {
		return nil, ErrNoNavDataFiles
	}

	files := make([]NavDataFile, len(paths))
	var eg errgroup.Group
	for i, path := range paths {
		eg.Go(func() error {
			if ext := util.BaseExt(path); ext != ".json" {
				return fmt.Errorf("%s: %w", path, ErrUnsupportedNavFormat)
			}
			r, err := util.OpenFile(path)
			if err != nil {
				return err
			}
			defer r.Close()

			if err := util.UnmarshalJSON(r, &files[i]); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	db := MakeNavDatabase()
	for _, f := range files {
		db.Merge(f)
	}

	var e util.ErrorLogger
	db.Check(&e)
	if e.HaveErrors() {
		e.PrintErrors(lg)
		return nil, fmt.Errorf("%w:\n%s", ErrInvalidNavData, e.String())
	}

	lg.Info("loaded navigation data", slog.Int("airports", len(db.Airports)),
		slog.Int("fixes", len(db.Fixes)), slog.Int("airways", len(db.Airways)),
		slog.Int("aircraft_types", len(db.AircraftClasses)))

	return db, nil
}

// Merge adds the contents of the file to the database.
func (db *NavDatabase) Merge(f NavDataFile) {
	for id, ap := range f.Airports {
		id = strings.ToUpper(id)
		ap.Id = id
		db.Airports[id] = ap
	}
	for _, fix := range f.Fixes {
		db.Fixes[strings.ToUpper(fix)] = struct{}{}
	}
	for name, segs := range f.Airways {
		name = strings.ToUpper(name)
		for _, seg := range segs {
			seg.Name = name
			db.Airways[name] = append(db.Airways[name], seg)
			for _, af := range seg.Fixes {
				db.Fixes[af.Fix] = struct{}{}
			}
		}
	}
	for actype, classes := range f.AircraftClasses {
		db.AircraftClasses[strings.ToUpper(actype)] = classes
	}
}

func (db *NavDatabase) Check(e *util.ErrorLogger) {
	defer e.CheckDepth(e.CurrentDepth())

	for _, id := range util.SortedMapKeys(db.Airports) {
		if db.Airports[id].ARTCC == "" {
			e.Push("airport " + id)
			e.ErrorString("no ARTCC specified")
			e.Pop()
		}
	}
	for _, name := range util.SortedMapKeys(db.Airways) {
		e.Push("airway " + name)
		for _, seg := range db.Airways[name] {
			if len(seg.Fixes) < 2 {
				e.ErrorString("airway segments must have at least two fixes")
			}
		}
		e.Pop()
	}
}

// LookupAirport returns the airport with the given identifier; 3-letter
// FAA identifiers are also tried with "K" and "P" prefixes.
func (db *NavDatabase) LookupAirport(name string) (Airport, bool) {
	name = strings.ToUpper(name)
	if ap, ok := db.Airports[name]; ok {
		return ap, true
	} else if len(name) == 3 {
		if ap, ok := db.Airports["K"+name]; ok {
			return ap, true
		} else if ap, ok := db.Airports["P"+name]; ok {
			return ap, true
		}
	}
	return Airport{}, false
}

// NationalityClasses returns the ADR aircraft classes for the given filed
// aircraft type.
func (db *NavDatabase) NationalityClasses(actype string) []string {
	return db.AircraftClasses[TidyAircraftType(actype)]
}

func (db *NavDatabase) IsAirway(token string) bool {
	_, ok := db.Airways[token]
	return ok
}

func (db *NavDatabase) IsFix(token string) bool {
	if _, ok := db.Fixes[token]; ok {
		return true
	}
	_, ok := db.Airports[token]
	return ok
}
