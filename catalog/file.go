// catalog/file.go
// Copyright(c) 2024-2026 edst contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package catalog provides the stores that ADRs and departure procedures
// are read from: in-memory catalogs loaded from files or snapshots, SQL
// databases, and remote object storage, along with a caching layer.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/CaptainTux/VATSIM-TDLS-backend/adr"
	"github.com/CaptainTux/VATSIM-TDLS-backend/aviation"
	"github.com/CaptainTux/VATSIM-TDLS-backend/log"
	"github.com/CaptainTux/VATSIM-TDLS-backend/util"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// File is the serialized form of a catalog. ADR records are partitioned
// by region, the lower-cased identifier of the ARTCC that owns their
// departure airport; within a region, records are in catalog order.
type File struct {
	Regions    map[string][]adr.Record       `json:"regions" yaml:"regions" msgpack:"regions"`
	Procedures []aviation.DepartureProcedure `json:"procedures" yaml:"procedures" msgpack:"procedures"`
}

// DecodeFile decodes a catalog from r, using name's extension to
// determine the format: .json, .yaml/.yml, or .msgpack. r must already
// be decompressed; see util.NewReader.
func DecodeFile(name string, r io.Reader) (*File, error) {
	var f File
	switch util.BaseExt(name) {
	case ".json":
		if err := util.UnmarshalJSON(r, &f); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	case ".yaml", ".yml":
		if err := yaml.NewDecoder(r).Decode(&f); err != nil && err != io.EOF {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	case ".msgpack":
		if err := msgpack.NewDecoder(r).Decode(&f); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	default:
		return nil, fmt.Errorf("%s: %w", name, ErrUnsupportedFormat)
	}
	f.normalize()
	return &f, nil
}

// EncodeFile writes the catalog to w in the format given by name's
// extension; names ending in .zst are zstd-compressed.
func EncodeFile(name string, w io.Writer, f *File) error {
	ext := util.BaseExt(name)
	compressed := strings.HasSuffix(name, ".zst")

	switch {
	case ext == ".msgpack" && compressed:
		return util.EncodeObject(w, f)
	case !slices.Contains([]string{".json", ".yaml", ".yml", ".msgpack"}, ext):
		return fmt.Errorf("%s: %w", name, ErrUnsupportedFormat)
	}

	var zw *zstd.Encoder
	if compressed {
		var err error
		if zw, err = zstd.NewWriter(w); err != nil {
			return err
		}
		w = zw
	}

	var err error
	switch ext {
	case ".json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(f)
	case ".yaml", ".yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err = enc.Encode(f); err == nil {
			err = enc.Close()
		}
	case ".msgpack":
		err = msgpack.NewEncoder(w).Encode(f)
	}

	if zw != nil {
		if cerr := zw.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (f *File) normalize() {
	regions := make(map[string][]adr.Record, len(f.Regions))
	for region, records := range f.Regions {
		region = strings.ToLower(region)
		regions[region] = append(regions[region], records...)
	}
	f.Regions = regions
}

// LoadFile loads the catalog in the given file.
func LoadFile(path string) (*File, error) {
	r, err := util.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return DecodeFile(path, r)
}

// LoadFiles loads and merges the given catalog files. Files are read in
// parallel and merged in order, so that records in later files replace
// records with the same region and id in earlier ones.
func LoadFiles(lg *log.Logger, paths ...string) (*File, error) {
	if len(paths) == 0 {
		return nil, ErrNoCatalogFiles
	}

	files := make([]*File, len(paths))
	var eg errgroup.Group
	for i, path := range paths {
		eg.Go(func() error {
			var err error
			files[i], err = LoadFile(path)
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	merged := &File{Regions: make(map[string][]adr.Record)}
	for i, f := range files {
		merged.Merge(f)
		lg.Info("loaded ADR catalog", slog.String("path", paths[i]), slog.Int("regions", len(f.Regions)),
			slog.Int("procedures", len(f.Procedures)))
	}
	return merged, nil
}

// Merge adds the records and procedures in other to f; ones that f
// already has are replaced in place.
func (f *File) Merge(other *File) {
	if f.Regions == nil {
		f.Regions = make(map[string][]adr.Record)
	}
	for region, records := range other.Regions {
		region = strings.ToLower(region)
		for _, r := range records {
			idx := slices.IndexFunc(f.Regions[region], func(er adr.Record) bool { return r.Id != "" && er.Id == r.Id })
			if idx == -1 {
				f.Regions[region] = append(f.Regions[region], r)
			} else {
				f.Regions[region][idx] = r
			}
		}
	}
	for _, dp := range other.Procedures {
		idx := slices.IndexFunc(f.Procedures, func(edp aviation.DepartureProcedure) bool { return edp.Procedure == dp.Procedure })
		if idx == -1 {
			f.Procedures = append(f.Procedures, dp)
		} else {
			f.Procedures[idx] = dp
		}
	}
}

// NumADRs returns the total number of ADR records in the catalog.
func (f *File) NumADRs() int {
	n := 0
	for _, records := range f.Regions {
		n += len(records)
	}
	return n
}

// Check validates every record and procedure in the catalog, reporting all
// of the problems found to e. If nav is non-nil, departure airports are
// checked against it as well.
func (f *File) Check(e *util.ErrorLogger, nav adr.NavData) {
	defer e.CheckDepth(e.CurrentDepth())

	for _, region := range util.SortedMapKeys(f.Regions) {
		e.Push("region " + region)

		ids := make(map[string]struct{})
		for i, r := range f.Regions[region] {
			e.Push(util.Select(r.Id != "", "ADR "+r.Id, fmt.Sprintf("ADR #%d", i+1)))

			if r.Id == "" {
				e.ErrorString("no id specified")
			} else if _, ok := ids[r.Id]; ok {
				e.ErrorString("id is used by multiple ADRs")
			}
			ids[r.Id] = struct{}{}

			if r.Departure == "" {
				e.ErrorString("no departure airport specified")
			} else if nav != nil {
				if ap, ok := nav.LookupAirport(r.Departure); !ok {
					e.ErrorString("departure airport %q unknown", r.Departure)
				} else if ap.Region() != region {
					e.ErrorString("departure airport %q is in %q, not %q", r.Departure, ap.Region(), region)
				}
			}
			if len(r.AircraftClasses) == 0 {
				e.ErrorString("no aircraft classes specified")
			}
			if len(r.TransitionFixes) == 0 {
				e.ErrorString("no transition fixes specified")
			}
			if _, err := adr.NewADR(r); err != nil {
				e.Error(err)
			}

			e.Pop()
		}
		e.Pop()
	}

	for _, dp := range f.Procedures {
		e.Push("procedure " + dp.Procedure)
		if dp.Procedure == "" {
			e.ErrorString("no procedure name specified")
		}
		for _, r := range dp.Routes {
			if len(r.Airports) == 0 {
				e.ErrorString("route for transition %q has no airports", r.Transition)
			}
			if r.Transition == "" {
				e.ErrorString("route has no transition")
			}
		}
		e.Pop()
	}
}
