// catalog/memory.go
// Copyright(c) 2024-2026 edst contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package catalog

import (
	"context"
	"log/slog"
	"strings"

	"github.com/CaptainTux/VATSIM-TDLS-backend/adr"
	"github.com/CaptainTux/VATSIM-TDLS-backend/aviation"
	"github.com/CaptainTux/VATSIM-TDLS-backend/log"

	"github.com/brunoga/deep"
)

// Memory is a read-only catalog held in memory. Callers get copies of the
// catalog's ADRs and procedures, so a Memory may be shared freely.
type Memory struct {
	regions    map[string][]adr.ADR
	procedures []aviation.DepartureProcedure
}

var _ adr.Catalog = (*Memory)(nil)

// NewMemory returns a catalog holding the ADRs and procedures in f.
// Records that aren't valid ADRs are logged and skipped; use File.Check
// to find all of the problems in a catalog.
func NewMemory(f *File, lg *log.Logger) *Memory {
	m := &Memory{
		regions:    make(map[string][]adr.ADR),
		procedures: deep.MustCopy(f.Procedures),
	}

	skipped := 0
	for region, records := range f.Regions {
		region = strings.ToLower(region)
		for _, r := range records {
			a, err := adr.NewADR(r)
			if err != nil {
				lg.Warn("skipping invalid ADR", slog.String("region", region), slog.Any("error", err))
				skipped++
				continue
			}
			m.regions[region] = append(m.regions[region], a)
		}
	}

	lg.Info("ADR catalog ready", slog.Int("regions", len(m.regions)), slog.Int("skipped", skipped),
		slog.Int("procedures", len(m.procedures)))

	return m
}

func (m *Memory) CandidateADRs(ctx context.Context, region, dep string, classes []string) ([]adr.ADR, error) {
	var adrs []adr.ADR
	for _, a := range m.regions[strings.ToLower(region)] {
		if a.Departure == strings.ToUpper(dep) && a.AllowsClass(classes) {
			adrs = append(adrs, deep.MustCopy(a))
		}
	}
	return adrs, nil
}

func (m *Memory) DepartureProcedures(ctx context.Context, airport string) ([]aviation.DepartureProcedure, error) {
	var dps []aviation.DepartureProcedure
	for _, dp := range m.procedures {
		if dp.ServesAirport(airport) {
			dps = append(dps, deep.MustCopy(dp))
		}
	}
	return dps, nil
}

// File returns the catalog's contents in serializable form.
func (m *Memory) File() *File {
	f := &File{
		Regions:    make(map[string][]adr.Record),
		Procedures: deep.MustCopy(m.procedures),
	}
	for region, adrs := range m.regions {
		for _, a := range adrs {
			f.Regions[region] = append(f.Regions[region], a.Record())
		}
	}
	return f
}
