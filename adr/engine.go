// adr/engine.go
// Copyright(c) 2024-2026 edst contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package adr

import (
	"context"
	"strings"

	"github.com/CaptainTux/VATSIM-TDLS-backend/aviation"
	"github.com/CaptainTux/VATSIM-TDLS-backend/log"
)

// RouteFormatter converts between route text, expanded fixes, and the
// canonical dotted route form.
type RouteFormatter interface {
	ExpandRoute(route string) []string
	FormatRoute(tokens []string) string
}

// NavData provides the reference data the Engine needs. It is
// implemented by *aviation.NavDatabase.
type NavData interface {
	RouteFormatter
	LookupAirport(code string) (aviation.Airport, bool)
	NationalityClasses(actype string) []string
}

// Catalog provides ADRs and departure procedures. Catalogs are
// partitioned by region: the lower-cased ARTCC that owns the departure
// airport.
type Catalog interface {
	// CandidateADRs returns the ADRs departing dep that allow at least
	// one of the given aircraft classes, in catalog order.
	CandidateADRs(ctx context.Context, region, dep string, classes []string) ([]ADR, error)
	// DepartureProcedures returns the procedures with a route serving
	// the given airport.
	DepartureProcedures(ctx context.Context, airport string) ([]aviation.DepartureProcedure, error)
}

// FlightPlan holds the flight plan fields that ADR processing uses.
type FlightPlan struct {
	Callsign     string `json:"callsign"`
	AircraftType string `json:"aircraft_type"`
	Departure    string `json:"departure"`
	Destination  string `json:"destination"`
	Equipment    string `json:"equipment"`
	Route        string `json:"route"`
	Altitude     int    `json:"altitude"` // flight level; 0 if unknown
}

func (fp FlightPlan) Validate() error {
	if strings.TrimSpace(fp.Departure) == "" {
		return ErrMissingDeparture
	}
	if strings.TrimSpace(fp.Route) == "" {
		return ErrMissingRoute
	}
	if fp.Altitude < 0 {
		return ErrInvalidAltitude
	}
	return nil
}

// Engine computes ADR eligibility and amendments. It holds no mutable
// state and may be used concurrently.
type Engine struct {
	nav     NavData
	catalog Catalog
	lg      *log.Logger
}

func NewEngine(nav NavData, catalog Catalog, lg *log.Logger) *Engine {
	return &Engine{nav: nav, catalog: catalog, lg: lg}
}
