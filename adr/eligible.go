// adr/eligible.go
// Copyright(c) 2024-2026 edst contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package adr

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/CaptainTux/VATSIM-TDLS-backend/aviation"
	"github.com/CaptainTux/VATSIM-TDLS-backend/util"
)

// Eligible returns the ADRs the flight may be given, in catalog order. If
// runways is non-empty, ADRs tied to a departure procedure that can't be
// flown from any of those runways are excluded. A flight from an airport
// without a known owning ARTCC has no eligible ADRs.
func (e *Engine) Eligible(ctx context.Context, fp FlightPlan, runways []string) ([]ADR, error) {
	if err := fp.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", fp.Callsign, err)
	}

	ap, ok := e.nav.LookupAirport(fp.Departure)
	if !ok || ap.Region() == "" {
		e.lg.Debugf("%s: no region for departure airport %q", fp.Callsign, fp.Departure)
		return nil, nil
	}

	classes := util.AppendUnique(slices.Clone(e.nav.NationalityClasses(fp.AircraftType)), AllNationalities)
	candidates, err := e.catalog.CandidateADRs(ctx, ap.Region(), ap.Id, classes)
	if err != nil {
		return nil, fmt.Errorf("%s: ADR candidates: %w", ap.Id, err)
	}

	var procedures []string
	if len(runways) > 0 {
		dps, err := e.catalog.DepartureProcedures(ctx, ap.Id)
		if err != nil {
			return nil, fmt.Errorf("%s: departure procedures: %w", ap.Id, err)
		}
		for _, dp := range dps {
			if dp.MatchesRunway(ap.Id, runways) {
				procedures = append(procedures, dp.Procedure)
			}
		}
	}

	alt := fp.Altitude * 100
	r := ParseFiledRoute(fp.Route, e.nav)

	var eligible []ADR
	for _, a := range candidates {
		if len(procedures) > 0 && a.DepartureProcedure != "" && !slices.Contains(procedures, a.DepartureProcedure) {
			e.lg.Debug("ADR procedure not in use", slog.String("adr", a.Id),
				slog.String("dp", a.DepartureProcedure), slog.Any("runways", runways))
			continue
		}
		if !a.AllowsAltitude(alt) {
			continue
		}
		if !mayTrigger(a, r) {
			continue
		}
		eligible = append(eligible, a)
	}

	e.lg.Debug("eligible ADRs", slog.String("callsign", fp.Callsign), slog.Int("candidates", len(candidates)),
		slog.Int("eligible", len(eligible)))

	return eligible, nil
}

// mayTrigger is a quick check whether any of the ADR's transitions could
// apply to the filed route; the trigger fixes of implicit transitions
// aren't considered.
func mayTrigger(a ADR, r FiledRoute) bool {
	return slices.ContainsFunc(a.Transitions, func(t Transition) bool {
		switch t.Trigger.Kind {
		case TriggerExplicit:
			return r.HasLiteral(t.Fix)
		case TriggerImplicit, TriggerAppend:
			return r.HasExpanded(t.Fix)
		default:
			return false
		}
	})
}

// AmendEligible returns the amendments of all of the ADRs the flight is
// eligible for.
func (e *Engine) AmendEligible(ctx context.Context, fp FlightPlan, runways []string) ([]AmendmentResult, error) {
	adrs, err := e.Eligible(ctx, fp, runways)
	if err != nil {
		return nil, err
	}

	var results []AmendmentResult
	for _, a := range adrs {
		if res, ok := e.Amend(fp.Route, a); ok {
			results = append(results, res)
		}
	}
	return results, nil
}

var _ NavData = (*aviation.NavDatabase)(nil)
