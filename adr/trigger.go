// adr/trigger.go
// Copyright(c) 2024-2026 edst contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package adr

import (
	"log/slog"
	"slices"

	"github.com/CaptainTux/VATSIM-TDLS-backend/log"
)

// Match describes the transition that makes an ADR apply to a filed
// route. Anchor is the fix where the ADR hands off to the filed route.
type Match struct {
	Transition
	Anchor string
}

// Evaluate returns the first of the ADR's transitions, in priority order,
// that fires for the filed route:
//
//   - Append fires when its fix is anywhere along the filed route,
//     including inside an airway.
//   - Explicit fires when its fix is named in the filed route.
//   - Implicit fires when its trigger fix is named in the filed route and
//     an anchor can be found for it; see implicitAnchor.
//
// Implicit transitions that cannot be resolved are logged and skipped.
func Evaluate(a ADR, r FiledRoute, lg *log.Logger) (Match, bool) {
	for _, t := range a.Transitions {
		switch t.Trigger.Kind {
		case TriggerAppend:
			if r.HasLiteral(t.Fix) || r.HasExpanded(t.Fix) {
				return Match{Transition: t, Anchor: t.Fix}, true
			}

		case TriggerExplicit:
			if r.HasLiteral(t.Fix) {
				return Match{Transition: t, Anchor: t.Fix}, true
			}

		case TriggerImplicit:
			anchor, err := implicitAnchor(a, t, r)
			if err != nil {
				lg.Debug("implicit transition did not fire", slog.String("adr", a.Id),
					slog.String("fix", t.Fix), slog.String("trigger", t.Trigger.Fix), slog.Any("error", err))
				continue
			}
			return Match{Transition: t, Anchor: anchor}, true
		}
	}
	return Match{}, false
}

// implicitAnchor returns the fix where an ADR joins the filed route for
// an implicit transition: the last of the ADR's expanded fixes, from the
// transition fix onward, that is named in the filed route. If the
// transition fix isn't in the expansion, the whole expansion is searched.
func implicitAnchor(a ADR, t Transition, r FiledRoute) (string, error) {
	if !r.HasLiteral(t.Trigger.Fix) {
		return "", errImplicitTriggerNotFiled
	}

	start := max(slices.Index(a.RouteFixes, t.Fix), 0)
	for _, fix := range slices.Backward(a.RouteFixes[start:]) {
		if r.HasLiteral(fix) {
			return fix, nil
		}
	}
	return "", errNoImplicitAnchor
}
