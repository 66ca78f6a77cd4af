// adr/errors.go
// Copyright(c) 2024-2026 edst contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package adr

import "errors"

var (
	ErrEmptyRoute               = errors.New("ADR has an empty route")
	ErrImplicitWithoutFix       = errors.New("Implicit trigger must name a trigger fix")
	ErrInvalidAltitude          = errors.New("Invalid flight plan altitude")
	ErrInvalidAltitudeBand      = errors.New("ADR minimum altitude is above its top altitude")
	ErrMissingDeparture         = errors.New("Flight plan has no departure airport")
	ErrMissingRoute             = errors.New("Flight plan has no route")
	ErrMissingTriggerDescriptor = errors.New("Transition fix has no trigger descriptor")
	ErrUnknownTrigger           = errors.New("Unknown trigger descriptor")
)

// Reasons an implicit trigger does not fire; these never reach callers
// of Evaluate.
var (
	errImplicitTriggerNotFiled = errors.New("implicit trigger fix not in filed route")
	errNoImplicitAnchor        = errors.New("no ADR fix past the transition fix is in the filed route")
)
