// adr/adr.go
// Copyright(c) 2024-2026 edst contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package adr implements Adapted Departure Route (ADR) processing: deciding
// which ADRs a flight is eligible for and computing the amendment an ADR
// makes to a filed route.
package adr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/CaptainTux/VATSIM-TDLS-backend/util"

	"github.com/iancoleman/orderedmap"
	"gopkg.in/yaml.v3"
)

// AllNationalities is the aircraft class that makes an ADR available to
// every aircraft type.
const AllNationalities = "NATALL"

///////////////////////////////////////////////////////////////////////////
// Record

// Record is an ADR as it is stored in a catalog. It is only used for
// storage and interchange; use NewADR to get a validated ADR.
type Record struct {
	Id                 string            `json:"id" yaml:"id" msgpack:"id"`
	Departure          string            `json:"dep" yaml:"dep" msgpack:"dep"`
	Route              string            `json:"route" yaml:"route" msgpack:"route"`
	RouteFixes         FixList           `json:"route_fixes" yaml:"route_fixes" msgpack:"route_fixes"`
	TransitionFixes    FixList           `json:"transition_fixes" yaml:"transition_fixes" msgpack:"transition_fixes"`
	TransitionDetails  TransitionDetails `json:"transition_fixes_details" yaml:"transition_fixes_details" msgpack:"transition_fixes_details"`
	DepartureProcedure string            `json:"dp" yaml:"dp" msgpack:"dp"`
	MinAltitude        int               `json:"min_alt" yaml:"min_alt" msgpack:"min_alt"` // feet
	TopAltitude        int               `json:"top_alt" yaml:"top_alt" msgpack:"top_alt"` // feet
	AircraftClasses    []string          `json:"aircraft_class" yaml:"aircraft_class" msgpack:"aircraft_class"`
	Order              int               `json:"order" yaml:"order" msgpack:"order"`
	RouteGroups        []string          `json:"route_groups" yaml:"route_groups" msgpack:"route_groups"`
}

// FixList is a sequence of fix identifiers. In catalog files it may be
// given either as an array or as a single space-separated string.
type FixList []string

func (f *FixList) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = strings.Fields(strings.ToUpper(s))
		return nil
	}

	var fixes []string
	if err := json.Unmarshal(b, &fixes); err != nil {
		return err
	}
	*f = util.MapSlice(fixes, strings.ToUpper)
	return nil
}

func (f *FixList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*f = strings.Fields(strings.ToUpper(node.Value))
		return nil
	}

	var fixes []string
	if err := node.Decode(&fixes); err != nil {
		return err
	}
	*f = util.MapSlice(fixes, strings.ToUpper)
	return nil
}

type TransitionDetail struct {
	Fix  string `json:"tfix" yaml:"tfix" msgpack:"tfix"`
	Info string `json:"info" yaml:"info" msgpack:"info"`
}

// TransitionDetails associates transition fixes with their trigger
// descriptors. Besides the list form [{"tfix": "MERIT", "info":
// "Explicit"}], catalog files may use an object mapping fixes to
// descriptors; the order of the object's keys is kept.
type TransitionDetails []TransitionDetail

func (d *TransitionDetails) UnmarshalJSON(b []byte) error {
	if b = bytes.TrimSpace(b); len(b) == 0 || b[0] != '{' {
		var details []TransitionDetail
		if err := json.Unmarshal(b, &details); err != nil {
			return err
		}
		*d = details
		return nil
	}

	om := orderedmap.New()
	if err := json.Unmarshal(b, om); err != nil {
		return err
	}
	var details TransitionDetails
	for _, fix := range om.Keys() {
		v, _ := om.Get(fix)
		info, ok := v.(string)
		if !ok {
			return fmt.Errorf("%s: trigger descriptor must be a string, got %v", fix, v)
		}
		details = append(details, TransitionDetail{Fix: fix, Info: info})
	}
	*d = details
	return nil
}

func (d *TransitionDetails) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		var details []TransitionDetail
		if err := node.Decode(&details); err != nil {
			return err
		}
		*d = details
		return nil
	}

	var details TransitionDetails
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: %s: trigger descriptor must be a string", v.Line, k.Value)
		}
		details = append(details, TransitionDetail{Fix: k.Value, Info: v.Value})
	}
	*d = details
	return nil
}

// Lookup returns the descriptor for the given transition fix.
func (d TransitionDetails) Lookup(fix string) (string, bool) {
	idx := slices.IndexFunc(d, func(td TransitionDetail) bool { return strings.EqualFold(td.Fix, fix) })
	if idx == -1 {
		return "", false
	}
	return d[idx].Info, true
}

///////////////////////////////////////////////////////////////////////////
// Triggers

type TriggerKind int

const (
	// TriggerAppend: the filed route already passes through the
	// transition fix; the ADR is issued up to it and the filed route
	// continues from there.
	TriggerAppend TriggerKind = iota
	// TriggerExplicit: the transition fix is named in the filed route.
	TriggerExplicit
	// TriggerImplicit: a separate trigger fix named in the filed route
	// makes the transition apply.
	TriggerImplicit
)

func (k TriggerKind) String() string {
	switch k {
	case TriggerAppend:
		return "Append"
	case TriggerExplicit:
		return "Explicit"
	case TriggerImplicit:
		return "Implicit"
	default:
		return fmt.Sprintf("TriggerKind(%d)", int(k))
	}
}

// Trigger describes how a transition fix makes an ADR apply to a filed
// route. Fix is the trigger fix of an implicit trigger and is empty for
// the other kinds.
type Trigger struct {
	Kind TriggerKind
	Fix  string
}

// ParseTrigger parses a catalog trigger descriptor: "Append", "Explicit",
// or "Implicit-<fix>".
func ParseTrigger(desc string) (Trigger, error) {
	desc = strings.TrimSpace(desc)
	switch {
	case desc == "":
		return Trigger{}, ErrMissingTriggerDescriptor
	case strings.EqualFold(desc, "Append"):
		return Trigger{Kind: TriggerAppend}, nil
	case strings.EqualFold(desc, "Explicit"):
		return Trigger{Kind: TriggerExplicit}, nil
	case len(desc) >= 8 && strings.EqualFold(desc[:8], "Implicit"):
		fix, ok := strings.CutPrefix(desc[8:], "-")
		if !ok && desc[8:] != "" {
			return Trigger{}, fmt.Errorf("%q: %w", desc, ErrUnknownTrigger)
		}
		t := Trigger{Kind: TriggerImplicit, Fix: strings.ToUpper(strings.TrimSpace(fix))}
		return t, t.Validate()
	default:
		return Trigger{}, fmt.Errorf("%q: %w", desc, ErrUnknownTrigger)
	}
}

func (t Trigger) Validate() error {
	switch t.Kind {
	case TriggerAppend, TriggerExplicit:
		if t.Fix != "" {
			return fmt.Errorf("%s trigger with fix %q: %w", t.Kind, t.Fix, ErrUnknownTrigger)
		}
		return nil
	case TriggerImplicit:
		if t.Fix == "" {
			return ErrImplicitWithoutFix
		}
		return nil
	default:
		return fmt.Errorf("%s: %w", t.Kind, ErrUnknownTrigger)
	}
}

// String returns the trigger's catalog descriptor.
func (t Trigger) String() string {
	if t.Kind == TriggerImplicit {
		return "Implicit-" + t.Fix
	}
	return t.Kind.String()
}

type Transition struct {
	Fix     string
	Trigger Trigger
}

///////////////////////////////////////////////////////////////////////////
// ADR

// ADR is a validated adapted departure route. ADRs are treated as
// immutable once created.
type ADR struct {
	Id        string
	Departure string
	// Route is the ADR's literal route text, e.g. "KJFK..MERIT.J60.ORW".
	Route string
	// RouteFixes is the full expansion of Route.
	RouteFixes []string
	// Transitions are in priority order: the one farthest along the
	// route comes first. The first transition that fires is the one
	// that applies.
	Transitions        []Transition
	DepartureProcedure string
	MinAltitude        int // feet
	TopAltitude        int // feet
	AircraftClasses    []string
	Order              int
	RouteGroups        []string
}

// NewADR validates a catalog record and returns the corresponding ADR.
// The record's transition fixes are listed nearest first; the returned
// ADR's transitions are farthest first.
func NewADR(r Record) (ADR, error) {
	a := ADR{
		Id:                 r.Id,
		Departure:          strings.ToUpper(strings.TrimSpace(r.Departure)),
		Route:              strings.TrimSpace(r.Route),
		RouteFixes:         slices.Clone(r.RouteFixes),
		DepartureProcedure: strings.ToUpper(strings.TrimSpace(r.DepartureProcedure)),
		MinAltitude:        r.MinAltitude,
		TopAltitude:        r.TopAltitude,
		AircraftClasses:    slices.Clone(r.AircraftClasses),
		Order:              r.Order,
		RouteGroups:        slices.Clone(r.RouteGroups),
	}

	if a.Route == "" {
		return ADR{}, fmt.Errorf("ADR %s: %w", r.Id, ErrEmptyRoute)
	}
	if a.MinAltitude > a.TopAltitude {
		return ADR{}, fmt.Errorf("ADR %s: %d > %d: %w", r.Id, a.MinAltitude, a.TopAltitude, ErrInvalidAltitudeBand)
	}

	for i := len(r.TransitionFixes) - 1; i >= 0; i-- {
		fix := strings.ToUpper(r.TransitionFixes[i])
		desc, ok := r.TransitionDetails.Lookup(fix)
		if !ok {
			return ADR{}, fmt.Errorf("ADR %s: %s: %w", r.Id, fix, ErrMissingTriggerDescriptor)
		}
		trigger, err := ParseTrigger(desc)
		if err != nil {
			return ADR{}, fmt.Errorf("ADR %s: %s: %w", r.Id, fix, err)
		}
		a.Transitions = append(a.Transitions, Transition{Fix: fix, Trigger: trigger})
	}

	return a, nil
}

// Record returns the catalog representation of the ADR; NewADR(a.Record())
// gives back an equivalent ADR.
func (a ADR) Record() Record {
	r := Record{
		Id:                 a.Id,
		Departure:          a.Departure,
		Route:              a.Route,
		RouteFixes:         slices.Clone(a.RouteFixes),
		DepartureProcedure: a.DepartureProcedure,
		MinAltitude:        a.MinAltitude,
		TopAltitude:        a.TopAltitude,
		AircraftClasses:    slices.Clone(a.AircraftClasses),
		Order:              a.Order,
		RouteGroups:        slices.Clone(a.RouteGroups),
	}
	for _, t := range slices.Backward(a.Transitions) {
		r.TransitionFixes = append(r.TransitionFixes, t.Fix)
		r.TransitionDetails = append(r.TransitionDetails, TransitionDetail{Fix: t.Fix, Info: t.Trigger.String()})
	}
	return r
}

// AllowsAltitude reports whether a flight at the given altitude in feet
// may fly the ADR; an altitude of zero is unknown and fits every band.
func (a ADR) AllowsAltitude(alt int) bool {
	return alt == 0 || (a.MinAltitude <= alt && alt <= a.TopAltitude)
}

// AllowsClass reports whether any of the given aircraft classes may use
// the ADR.
func (a ADR) AllowsClass(classes []string) bool {
	return util.Intersects(a.AircraftClasses, classes)
}
