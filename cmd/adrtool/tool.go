// cmd/adrtool/tool.go
// Copyright(c) 2024-2026 edst contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/CaptainTux/VATSIM-TDLS-backend/adr"
	"github.com/CaptainTux/VATSIM-TDLS-backend/aviation"
	"github.com/CaptainTux/VATSIM-TDLS-backend/catalog"
	"github.com/CaptainTux/VATSIM-TDLS-backend/log"
	"github.com/CaptainTux/VATSIM-TDLS-backend/util"

	"github.com/goforj/godump"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

var (
	ErrNoNavData        = errors.New("no navigation data specified")
	ErrNotSQLBackend    = errors.New("catalog backend is not a SQL database")
	ErrNoSnapshotObject = errors.New("no snapshot object specified")
	ErrUnknownADR       = errors.New("ADR not eligible or unknown")
	ErrCatalogErrors    = errors.New("catalog has errors")
)

const snapshotCacheBytes = 256 << 20

// tool holds what the adrtool commands share.
type tool struct {
	cfg  Config
	lg   *log.Logger
	reg  *prometheus.Registry
	out  io.Writer
	dump bool
}

func newTool(cfg Config, lg *log.Logger, out io.Writer) *tool {
	return &tool{cfg: cfg, lg: lg, reg: prometheus.NewRegistry(), out: out}
}

func (t *tool) loadNavData() (*aviation.NavDatabase, error) {
	if len(t.cfg.NavData) == 0 {
		return nil, ErrNoNavData
	}
	return aviation.LoadNavDatabase(t.lg, t.cfg.NavData...)
}

// openCatalog returns the configured catalog along with a function that
// releases its resources.
func (t *tool) openCatalog(ctx context.Context) (adr.Catalog, func() error, error) {
	var c adr.Catalog
	closer := func() error { return nil }

	switch t.cfg.Catalog.Backend {
	case "memory":
		f, err := catalog.LoadFiles(t.lg, t.cfg.Catalog.Paths...)
		if err != nil {
			return nil, nil, err
		}
		c = catalog.NewMemory(f, t.lg)

	case "sqlite", "postgres":
		s, err := catalog.OpenSQL(ctx, catalog.Dialect(t.cfg.Catalog.Backend), t.cfg.Catalog.DSN, t.lg)
		if err != nil {
			return nil, nil, err
		}
		c, closer = s, s.Close

	case "snapshot":
		f, err := t.fetchSnapshot(ctx)
		if err != nil {
			return nil, nil, err
		}
		c = catalog.NewMemory(f, t.lg)

	default:
		return nil, nil, fmt.Errorf("%q: %w", t.cfg.Catalog.Backend, catalog.ErrUnknownBackend)
	}

	if t.cfg.Cache.Size > 0 {
		c = catalog.NewCached(c, t.cfg.Cache.Size, t.cfg.Cache.Duration(), catalog.NewMetrics(t.reg))
	}
	return c, closer, nil
}

func (t *tool) fetchSnapshot(ctx context.Context) (*catalog.File, error) {
	if t.cfg.Catalog.Object == "" {
		return nil, ErrNoSnapshotObject
	}
	cachePath := filepath.Join("snapshots", t.cfg.Catalog.Storage.Bucket, t.cfg.Catalog.Object)

	f, err := t.fetchStoredSnapshot(ctx)
	if err != nil {
		// Fall back to the last snapshot fetched, if there is one.
		var cached catalog.File
		saved, cerr := util.CacheRetrieveObject(cachePath, &cached)
		if cerr != nil {
			return nil, err
		}
		t.lg.Warn("using cached ADR catalog snapshot", slog.Any("error", err), slog.Time("saved", saved))
		return &cached, nil
	}

	if err := util.CacheStoreObject(cachePath, f); err != nil {
		t.lg.Warn("unable to cache ADR catalog snapshot", slog.Any("error", err))
	} else if err := util.CacheCullObjects(snapshotCacheBytes); err != nil {
		t.lg.Warn("unable to cull snapshot cache", slog.Any("error", err))
	}
	return f, nil
}

func (t *tool) fetchStoredSnapshot(ctx context.Context) (*catalog.File, error) {
	sb, err := catalog.MakeStorageBackend(ctx, t.cfg.Catalog.Storage)
	if err != nil {
		return nil, err
	}
	defer sb.Close()

	return catalog.FetchSnapshot(ctx, sb, t.cfg.Catalog.Object, t.lg)
}

func (t *tool) engine(ctx context.Context) (*adr.Engine, func() error, error) {
	nav, err := t.loadNavData()
	if err != nil {
		return nil, nil, err
	}
	c, closer, err := t.openCatalog(ctx)
	if err != nil {
		return nil, nil, err
	}
	return adr.NewEngine(nav, c, t.lg), closer, nil
}

// emit writes v to the output as indented JSON, or dumps it if -dump was
// given.
func (t *tool) emit(v any) error {
	if t.dump {
		godump.Fdump(t.out, v)
		return nil
	}
	enc := json.NewEncoder(t.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

///////////////////////////////////////////////////////////////////////////
// Commands

type eligibleADR struct {
	Id                 string   `json:"id"`
	Route              string   `json:"route"`
	DepartureProcedure string   `json:"dp,omitempty"`
	Order              int      `json:"order"`
	RouteGroups        []string `json:"route_groups,omitempty"`
}

func (t *tool) eligible(ctx context.Context, fp adr.FlightPlan, runways []string) error {
	e, closer, err := t.engine(ctx)
	if err != nil {
		return err
	}
	defer closer()

	adrs, err := e.Eligible(ctx, fp, runways)
	if err != nil {
		return err
	}
	return t.emit(util.MapSlice(adrs, func(a adr.ADR) eligibleADR {
		return eligibleADR{
			Id:                 a.Id,
			Route:              a.Route,
			DepartureProcedure: a.DepartureProcedure,
			Order:              a.Order,
			RouteGroups:        a.RouteGroups,
		}
	}))
}

// amend reports the amendments for all eligible ADRs, or just for the one
// with the given id if it is non-empty.
func (t *tool) amend(ctx context.Context, fp adr.FlightPlan, runways []string, id string) error {
	e, closer, err := t.engine(ctx)
	if err != nil {
		return err
	}
	defer closer()

	if id == "" {
		results, err := e.AmendEligible(ctx, fp, runways)
		if err != nil {
			return err
		}
		return t.emit(results)
	}

	adrs, err := e.Eligible(ctx, fp, runways)
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(adrs, func(a adr.ADR) bool { return strings.EqualFold(a.Id, id) })
	if idx == -1 {
		return fmt.Errorf("%s: %w", id, ErrUnknownADR)
	}

	res, ok := e.Amend(fp.Route, adrs[idx])
	if !ok {
		t.lg.Info("no transition applies", slog.String("adr", id), slog.String("route", fp.Route))
	}
	return t.emit(res)
}

// importCatalog loads catalog files and replaces the contents of the
// configured SQL catalog with them.
func (t *tool) importCatalog(ctx context.Context, paths []string) error {
	dialect := catalog.Dialect(t.cfg.Catalog.Backend)
	if dialect != catalog.DialectSQLite && dialect != catalog.DialectPostgres {
		return fmt.Errorf("%q: %w", t.cfg.Catalog.Backend, ErrNotSQLBackend)
	}

	f, err := catalog.LoadFiles(t.lg, paths...)
	if err != nil {
		return err
	}

	s, err := catalog.OpenSQL(ctx, dialect, t.cfg.Catalog.DSN, t.lg)
	if err != nil {
		return err
	}
	defer s.Close()

	return s.Import(ctx, f)
}

// snapshot publishes the configured catalog to the given storage object.
func (t *tool) snapshot(ctx context.Context, object string) error {
	if object == "" {
		return ErrNoSnapshotObject
	}

	var f *catalog.File
	switch t.cfg.Catalog.Backend {
	case "memory":
		var err error
		if f, err = catalog.LoadFiles(t.lg, t.cfg.Catalog.Paths...); err != nil {
			return err
		}
	case "sqlite", "postgres":
		s, err := catalog.OpenSQL(ctx, catalog.Dialect(t.cfg.Catalog.Backend), t.cfg.Catalog.DSN, t.lg)
		if err != nil {
			return err
		}
		defer s.Close()
		if f, err = s.Export(ctx); err != nil {
			return err
		}
	case "snapshot":
		var err error
		if f, err = t.fetchSnapshot(ctx); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%q: %w", t.cfg.Catalog.Backend, catalog.ErrUnknownBackend)
	}

	sb, err := catalog.MakeStorageBackend(ctx, t.cfg.Catalog.Storage)
	if err != nil {
		return err
	}
	defer sb.Close()

	return catalog.PublishSnapshot(ctx, sb, object, f, t.lg)
}

// check validates the catalog files against the navigation data,
// reporting all of the errors found.
func (t *tool) check(paths []string) error {
	nav, err := t.loadNavData()
	if err != nil {
		return err
	}
	f, err := catalog.LoadFiles(t.lg, paths...)
	if err != nil {
		return err
	}

	var e util.ErrorLogger
	f.Check(&e, nav)
	if e.HaveErrors() {
		for _, msg := range e.Errors() {
			fmt.Fprintln(t.out, msg)
		}
		return fmt.Errorf("%d problems: %w", len(e.Errors()), ErrCatalogErrors)
	}

	fmt.Fprintf(t.out, "%d ADRs and %d procedures ok\n", f.NumADRs(), len(f.Procedures))
	return nil
}

// reportMetrics writes the catalog metrics gathered during the run.
func (t *tool) reportMetrics() error {
	mfs, err := t.reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			labels := util.MapSlice(m.GetLabel(), func(lp *dto.LabelPair) string {
				return lp.GetName() + "=" + lp.GetValue()
			})
			if h := m.GetHistogram(); h != nil {
				fmt.Fprintf(t.out, "%s{%s} count=%d sum=%g\n", mf.GetName(), strings.Join(labels, ","),
					h.GetSampleCount(), h.GetSampleSum())
			} else {
				fmt.Fprintf(t.out, "%s{%s} %g\n", mf.GetName(), strings.Join(labels, ","), m.GetCounter().GetValue())
			}
		}
	}
	return nil
}
