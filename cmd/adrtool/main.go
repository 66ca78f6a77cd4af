// cmd/adrtool/main.go
// Copyright(c) 2024-2026 edst contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// adrtool computes ADR eligibility and amendments for flight plans and
// manages ADR catalogs: importing them into SQL databases, publishing
// snapshots to object storage, and validating them.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/CaptainTux/VATSIM-TDLS-backend/adr"
	"github.com/CaptainTux/VATSIM-TDLS-backend/log"
	"github.com/CaptainTux/VATSIM-TDLS-backend/util"
)

var (
	configFile = flag.String("config", "", "JSON configuration file")
	logLevel   = flag.String("loglevel", "", "logging level: debug, info, warn, error")
	logDir     = flag.String("logdir", "", "log file directory")
	navData    = flag.String("navdata", "", "comma-separated navigation data files")
	backend    = flag.String("backend", "", "catalog backend: memory, sqlite, postgres, snapshot")
	catalogs   = flag.String("catalog", "", "comma-separated catalog files for the memory backend")
	dsn        = flag.String("dsn", "", "SQL catalog data source name")
	object     = flag.String("object", "", "catalog snapshot object path")
	dump       = flag.Bool("dump", false, "dump results rather than printing JSON")
	metrics    = flag.Bool("metrics", false, "print catalog metrics when finished")

	callsign = flag.String("callsign", "", "flight plan callsign")
	acType   = flag.String("type", "", "flight plan aircraft type")
	dep      = flag.String("dep", "", "flight plan departure airport")
	dest     = flag.String("dest", "", "flight plan destination airport")
	route    = flag.String("route", "", "filed route")
	altitude = flag.Int("alt", 0, "requested altitude, as a flight level")
	runways  = flag.String("runways", "", "comma-separated departure runways in use")
	adrId    = flag.String("adr", "", "amend using only the ADR with this id")
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: adrtool [flags] eligible|amend|check [catalog files...]|import [catalog files...]|snapshot [object]\nwhere [flags] may be:\n")
	flag.PrintDefaults()
	os.Exit(1)
}

func splitList(s string) []string {
	return util.FilterSlice(strings.Split(s, ","), func(s string) bool { return strings.TrimSpace(s) != "" })
}

// applyFlags overrides configuration values with those given on the
// command line.
func applyFlags(cfg *Config) {
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *logDir != "" {
		cfg.LogDir = *logDir
	}
	if *navData != "" {
		cfg.NavData = splitList(*navData)
	}
	if *backend != "" {
		cfg.Catalog.Backend = *backend
	}
	if *catalogs != "" {
		cfg.Catalog.Paths = splitList(*catalogs)
	}
	if *dsn != "" {
		cfg.Catalog.DSN = *dsn
	}
	if *object != "" {
		cfg.Catalog.Object = *object
	}
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
	}

	cfg, err := LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	applyFlags(&cfg)

	lg := log.New(cfg.LogLevel, cfg.LogDir)
	defer lg.CatchAndReportCrash()

	cmd, args := strings.ToLower(flag.Arg(0)), flag.Args()[1:]

	var e util.ErrorLogger
	cfg.Check(&e)
	// import and check work directly from catalog files.
	if e.HaveErrors() && cmd != "import" && cmd != "check" {
		e.PrintErrors(lg)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	t := newTool(cfg, lg, os.Stdout)
	t.dump = *dump

	fp := adr.FlightPlan{
		Callsign:     *callsign,
		AircraftType: *acType,
		Departure:    *dep,
		Destination:  *dest,
		Route:        *route,
		Altitude:     *altitude,
	}

	switch cmd {
	case "eligible":
		err = t.eligible(ctx, fp, splitList(*runways))
	case "amend":
		err = t.amend(ctx, fp, splitList(*runways), *adrId)
	case "import":
		err = t.importCatalog(ctx, util.Select(len(args) > 0, args, cfg.Catalog.Paths))
	case "snapshot":
		// The snapshot is published to the given object, by default the
		// configured one.
		to := cfg.Catalog.Object
		if len(args) > 0 {
			to = args[0]
		}
		err = t.snapshot(ctx, to)
	case "check":
		err = t.check(util.Select(len(args) > 0, args, cfg.Catalog.Paths))
	default:
		usage()
	}

	if err == nil && *metrics {
		err = t.reportMetrics()
	}
	if err != nil {
		lg.Errorf("%s: %v", cmd, err)
		fmt.Fprintf(os.Stderr, "%s: %v\n", cmd, err)
		os.Exit(1)
	}
}
