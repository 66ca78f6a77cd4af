// catalog/cache.go
// Copyright(c) 2024-2026 edst contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package catalog

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/CaptainTux/VATSIM-TDLS-backend/adr"
	"github.com/CaptainTux/VATSIM-TDLS-backend/aviation"

	"github.com/brunoga/deep"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	queryCandidates = "candidates"
	queryProcedures = "procedures"
)

// Cached wraps a catalog, keeping recent query results for a while so that
// a slow backing store, typically SQL, isn't queried for every flight.
// Errors are not cached.
type Cached struct {
	catalog    adr.Catalog
	candidates *expirable.LRU[string, []adr.ADR]
	procedures *expirable.LRU[string, []aviation.DepartureProcedure]
	metrics    *Metrics
}

var _ adr.Catalog = (*Cached)(nil)

// NewCached returns a caching catalog holding up to size results of each
// query kind for at most ttl. metrics may be nil.
func NewCached(c adr.Catalog, size int, ttl time.Duration, metrics *Metrics) *Cached {
	return &Cached{
		catalog:    c,
		candidates: expirable.NewLRU[string, []adr.ADR](size, nil, ttl),
		procedures: expirable.NewLRU[string, []aviation.DepartureProcedure](size, nil, ttl),
		metrics:    metrics,
	}
}

func candidatesKey(region, dep string, classes []string) string {
	classes = slices.Clone(classes)
	slices.Sort(classes)
	return strings.ToLower(region) + "/" + strings.ToUpper(dep) + "/" + strings.Join(slices.Compact(classes), ",")
}

func (c *Cached) CandidateADRs(ctx context.Context, region, dep string, classes []string) ([]adr.ADR, error) {
	key := candidatesKey(region, dep, classes)
	if adrs, ok := c.candidates.Get(key); ok {
		c.metrics.lookup(queryCandidates, "hit")
		return deep.MustCopy(adrs), nil
	}

	start := time.Now()
	adrs, err := c.catalog.CandidateADRs(ctx, region, dep, classes)
	c.metrics.observe(queryCandidates, start)
	if err != nil {
		c.metrics.lookup(queryCandidates, "error")
		return nil, err
	}

	c.metrics.lookup(queryCandidates, "miss")
	c.candidates.Add(key, adrs)
	return deep.MustCopy(adrs), nil
}

func (c *Cached) DepartureProcedures(ctx context.Context, airport string) ([]aviation.DepartureProcedure, error) {
	key := strings.ToUpper(airport)
	if dps, ok := c.procedures.Get(key); ok {
		c.metrics.lookup(queryProcedures, "hit")
		return deep.MustCopy(dps), nil
	}

	start := time.Now()
	dps, err := c.catalog.DepartureProcedures(ctx, airport)
	c.metrics.observe(queryProcedures, start)
	if err != nil {
		c.metrics.lookup(queryProcedures, "error")
		return nil, err
	}

	c.metrics.lookup(queryProcedures, "miss")
	c.procedures.Add(key, dps)
	return deep.MustCopy(dps), nil
}

// Purge drops all cached results, e.g. after the backing catalog has been
// updated.
func (c *Cached) Purge() {
	c.candidates.Purge()
	c.procedures.Purge()
}
