// catalog/errors.go
// Copyright(c) 2024-2026 edst contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package catalog

import "errors"

var (
	ErrInvalidCatalog     = errors.New("Invalid ADR catalog")
	ErrNoCatalogFiles     = errors.New("No catalog files specified")
	ErrUnknownBackend     = errors.New("Unknown storage backend")
	ErrUnknownDialect     = errors.New("Unknown SQL dialect")
	ErrUnsupportedFormat  = errors.New("Unsupported catalog file format")
	ErrMissingBucket      = errors.New("Storage bucket not specified")
	ErrPathOutsideStorage = errors.New("Path is outside of the storage root")
)
