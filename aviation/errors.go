// aviation/errors.go
// Copyright(c) 2024-2026 edst contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"errors"
)

var (
	ErrInvalidNavData       = errors.New("Invalid navigation data")
	ErrNoNavDataFiles       = errors.New("No navigation data files specified")
	ErrUnsupportedNavFormat = errors.New("Unsupported navigation data file format")
)
