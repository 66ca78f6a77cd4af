// util/files.go
// Copyright(c) 2024-2026 edst contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

type zstdReadCloser struct {
	*zstd.Decoder
	underlying io.Closer
}

func (z zstdReadCloser) Close() error {
	z.Decoder.Close()
	return z.underlying.Close()
}

// NewReader wraps r so that zstd-compressed data is transparently
// decompressed if name has a .zst extension. Closing the returned
// ReadCloser closes r.
func NewReader(name string, r io.ReadCloser) (io.ReadCloser, error) {
	if filepath.Ext(name) != ".zst" {
		return r, nil
	}

	zr, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(0))
	if err != nil {
		r.Close()
		return nil, err
	}
	return zstdReadCloser{Decoder: zr, underlying: r}, nil
}

// OpenFile opens the given file for reading; if it's zstd compressed, the
// reader handles decompression transparently.
func OpenFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return NewReader(path, f)
}

func ReadFile(path string) ([]byte, error) {
	r, err := OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}

// BaseExt returns the extension of the given filename, ignoring a trailing
// .zst compression suffix: "zny.yaml.zst" gives ".yaml".
func BaseExt(path string) string {
	return strings.ToLower(filepath.Ext(strings.TrimSuffix(path, ".zst")))
}
