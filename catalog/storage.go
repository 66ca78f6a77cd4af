// catalog/storage.go
// Copyright(c) 2024-2026 edst contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package catalog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	fpath "path/filepath"
	"strings"

	"github.com/CaptainTux/VATSIM-TDLS-backend/log"
	"github.com/CaptainTux/VATSIM-TDLS-backend/util"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"google.golang.org/api/option"
)

// StorageBackend is where catalog snapshots are published to and fetched
// from.
type StorageBackend interface {
	OpenRead(ctx context.Context, path string) (io.ReadCloser, error)
	Store(ctx context.Context, path string, r io.Reader) (int64, error)
	Close() error
}

// StorageConfig selects and configures a StorageBackend.
type StorageConfig struct {
	Backend  string `json:"backend"` // "local", "gcs", or "s3"
	Root     string `json:"root"`    // local
	Bucket   string `json:"bucket"`  // gcs, s3
	Region   string `json:"region"`  // s3
	Endpoint string `json:"endpoint"`
	// PathStyle selects path-style S3 addressing, as needed for most
	// S3-compatible servers.
	PathStyle bool `json:"path_style"`
}

func MakeStorageBackend(ctx context.Context, cfg StorageConfig) (StorageBackend, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "local":
		return LocalBackend{Root: cfg.Root}, nil
	case "gcs":
		if g, err := MakeGCSBackend(ctx, cfg.Bucket); err != nil {
			return nil, err
		} else {
			return g, nil
		}
	case "s3":
		if s, err := MakeS3Backend(ctx, S3Config{Bucket: cfg.Bucket, Region: cfg.Region, Endpoint: cfg.Endpoint, PathStyle: cfg.PathStyle}); err != nil {
			return nil, err
		} else {
			return s, nil
		}
	default:
		return nil, fmt.Errorf("%q: %w", cfg.Backend, ErrUnknownBackend)
	}
}

///////////////////////////////////////////////////////////////////////////
// LocalBackend

// LocalBackend stores objects as files under Root.
type LocalBackend struct {
	Root string
}

func (l LocalBackend) path(p string) (string, error) {
	if l.Root == "" {
		return p, nil
	}
	full := fpath.Join(l.Root, p)
	if rel, err := fpath.Rel(l.Root, full); err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%s: %w", p, ErrPathOutsideStorage)
	}
	return full, nil
}

func (l LocalBackend) OpenRead(ctx context.Context, path string) (io.ReadCloser, error) {
	p, err := l.path(path)
	if err != nil {
		return nil, err
	}
	return os.Open(p)
}

func (l LocalBackend) Store(ctx context.Context, path string, r io.Reader) (int64, error) {
	p, err := l.path(path)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(fpath.Dir(p), 0o755); err != nil {
		return 0, err
	}

	f, err := os.Create(p)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		return n, err
	}
	return n, f.Close()
}

func (l LocalBackend) Close() error { return nil }

///////////////////////////////////////////////////////////////////////////
// GCSBackend

type GCSBackend struct {
	client *storage.Client
	bucket *storage.BucketHandle
}

// MakeGCSBackend returns a backend for the given Google Cloud Storage
// bucket. Credentials are taken from the EDST_GCS_CREDENTIALS environment
// variable if it is set and from the application default credentials
// otherwise.
func MakeGCSBackend(ctx context.Context, bucketName string) (*GCSBackend, error) {
	if bucketName == "" {
		return nil, ErrMissingBucket
	}

	var opts []option.ClientOption
	if credsJSON := os.Getenv("EDST_GCS_CREDENTIALS"); credsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credsJSON)))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return &GCSBackend{
		client: client,
		bucket: client.Bucket(bucketName),
	}, nil
}

func (g *GCSBackend) OpenRead(ctx context.Context, path string) (io.ReadCloser, error) {
	return g.bucket.Object(path).NewReader(ctx)
}

func (g *GCSBackend) Store(ctx context.Context, path string, r io.Reader) (int64, error) {
	objw := g.bucket.Object(path).NewWriter(ctx)
	n, err := io.Copy(objw, r)
	if err != nil {
		objw.Close()
		return n, err
	}
	return n, objw.Close()
}

func (g *GCSBackend) Close() error { return g.client.Close() }

///////////////////////////////////////////////////////////////////////////
// S3Backend

type S3Config struct {
	Bucket   string
	Region   string
	Endpoint string // for S3-compatible servers
	// Static credentials; if empty, the default AWS credential chain is
	// used.
	AccessKeyID     string
	SecretAccessKey string
	PathStyle       bool
	HTTPClient      s3.HTTPClient
}

type S3Backend struct {
	client *s3.Client
	bucket string
}

func MakeS3Backend(ctx context.Context, cfg S3Config) (*S3Backend, error) {
	if cfg.Bucket == "" {
		return nil, ErrMissingBucket
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(util.Select(cfg.Region != "", cfg.Region, "us-east-1")),
	}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// Not all S3-compatible servers support the newer checksums.
			o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		}
		if cfg.HTTPClient != nil {
			o.HTTPClient = cfg.HTTPClient
		}
	})

	return &S3Backend{client: client, bucket: cfg.Bucket}, nil
}

func (s *S3Backend) OpenRead(ctx context.Context, path string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(path)})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

func (s *S3Backend) Store(ctx context.Context, path string, r io.Reader) (int64, error) {
	// PutObject needs a seekable body to sign the request.
	b, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
		Body:   bytes.NewReader(b),
	})
	return int64(len(b)), err
}

func (s *S3Backend) Close() error { return nil }

///////////////////////////////////////////////////////////////////////////
// Snapshots

// FetchSnapshot reads the catalog stored at the given path; the path's
// extension gives its format as with DecodeFile, and .zst-suffixed
// objects are decompressed.
func FetchSnapshot(ctx context.Context, sb StorageBackend, path string, lg *log.Logger) (*File, error) {
	r, err := sb.OpenRead(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	rc, err := util.NewReader(path, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer rc.Close()

	f, err := DecodeFile(path, rc)
	if err != nil {
		return nil, err
	}

	lg.Info("fetched ADR catalog snapshot", slog.String("path", path), slog.Int("adrs", f.NumADRs()),
		slog.Int("procedures", len(f.Procedures)))
	return f, nil
}

// PublishSnapshot encodes the catalog according to path's extension and
// stores it.
func PublishSnapshot(ctx context.Context, sb StorageBackend, path string, f *File, lg *log.Logger) error {
	var buf bytes.Buffer
	if err := EncodeFile(path, &buf, f); err != nil {
		return err
	}

	n, err := sb.Store(ctx, path, &buf)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	lg.Info("published ADR catalog snapshot", slog.String("path", path), slog.Int64("bytes", n))
	return nil
}
