package dataset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Downloader is the narrow slice of the S3 transfer manager the stager uses.
type Downloader interface {
	Download(ctx context.Context, w io.WriterAt, input *s3.GetObjectInput, opts ...func(*manager.Downloader)) (int64, error)
}

// Stager resolves dataset source locations to local file paths before
// parsing. Local paths and file:// URIs pass through; s3:// sources are
// downloaded to a temporary file.
type Stager struct {
	logger     *slog.Logger
	downloader Downloader
}

// NewStager creates a Stager. The S3 client is built lazily from ambient AWS
// configuration on first s3:// source.
func NewStager(logger *slog.Logger) *Stager {
	return &Stager{logger: logger.With("component", "stager")}
}

// WithDownloader overrides the S3 downloader. Used in tests.
func (s *Stager) WithDownloader(d Downloader) *Stager {
	s.downloader = d
	return s
}

// Resolve maps a source location to a local path. The returned cleanup
// function removes any temporary file and is never nil.
func (s *Stager) Resolve(ctx context.Context, source string) (string, func(), error) {
	noop := func() {}

	switch {
	case strings.HasPrefix(source, "s3://"):
		return s.stageS3(ctx, source)
	case strings.HasPrefix(source, "file://"):
		return strings.TrimPrefix(source, "file://"), noop, nil
	default:
		return source, noop, nil
	}
}

// stageS3 downloads s3://bucket/key to a temporary file.
func (s *Stager) stageS3(ctx context.Context, source string) (string, func(), error) {
	noop := func() {}

	bucket, key, err := splitS3URI(source)
	if err != nil {
		return "", noop, err
	}

	if s.downloader == nil {
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return "", noop, fmt.Errorf("load aws config: %w", err)
		}
		s.downloader = manager.NewDownloader(s3.NewFromConfig(cfg))
	}

	tmp, err := os.CreateTemp("", "godp-stage-*-"+path.Base(key))
	if err != nil {
		return "", noop, fmt.Errorf("create temp file: %w", err)
	}

	cleanup := func() { os.Remove(tmp.Name()) }

	n, err := s.downloader.Download(ctx, tmp, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	closeErr := tmp.Close()
	if err != nil {
		cleanup()
		return "", noop, fmt.Errorf("download %s: %w", source, err)
	}
	if closeErr != nil {
		cleanup()
		return "", noop, fmt.Errorf("close staged file: %w", closeErr)
	}

	s.logger.Debug("staged s3 source", "source", source, "bytes", n, "path", tmp.Name())
	return tmp.Name(), cleanup, nil
}

// splitS3URI parses s3://bucket/key into its parts.
func splitS3URI(uri string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(uri, "s3://")
	bucket, key, found := strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid s3 uri %q, want s3://bucket/key", uri)
	}
	return bucket, key, nil
}
