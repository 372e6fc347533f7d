// Package knowledge loads the static knowledge-base document that is
// embedded in every prompt.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Source yields the knowledge-base text.
type Source interface {
	Load(ctx context.Context) (string, error)
}

// FileSource reads a local file.
type FileSource struct {
	Path string
}

func (f FileSource) Load(ctx context.Context) (string, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", fmt.Errorf("reading knowledge base: %w", err)
	}
	return string(data), nil
}

// S3Config holds credentials for an S3-compatible store.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Region    string
}

// S3Source reads one object from an S3-compatible store.
type S3Source struct {
	client *minio.Client
	bucket string
	key    string
}

// NewS3Source creates an S3Source. No request is made until Load.
func NewS3Source(cfg S3Config, bucket, key string) (*S3Source, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("missing one or more of MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("creating minio client: %w", err)
	}
	return &S3Source{client: client, bucket: bucket, key: key}, nil
}

func (s *S3Source) Load(ctx context.Context) (string, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key, minio.GetObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("getting s3://%s/%s: %w", s.bucket, s.key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return "", fmt.Errorf("reading s3://%s/%s: %w", s.bucket, s.key, err)
	}
	return string(data), nil
}

// ParseSource maps "s3://bucket/key" to an S3Source and anything else to
// a FileSource.
func ParseSource(uri string, s3 S3Config) (Source, error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return FileSource{Path: uri}, nil
	}
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return nil, fmt.Errorf("invalid knowledge base uri %q: want s3://bucket/key", uri)
	}
	return NewS3Source(s3, bucket, key)
}

// LoadOrEmpty loads src, logging and returning "" on failure.
func LoadOrEmpty(ctx context.Context, src Source, logger *slog.Logger) string {
	if src == nil {
		return ""
	}
	text, err := src.Load(ctx)
	if err != nil {
		if logger != nil {
			logger.Error("loading knowledge base", "error", err)
		}
		return ""
	}
	return text
}
