// Package s3 implements a block Store on an S3-compatible bucket (AWS S3 or
// MinIO), one object per block.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"orchard/internal/block/core"
)

// Store implements core.Store using an S3-compatible backend.
// Minimal surface area: single bucket, objects under Prefix.
type Store struct {
	client *s3.Client
	bucket string
	prefix string
	mu     sync.Mutex
}

// Config holds explicit construction parameters.
type Config struct {
	Region    string
	Bucket    string
	Prefix    string // object key prefix, default "blocks/"
	Endpoint  string // optional; if set enables custom endpoint (e.g. MinIO)
	PathStyle bool
}

// New creates an S3 block store from Config. Credentials come from the default
// AWS chain (AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY / profiles).
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return newStore(client, cfg.Bucket, cfg.Prefix), nil
}

func newStore(client *s3.Client, bucket, prefix string) *Store {
	if prefix == "" {
		prefix = "blocks/"
	}
	return &Store{client: client, bucket: bucket, prefix: prefix}
}

// Driver returns the block driver identifier.
func (s *Store) Driver() core.Driver { return core.DriverS3 }

func (s *Store) key(id core.ID) string {
	return fmt.Sprintf("%s%08x", s.prefix, uint32(id))
}

// GetData downloads the block object; a missing object is an unwritten block.
func (s *Store) GetData(ctx context.Context, id core.ID) ([]byte, bool, error) {
	key := s.key(id)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &key})
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	defer func() { _ = out.Body.Close() }()
	b, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	return b, true, nil
}

// PatchData reads the current object, applies the patch and uploads the full
// block. A single PutObject replaces the object atomically.
func (s *Store) PatchData(ctx context.Context, id core.ID, buf []byte, offset int) error {
	if err := core.CheckPatch(offset, len(buf)); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	base, _, err := s.GetData(ctx, id)
	if err != nil {
		return err
	}
	next, err := core.Apply(base, buf, offset)
	if err != nil {
		return err
	}
	key := s.key(id)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        &s.bucket,
		Key:           &key,
		Body:          bytes.NewReader(next),
		ContentLength: aws.Int64(int64(len(next))),
		ContentType:   aws.String("application/octet-stream"),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var re *awshttp.ResponseError
	return errors.As(err, &re) && re.HTTPStatusCode() == http.StatusNotFound
}
