// Package publish uploads finished output files to an S3-compatible bucket.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const defaultRegion = "us-east-1"

// Config selects the destination bucket. Endpoint and PathStyle target
// S3-compatible stores such as MinIO or R2.
type Config struct {
	Bucket    string
	Prefix    string
	Region    string
	Endpoint  string
	PathStyle bool
}

type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Publisher writes objects under <prefix>/<run-id>/<file>.
type Publisher struct {
	client putObjectAPI
	bucket string
	prefix string
	log    *slog.Logger
}

// New builds a Publisher from the default AWS credential chain.
func New(ctx context.Context, cfg Config, log *slog.Logger) (*Publisher, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("publish: bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return newPublisher(client, cfg, log), nil
}

func newPublisher(client putObjectAPI, cfg Config, log *slog.Logger) *Publisher {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Publisher{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		log:    log,
	}
}

// Key returns the object key for file within a run.
func (p *Publisher) Key(runID, file string) string {
	return path.Join(p.prefix, runID, file)
}

// Publish uploads each file and returns the keys written. The first failure
// stops the upload.
func (p *Publisher) Publish(ctx context.Context, runID string, files []string) ([]string, error) {
	keys := make([]string, 0, len(files))
	for _, f := range files {
		key := p.Key(runID, filepath.Base(f))
		if err := p.put(ctx, key, f); err != nil {
			return keys, fmt.Errorf("publish %s: %w", key, err)
		}
		p.log.Info("published", "bucket", p.bucket, "key", key)
		keys = append(keys, key)
	}
	return keys, nil
}

func (p *Publisher) put(ctx context.Context, key, file string) error {
	fh, err := os.Open(file)
	if err != nil {
		return err
	}
	defer fh.Close()

	contentType := contentTypeFor(file)
	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        fh,
		ContentType: aws.String(contentType),
	})
	return err
}

func contentTypeFor(file string) string {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".json":
		return "application/json"
	case ".sql":
		return "application/sql"
	default:
		return "application/octet-stream"
	}
}
