package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"anpr-crossing/internal/config"
	"anpr-crossing/internal/domain/anpr"
)

var ErrNotConfigured = errors.New("r2 storage is not configured")

// R2Client stores plate snapshots in an S3 compatible bucket.
type R2Client struct {
	client        *s3.Client
	bucket        string
	endpoint      string
	publicBaseURL string
}

func NewR2Client(cfg config.StorageConfig) (*R2Client, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.Bucket == "" {
		return nil, ErrNotConfigured
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	awsCfg := aws.Config{
		Region:      region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	return &R2Client{
		client:        client,
		bucket:        cfg.Bucket,
		endpoint:      strings.TrimRight(cfg.Endpoint, "/"),
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

func (r *R2Client) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	if r == nil || r.client == nil {
		return "", ErrNotConfigured
	}
	if size <= 0 {
		return "", fmt.Errorf("empty file")
	}
	input := &s3.PutObjectInput{
		Bucket:        &r.bucket,
		Key:           &key,
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	}
	if _, err := r.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("r2 upload failed: %w", err)
	}
	return r.objectURL(key), nil
}

// UploadSnapshot stores the JPEG crop attached to record and returns its URL.
func (r *R2Client) UploadSnapshot(ctx context.Context, record anpr.PlateRecord) (string, error) {
	if len(record.Snapshot) == 0 {
		return "", fmt.Errorf("record %s has no snapshot", record.ID)
	}
	return r.Upload(ctx, SnapshotKey(record), bytes.NewReader(record.Snapshot), int64(len(record.Snapshot)), "image/jpeg")
}

// SnapshotKey lays snapshots out by camera and day: plates/<camera>/<yyyy-mm-dd>/<record id>.jpg
func SnapshotKey(record anpr.PlateRecord) string {
	camera := record.CameraID
	if camera == "" {
		camera = "unknown"
	}
	camera = strings.ReplaceAll(camera, "/", "_")
	return path.Join("plates", camera, record.EntryDate, record.ID.String()+".jpg")
}

func (r *R2Client) objectURL(key string) string {
	trimmedKey := strings.TrimLeft(key, "/")
	if r.publicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", r.publicBaseURL, r.bucket, trimmedKey)
	}
	return fmt.Sprintf("%s/%s/%s", r.endpoint, r.bucket, trimmedKey)
}
