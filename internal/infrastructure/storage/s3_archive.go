// Package storage archives exported ledger reports to S3-compatible object
// storage or to the local filesystem.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	commissionapp "github.com/ceemowww/comtrack2/internal/application/commission"
	"github.com/ceemowww/comtrack2/internal/infrastructure/config"
	"go.uber.org/zap"
)

// DefaultPresignExpiration is how long a presigned download link stays valid
const DefaultPresignExpiration = 15 * time.Minute

// S3ReportArchive stores report files in an S3 bucket. It works against AWS
// and against S3-compatible servers such as MinIO when Endpoint is set.
type S3ReportArchive struct {
	client            *s3.Client
	presignClient     *s3.PresignClient
	bucket            string
	prefix            string
	presignExpiration time.Duration
	logger            *zap.Logger
}

// S3ArchiveOption configures an S3ReportArchive
type S3ArchiveOption func(*S3ReportArchive)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) S3ArchiveOption {
	return func(a *S3ReportArchive) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithPresignExpiration sets the lifetime of presigned download links
func WithPresignExpiration(d time.Duration) S3ArchiveOption {
	return func(a *S3ReportArchive) {
		if d > 0 {
			a.presignExpiration = d
		}
	}
}

var _ commissionapp.ReportArchive = (*S3ReportArchive)(nil)

// NewS3ReportArchive builds an archive from the storage configuration. Static
// credentials are used when both keys are set, otherwise the default AWS
// credential chain applies.
func NewS3ReportArchive(ctx context.Context, cfg *config.StorageConfig, opts ...S3ArchiveOption) (*S3ReportArchive, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if (cfg.AccessKey == "") != (cfg.SecretKey == "") {
		return nil, errors.New("storage access key and secret key must be set together")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	endpoint := cfg.Endpoint
	if endpoint != "" && !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.ForcePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	a := &S3ReportArchive{
		client:            client,
		presignClient:     s3.NewPresignClient(client),
		bucket:            cfg.Bucket,
		prefix:            strings.Trim(cfg.Prefix, "/"),
		presignExpiration: DefaultPresignExpiration,
		logger:            zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Bucket returns the configured bucket name
func (a *S3ReportArchive) Bucket() string {
	return a.bucket
}

// ObjectKey returns the full object key for an archive key
func (a *S3ReportArchive) ObjectKey(key string) string {
	return objectKey(a.prefix, key)
}

// EnsureBucket creates the bucket if it does not exist
func (a *S3ReportArchive) EnsureBucket(ctx context.Context) error {
	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(a.bucket)})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	a.logger.Info("Creating report bucket", zap.String("bucket", a.bucket))
	_, err = a.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(a.bucket)})
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Put uploads body under key and returns its s3:// location
func (a *S3ReportArchive) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	if key == "" {
		return "", errors.New("archive key is required")
	}
	full := a.ObjectKey(key)

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(full),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		a.logger.Error("Failed to archive report",
			zap.String("bucket", a.bucket),
			zap.String("key", full),
			zap.Error(err))
		return "", fmt.Errorf("failed to upload %s: %w", full, err)
	}

	a.logger.Debug("Archived report",
		zap.String("bucket", a.bucket),
		zap.String("key", full),
		zap.Int("size", len(body)))
	return fmt.Sprintf("s3://%s/%s", a.bucket, full), nil
}

// Exists reports whether an archived object is present
func (a *S3ReportArchive) Exists(ctx context.Context, key string) (bool, error) {
	_, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.ObjectKey(key)),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check object: %w", err)
	}
	return true, nil
}

// PresignDownload returns a time-limited GET link for an archived report
func (a *S3ReportArchive) PresignDownload(ctx context.Context, key string) (string, time.Time, error) {
	req, err := a.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.ObjectKey(key)),
	}, s3.WithPresignExpires(a.presignExpiration))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to presign download: %w", err)
	}
	return req.URL, time.Now().Add(a.presignExpiration), nil
}

func objectKey(prefix, key string) string {
	key = strings.TrimLeft(key, "/")
	if prefix == "" {
		return key
	}
	return path.Join(prefix, key)
}
