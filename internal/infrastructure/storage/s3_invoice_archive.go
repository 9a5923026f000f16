// Package storage archives order documents in S3-compatible object storage.
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
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/boutique/storefront/internal/application/notification"
	infraconfig "github.com/boutique/storefront/internal/infrastructure/config"
	"go.uber.org/zap"
)

// DefaultPresignExpiration bounds the lifetime of invoice download links
const DefaultPresignExpiration = 15 * time.Minute

const invoiceContentType = "application/json"

// S3InvoiceArchive stores invoices in a bucket of any S3-compatible service (AWS S3, MinIO, ...)
type S3InvoiceArchive struct {
	client            *s3.Client
	presignClient     *s3.PresignClient
	bucket            string
	keyPrefix         string
	presignExpiration time.Duration
	logger            *zap.Logger
}

// Option configures an S3InvoiceArchive
type Option func(*S3InvoiceArchive)

// WithLogger sets a custom logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *S3InvoiceArchive) {
		s.logger = logger
	}
}

// WithPresignExpiration sets the lifetime of download links
func WithPresignExpiration(d time.Duration) Option {
	return func(s *S3InvoiceArchive) {
		s.presignExpiration = d
	}
}

// NewS3InvoiceArchive creates an archive from configuration. An empty endpoint
// uses the AWS endpoint of the configured region.
func NewS3InvoiceArchive(cfg *infraconfig.StorageConfig, opts ...Option) (*S3InvoiceArchive, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKey == "" {
		return nil, errors.New("storage access key is required")
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("storage secret key is required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if endpoint != "" && !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	archive := &S3InvoiceArchive{
		client:            client,
		presignClient:     s3.NewPresignClient(client),
		bucket:            cfg.Bucket,
		keyPrefix:         strings.Trim(cfg.KeyPrefix, "/"),
		presignExpiration: DefaultPresignExpiration,
		logger:            zap.NewNop(),
	}
	for _, opt := range opts {
		opt(archive)
	}
	return archive, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *S3InvoiceArchive) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating invoice bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// objectKey prefixes key with the configured key prefix
func (s *S3InvoiceArchive) objectKey(key string) string {
	if s.keyPrefix == "" {
		return key
	}
	return path.Join(s.keyPrefix, key)
}

// PutInvoice uploads a JSON invoice
func (s *S3InvoiceArchive) PutInvoice(ctx context.Context, key string, body []byte) error {
	if key == "" {
		return errors.New("storage key is required")
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(key)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(invoiceContentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload invoice: %w", err)
	}
	return nil
}

// InvoiceURL returns a presigned download link for an archived invoice
func (s *S3InvoiceArchive) InvoiceURL(ctx context.Context, key string) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}

	req, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	}, s3.WithPresignExpires(s.presignExpiration))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate download URL: %w", err)
	}
	return req.URL, time.Now().Add(s.presignExpiration), nil
}

// Bucket returns the bucket name
func (s *S3InvoiceArchive) Bucket() string {
	return s.bucket
}

var _ notification.InvoiceArchive = (*S3InvoiceArchive)(nil)
