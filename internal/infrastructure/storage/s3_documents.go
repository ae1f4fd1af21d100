// Package storage keeps rendered documents and report exports in an
// S3-compatible bucket.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	appshared "github.com/sitestock/backend/internal/application/shared"
	"github.com/sitestock/backend/internal/domain/shared"
	infraconfig "github.com/sitestock/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// S3DocumentStore maps document numbers to object keys and signs download
// links for them. Works with AWS S3, MinIO and other compatible services.
type S3DocumentStore struct {
	client         *s3.Client
	presignClient  *s3.PresignClient
	bucket         string
	prefix         string
	presignExpires time.Duration
	logger         *zap.Logger
}

// Option configures an S3DocumentStore
type Option func(*S3DocumentStore)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *S3DocumentStore) {
		s.logger = logger
	}
}

// NewS3DocumentStore creates a store from configuration. No request is
// made until the store is used.
func NewS3DocumentStore(cfg *infraconfig.StorageConfig, opts ...Option) (*S3DocumentStore, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if (cfg.AccessKeyID == "") != (cfg.SecretKey == "") {
		return nil, errors.New("storage access key id and secret key must be set together")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	var endpoint string
	if cfg.Endpoint != "" {
		endpoint = cfg.Endpoint
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "https://" + endpoint
		}
		if _, err := url.Parse(endpoint); err != nil {
			return nil, fmt.Errorf("invalid storage endpoint: %w", err)
		}
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	store := &S3DocumentStore{
		client:         client,
		presignClient:  s3.NewPresignClient(client),
		bucket:         cfg.Bucket,
		prefix:         strings.Trim(cfg.Prefix, "/"),
		presignExpires: cfg.PresignExpires,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(store)
	}
	if store.presignExpires <= 0 {
		store.presignExpires = 15 * time.Minute
	}
	return store, nil
}

// EnsureBucket creates the bucket when it does not exist
func (s *S3DocumentStore) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}
	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating storage bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	var alreadyOwned *types.BucketAlreadyOwnedByYou
	if err != nil && !errors.As(err, &alreadyOwned) {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Key returns the object key of a document, e.g. documents/grn/GRN-0001.pdf
func (s *S3DocumentStore) Key(kind, number string) string {
	return path.Join(s.prefix, strings.ToLower(kind), number+".pdf")
}

// Link returns the object key stored as a document's pdfLink. Keys never
// expire; signed URLs are produced on demand by DownloadURL.
func (s *S3DocumentStore) Link(_ context.Context, kind, number string) (string, error) {
	if kind == "" || number == "" {
		return "", shared.NewValidationError("document", "kind and number are required")
	}
	return s.Key(kind, number), nil
}

// DownloadURL signs a GET link for a stored document. A document that was
// never uploaded is NOT_FOUND.
func (s *S3DocumentStore) DownloadURL(ctx context.Context, kind, number string) (string, time.Time, error) {
	key := s.Key(kind, number)
	exists, err := s.objectExists(ctx, key)
	if err != nil {
		return "", time.Time{}, err
	}
	if !exists {
		return "", time.Time{}, shared.NewNotFoundError("document", kind+"/"+number)
	}
	return s.presignGet(ctx, key)
}

// Archive uploads data under name below the reports folder and returns a
// signed link to it
func (s *S3DocumentStore) Archive(ctx context.Context, name string, data []byte, contentType string) (string, time.Time, error) {
	if name == "" {
		return "", time.Time{}, errors.New("archive name is required")
	}
	key := path.Join(s.prefix, "reports", name)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to upload %s: %w", key, err)
	}
	s.logger.Info("Report archived", zap.String("key", key), zap.Int("bytes", len(data)))
	return s.presignGet(ctx, key)
}

// Bucket returns the bucket name
func (s *S3DocumentStore) Bucket() string {
	return s.bucket
}

func (s *S3DocumentStore) presignGet(ctx context.Context, key string) (string, time.Time, error) {
	req, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.presignExpires))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign %s: %w", key, err)
	}
	return req.URL, time.Now().Add(s.presignExpires), nil
}

func (s *S3DocumentStore) objectExists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check %s: %w", key, err)
}

var _ appshared.DocumentLinker = (*S3DocumentStore)(nil)
