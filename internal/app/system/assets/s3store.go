// internal/app/system/assets/s3store.go
package assets

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// S3Config configures an S3 or S3-compatible bucket.
type S3Config struct {
	Region    string
	Bucket    string
	Prefix    string
	Endpoint  string // empty for AWS; set for MinIO and friends
	AccessKey string // empty uses the default credential chain
	SecretKey string
	// PublicBaseURL prefixes object keys in returned URLs (CDN or bucket URL).
	PublicBaseURL string
}

// objectAPI is the slice of the S3 client the store uses.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store implements Store on an S3 bucket.
type S3Store struct {
	api     objectAPI
	bucket  string
	prefix  string
	baseURL string
	log     *zap.Logger
}

// NewS3Store loads AWS config and builds the client.
func NewS3Store(ctx context.Context, cfg S3Config, logger *zap.Logger) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("assets: bucket is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("assets: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Store(client, cfg, logger), nil
}

func newS3Store(api objectAPI, cfg S3Config, logger *zap.Logger) *S3Store {
	base := strings.TrimRight(cfg.PublicBaseURL, "/")
	if base == "" {
		if cfg.Endpoint != "" {
			base = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
		} else {
			base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}
	return &S3Store{
		api:     api,
		bucket:  cfg.Bucket,
		prefix:  strings.Trim(cfg.Prefix, "/"),
		baseURL: base,
		log:     logger,
	}
}

func (s *S3Store) key(id string) string {
	if s.prefix == "" {
		return id
	}
	return s.prefix + "/" + id
}

// Upload stores u under a fresh asset ID.
func (s *S3Store) Upload(ctx context.Context, u Upload) (Asset, error) {
	id := NewAssetID(u.Filename)
	key := s.key(id)

	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   u.Body,
	}
	if u.ContentType != "" {
		in.ContentType = aws.String(u.ContentType)
	}
	if u.Size > 0 {
		in.ContentLength = aws.Int64(u.Size)
	}
	if _, err := s.api.PutObject(ctx, in); err != nil {
		return Asset{}, fmt.Errorf("assets: put %s: %w", key, err)
	}

	s.log.Debug("asset uploaded", zap.String("key", key), zap.Int64("size", u.Size))
	return Asset{ID: id, URL: s.baseURL + "/" + key}, nil
}

// Destroy deletes the object for assetID. S3 treats a missing key as success.
func (s *S3Store) Destroy(ctx context.Context, assetID string) error {
	if !ValidAssetID(assetID) {
		return ErrBadAssetID
	}
	key := s.key(assetID)
	if _, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("assets: delete %s: %w", key, err)
	}
	return nil
}
