package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"catalog-api/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// objectPutter is the part of the S3 client the uploader needs.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Options configures an S3 uploader.
type S3Options struct {
	Bucket string
	Region string
	Prefix string
	// PublicBaseURL replaces the virtual-hosted bucket URL in returned links.
	PublicBaseURL string
	Limits        Limits
}

// s3Uploader implements Uploader for AWS S3.
type s3Uploader struct {
	client  objectPutter
	opts    S3Options
	baseURL string
	logger  zerolog.Logger
}

// NewS3Uploader creates a new S3-based image uploader.
func NewS3Uploader(ctx context.Context, opts S3Options, logger zerolog.Logger) (Uploader, error) {
	logger = logger.With().Str("component", "s3-uploader").Logger()

	// Load AWS configuration
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(opts.Region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().
		Str("bucket", opts.Bucket).
		Str("region", opts.Region).
		Msg("S3 uploader initialised")

	return newS3Uploader(s3.NewFromConfig(cfg), opts, logger), nil
}

func newS3Uploader(client objectPutter, opts S3Options, logger zerolog.Logger) *s3Uploader {
	baseURL := strings.TrimRight(opts.PublicBaseURL, "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, opts.Region)
	}
	return &s3Uploader{
		client:  client,
		opts:    opts,
		baseURL: baseURL,
		logger:  logger,
	}
}

// Upload stores every object in the bucket.
func (u *s3Uploader) Upload(ctx context.Context, folder string, objs []model.Upload) ([]string, error) {
	urls, err := uploadAll(ctx, u, u.opts.Limits, u.opts.Prefix, folder, objs)
	if err != nil {
		u.logger.Error().Err(err).Str("folder", folder).Int("count", len(objs)).Msg("S3 upload failed")
		return nil, err
	}

	u.logger.Info().Str("folder", folder).Int("count", len(urls)).Msg("objects uploaded to S3")
	return urls, nil
}

func (u *s3Uploader) put(ctx context.Context, key string, obj model.Upload) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(u.opts.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(obj.Data),
		ContentLength: aws.Int64(int64(len(obj.Data))),
	}
	if obj.ContentType != "" {
		input.ContentType = aws.String(obj.ContentType)
	}

	if _, err := u.client.PutObject(ctx, input); err != nil {
		u.logger.Error().
			Err(err).
			Str("bucket", u.opts.Bucket).
			Str("key", key).
			Msg("failed to put object to S3")
		return "", fmt.Errorf("failed to put object to S3 (bucket=%s, key=%s): %w", u.opts.Bucket, key, err)
	}

	return u.baseURL + "/" + key, nil
}
