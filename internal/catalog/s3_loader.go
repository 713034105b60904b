package catalog

import (
	"context"
	"fmt"

	"supply-desk/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// objectGetter is the part of the S3 client the loader uses.
type objectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// s3Loader implements Loader for gzipped JSON-lines snapshots stored in S3.
type s3Loader struct {
	client objectGetter
	bucket string
	key    string
	logger zerolog.Logger
}

// NewS3Loader creates a loader for s3://bucket/key using the default AWS
// credential chain.
func NewS3Loader(ctx context.Context, bucket, key, region string, logger zerolog.Logger) (Loader, error) {
	logger = logger.With().Str("component", "catalog-s3-loader").Logger()

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().
		Str("bucket", bucket).
		Str("key", key).
		Str("region", region).
		Msg("S3 catalog loader initialised")

	return newS3Loader(s3.NewFromConfig(cfg), bucket, key, logger), nil
}

func newS3Loader(client objectGetter, bucket, key string, logger zerolog.Logger) *s3Loader {
	return &s3Loader{
		client: client,
		bucket: bucket,
		key:    key,
		logger: logger,
	}
}

// Load downloads and decodes the snapshot object.
func (l *s3Loader) Load(ctx context.Context) ([]model.ProductBrief, error) {
	l.logger.Info().
		Str("bucket", l.bucket).
		Str("key", l.key).
		Msg("loading catalog snapshot from S3")

	result, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(l.key),
	})
	if err != nil {
		l.logger.Error().
			Err(err).
			Str("bucket", l.bucket).
			Str("key", l.key).
			Msg("failed to get object from S3")
		return nil, fmt.Errorf("failed to get object from S3 (bucket=%s, key=%s): %w", l.bucket, l.key, err)
	}
	defer result.Body.Close()

	products, err := readSnapshot(ctx, result.Body)
	if err != nil {
		l.logger.Error().
			Err(err).
			Str("bucket", l.bucket).
			Str("key", l.key).
			Msg("failed to read catalog snapshot from S3")
		return nil, fmt.Errorf("S3 object %s: %w", l.key, err)
	}

	l.logger.Info().
		Str("bucket", l.bucket).
		Str("key", l.key).
		Int("products_loaded", len(products)).
		Msg("catalog snapshot loaded from S3")

	return products, nil
}
