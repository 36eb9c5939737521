package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"rolodex/internal/config"
)

// ObjectUploader stores picture bytes and returns a publicly reachable URL.
type ObjectUploader interface {
	Upload(ctx context.Context, body io.Reader, ext, contentType string) (string, error)
}

// S3Storage uploads contact pictures to an S3 bucket. A non-empty Endpoint
// points the client at a MinIO-compatible store instead of AWS.
type S3Storage struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
	logger        *slog.Logger
}

func NewS3Storage(cfg *config.StorageConfig, logger *slog.Logger) (*S3Storage, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	// Static credentials for MinIO and other self-hosted stores; AWS
	// deployments rely on the default credential chain.
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Storage{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		logger:        logger,
	}, nil
}

// storageKey partitions uploads by date so buckets stay listable.
func storageKey(ext string) string {
	d := time.Now()
	return fmt.Sprintf("pictures/%d/%02d/%02d/%s%s", d.Year(), d.Month(), d.Day(), uuid.New(), ext)
}

func (s *S3Storage) Upload(ctx context.Context, body io.Reader, ext, contentType string) (string, error) {
	key := storageKey(ext)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		s.logger.Error("failed to upload picture", slog.String("key", key), slog.Any("error", err))
		return "", fmt.Errorf("failed to upload picture: %w", err)
	}

	s.logger.Info("picture uploaded", slog.String("key", key))
	return s.publicBaseURL + "/" + key, nil
}
