package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Config holds S3 client and bucket info
type S3Config struct {
	Client     *s3.Client
	BucketName string
	PublicURL  string
}

// NewS3Config initializes the S3 client. A custom endpoint switches to path-style
// addressing so MinIO works as a drop-in store.
func NewS3Config(ctx context.Context, settings S3Settings) (*S3Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(settings.Region),
	}
	if settings.AccessKeyID != "" && settings.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(settings.AccessKeyID, settings.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if settings.Endpoint != "" {
			o.BaseEndpoint = aws.String(settings.Endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := settings.PublicURL
	if publicURL == "" {
		if settings.Endpoint != "" {
			publicURL = strings.TrimRight(settings.Endpoint, "/") + "/" + settings.Bucket
		} else {
			publicURL = fmt.Sprintf("https://%s.s3.amazonaws.com", settings.Bucket)
		}
	}

	return &S3Config{
		Client:     client,
		BucketName: settings.Bucket,
		PublicURL:  strings.TrimRight(publicURL, "/"),
	}, nil
}

// ObjectURL is the public URL of an object key.
func (s *S3Config) ObjectURL(key string) string {
	return s.PublicURL + "/" + key
}

// EnsureBucket creates the bucket when it does not exist yet, which is what a fresh MinIO needs.
func (s *S3Config) EnsureBucket(ctx context.Context) error {
	_, err := s.Client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.BucketName)})
	if err == nil {
		return nil
	}
	var notFound *types.NotFound
	if !errors.As(err, &notFound) {
		return fmt.Errorf("failed to check bucket %s: %w", s.BucketName, err)
	}
	if _, err := s.Client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.BucketName)}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.BucketName, err)
	}
	return nil
}
