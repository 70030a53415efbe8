// Package s3 stores archives in Amazon S3 or an S3-compatible service.
package s3

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/fwojciec/mdextract"
)

var _ mdextract.BlobStore = (*Store)(nil)

// Config selects the S3 endpoint and credentials. Empty fields fall back
// to the default AWS configuration chain.
type Config struct {
	Region string

	// Endpoint points at an S3-compatible service such as MinIO. Setting
	// it enables path-style addressing.
	Endpoint string

	AccessKeyID     string
	SecretAccessKey string
}

// Store implements mdextract.BlobStore on S3.
type Store struct {
	client  *s3.Client
	presign *s3.PresignClient
}

// NewStore wraps an existing client.
func NewStore(client *s3.Client) *Store {
	return &Store{
		client:  client,
		presign: s3.NewPresignClient(client),
	}
}

// Open loads the AWS configuration and returns a Store.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, mdextract.Errorf(mdextract.ECONFIG, "load AWS config: %v", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewStore(client), nil
}

// Put uploads data under bucket/key.
func (s *Store) Put(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return storageError("Failed to upload to S3", err)
	}
	return nil
}

// PresignGet returns a SigV4 presigned GET URL valid for ttl.
func (s *Store) PresignGet(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", storageError("Failed to generate presigned URL", err)
	}
	return req.URL, nil
}

// storageError reports the service's error code and message when the
// failure came from the API.
func storageError(prefix string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return &mdextract.Error{
			Code:    mdextract.ESTORAGE,
			Message: prefix + ": " + apiErr.ErrorCode() + ": " + apiErr.ErrorMessage(),
			Err:     err,
		}
	}
	return &mdextract.Error{
		Code:    mdextract.ESTORAGE,
		Message: prefix + ": " + err.Error(),
		Err:     err,
	}
}
