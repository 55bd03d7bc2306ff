// Package archive copies rendered certificates to S3-compatible object
// storage and hands out time-limited download links for them.
package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/cleanexit/cleanexit/internal/config"
)

const pdfContentType = "application/pdf"

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// S3 stores certificates in one bucket under a key prefix.
type S3 struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	prefix  string
	expiry  time.Duration
}

// NewS3 builds an archive from configuration. Static credentials are used
// when given, otherwise the default AWS credential chain applies. A custom
// endpoint switches to path-style addressing for MinIO and similar stores.
func NewS3(ctx context.Context, cfg config.ArchiveConfig) (*S3, error) {
	if !cfg.Enabled() {
		return nil, errors.New("archive: bucket is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("archive: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	expiry := cfg.PresignExpiry
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}

	return &S3{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		prefix:  cfg.Prefix,
		expiry:  expiry,
	}, nil
}

// Key returns the object key for a certificate file name.
func (a *S3) Key(name string) string {
	return path.Join(a.prefix, name)
}

// Put uploads a rendered certificate.
func (a *S3) Put(ctx context.Context, name string, pdf []byte) error {
	_, err := putObject(a.client, ctx, &s3.PutObjectInput{
		Bucket:             aws.String(a.bucket),
		Key:                aws.String(a.Key(name)),
		Body:               bytes.NewReader(pdf),
		ContentLength:      aws.Int64(int64(len(pdf))),
		ContentType:        aws.String(pdfContentType),
		ContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", name)),
	})
	if err != nil {
		return fmt.Errorf("archive: put %s: %w", name, err)
	}
	return nil
}

// PresignGet returns a time-limited download URL for an archived certificate.
func (a *S3) PresignGet(ctx context.Context, name string) (string, error) {
	req, err := presignGetObject(a.presign, ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.Key(name)),
	}, s3.WithPresignExpires(a.expiry))
	if err != nil {
		return "", fmt.Errorf("archive: presign %s: %w", name, err)
	}
	return req.URL, nil
}
