package archive

import (
	"context"
	"errors"
	"io"
	"net/url"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleanexit/cleanexit/internal/config"
)

func testConfig() config.ArchiveConfig {
	return config.ArchiveConfig{
		Bucket:          "cleanexit",
		Region:          "us-east-1",
		Endpoint:        "http://127.0.0.1:9000",
		AccessKeyID:     "minioadmin",
		SecretAccessKey: "minioadmin",
		Prefix:          "certificates/",
		PresignExpiry:   10 * time.Minute,
	}
}

func TestNewS3_RequiresBucket(t *testing.T) {
	_, err := NewS3(context.Background(), config.ArchiveConfig{})
	assert.Error(t, err)
}

func TestNewS3_LoadConfigError(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no config")
	}

	_, err := NewS3(context.Background(), testConfig())
	assert.ErrorContains(t, err, "load aws config")
}

func TestS3_Key(t *testing.T) {
	a, err := NewS3(context.Background(), testConfig())
	require.NoError(t, err)

	assert.Equal(t, "certificates/CERT-1-ABC.pdf", a.Key("CERT-1-ABC.pdf"))
}

func TestS3_Put(t *testing.T) {
	a, err := NewS3(context.Background(), testConfig())
	require.NoError(t, err)

	orig := putObject
	t.Cleanup(func() { putObject = orig })

	var got *s3.PutObjectInput
	var body []byte
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		got = in
		body, _ = io.ReadAll(in.Body)
		return &s3.PutObjectOutput{}, nil
	}

	require.NoError(t, a.Put(context.Background(), "CERT-1-ABC.pdf", []byte("%PDF-1.3")))
	require.NotNil(t, got)
	assert.Equal(t, "cleanexit", aws.ToString(got.Bucket))
	assert.Equal(t, "certificates/CERT-1-ABC.pdf", aws.ToString(got.Key))
	assert.Equal(t, "application/pdf", aws.ToString(got.ContentType))
	assert.Equal(t, int64(8), aws.ToInt64(got.ContentLength))
	assert.Equal(t, "%PDF-1.3", string(body))

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return nil, errors.New("boom")
	}
	assert.ErrorContains(t, a.Put(context.Background(), "x.pdf", nil), "boom")
}

func TestS3_PresignGet(t *testing.T) {
	a, err := NewS3(context.Background(), testConfig())
	require.NoError(t, err)

	raw, err := a.PresignGet(context.Background(), "CERT-1-ABC.pdf")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", u.Host)
	assert.Equal(t, "/cleanexit/certificates/CERT-1-ABC.pdf", u.Path)
	assert.Equal(t, "600", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

func TestS3_PresignGetError(t *testing.T) {
	a, err := NewS3(context.Background(), testConfig())
	require.NoError(t, err)

	orig := presignGetObject
	t.Cleanup(func() { presignGetObject = orig })

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("presign failed")
	}

	_, err = a.PresignGet(context.Background(), "x.pdf")
	assert.ErrorContains(t, err, "presign failed")
}
