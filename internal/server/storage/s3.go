// Package storage implements the object-store client over an S3-compatible
// backend (MinIO in development). Blobs are addressed by durable URL
// locators; all calls carry a bounded per-attempt timeout and transient
// failures are retried with backoff before surfacing.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sethvargo/go-retry"

	"github.com/Pradeepp09/SITE-server/internal/common"
	sc "github.com/Pradeepp09/SITE-server/internal/server/config"
)

// Indirections over the AWS SDK so tests can stub the network edge.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in)
	}
	getObject = func(c *s3.Client, ctx context.Context, in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
		return c.GetObject(ctx, in)
	}
	headBucket = func(c *s3.Client, ctx context.Context, in *s3.HeadBucketInput) (*s3.HeadBucketOutput, error) {
		return c.HeadBucket(ctx, in)
	}
	createBucket = func(c *s3.Client, ctx context.Context, in *s3.CreateBucketInput) (*s3.CreateBucketOutput, error) {
		return c.CreateBucket(ctx, in)
	}
)

// ObjectStore is the collaborator boundary the pipelines store and fetch
// blobs through.
type ObjectStore interface {
	// EnsureBucket is the one-time startup step: it must run before the
	// pipelines become reachable.
	EnsureBucket(ctx context.Context) error
	// Put stores data under key and returns a durable locator.
	Put(ctx context.Context, key string, data []byte) (string, error)
	// Get fetches the blob a previous Put returned the locator for.
	Get(ctx context.Context, locator string) ([]byte, error)
}

type S3Client struct {
	client       *s3.Client
	bucket       string
	baseEndpoint string
	timeout      time.Duration
	maxRetries   uint64
}

func NewS3Client(cfg *sc.Config) (*S3Client, error) {
	awsCfg, err := loadDefaultAWSConfig(context.Background(),
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,     // MINIO_ROOT_USER
			cfg.S3RootPassword, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3Client{
		client:       client,
		bucket:       cfg.S3Bucket,
		baseEndpoint: strings.TrimSuffix(cfg.S3BaseEndpoint, "/"),
		timeout:      cfg.StorageTimeout,
		maxRetries:   cfg.StorageMaxRetries,
	}, nil
}

func (s *S3Client) EnsureBucket(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := headBucket(s.client, ctx, &s3.HeadBucketInput{Bucket: &s.bucket}); err == nil {
		return nil
	}

	if _, err := createBucket(s.client, ctx, &s3.CreateBucketInput{Bucket: &s.bucket}); err != nil {
		return common.Wrap(common.KindStorageUnavailable, fmt.Sprintf("create bucket %s", s.bucket), err)
	}

	return nil
}

// Put stores data under key, retrying transient failures with fibonacci
// backoff. Exhausted retries surface STORAGE_UNAVAILABLE.
func (s *S3Client) Put(ctx context.Context, key string, data []byte) (string, error) {
	err := retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		_, err := putObject(s.client, attemptCtx, &s3.PutObjectInput{
			Bucket: &s.bucket,
			Key:    &key,
			Body:   bytes.NewReader(data),
		})
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return "", common.Wrap(common.KindStorageUnavailable, fmt.Sprintf("put %s", key), err)
	}

	return s.Locator(key), nil
}

// Get fetches a blob by the locator a previous Put returned. Exhausted
// retries surface FETCH_FAILED.
func (s *S3Client) Get(ctx context.Context, locator string) ([]byte, error) {
	key, err := s.keyFromLocator(locator)
	if err != nil {
		return nil, err
	}

	var data []byte
	err = retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		out, err := getObject(s.client, attemptCtx, &s3.GetObjectInput{
			Bucket: &s.bucket,
			Key:    &key,
		})
		if err != nil {
			return retry.RetryableError(err)
		}
		defer out.Body.Close()

		data, err = io.ReadAll(out.Body)
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return nil, common.Wrap(common.KindFetchFailed, fmt.Sprintf("get %s", key), err)
	}

	return data, nil
}

// Locator returns the durable URL for a key (path-style addressing).
func (s *S3Client) Locator(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.baseEndpoint, s.bucket, key)
}

func (s *S3Client) keyFromLocator(locator string) (string, error) {
	u, err := url.Parse(locator)
	if err != nil {
		return "", common.Wrap(common.KindFetchFailed, "malformed locator", err)
	}

	key := strings.TrimPrefix(u.Path, "/"+s.bucket+"/")
	if key == u.Path || key == "" {
		return "", common.Wrap(common.KindFetchFailed, fmt.Sprintf("locator %s is outside bucket %s", locator, s.bucket), nil)
	}

	return key, nil
}

func (s *S3Client) backoff() retry.Backoff {
	return retry.WithMaxRetries(s.maxRetries, retry.NewFibonacci(100*time.Millisecond))
}
