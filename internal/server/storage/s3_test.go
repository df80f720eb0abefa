package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/Pradeepp09/SITE-server/internal/common"
	sc "github.com/Pradeepp09/SITE-server/internal/server/config"
)

func newTestClient(t *testing.T) *S3Client {
	t.Helper()
	cfg := &sc.Config{}
	cfg.LoadDefaults()
	cfg.StorageTimeout = time.Second
	cfg.StorageMaxRetries = 1

	c, err := NewS3Client(cfg)
	if err != nil {
		t.Fatalf("NewS3Client error: %v", err)
	}
	return c
}

func TestLocatorRoundTrip(t *testing.T) {
	c := newTestClient(t)

	locator := c.Locator("encrypted/enc_123")
	if locator != "http://127.0.0.1:9000/frames/encrypted/enc_123" {
		t.Fatalf("unexpected locator: %s", locator)
	}

	key, err := c.keyFromLocator(locator)
	if err != nil {
		t.Fatalf("keyFromLocator error: %v", err)
	}
	if key != "encrypted/enc_123" {
		t.Errorf("key = %q, want encrypted/enc_123", key)
	}
}

func TestKeyFromLocator_ForeignLocator(t *testing.T) {
	c := newTestClient(t)

	_, err := c.keyFromLocator("http://127.0.0.1:9000/other-bucket/enc_123")
	if !errors.Is(err, common.ErrFetchFailed) {
		t.Fatalf("want FETCH_FAILED for foreign locator, got %v", err)
	}
}

func TestPut_RetriesThenSurfacesStorageUnavailable(t *testing.T) {
	c := newTestClient(t)

	origPut := putObject
	defer func() { putObject = origPut }()

	calls := 0
	putObject = func(_ *s3.Client, _ context.Context, _ *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		calls++
		return nil, errors.New("connection refused")
	}

	_, err := c.Put(context.Background(), "encrypted/enc_1", []byte{1, 2, 3})
	if !errors.Is(err, common.ErrStorageUnavailable) {
		t.Fatalf("want STORAGE_UNAVAILABLE, got %v", err)
	}
	if calls != 2 { // initial attempt + one retry
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestPut_SucceedsAfterTransientFailure(t *testing.T) {
	c := newTestClient(t)

	origPut := putObject
	defer func() { putObject = origPut }()

	calls := 0
	putObject = func(_ *s3.Client, _ context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("transient")
		}
		return &s3.PutObjectOutput{}, nil
	}

	locator, err := c.Put(context.Background(), "encrypted/enc_2", []byte{1})
	if err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if locator != c.Locator("encrypted/enc_2") {
		t.Errorf("unexpected locator: %s", locator)
	}
}

func TestGet_ReturnsBlobBytes(t *testing.T) {
	c := newTestClient(t)

	origGet := getObject
	defer func() { getObject = origGet }()

	getObject = func(_ *s3.Client, _ context.Context, in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
		if *in.Key != "encrypted/enc_3" {
			t.Errorf("key = %q, want encrypted/enc_3", *in.Key)
		}
		return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader([]byte{0xde, 0xad}))}, nil
	}

	got, err := c.Get(context.Background(), c.Locator("encrypted/enc_3"))
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !bytes.Equal(got, []byte{0xde, 0xad}) {
		t.Errorf("unexpected bytes: %x", got)
	}
}

func TestGet_ExhaustedRetriesSurfaceFetchFailed(t *testing.T) {
	c := newTestClient(t)

	origGet := getObject
	defer func() { getObject = origGet }()

	getObject = func(_ *s3.Client, _ context.Context, _ *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
		return nil, errors.New("timeout")
	}

	_, err := c.Get(context.Background(), c.Locator("encrypted/enc_4"))
	if !errors.Is(err, common.ErrFetchFailed) {
		t.Fatalf("want FETCH_FAILED, got %v", err)
	}
}

func TestEnsureBucket_CreatesWhenMissing(t *testing.T) {
	c := newTestClient(t)

	origHead, origCreate := headBucket, createBucket
	defer func() { headBucket, createBucket = origHead, origCreate }()

	headBucket = func(_ *s3.Client, _ context.Context, _ *s3.HeadBucketInput) (*s3.HeadBucketOutput, error) {
		return nil, errors.New("NotFound")
	}
	created := false
	createBucket = func(_ *s3.Client, _ context.Context, in *s3.CreateBucketInput) (*s3.CreateBucketOutput, error) {
		created = true
		if *in.Bucket != "frames" {
			t.Errorf("bucket = %q, want frames", *in.Bucket)
		}
		return &s3.CreateBucketOutput{}, nil
	}

	if err := c.EnsureBucket(context.Background()); err != nil {
		t.Fatalf("EnsureBucket error: %v", err)
	}
	if !created {
		t.Error("expected CreateBucket call")
	}
}
