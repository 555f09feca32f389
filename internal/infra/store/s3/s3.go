// Package s3 persists the request snapshot as one CSV object in an
// S3-compatible bucket (AWS S3 or MinIO). The object's ETag serves as the
// version token and conditional writes guard concurrent saves.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"relieftrack/pkg/domain"
)

// api is the subset of the S3 client the store needs. Tests supply fakes.
type api interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Store keeps the snapshot in a single object.
type Store struct {
	client api
	bucket string
	key    string
}

// Config holds explicit construction parameters (mostly for tests). For prod
// we rely primarily on environment variables.
type Config struct {
	Bucket    string
	Key       string
	Region    string
	Endpoint  string // optional; enables a custom endpoint such as MinIO
	PathStyle bool
}

// New creates an S3 snapshot store from Config.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	key := cfg.Key
	if key == "" {
		key = "requests.csv"
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &Store{client: client, bucket: cfg.Bucket, key: key}, nil
}

// NewWithClient wraps an existing client, used by tests.
func NewWithClient(client api, bucket, key string) *Store {
	return &Store{client: client, bucket: bucket, key: key}
}

// OpenFromEnv constructs an S3 store from process environment.
//
//	RELIEFTRACK_S3_BUCKET=<bucket> (required)
//	RELIEFTRACK_S3_KEY=<object key> (default requests.csv)
//	RELIEFTRACK_S3_REGION=<region> (default us-east-1)
//	RELIEFTRACK_S3_ENDPOINT=<url> (optional, for MinIO)
//	RELIEFTRACK_S3_PATH_STYLE=true|false (default false)
func OpenFromEnv(ctx context.Context) (*Store, error) {
	bucket := os.Getenv("RELIEFTRACK_S3_BUCKET")
	if bucket == "" {
		return nil, fmt.Errorf("RELIEFTRACK_S3_BUCKET required for s3 driver")
	}
	cfg := Config{
		Bucket:    bucket,
		Key:       os.Getenv("RELIEFTRACK_S3_KEY"),
		Region:    os.Getenv("RELIEFTRACK_S3_REGION"),
		Endpoint:  os.Getenv("RELIEFTRACK_S3_ENDPOINT"),
		PathStyle: strings.EqualFold(os.Getenv("RELIEFTRACK_S3_PATH_STYLE"), "true"),
	}
	return New(ctx, cfg)
}

// LoadAll fetches and decodes the snapshot object. A missing object is an
// empty snapshot.
func (s *Store) LoadAll(ctx context.Context) ([]domain.RequestRecord, domain.VersionToken, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &s.key})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, domain.NoVersion, nil
		}
		return nil, domain.NoVersion, domain.StoreUnavailableError{Op: "get snapshot object", Err: err}
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, domain.NoVersion, domain.StoreUnavailableError{Op: "read snapshot object", Err: err}
	}
	records, err := domain.DecodeRequests(bytes.NewReader(data))
	if err != nil {
		return nil, domain.NoVersion, domain.StoreUnavailableError{Op: "decode snapshot object", Err: err}
	}
	return records, etagToken(out.ETag), nil
}

// Save encodes records and writes the object conditionally: If-Match on the
// expected ETag, or If-None-Match: * when creating from an empty snapshot.
func (s *Store) Save(ctx context.Context, records []domain.RequestRecord, expected domain.VersionToken) (domain.VersionToken, error) {
	var buf bytes.Buffer
	if err := domain.EncodeRequests(&buf, records); err != nil {
		return domain.NoVersion, domain.StoreUnavailableError{Op: "encode snapshot object", Err: err}
	}

	input := &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &s.key,
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("text/csv"),
	}
	if expected == domain.NoVersion {
		input.IfNoneMatch = aws.String("*")
	} else {
		input.IfMatch = aws.String(`"` + string(expected) + `"`)
	}

	out, err := s.client.PutObject(ctx, input)
	if err != nil {
		if preconditionFailed(err) {
			return domain.NoVersion, domain.VersionConflictError{Expected: expected, Current: domain.NoVersion}
		}
		return domain.NoVersion, domain.StoreUnavailableError{Op: "put snapshot object", Err: err}
	}
	return etagToken(out.ETag), nil
}

func preconditionFailed(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	code := apiErr.ErrorCode()
	return code == "PreconditionFailed" || code == "ConditionalRequestConflict"
}

func etagToken(etag *string) domain.VersionToken {
	if etag == nil {
		return domain.NoVersion
	}
	return domain.VersionToken(strings.Trim(*etag, `"`))
}
