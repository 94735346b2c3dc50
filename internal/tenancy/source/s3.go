package source

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/wolfman30/clinic-tenancy/internal/tenancy"
)

// S3API is the subset of the S3 client used by S3Source.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads the registry document from a single S3 object.
type S3Source struct {
	client S3API
	bucket string
	key    string
}

func NewS3Source(client S3API, bucket, key string) *S3Source {
	return &S3Source{client: client, bucket: bucket, key: key}
}

func (s *S3Source) Name() string { return "s3" }

func (s *S3Source) Load(ctx context.Context) (*tenancy.Registry, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("source: s3 %s/%s: %w", s.bucket, s.key, ErrRegistryNotFound)
		}
		return nil, fmt.Errorf("source: s3: get %s/%s: %w", s.bucket, s.key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("source: s3: read %s/%s: %w", s.bucket, s.key, err)
	}
	doc, err := tenancy.ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("source: s3 %s/%s: %w", s.bucket, s.key, err)
	}
	reg, err := doc.Registry()
	if err != nil {
		return nil, fmt.Errorf("source: s3 %s/%s: %w", s.bucket, s.key, err)
	}
	return reg, nil
}
