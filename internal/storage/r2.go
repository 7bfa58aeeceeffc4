package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/bilgisen/aidigest/internal/config"
)

// PutObjectAPI is the subset of the S3 client used for uploads.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// R2Store uploads digest files to a Cloudflare R2 (S3 compatible) bucket
// under <prefix>/<edition>/<name>.
type R2Store struct {
	client PutObjectAPI
	bucket string
	prefix string
}

func NewR2Store(client PutObjectAPI, bucket, prefix string) *R2Store {
	return &R2Store{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// NewR2StoreFromConfig builds an S3 client for the configured R2 account.
func NewR2StoreFromConfig(ctx context.Context, cfg *config.Config) (*R2Store, error) {
	endpoint := cfg.R2Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.R2AccessKey, cfg.R2SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load R2 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})
	return NewR2Store(client, cfg.R2Bucket, "digests"), nil
}

func (s *R2Store) Publish(ctx context.Context, edition string, files []Artifact) ([]string, error) {
	if err := ValidateEdition(edition); err != nil {
		return nil, err
	}

	locations := make([]string, 0, len(files))
	for _, f := range files {
		key := path.Join(s.prefix, edition, f.Name)
		input := &s3.PutObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
			Body:   bytes.NewReader(f.Data),
		}
		if f.ContentType != "" {
			input.ContentType = aws.String(f.ContentType)
		}
		if _, err := s.client.PutObject(ctx, input); err != nil {
			return locations, fmt.Errorf("failed to upload %s to R2: %w", key, err)
		}
		locations = append(locations, "r2://"+s.bucket+"/"+key)
	}
	return locations, nil
}
