// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package storage holds post images in an S3-compatible object store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	appcfg "codeberg.org/oliverandrich/inkwell/internal/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// presignTTL limits how long an upload URL stays valid.
const presignTTL = 15 * time.Minute

// Store wraps the S3 client for post image uploads.
type Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	baseURL string
}

// New creates a Store from the storage configuration. Endpoint may point
// at any S3-compatible service (MinIO, R2); leave it empty for AWS S3.
func New(ctx context.Context, cfg *appcfg.StorageConfig) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey, cfg.SecretKey, "",
		)))
	if err != nil {
		return nil, fmt.Errorf("loading storage config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Store{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		baseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
	}, nil
}

// BuildKey returns a fresh object key inside the author's namespace:
// posts/{authorID}/{timestamp}-{random}.{ext}
func BuildKey(authorID int64, ext string) string {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	return fmt.Sprintf("posts/%d/%d-%s.%s", authorID, time.Now().Unix(), uuid.New(), ext)
}

// OwnedBy reports whether the key lies inside the author's namespace.
func OwnedBy(key string, authorID int64) bool {
	return strings.HasPrefix(key, fmt.Sprintf("posts/%d/", authorID))
}

// PresignPut returns a presigned PUT URL for direct upload of the key.
func (s *Store) PresignPut(ctx context.Context, key, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	req, err := s.presign.PresignPutObject(ctx, input, s3.WithPresignExpires(presignTTL))
	if err != nil {
		return "", fmt.Errorf("presigning upload: %w", err)
	}
	return req.URL, nil
}

// Exists reports whether the object was actually uploaded.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var apiErr interface{ ErrorCode() string }
		if errors.As(err, &apiErr) {
			switch apiErr.ErrorCode() {
			case "NotFound", "NoSuchKey":
				return false, nil
			}
		}
		return false, fmt.Errorf("heading object: %w", err)
	}
	return true, nil
}

// PublicURL returns the URL under which an uploaded image is served.
func (s *Store) PublicURL(key string) string {
	if s.baseURL == "" {
		return key
	}
	return s.baseURL + "/" + key
}
