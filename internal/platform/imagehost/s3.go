// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

package imagehost

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/Nikhilrai1/lms/pkg/uuid"
)

// ObjectAPI is the subset of the S3 client used by [S3Host].
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Config holds the object store settings.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string

	// PublicURL is the base under which objects are readable. When empty,
	// a path-style URL on Endpoint is used.
	PublicURL string
}

// S3Host implements [Host] on an S3-compatible bucket.
type S3Host struct {
	client    ObjectAPI
	bucket    string
	publicURL string
	logger    *slog.Logger
}

// NewS3Client builds an S3 client with static credentials and an optional custom endpoint.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	options := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		options = append(options, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("imagehost: failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// NewS3Host creates an [S3Host] over client.
func NewS3Host(client ObjectAPI, cfg S3Config, logger *slog.Logger) *S3Host {
	publicURL := cfg.PublicURL
	if publicURL == "" && cfg.Endpoint != "" {
		publicURL = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}

	return &S3Host{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logger,
	}
}

// Upload implements [Host]. The object key is "<folder>/<uuidv7><ext>".
func (h *S3Host) Upload(ctx context.Context, folder, payload string) (Image, error) {
	image, err := decodePayload(payload)
	if err != nil {
		return Image{}, err
	}

	key := path.Join(folder, uuid.New()+image.extension)
	_, err = h.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(h.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(image.data),
		ContentType: aws.String(image.contentType),
	})
	if err != nil {
		return Image{}, fmt.Errorf("imagehost: put %s: %w", key, err)
	}

	h.logger.InfoContext(ctx, "image_uploaded",
		slog.String("key", key),
		slog.Int("bytes", len(image.data)),
	)

	return Image{PublicID: key, URL: h.publicURL + "/" + key}, nil
}

// Delete implements [Host].
func (h *S3Host) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}

	_, err := h.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return fmt.Errorf("imagehost: delete %s: %w", publicID, err)
	}
	return nil
}
