// Copyright (c) 2026 Tuber. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package blob uploads account media (avatars, cover images) to an
// S3-compatible bucket and returns the public URL stored on the account.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Folders group objects by media kind.
const (
	FolderAvatars = "avatars"
	FolderCovers  = "covers"
)

// ErrEmptyObject is returned for zero-length uploads.
var ErrEmptyObject = errors.New("blob: empty object")

// Seams replaced in tests.
var (
	loadDefaultAWSConfig  = awsconfig.LoadDefaultConfig
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// Object is an upload received from a client.
type Object struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Close releases the body when it is closable.
func (object *Object) Close() error {
	if closer, ok := object.Body.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// PutObjectAPI is the subset of *s3.Client used by [S3Store].
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Config describes the bucket and how to reach it.
type Config struct {
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

// S3Store writes objects to one bucket.
type S3Store struct {
	client        PutObjectAPI
	bucket        string
	publicBaseURL string
}

// NewS3Store wraps an existing client.
func NewS3Store(client PutObjectAPI, bucket, publicBaseURL string) *S3Store {
	return &S3Store{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// New builds an S3 client from cfg. Static credentials and a custom endpoint
// are applied when set, which is how MinIO and R2 are reached.
func New(ctx context.Context, cfg Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("blob: bucket is required")
	}

	options := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		options = append(options, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsConfig, err := loadDefaultAWSConfig(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("blob: load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	publicBaseURL := cfg.PublicBaseURL
	if publicBaseURL == "" {
		publicBaseURL = defaultPublicBaseURL(cfg)
	}

	return NewS3Store(client, cfg.Bucket, publicBaseURL), nil
}

func defaultPublicBaseURL(cfg Config) string {
	if cfg.Endpoint != "" {
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
}

// ObjectKey builds "<folder>/<accountID>/<random><ext>" keeping the
// lowercase extension of the uploaded file name.
func ObjectKey(folder, accountID, filename string) string {
	return fmt.Sprintf("%s/%s/%s%s", folder, accountID, uuid.NewString(), strings.ToLower(path.Ext(filename)))
}

// Upload stores body under key and returns its public URL.
func (store *S3Store) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	if size == 0 {
		return "", ErrEmptyObject
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(store.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := store.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("blob: put %s: %w", key, err)
	}

	return store.URL(key), nil
}

// Put uploads object under a fresh key in folder for ownerID.
func (store *S3Store) Put(ctx context.Context, folder, ownerID string, object Object) (string, error) {
	return store.Upload(ctx, ObjectKey(folder, ownerID, object.Filename), object.Body, object.Size, object.ContentType)
}

// URL returns the public address of key.
func (store *S3Store) URL(key string) string {
	return store.publicBaseURL + "/" + key
}
