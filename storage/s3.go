package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"homescout/config"
)

// S3Uploader stores listing thumbnails on S3-compatible storage.
type S3Uploader struct {
	client *s3.Client
	cfg    config.S3Config
}

func NewS3Uploader(ctx context.Context, cfg config.S3Config) (*S3Uploader, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var client *s3.Client
	if cfg.Endpoint != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	return &S3Uploader{client: client, cfg: cfg}, nil
}

// UploadThumbnail stores the image under a listing-scoped key and returns
// its public URL.
func (u *S3Uploader) UploadThumbnail(ctx context.Context, listingID uuid.UUID, data io.Reader, contentType string) (string, error) {
	ext := "jpg"
	if strings.Contains(contentType, "png") {
		ext = "png"
	} else if strings.Contains(contentType, "webp") {
		ext = "webp"
	}
	key := fmt.Sprintf("thumbnails/%s.%s", listingID, ext)

	if err := u.Upload(ctx, key, data, contentType); err != nil {
		return "", err
	}
	return u.PublicURL(key), nil
}

func (u *S3Uploader) Upload(ctx context.Context, key string, data io.Reader, contentType string) error {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.cfg.Bucket),
		Key:         aws.String(key),
		Body:        data,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

// PublicURL returns the public URL for an object key.
func (u *S3Uploader) PublicURL(key string) string {
	if u.cfg.Endpoint != "" && strings.Contains(u.cfg.Endpoint, "digitaloceanspaces.com") {
		// DO Spaces: https://{bucket}.{region}.digitaloceanspaces.com/{key}
		host := strings.TrimPrefix(u.cfg.Endpoint, "https://")
		return fmt.Sprintf("https://%s.%s/%s", u.cfg.Bucket, host, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.cfg.Bucket, u.cfg.Region, key)
}
