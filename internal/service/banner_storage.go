package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/catalogomaker/backend/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awsmiddleware "github.com/aws/smithy-go/middleware"
	"github.com/google/uuid"
)

const bannerUploadTTL = 15 * time.Minute

var bannerExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// BannerStorage issues upload URLs for catalog banner images.
type BannerStorage interface {
	PresignBannerUpload(ctx context.Context, catalogID, contentType string) (uploadURL, publicURL string, err error)
}

type s3BannerStorage struct {
	presigner     *s3.PresignClient
	bucket        string
	publicBaseURL string
}

// NewS3Client builds a client for any S3-compatible service.
func NewS3Client(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	s3Config, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")),
		awsconfig.WithAPIOptions([]func(*awsmiddleware.Stack) error{removeDisableGzip()}),
	)
	if err != nil {
		return nil, fmt.Errorf("load S3 config: %w", err)
	}
	return s3.NewFromConfig(s3Config, func(o *s3.Options) {
		if cfg.S3URL != "" {
			o.BaseEndpoint = aws.String(cfg.S3URL)
			o.UsePathStyle = true
		}
	}), nil
}

// NewBannerStorage returns presigned-PUT storage. publicBaseURL is where uploaded objects are served from.
func NewBannerStorage(client *s3.Client, bucket, publicBaseURL string) BannerStorage {
	return &s3BannerStorage{
		presigner:     s3.NewPresignClient(client),
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

func (b *s3BannerStorage) PresignBannerUpload(ctx context.Context, catalogID, contentType string) (string, string, error) {
	ext, ok := bannerExtensions[contentType]
	if !ok {
		return "", "", validationErrorf("unsupported banner content type %q", contentType)
	}
	key := fmt.Sprintf("banners/%s/%s.%s", catalogID, uuid.NewString(), ext)

	req, err := b.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(bannerUploadTTL))
	if err != nil {
		return "", "", upstream("presign banner upload", err)
	}
	return req.URL, b.publicBaseURL + "/" + key, nil
}

// removeDisableGzip is a workaround for S3 signature errors with some S3-compatible services.
// See: https://github.com/supabase/storage/issues/577
func removeDisableGzip() func(*awsmiddleware.Stack) error {
	return func(stack *awsmiddleware.Stack) error {
		if _, ok := stack.Finalize.Get("DisableAcceptEncodingGzip"); ok {
			_, err := stack.Finalize.Remove("DisableAcceptEncodingGzip")
			return err
		}
		return nil
	}
}
