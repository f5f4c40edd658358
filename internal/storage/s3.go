package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/soumyacodes007/social-media-backend/internal/metrics"
)

// S3Uploader handles media uploads to AWS S3
type S3Uploader struct {
	client  *s3.Client
	bucket  string
	region  string
	baseURL string
	now     func() time.Time
}

// NewS3Uploader creates a new S3 uploader. baseURL defaults to the bucket's public endpoint.
func NewS3Uploader(ctx context.Context, region, bucket, baseURL string) (*S3Uploader, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}

	return &S3Uploader{
		client:  s3.NewFromConfig(cfg),
		bucket:  bucket,
		region:  region,
		baseURL: baseURL,
		now:     time.Now,
	}, nil
}

// Upload stores data under folder with a content type sniffed from its bytes.
func (u *S3Uploader) Upload(ctx context.Context, data []byte, folder, filename string) (*UploadResult, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	detected := mimetype.Detect(data)
	now := u.now().UTC()
	key := objectKey(folder, filename, detected, now)

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(detected.String()),

		// media never changes once written
		CacheControl: aws.String("max-age=86400"),

		Metadata: map[string]string{
			"original-filename": filename,
			"upload-timestamp":  now.Format(time.RFC3339),
			"folder":            folder,
		},
	})
	metrics.RecordBlobUpload(folder, len(data), err)
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &UploadResult{
		Key:         key,
		URL:         fmt.Sprintf("%s/%s", strings.TrimSuffix(u.baseURL, "/"), key),
		Bucket:      u.bucket,
		Region:      u.region,
		ContentType: detected.String(),
		Size:        int64(len(data)),
	}, nil
}

// Delete deletes a file from S3
func (u *S3Uploader) Delete(ctx context.Context, keyOrURL string) error {
	_, err := u.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(keyFromURL(u.baseURL, keyOrURL)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

// CheckBucketAccess verifies that we can access the S3 bucket
func (u *S3Uploader) CheckBucketAccess(ctx context.Context) error {
	_, err := u.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(u.bucket),
	})
	if err != nil {
		return fmt.Errorf("cannot access S3 bucket %s: %w", u.bucket, err)
	}
	return nil
}

var _ BlobStore = (*S3Uploader)(nil)
