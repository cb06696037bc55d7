package uploader

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3Config carries the settings needed to talk to the object store.  An
// empty Endpoint targets AWS proper; setting it points the client at a
// compatible store such as MinIO.
type S3Config struct {
	Bucket        string
	Region        string
	AccessKey     string
	SecretKey     string
	Endpoint      string
	PublicBaseURL string
	Timeout       time.Duration
}

// S3Uploader stores media objects in a single bucket and derives public
// URLs by prefixing the object key with the configured base URL.
type S3Uploader struct {
	client  *s3.Client
	bucket  string
	baseURL string
	timeout time.Duration
}

// NewS3Uploader builds the S3 client with static credentials and returns
// the uploader.
func NewS3Uploader(ctx context.Context, cfg S3Config) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("uploader: bucket is required")
	}
	awscfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey, cfg.SecretKey, "")))
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awscfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &S3Uploader{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		timeout: timeout,
	}, nil
}

// storageKey places objects under a date-based prefix so listings stay
// browsable: uploads/2026/08/30/<uuid>.
func storageKey() string {
	d := time.Now().UTC()
	return fmt.Sprintf("uploads/%d/%02d/%02d/%s", d.Year(), d.Month(), d.Day(), uuid.NewString())
}

// Upload writes the asset to the bucket and returns its public URL plus
// the object key for later deletion.  The call is bounded by the
// configured timeout.
func (u *S3Uploader) Upload(ctx context.Context, asset *Asset) (Reference, error) {
	if asset == nil {
		return Reference{}, errors.New("uploader: nil asset")
	}
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	key := storageKey()
	in := &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   asset.Content,
	}
	if asset.ContentType != "" {
		in.ContentType = aws.String(asset.ContentType)
	}
	if _, err := u.client.PutObject(ctx, in); err != nil {
		return Reference{}, err
	}
	return Reference{
		URL:        u.baseURL + "/" + key,
		ProviderID: key,
	}, nil
}

// Remove deletes a previously uploaded object.  Used by the media cleanup
// consumer after an avatar or cover image is replaced.
func (u *S3Uploader) Remove(ctx context.Context, providerID string) error {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()
	_, err := u.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(providerID),
	})
	return err
}
