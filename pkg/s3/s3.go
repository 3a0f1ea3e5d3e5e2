// Package s3 wraps the AWS S3 client for the S3-compatible photo bucket.
// The API never proxies image bytes: it presigns PUT URLs and the browser
// uploads directly, then stores the resulting public URL on the patient.
package s3

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/novadent/novadent_backend/config"
)

// Client wraps the AWS S3 client configured for an S3-compatible CDN bucket.
type Client struct {
	presig    *s3.PresignClient
	s3        *s3.Client
	bucket    string
	publicURL string
	ttl       time.Duration
}

func New(cfg config.S3Config) (*Client, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3: bucket name is required")
	}

	resolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...any) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:               cfg.Endpoint,
				SigningRegion:     cfg.Region,
				HostnameImmutable: true,
			}, nil
		},
	)

	awsCfg, err := awscfg.LoadDefaultConfig(context.Background(),
		awscfg.WithRegion(cfg.Region),
		awscfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
		awscfg.WithEndpointResolverWithOptions(resolver),
	)
	if err != nil {
		return nil, fmt.Errorf("s3: load config: %w", err)
	}

	cli := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true // bucket CDN requires path-style
	})

	ttl := time.Duration(cfg.PresignTTLSec) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	publicURL := strings.TrimRight(cfg.PublicBaseURL, "/")
	if publicURL == "" {
		publicURL = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}

	return &Client{
		s3:        cli,
		presig:    s3.NewPresignClient(cli),
		bucket:    cfg.Bucket,
		publicURL: publicURL,
		ttl:       ttl,
	}, nil
}

// PresignUpload generates a presigned PUT URL for key, valid for the
// configured TTL. The caller uploads the object itself.
func (c *Client) PresignUpload(ctx context.Context, key, contentType string) (string, error) {
	req, err := c.presig.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(c.ttl))
	if err != nil {
		return "", fmt.Errorf("s3 presign upload %q: %w", key, err)
	}
	return req.URL, nil
}

// PublicURL returns the CDN-facing URL an uploaded object is served from.
func (c *Client) PublicURL(key string) string {
	return c.publicURL + "/" + key
}

// TTL reports how long issued upload URLs stay valid.
func (c *Client) TTL() time.Duration {
	return c.ttl
}

// Delete removes an object, used when a patient photo is replaced.
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %q: %w", key, err)
	}
	return nil
}
