package upload

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/novadent/novadent_backend/pkg/s3"
)

var ErrValidation = errors.New("invalid upload request")

var allowedExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".heic": true,
}

// Signature is everything the browser needs to PUT the image bytes
// straight to the bucket. The API never proxies image data.
type Signature struct {
	UploadURL   string `json:"upload_url"`
	PublicURL   string `json:"public_url"`
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type Service interface {
	PhotoSignature(ctx context.Context, filename string) (*Signature, error)
}

type uploadService struct {
	bucket *s3.Client
}

func New(bucket *s3.Client) Service {
	return &uploadService{bucket: bucket}
}

func (s *uploadService) PhotoSignature(ctx context.Context, filename string) (*Signature, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, fmt.Errorf("%w: filename is required", ErrValidation)
	}

	ext := strings.ToLower(path.Ext(filename))
	if !allowedExts[ext] {
		return nil, fmt.Errorf("%w: unsupported image type %q", ErrValidation, ext)
	}
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// Client filenames collide constantly ("photo.jpg"); keys are minted
	// server-side and the original name is discarded.
	key := fmt.Sprintf("patient-photos/%s/%s%s", time.Now().Format("2006/01"), uuid.NewString(), ext)

	url, err := s.bucket.PresignUpload(ctx, key, contentType)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}
	return &Signature{
		UploadURL:   url,
		PublicURL:   s.bucket.PublicURL(key),
		Key:         key,
		ContentType: contentType,
		ExpiresIn:   int(s.bucket.TTL().Seconds()),
	}, nil
}
