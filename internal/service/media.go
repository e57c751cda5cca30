package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"vidtube/internal/config"
	"vidtube/internal/model"
)

// MediaUploader is the capability surface the user service needs from
// the media host integration.
type MediaUploader interface {
	UploadAvatar(ctx context.Context, localPath string) (*model.UploadResult, error)
	UploadCoverImage(ctx context.Context, localPath string) (*model.UploadResult, error)
	DeleteRemote(ctx context.Context, key string) model.DeleteStatus
}

// MediaService handles image uploads to Cloudflare R2.
type MediaService struct {
	s3Client  *s3.Client
	bucket    string
	publicURL string
	logger    *slog.Logger
}

// NewMediaService constructs an S3-compatible client for Cloudflare R2.
func NewMediaService(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*MediaService, error) {
	if cfg.R2AccountID == "" || cfg.R2AccessKeyID == "" || cfg.R2SecretAccessKey == "" || cfg.R2BucketName == "" || cfg.R2PublicURL == "" {
		return nil, fmt.Errorf("missing Cloudflare R2 configuration")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for R2: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)
	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &MediaService{
		s3Client:  s3Client,
		bucket:    cfg.R2BucketName,
		publicURL: strings.TrimSuffix(cfg.R2PublicURL, "/"),
		logger:    logger,
	}, nil
}

// UploadAvatar stages an avatar from its local temp path to R2.
func (s *MediaService) UploadAvatar(ctx context.Context, localPath string) (*model.UploadResult, error) {
	return s.upload(ctx, localPath, model.AvatarFolder, model.AvatarWidth, model.AvatarHeight)
}

// UploadCoverImage stages a cover image from its local temp path to R2.
func (s *MediaService) UploadCoverImage(ctx context.Context, localPath string) (*model.UploadResult, error) {
	return s.upload(ctx, localPath, model.CoverFolder, model.CoverWidth, model.CoverHeight)
}

// upload reads the staged local file, normalizes it to a bounded JPEG
// and puts it to R2. The local temp file is removed on success and
// failure paths alike; no other component touches it. A missing path or
// file yields a nil result without error.
func (s *MediaService) upload(ctx context.Context, localPath, folder string, width, height int) (*model.UploadResult, error) {
	if localPath == "" {
		return nil, nil
	}

	data, err := os.ReadFile(localPath)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Warn("upload source missing", "path", localPath)
			return nil, nil
		}
		removeTemp(localPath, s.logger)
		return nil, fmt.Errorf("failed to read staged file: %w", err)
	}
	removeTemp(localPath, s.logger)

	if int64(len(data)) > model.MaxImageSizeBytes {
		return nil, model.ErrFileTooLarge
	}

	contentType := http.DetectContentType(data[:min(len(data), 512)])
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	if !model.IsAllowedImageType(contentType) {
		return nil, model.ErrInvalidImageType
	}

	jpegBytes, err := resizeToJPEG(data, width, height, 85)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%s%s", folder, uuid.NewString(), model.ImageExt)

	if err := s.putObject(ctx, key, jpegBytes, model.ContentTypeJPEG, model.ImageCacheControl); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s", s.publicURL, key)
	return &model.UploadResult{URL: url, Key: key}, nil
}

// resizeToJPEG bounds the image to the target box and encodes as JPEG.
func resizeToJPEG(data []byte, width, height, quality int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	resized := imaging.Fit(img, width, height, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}

	return buf.Bytes(), nil
}

// putObject uploads bytes to R2 with metadata.
func (s *MediaService) putObject(ctx context.Context, key string, body []byte, contentType, cacheControl string) error {
	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(cacheControl),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to r2: %w", err)
	}
	return nil
}

// DeleteRemote removes an object by key. Deletion is non-critical
// cleanup: failures are logged and reported via the status enum, never
// propagated. Callers must not assume the deletion succeeded.
func (s *MediaService) DeleteRemote(ctx context.Context, key string) model.DeleteStatus {
	if key == "" {
		return model.DeleteSkipped
	}
	_, err := s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		s.logger.Warn("failed to delete remote media", "key", key, "error", err)
		return model.DeleteFailed
	}
	return model.DeleteOK
}

func removeTemp(path string, logger *slog.Logger) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to remove temp file", "path", path, "error", err)
	}
}
