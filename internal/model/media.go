package model

import "errors"

// Media upload constraints. Avatars and covers are normalized to JPEG
// before upload so size limits apply to the staged source file.
const (
	MaxImageSizeBytes = int64(5 * 1024 * 1024)

	AvatarFolder = "avatars"
	CoverFolder  = "covers"

	AvatarWidth  = 400
	AvatarHeight = 400
	CoverWidth   = 1280
	CoverHeight  = 720

	ImageExt        = ".jpg"
	ContentTypeJPEG = "image/jpeg"

	ImageCacheControl = "public, max-age=31536000"
)

// UploadResult is the remote descriptor returned by the media host.
// Key is the stable public id used for later deletion.
type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// DeleteStatus reports the outcome of a best-effort remote deletion.
// Failures are logged and observable here, never returned as errors.
type DeleteStatus int

const (
	DeleteSkipped DeleteStatus = iota // empty key, nothing to delete
	DeleteOK
	DeleteFailed
)

var (
	ErrFileTooLarge     = errors.New("file exceeds size limit")
	ErrInvalidImageType = errors.New("unsupported image type")
	ErrUploadFailed     = errors.New("media upload returned no result")
)

// IsAllowedImageType reports whether the detected content type may be
// decoded and re-encoded for avatar/cover storage.
func IsAllowedImageType(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}
