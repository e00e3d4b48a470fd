// Package storage keeps logos, user photos and purchase order attachments in
// an S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/shared"
)

// ObjectStorage is the contract the application services upload through
type ObjectStorage interface {
	// Upload stores size bytes from r under key and returns the key
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	GenerateDownloadURL(ctx context.Context, key string) (string, time.Time, error)
	DeleteObject(ctx context.Context, key string) error
	ObjectExists(ctx context.Context, key string) (bool, error)
	EnsureBucket(ctx context.Context) error
}

var errKeyRequired = errors.New("storage key is required")

// MaxUploadSize caps a single upload
const MaxUploadSize int64 = 10 << 20

var ErrUnsupportedContentType = shared.NewDomainError("UNSUPPORTED_CONTENT_TYPE", "This file type cannot be uploaded")

var ErrFileTooLarge = shared.NewDomainError("FILE_TOO_LARGE", "The file exceeds the 10 MB upload limit")

// SVG is excluded: it can carry script.
var imageContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

var documentContentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
	"text/csv":        true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
}

// CheckImage validates a logo or profile photo upload
func CheckImage(contentType string, size int64) error {
	return check(imageContentTypes, contentType, size)
}

// CheckDocument validates a purchase order attachment upload
func CheckDocument(contentType string, size int64) error {
	return check(documentContentTypes, contentType, size)
}

func check(allowed map[string]bool, contentType string, size int64) error {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	if !allowed[ct] {
		return ErrUnsupportedContentType
	}
	if size <= 0 || size > MaxUploadSize {
		return ErrFileTooLarge
	}
	return nil
}

// CompanyLogoKey is tenants/{tenant}/companies/{id}/logo/{file}
func CompanyLogoKey(tenantID, companyID uuid.UUID, fileName string) string {
	return fmt.Sprintf("tenants/%s/companies/%s/logo/%s", tenantID, companyID, cleanFileName(fileName))
}

// UserPhotoKey is tenants/{tenant}/users/{id}/photo/{file}
func UserPhotoKey(tenantID, userID uuid.UUID, fileName string) string {
	return fmt.Sprintf("tenants/%s/users/%s/photo/%s", tenantID, userID, cleanFileName(fileName))
}

// AttachmentKey is tenants/{tenant}/purchase-orders/{id}/attachments/{attachment}/{file}
func AttachmentKey(tenantID, orderID, attachmentID uuid.UUID, fileName string) string {
	return fmt.Sprintf("tenants/%s/purchase-orders/%s/attachments/%s/%s",
		tenantID, orderID, attachmentID, cleanFileName(fileName))
}

// cleanFileName keeps the base name and replaces characters that are unsafe
// in object keys.
func cleanFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	cleaned := strings.Trim(b.String(), ".")
	if cleaned == "" {
		return "file"
	}
	return cleaned
}
