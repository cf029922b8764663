package valueobject

import (
	"fmt"
	"path"
	"regexp"
	"slices"
	"strings"

	"github.com/marcos-nsantos/asset-pipeline/internal/domain"
)

// MaxUploadBytes is the ceiling for a single declared or received upload (10MB).
const MaxUploadBytes int64 = 10 << 20

var (
	AllowedContentTypes = []string{"image/jpeg", "image/png", "image/webp", "image/avif"}
	AllowedExtensions   = []string{"jpg", "jpeg", "png", "webp", "avif"}

	slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,63}$`)
)

// UploadDeclaration is what a client claims about a file before any bytes exist.
type UploadDeclaration struct {
	Filename    string
	ContentType string
	Size        int64
}

func NewUploadDeclaration(filename, contentType string, size int64) UploadDeclaration {
	return UploadDeclaration{
		Filename:    filename,
		ContentType: contentType,
		Size:        size,
	}
}

// Validate applies the content type, size and extension rules in that order and
// reports the first one that fails.
func (d UploadDeclaration) Validate() error {
	if !slices.Contains(AllowedContentTypes, d.ContentType) {
		return domain.NewValidationError("content_type",
			fmt.Sprintf("content type %q is not allowed, expected one of %s", d.ContentType, strings.Join(AllowedContentTypes, ", ")))
	}

	if d.Size <= 0 {
		return domain.NewValidationError("size_bytes", "size must be greater than zero")
	}
	if d.Size > MaxUploadBytes {
		return domain.NewValidationError("size_bytes",
			fmt.Sprintf("size %d exceeds the maximum of %d bytes", d.Size, MaxUploadBytes))
	}

	ext := d.Extension()
	if ext == "" {
		return domain.NewValidationError("filename", "filename must have an extension")
	}
	if !slices.Contains(AllowedExtensions, ext) {
		return domain.NewValidationError("filename",
			fmt.Sprintf("extension %q is not allowed, expected one of %s", ext, strings.Join(AllowedExtensions, ", ")))
	}

	return nil
}

// Extension returns the lower-cased filename extension without the dot.
func (d UploadDeclaration) Extension() string {
	ext := path.Ext(d.Filename)
	if len(ext) < 2 {
		return ""
	}
	return strings.ToLower(ext[1:])
}

// ValidateScope checks the logical path an upload is rooted under.
func ValidateScope(kind, entitySlug string, allowedKinds []string) error {
	if !slices.Contains(allowedKinds, kind) {
		return domain.NewValidationError("kind",
			fmt.Sprintf("kind %q is not allowed, expected one of %s", kind, strings.Join(allowedKinds, ", ")))
	}
	if !slugPattern.MatchString(entitySlug) {
		return domain.NewValidationError("entity_slug", "entity slug must be lowercase letters, digits and dashes")
	}
	return nil
}
