// Package medias classifies vault assets and maps them to MIME types
// for uploads.
package medias

import (
	"path/filepath"
	"strings"

	"golang.org/x/exp/slices"
)

var mimeTypes = map[string]string{
	// Common MIME types
	// See https://developer.mozilla.org/en-US/docs/Web/HTTP/Basics_of_HTTP/MIME_types/Common_types
	".avif": "image/avif",
	".bmp":  "image/bmp",
	".gif":  "image/gif",
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".md":   "text/markdown",
	".pdf":  "application/pdf",
	".png":  "image/png",
	".svg":  "image/svg+xml",
	".webp": "image/webp",
}

// MimeType returns the MIME type to declare when uploading a file.
func MimeType(filename string) string {
	if mimeType, ok := mimeTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return mimeType
	}
	return "application/octet-stream"
}

var imageExtensions = []string{"png", "jpg", "jpeg", "gif", "bmp", "svg", "webp"}

// IsImage returns if a lowercased extension denotes an uploadable image.
func IsImage(extension string) bool {
	return slices.Contains(imageExtensions, extension)
}

// IsBinaryAsset returns if an extension denotes a file that embed expansion
// must not recurse into (images and PDFs).
func IsBinaryAsset(extension string) bool {
	return extension == "pdf" || IsImage(extension)
}
