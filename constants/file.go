package constants

import "strings"

// AllowedExtensions holds the default allowed file extensions for scanned job sheets.
var AllowedExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"heic": {},
	"heif": {},
	"tiff": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsHEICExt reports whether the (normalized) extension needs conversion before OCR.
func IsHEICExt(ext string) bool {
	return ext == "heic" || ext == "heif"
}

// IsAllowedExt reports whether ext is an accepted job-sheet photo format.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}
