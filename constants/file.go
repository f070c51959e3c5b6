package constants

import "strings"

// FileType is the coarse source format recorded on an extract job.
type FileType string

const (
	FileTypePDF   FileType = "PDF"
	FileTypeImage FileType = "IMAGE"
	FileTypeText  FileType = "TXT"
)

// AllowedExtensions holds the default allowed file extensions for invoice ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"txt":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsAllowedExt reports whether ext (with or without the dot) can be ingested.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}

// FileTypeUnknown marks sources whose extension does not name a format.
const FileTypeUnknown FileType = "UNKNOWN"

// FileTypeFromExt maps an extension (with or without the dot) to a FileType.
func FileTypeFromExt(ext string) FileType {
	switch NormalizeExt(ext) {
	case "pdf":
		return FileTypePDF
	case "txt":
		return FileTypeText
	case "jpg", "jpeg", "png":
		return FileTypeImage
	default:
		return FileTypeUnknown
	}
}
