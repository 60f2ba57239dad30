package utils

import (
	"path/filepath"
	"strings"
	"time"
)

var allowedUploadExts = map[string]struct{}{
	".txt": {}, ".pdf": {}, ".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {},
	".doc": {}, ".docx": {}, ".ppt": {}, ".pptx": {}, ".xls": {}, ".xlsx": {},
	".zip": {}, ".rar": {},
}

// AllowedUpload reports whether the filename carries a permitted extension.
func AllowedUpload(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return false
	}
	_, ok := allowedUploadExts[ext]
	return ok
}

// StoredFilename prefixes the upload's base name with a timestamp so two
// students submitting "report.pdf" do not collide on disk.
func StoredFilename(filename string, now time.Time) string {
	base := filepath.Base(filename)
	base = strings.ReplaceAll(base, " ", "_")
	return now.Format("20060102_150405_") + base
}
