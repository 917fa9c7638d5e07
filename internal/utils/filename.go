package utils

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// Anything outside a conservative portable set
	unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
	// Runs of separators left after replacement
	repeatedUnderscores = regexp.MustCompile(`_{2,}`)
)

// MaxFilenameFragment bounds the part of a generated media filename that is
// taken from user-controlled input.
const MaxFilenameFragment = 80

// SanitizeFilename reduces name to a filesystem-safe fragment.
// Path separators, whitespace and non-ASCII characters become underscores,
// the result is capped at MaxFilenameFragment bytes and never empty.
func SanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = repeatedUnderscores.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")

	if len(name) > MaxFilenameFragment {
		ext := filepath.Ext(name)
		if len(ext) > 10 {
			ext = ""
		}
		name = strings.TrimRight(name[:MaxFilenameFragment-len(ext)], "._") + ext
	}

	if name == "" {
		name = "file"
	}

	return name
}

// MediaBaseName returns the sanitized base name of a path taken from an
// export file, which always uses forward slashes.
func MediaBaseName(uri string) string {
	uri = strings.ReplaceAll(uri, "\\", "/")
	if i := strings.LastIndex(uri, "/"); i >= 0 {
		uri = uri[i+1:]
	}
	return SanitizeFilename(uri)
}
