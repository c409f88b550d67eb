// Package assets inlines local images into generated markup.
package assets

import (
	"encoding/base64"
	"fmt"
	"html/template"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// DataURI reads the file at path and returns it as a base64 data URI.
func DataURI(path string) (template.URL, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read asset: %w", err)
	}

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("asset %s is not an image", filepath.Base(path))
	}

	return template.URL("data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)), nil
}

// Optional returns the data URI for path, or "" when path is empty.
func Optional(path string) (template.URL, error) {
	if path == "" {
		return "", nil
	}
	return DataURI(path)
}
