package storage

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/dgnsrekt/sawari_expert/internal/carexpert"
)

// TransformURLToPathSegment transforms a URL path into a filesystem-safe path segment.
func TransformURLToPathSegment(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	path := strings.TrimPrefix(parsed.Path, "/")
	if path == "" {
		return "root", nil
	}
	path = strings.TrimSuffix(path, "/")
	path = strings.ReplaceAll(path, "/", "_")
	return path, nil
}

// ModelDir returns <baseDir>/<Brand>/<Model> for a carexpert page URL.
// URLs without a brand and model land in <baseDir>/unknown.
func ModelDir(baseDir, pageURL string) string {
	ref, err := carexpert.ParseModelURL(pageURL)
	if err != nil {
		return filepath.Join(baseDir, "unknown")
	}
	return filepath.Join(baseDir, carexpert.SafeName(ref.Brand), carexpert.SafeName(ref.Model))
}
