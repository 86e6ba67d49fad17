// Package stage publishes generated artifacts to a site's storage file
// server. The destination URL's scheme selects the backend: file:// copies
// into a local directory, s3:// uploads to a bucket.
package stage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Publisher copies local artifact files to a destination.
type Publisher interface {
	// Publish copies the file at srcPath to the destination, under the
	// file's base name. Returns the published location URI.
	Publish(ctx context.Context, srcPath string) (location string, err error)
}

// New selects a Publisher for the destination URL.
func New(dest string, logger *slog.Logger) (Publisher, error) {
	scheme, rest := splitScheme(dest)
	switch scheme {
	case "file", "":
		return &filePublisher{dir: rest}, nil
	case "s3":
		return newS3Publisher(rest, logger)
	default:
		return nil, fmt.Errorf("stage: unsupported destination scheme %q", scheme)
	}
}

// splitScheme separates "scheme://rest"; a bare path has an empty scheme.
func splitScheme(u string) (scheme, rest string) {
	if i := strings.Index(u, "://"); i >= 0 {
		return u[:i], u[i+3:]
	}
	return "", u
}

// filePublisher copies artifacts into a local or mounted directory.
type filePublisher struct {
	dir string
}

func (p *filePublisher) Publish(_ context.Context, srcPath string) (string, error) {
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return "", fmt.Errorf("stage: mkdir %s: %w", p.dir, err)
	}
	destPath := filepath.Join(p.dir, filepath.Base(srcPath))
	if err := copyFile(srcPath, destPath); err != nil {
		return "", fmt.Errorf("stage: copy %s: %w", srcPath, err)
	}
	return "file://" + destPath, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
