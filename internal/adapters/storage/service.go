// Package storage keeps uploaded artwork in S3-compatible object storage or,
// when none is configured, on local disk.
package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"printsite_backend/internal/intake/transport"
)

// ArtworkPrefix is the top-level folder of every artwork key.
const ArtworkPrefix = "artwork"

const maxBaseNameLength = 64

// ErrInvalidKey is returned for keys outside the artwork namespace.
var ErrInvalidKey = errors.New("invalid artwork key")

// ArtworkStore persists quote artwork.
type ArtworkStore interface {
	// Store writes the upload and returns its key.
	Store(ctx context.Context, upload transport.ArtworkUpload) (string, error)
	// Open streams a stored file. The caller closes the reader.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// ArtworkKey builds artwork/YYYY/MM/<name>_<8 hex>.<ext> for fileName. The
// random suffix keeps two uploads of the same file apart.
func ArtworkKey(now time.Time, fileName string) (string, error) {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("generate artwork suffix: %w", err)
	}

	base := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	ext := strings.ToLower(path.Ext(base))
	name := sanitizeName(strings.TrimSuffix(base, path.Ext(base)))

	return fmt.Sprintf("%s/%04d/%02d/%s_%s%s",
		ArtworkPrefix, now.Year(), int(now.Month()), name, hex.EncodeToString(suffix), ext), nil
}

// sanitizeName keeps letters, digits, dashes and underscores.
func sanitizeName(name string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}

	out := strings.Trim(b.String(), "-")
	if len(out) > maxBaseNameLength {
		out = strings.Trim(out[:maxBaseNameLength], "-")
	}
	if out == "" {
		return ArtworkPrefix
	}
	return out
}

// validateKey rejects keys that could escape the artwork namespace.
func validateKey(key string) error {
	if !strings.HasPrefix(key, ArtworkPrefix+"/") || strings.Contains(key, "..") || strings.Contains(key, "\\") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
