package fallback

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"linkbot/internal/metrics"
)

// Store keeps posts that could not be published so a human can post them
// by hand. Files are append-only: an existing file is never overwritten.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Save writes a self-describing text file for one unpublished post and
// returns its path. A save failure is a hard error; the caller is expected
// to dump the content to the console so it is not lost.
func (s *Store) Save(content, imagePath, sourceURL string, now time.Time) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create fallback dir: %w", err)
	}

	sum := sha256.Sum256([]byte(content))
	hash := hex.EncodeToString(sum[:])[:8]
	name := fmt.Sprintf("linkedin_post_%s_%s.txt", now.Format("20060102_150405"), hash)
	path := filepath.Join(s.dir, name)

	body := s.render(content, imagePath, sourceURL, now)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if os.IsExist(err) {
		// Same second, same content hash. Disambiguate with nanoseconds.
		name = fmt.Sprintf("linkedin_post_%s_%s_%d.txt", now.Format("20060102_150405"), hash, now.Nanosecond())
		path = filepath.Join(s.dir, name)
		f, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	}
	if err != nil {
		return "", fmt.Errorf("failed to create fallback file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(body); err != nil {
		return "", fmt.Errorf("failed to write fallback file: %w", err)
	}

	metrics.Global.IncrementFallbacksSaved()
	return path, nil
}

func (s *Store) render(content, imagePath, sourceURL string, now time.Time) string {
	body := "=== LINKEDIN POST FOR MANUAL PUBLISHING ===\n\n"
	body += content + "\n\n"
	body += "=== METADATA ===\n"
	if imagePath != "" {
		body += "Image: " + imagePath + "\n"
	}
	if sourceURL != "" {
		body += "Source: " + sourceURL + "\n"
	}
	body += "Generated: " + now.Format(time.RFC3339) + "\n"
	return body
}
