package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"
)

// Fingerprint returns a stable hash key for an article, computed over its
// title and description. Identical (title, description) pairs always map to
// the same key.
func Fingerprint(title, description string) string {
	normalized := strings.ToLower(strings.TrimSpace(title) + strings.TrimSpace(description))
	h := sha256.New()
	h.Write([]byte(normalized))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// Store tracks fingerprints of articles that were already used for a post,
// backed by one flat JSON file mapping fingerprint to first-seen time.
// Entries older than the retention window are purged on load.
type Store struct {
	filePath  string
	retention time.Duration
	entries   map[string]time.Time
}

func NewStore(filePath string, retention time.Duration) *Store {
	return &Store{
		filePath:  filePath,
		retention: retention,
		entries:   make(map[string]time.Time),
	}
}

// Load reads the backing file. An unreadable or corrupt file is treated as
// empty: the worst outcome is a repeated post, never a refused run.
func (s *Store) Load() {
	s.entries = make(map[string]time.Time)

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: cannot read used-articles file, starting empty: %v", err)
		}
		return
	}
	if len(data) == 0 {
		return
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Printf("Warning: used-articles file is corrupt, starting empty: %v", err)
		return
	}

	for fp, stamp := range raw {
		t, err := time.Parse(time.RFC3339, stamp)
		if err != nil {
			continue
		}
		s.entries[fp] = t
	}

	s.Purge(time.Now())
}

// Save writes the current state back to disk. Persistence is best-effort:
// a write failure is logged and swallowed.
func (s *Store) Save() {
	raw := make(map[string]string, len(s.entries))
	for fp, t := range s.entries {
		raw[fp] = t.Format(time.RFC3339)
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		log.Printf("Warning: cannot marshal used-articles store: %v", err)
		return
	}

	if err := os.WriteFile(s.filePath, data, 0644); err != nil {
		log.Printf("Warning: cannot write used-articles file: %v", err)
	}
}

// IsUsed reports whether the fingerprint was marked used within the
// retention window.
func (s *Store) IsUsed(fingerprint string) bool {
	return s.isUsedAt(fingerprint, time.Now())
}

func (s *Store) isUsedAt(fingerprint string, now time.Time) bool {
	t, ok := s.entries[fingerprint]
	if !ok {
		return false
	}
	return now.Sub(t) < s.retention
}

// MarkUsed records the fingerprint with the given timestamp, overwriting any
// previous record.
func (s *Store) MarkUsed(fingerprint string, now time.Time) {
	s.entries[fingerprint] = now
}

// Purge removes entries older than the retention window.
func (s *Store) Purge(now time.Time) {
	for fp, t := range s.entries {
		if now.Sub(t) >= s.retention {
			delete(s.entries, fp)
		}
	}
}

// Reset discards all history, in memory and on disk. This is the escape
// valve for runs where every fetched article is already used; it allows
// exact repeats and is expected to fire at most once per run.
func (s *Store) Reset() {
	s.entries = make(map[string]time.Time)
	if err := os.Remove(s.filePath); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: cannot remove used-articles file on reset: %v", err)
	}
}

// Len returns the number of tracked fingerprints.
func (s *Store) Len() int {
	return len(s.entries)
}

func (s *Store) String() string {
	return fmt.Sprintf("dedup.Store{file:%s entries:%d retention:%s}", s.filePath, len(s.entries), s.retention)
}
