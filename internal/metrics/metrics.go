package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	ArticlesFetched    int64
	DuplicatesFiltered int64
	CaptionsGenerated  int64
	CaptionFallbacks   int64
	ImagesGenerated    int64
	PostAttempts       int64
	PostsPublished     int64
	RelayMessagesSent  int64
	FallbacksSaved     int64

	// Timings
	LastRunDuration time.Duration

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	LastOutcome   string // "posted", "saved", "failed"
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) AddArticlesFetched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesFetched += int64(n)
}

func (m *Metrics) IncrementDuplicatesFiltered() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesFiltered++
}

func (m *Metrics) IncrementCaptionsGenerated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CaptionsGenerated++
}

func (m *Metrics) IncrementCaptionFallbacks() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CaptionFallbacks++
}

func (m *Metrics) IncrementImagesGenerated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ImagesGenerated++
}

func (m *Metrics) IncrementPostAttempts() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PostAttempts++
}

func (m *Metrics) IncrementPostsPublished() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PostsPublished++
}

func (m *Metrics) IncrementRelayMessagesSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RelayMessagesSent++
}

func (m *Metrics) IncrementFallbacksSaved() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FallbacksSaved++
}

func (m *Metrics) RecordRun(outcome string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastOutcome = outcome
	m.LastRunDuration = duration
	m.LastRunTime = time.Now()
	m.IsHealthy = outcome != "failed"
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"articles_fetched":     m.ArticlesFetched,
		"duplicates_filtered":  m.DuplicatesFiltered,
		"captions_generated":   m.CaptionsGenerated,
		"caption_fallbacks":    m.CaptionFallbacks,
		"images_generated":     m.ImagesGenerated,
		"post_attempts":        m.PostAttempts,
		"posts_published":      m.PostsPublished,
		"relay_messages_sent":  m.RelayMessagesSent,
		"fallbacks_saved":      m.FallbacksSaved,
		"last_run_duration_ms": m.LastRunDuration.Milliseconds(),
		"last_run_time":        m.LastRunTime.Format(time.RFC3339),
		"last_error_time":      m.LastErrorTime.Format(time.RFC3339),
		"last_error":           m.LastError,
		"last_outcome":         m.LastOutcome,
		"is_healthy":           m.IsHealthy,
	}
}
