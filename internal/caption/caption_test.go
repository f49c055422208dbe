package caption

import (
	"strings"
	"testing"
	"unicode/utf8"

	"linkbot/internal/news"
)

func TestTruncate_ShortTextUntouched(t *testing.T) {
	in := "short post"
	if got := Truncate(in, 1300); got != in {
		t.Errorf("short text was modified: %q", got)
	}
}

func TestTruncate_LongTextBounded(t *testing.T) {
	in := strings.Repeat("word ", 400) // ~2000 chars, no sentence boundary
	got := Truncate(in, 1300)
	if n := utf8.RuneCountInString(got); n > 1300 {
		t.Errorf("truncated length = %d, want <= 1300", n)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("mid-text cut should end with an ellipsis: %q", got[len(got)-20:])
	}
}

func TestTruncate_PrefersSentenceBoundary(t *testing.T) {
	sentence := "This is a complete sentence about business news. "
	in := strings.Repeat(sentence, 40)
	got := Truncate(in, 1300)
	if n := utf8.RuneCountInString(got); n > 1300 {
		t.Errorf("truncated length = %d, want <= 1300", n)
	}
	if !strings.HasSuffix(got, ".") {
		t.Errorf("expected cut at sentence boundary, got suffix %q", got[len(got)-10:])
	}
}

func TestTruncate_MultibyteSafe(t *testing.T) {
	in := strings.Repeat("🚀", 2000)
	got := Truncate(in, 100)
	if !utf8.ValidString(got) {
		t.Errorf("truncation split a rune")
	}
	if n := utf8.RuneCountInString(got); n > 100 {
		t.Errorf("rune count = %d, want <= 100", n)
	}
}

func TestTemplateCaption_ContainsCoreParts(t *testing.T) {
	article := news.Article{
		Title:       "Robots Learn to Fold Laundry",
		Description: "A research team demonstrated a robot that folds laundry reliably. The system uses vision models. Deployment is planned for next year.",
		Link:        "https://example.com/robots",
		Topic:       "robotics",
	}

	got := TemplateCaption(article)

	if !strings.Contains(got, article.Title) {
		t.Errorf("caption missing the title")
	}
	if !strings.Contains(got, article.Link) {
		t.Errorf("caption missing the read-more link")
	}
	if !strings.Contains(got, "#Robotics") {
		t.Errorf("caption missing topic hashtag:\n%s", got)
	}
	if !strings.Contains(got, "•") {
		t.Errorf("caption has no bullet insights:\n%s", got)
	}
}

func TestTemplateCaption_FallsBackToTopicBullets(t *testing.T) {
	article := news.Article{
		Title: "Short",
		Topic: "artificial intelligence",
	}
	got := TemplateCaption(article)
	if !strings.Contains(got, "AI advancement") {
		t.Errorf("empty description should use topic insights:\n%s", got)
	}
}

func TestBulletsFromDescription_CapsAtThree(t *testing.T) {
	desc := "First sentence with content. Second sentence with content. Third sentence with content. Fourth sentence with content."
	bullets := bulletsFromDescription(desc)
	if len(bullets) != 3 {
		t.Errorf("got %d bullets, want 3", len(bullets))
	}
}

func TestBulletsFromDescription_SkipsTinyFragments(t *testing.T) {
	bullets := bulletsFromDescription("Ok. No. A real sentence with enough words in it.")
	for _, b := range bullets {
		if len(b) < 10 {
			t.Errorf("kept a tiny fragment: %q", b)
		}
	}
}

func TestFallbackImagePrompt_KnownAndUnknownTopics(t *testing.T) {
	known := fallbackImagePrompt(news.Article{Topic: "technology"})
	if !strings.Contains(known, "technology innovation center") {
		t.Errorf("known topic did not use its scene: %q", known)
	}

	unknown := fallbackImagePrompt(news.Article{Topic: "agriculture"})
	if !strings.Contains(unknown, "agriculture") {
		t.Errorf("unknown topic not woven into generic scene: %q", unknown)
	}
	if !strings.Contains(unknown, "photorealistic") {
		t.Errorf("style suffix missing: %q", unknown)
	}
}

func TestHashtags_TopicSpecific(t *testing.T) {
	got := hashtags("programming")
	if !strings.Contains(got, "#Programming") {
		t.Errorf("hashtags = %q", got)
	}
	generic := hashtags("weather")
	if !strings.Contains(generic, "#Technology") {
		t.Errorf("generic hashtags = %q", generic)
	}
}
