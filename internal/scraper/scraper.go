package scraper

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	requestTimeout = 10 * time.Second
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
	maxContentLen  = 2000
)

// ExtractArticleText fetches a news page and pulls out the readable body
// text. Best-effort: callers fall back to the feed description on error.
func ExtractArticleText(url string) (string, error) {
	client := &http.Client{Timeout: requestTimeout}

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("error building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error loading page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error parsing HTML: %w", err)
	}

	content := extractParagraphs(doc)
	if content == "" {
		return "", fmt.Errorf("no readable content found")
	}

	return limitContent(content), nil
}

// extractParagraphs tries the usual article containers in order of
// specificity and stops as soon as a selector yields enough text.
func extractParagraphs(doc *goquery.Document) string {
	selectors := []string{
		"article p",
		".article-body p",
		".post-content p",
		".entry-content p",
		"main p",
		"#content p",
		"p",
	}

	var best []string
	for _, selector := range selectors {
		var paragraphs []string
		doc.Find(selector).Each(func(i int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if len(text) > 20 && !isJunkLine(text) {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) >= 3 {
			return strings.Join(paragraphs, "\n\n")
		}
		if len(paragraphs) > len(best) {
			best = paragraphs
		}
	}

	return strings.Join(best, "\n\n")
}

func isJunkLine(line string) bool {
	lower := strings.ToLower(line)
	junkIndicators := []string{
		"cookie", "subscribe", "newsletter", "sign up", "log in",
		"advertisement", "read more", "click here", "follow us",
		"share this", "privacy policy",
	}
	for _, indicator := range junkIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

// limitContent caps the extracted text, keeping whole paragraphs.
func limitContent(content string) string {
	if len(content) <= maxContentLen {
		return content
	}

	paragraphs := strings.Split(content, "\n\n")
	var kept []string
	total := 0
	for _, p := range paragraphs {
		if total+len(p) > maxContentLen {
			break
		}
		kept = append(kept, p)
		total += len(p) + 2
	}
	if len(kept) == 0 {
		return content[:maxContentLen]
	}
	return strings.Join(kept, "\n\n")
}
