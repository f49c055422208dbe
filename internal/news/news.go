package news

import (
	"fmt"
	"log"
	"math/rand"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"linkbot/internal/dedup"
	"linkbot/internal/metrics"
)

const googleNewsBase = "https://news.google.com/rss/search"

// Article is one candidate news item. Immutable once fetched, except for
// FullContent which the scraper may fill in later.
type Article struct {
	Title       string
	Description string
	Link        string
	Source      string
	Topic       string
	Published   time.Time
	FullContent string
	Fingerprint string
}

// TopicsConfig is the YAML config structure
// topics:
//   - technology
//   - artificial intelligence
type TopicsConfig struct {
	Topics []string `yaml:"topics"`
}

// Default topic rotation, used when no topics file is present.
var defaultTopics = []string{
	"technology",
	"artificial intelligence",
	"robotics",
	"programming",
	"business",
	"startups",
}

// LoadTopics reads the topic list from a YAML file, falling back to the
// built-in defaults if the file is missing.
func LoadTopics(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		log.Printf("No topics file at %s, using defaults", path)
		return defaultTopics
	}
	defer f.Close()

	var cfg TopicsConfig
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil || len(cfg.Topics) == 0 {
		log.Printf("Cannot parse topics file %s, using defaults: %v", path, err)
		return defaultTopics
	}
	return cfg.Topics
}

// Fetcher pulls candidate articles from Google News RSS search feeds.
type Fetcher struct {
	parser *gofeed.Parser
	maxAge time.Duration
}

func NewFetcher(maxAge time.Duration) *Fetcher {
	return &Fetcher{
		parser: gofeed.NewParser(),
		maxAge: maxAge,
	}
}

// searchFeedURL builds the Google News RSS search URL for a topic.
func searchFeedURL(topic string) string {
	return fmt.Sprintf("%s?q=%s&hl=en-US&gl=US&ceid=US:en", googleNewsBase, url.QueryEscape(topic))
}

// FetchTopic downloads and parses the feed for a single topic. Errors are
// logged and an empty slice returned; one broken feed must not kill the run.
func (f *Fetcher) FetchTopic(topic string, limit int) []Article {
	feedURL := searchFeedURL(topic)

	feed, err := f.parser.ParseURL(feedURL)
	if err != nil {
		log.Printf("Error parsing feed for topic %q: %v", topic, err)
		return nil
	}

	var articles []Article
	for _, item := range feed.Items {
		if len(articles) >= limit {
			break
		}

		published := time.Now()
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		}
		if f.maxAge > 0 && time.Since(published) > f.maxAge {
			continue
		}

		a := Article{
			Title:       strings.TrimSpace(item.Title),
			Description: strings.TrimSpace(item.Description),
			Link:        item.Link,
			Source:      sourceFromLink(item.Link),
			Topic:       topic,
			Published:   published,
		}
		a.Fingerprint = dedup.Fingerprint(a.Title, a.Description)
		articles = append(articles, a)
	}

	log.Printf("Loaded %d articles for topic %q", len(articles), topic)
	return articles
}

// FetchAll collects articles across all topics and shuffles them for
// variety, so consecutive runs don't always lead with the same topic.
func (f *Fetcher) FetchAll(topics []string, perTopic int) []Article {
	var all []Article
	for _, topic := range topics {
		all = append(all, f.FetchTopic(topic, perTopic)...)
	}

	rand.Shuffle(len(all), func(i, j int) {
		all[i], all[j] = all[j], all[i]
	})

	metrics.Global.AddArticlesFetched(len(all))
	log.Printf("Total articles fetched: %d", len(all))
	return all
}

// FilterFresh drops articles whose fingerprint is already in the used store.
func FilterFresh(articles []Article, store *dedup.Store) []Article {
	fresh := make([]Article, 0, len(articles))
	for _, a := range articles {
		if store.IsUsed(a.Fingerprint) {
			log.Printf("Skipping already-used article: %s", truncateForLog(a.Title))
			metrics.Global.IncrementDuplicatesFiltered()
			continue
		}
		fresh = append(fresh, a)
	}
	return fresh
}

// FilterByKeywords keeps articles whose title or description mentions any of
// the given keywords.
func FilterByKeywords(articles []Article, keywords []string) []Article {
	if len(keywords) == 0 {
		return articles
	}

	var filtered []Article
	for _, a := range articles {
		text := strings.ToLower(a.Title + " " + a.Description)
		for _, kw := range keywords {
			if strings.Contains(text, strings.ToLower(kw)) {
				filtered = append(filtered, a)
				break
			}
		}
	}
	return filtered
}

// SelectRandom picks one article at random from the candidates.
func SelectRandom(articles []Article) (Article, error) {
	if len(articles) == 0 {
		return Article{}, fmt.Errorf("no articles available")
	}
	return articles[rand.Intn(len(articles))], nil
}

// sourceFromLink extracts a readable source name from the article URL.
func sourceFromLink(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return "Google News"
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	return host
}

func truncateForLog(s string) string {
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}
