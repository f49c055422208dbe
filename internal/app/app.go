package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"linkbot/internal/caption"
	"linkbot/internal/config"
	"linkbot/internal/dedup"
	"linkbot/internal/fallback"
	"linkbot/internal/imagegen"
	"linkbot/internal/linkedin"
	"linkbot/internal/metrics"
	"linkbot/internal/news"
	"linkbot/internal/ratelimit"
	"linkbot/internal/scraper"
	"linkbot/internal/telegram"
)

// Outcome is the single final verdict of a run. Posted and Saved map to
// exit code 0; Failed maps to exit code 1.
type Outcome string

const (
	OutcomePosted Outcome = "posted"
	OutcomeSaved  Outcome = "saved"
	OutcomeFailed Outcome = "failed"
)

// Run executes one full pipeline pass in the given mode and returns the
// outcome. Modes: "post" publishes, "generate" prints the post to the
// console, "prepare" writes it straight to the manual queue, "selftest"
// probes API access without posting.
func Run(cfg *config.Config, mode string) Outcome {
	start := time.Now()
	outcome := OutcomeFailed
	defer func() {
		metrics.Global.RecordRun(string(outcome), time.Since(start))
	}()

	ctx := context.Background()

	if mode == "selftest" {
		outcome = runSelfTest(ctx, cfg)
		return outcome
	}

	if mode == "post" {
		if err := cfg.Validate(); err != nil {
			log.Printf("Config error: %v", err)
			metrics.Global.SetError(err.Error())
			return outcome
		}
	}

	store := dedup.NewStore(cfg.UsedArticlesPath, cfg.RetentionWindow)
	store.Load()

	article, ok := pickArticle(cfg, store)
	if !ok {
		metrics.Global.SetError("no fresh articles found")
		return outcome
	}
	log.Printf("Selected article [%s]: %s", article.Topic, article.Title)

	// Full text improves the caption but is never required.
	if text, err := scraper.ExtractArticleText(article.Link); err != nil {
		log.Printf("Could not extract article text: %v", err)
	} else {
		article.FullContent = text
	}

	budget := ratelimit.NewAIBudget(cfg.MaxAIRequests)
	generator, err := caption.NewGenerator(ctx, cfg.GeminiAPIKey, budget)
	if err != nil {
		log.Printf("Caption generator init failed, using template: %v", err)
		generator, _ = caption.NewGenerator(ctx, "", budget)
	}
	defer generator.Close()

	text := caption.Truncate(generator.Generate(ctx, article), cfg.MaxCaptionLength)

	imagePath := ""
	images := imagegen.NewClient(cfg.HuggingFaceToken, cfg.ImagesDir, budget)
	if images.Enabled() && mode != "generate" {
		prompt := generator.ImagePrompt(ctx, article)
		path, err := images.Generate(ctx, prompt)
		if err != nil {
			log.Printf("Image generation skipped: %v", err)
		} else {
			imagePath = path
		}
	}

	switch mode {
	case "generate":
		fmt.Println("=== GENERATED LINKEDIN POST ===")
		fmt.Println(text)
		fmt.Println("=== END ===")
		markUsed(store, article)
		outcome = OutcomePosted
	case "prepare":
		outcome = saveForManual(cfg, store, article, text, imagePath)
	case "post":
		outcome = deliver(ctx, cfg, store, article, text, imagePath)
	default:
		log.Printf("Unknown mode: %s", mode)
		metrics.Global.SetError("unknown mode " + mode)
	}

	return outcome
}

// pickArticle fetches across all topics and filters already used ones.
// When everything is a duplicate the store is reset once and the fetch
// repeated, so a long-running deployment cannot starve itself.
func pickArticle(cfg *config.Config, store *dedup.Store) (news.Article, bool) {
	topics := news.LoadTopics(cfg.TopicsConfigPath)
	fetcher := news.NewFetcher(cfg.NewsMaxAge)

	articles := fetcher.FetchAll(topics, cfg.ArticlesPerTopic)
	if len(articles) == 0 {
		log.Printf("No articles fetched from any topic")
		return news.Article{}, false
	}

	fresh := news.FilterFresh(articles, store)
	if len(fresh) == 0 {
		log.Printf("All %d articles already used, resetting history", len(articles))
		store.Reset()
		articles = fetcher.FetchAll(topics, cfg.ArticlesPerTopic)
		fresh = news.FilterFresh(articles, store)
	}

	article, err := news.SelectRandom(fresh)
	if err != nil {
		log.Printf("No articles to choose from: %v", err)
		return news.Article{}, false
	}
	return article, true
}

func deliver(ctx context.Context, cfg *config.Config, store *dedup.Store, article news.Article, text, imagePath string) Outcome {
	switch cfg.DeliveryMode {
	case "telegram":
		relay := text
		if article.Link != "" {
			relay += "\n\n" + article.Link
		}
		var err error
		if imagePath != "" {
			err = telegram.SendPhotoFile(cfg.TelegramToken, cfg.TelegramChatID, imagePath, text)
		} else {
			err = telegram.SendMessage(cfg.TelegramToken, cfg.TelegramChatID, relay)
		}
		if err != nil {
			log.Printf("Telegram delivery failed: %v", err)
			metrics.Global.SetError(err.Error())
			return saveForManual(cfg, store, article, text, imagePath)
		}
		markUsed(store, article)
		return OutcomePosted

	default:
		client := linkedin.NewClient(cfg.LinkedInAccessToken, cfg.RequestTimeout, cfg.ProfileTimeout)
		browser := linkedin.NewBrowserStrategy(cfg.BrowserFallback, cfg.BrowserLoginWait)
		chain := linkedin.NewChain(client, browser)

		state, results := chain.Run(ctx, linkedin.PostContent{Text: text, ImagePath: imagePath})
		if state == linkedin.Succeeded {
			markUsed(store, article)
			return OutcomePosted
		}

		log.Printf("All %d posting strategies failed, saving for manual posting", len(results))
		for _, r := range results {
			log.Printf("  %s: status=%d %s", r.Strategy, r.HTTPStatus, r.ErrorDetail)
		}
		return saveForManual(cfg, store, article, text, imagePath)
	}
}

// saveForManual writes the post to the manual queue. A write failure is a
// hard failure, but the content is dumped to the console first so it is
// never lost.
func saveForManual(cfg *config.Config, store *dedup.Store, article news.Article, text, imagePath string) Outcome {
	fbStore := fallback.NewStore(cfg.FallbackDir)
	path, err := fbStore.Save(text, imagePath, article.Link, time.Now())
	if err != nil {
		log.Printf("Failed to save fallback file: %v", err)
		metrics.Global.SetError(err.Error())
		fmt.Println("=== POST CONTENT (could not be saved) ===")
		fmt.Println(text)
		fmt.Println("=== END ===")
		return OutcomeFailed
	}

	log.Printf("Post saved for manual publishing: %s", path)
	markUsed(store, article)
	return OutcomeSaved
}

// markUsed records the article and persists the store. The article counts
// as consumed once its content reached any destination, including the
// manual queue.
func markUsed(store *dedup.Store, article news.Article) {
	store.MarkUsed(article.Fingerprint, time.Now())
	store.Save()
}

func runSelfTest(ctx context.Context, cfg *config.Config) Outcome {
	if cfg.LinkedInAccessToken == "" {
		log.Printf("LINKEDIN_ACCESS_TOKEN is not set")
		return OutcomeFailed
	}
	client := linkedin.NewClient(cfg.LinkedInAccessToken, cfg.RequestTimeout, cfg.ProfileTimeout)
	if err := client.SelfTest(ctx); err != nil {
		log.Printf("Self test failed: %v", err)
		return OutcomeFailed
	}
	return OutcomePosted
}
