package caption

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"linkbot/internal/metrics"
	"linkbot/internal/news"
	"linkbot/internal/ratelimit"
)

const geminiModel = "gemini-1.5-flash"

// Generator produces LinkedIn-ready post text for an article. It prefers
// Gemini and degrades to a deterministic template when the API is
// unavailable, over budget, or failing.
type Generator struct {
	client *genai.Client
	budget *ratelimit.AIBudget
}

// NewGenerator builds a generator. An empty API key is allowed: the
// generator then always uses the template path.
func NewGenerator(ctx context.Context, apiKey string, budget *ratelimit.AIBudget) (*Generator, error) {
	g := &Generator{budget: budget}
	if apiKey == "" {
		log.Println("No Gemini API key, captions will use the template")
		return g, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	g.client = client
	return g, nil
}

func (g *Generator) Close() {
	if g.client != nil {
		g.client.Close()
	}
}

// Generate returns post text for the article. It never fails: any AI error
// falls through to the template.
func (g *Generator) Generate(ctx context.Context, article news.Article) string {
	if g.client != nil && g.budget.CanUse() {
		text, err := g.generateWithGemini(ctx, article)
		if err != nil {
			log.Printf("Gemini caption failed, using template: %v", err)
		} else {
			metrics.Global.IncrementCaptionsGenerated()
			return text
		}
	}

	metrics.Global.IncrementCaptionFallbacks()
	return TemplateCaption(article)
}

func (g *Generator) generateWithGemini(ctx context.Context, article news.Article) (string, error) {
	if err := g.budget.UseGemini(); err != nil {
		return "", err
	}

	model := g.client.GenerativeModel(geminiModel)

	content := article.FullContent
	if content == "" {
		content = article.Description
	}
	content = collapseWhitespace(content)

	prompt := fmt.Sprintf(`Create an engaging LinkedIn post about this news:

Title: %s
Description: %s
Topic: %s

Requirements:
- Professional and insightful tone for a business audience.
- Open with a hook, then 2-3 short takeaways.
- End with a question inviting discussion.
- Include relevant hashtags.
- Keep it under 1000 characters.
- Output only the post text, no preamble.`, article.Title, content, article.Topic)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini")
	}

	text := strings.TrimSpace(fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]))
	if text == "" {
		return "", fmt.Errorf("empty response from Gemini")
	}
	return text, nil
}

// ImagePrompt asks Gemini for an illustration prompt for the article,
// falling back to a topic-keyed template.
func (g *Generator) ImagePrompt(ctx context.Context, article news.Article) string {
	if g.client != nil && g.budget.CanUse() {
		if err := g.budget.UseGemini(); err == nil {
			model := g.client.GenerativeModel(geminiModel)
			prompt := fmt.Sprintf(`You are an image prompt engineer for professional business content.
Write a single detailed prompt (under 150 words) for an AI image generator,
illustrating this news for a LinkedIn audience. Describe scene, lighting and
style in photography terms. Output only the prompt.

Title: %s
Description: %s
Topic: %s`, article.Title, article.Description, article.Topic)

			resp, err := model.GenerateContent(ctx, genai.Text(prompt))
			if err == nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil && len(resp.Candidates[0].Content.Parts) > 0 {
				text := strings.TrimSpace(fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]))
				if text != "" {
					return text
				}
			}
			log.Printf("Gemini image prompt failed, using fallback: %v", err)
		}
	}
	return fallbackImagePrompt(article)
}

func fallbackImagePrompt(article news.Article) string {
	topicScenes := map[string]string{
		"technology":              "modern technology innovation center, curved displays with live data, glass and chrome surfaces",
		"artificial intelligence": "futuristic AI research lab, holographic neural network visualization, ambient blue lighting",
		"robotics":                "precision robotic arms on a clean assembly line, dramatic industrial lighting",
		"programming":             "developer workspace with multiple monitors of syntax-highlighted code, soft ambient light",
		"business":                "corporate boardroom at golden hour, skyline view, growth charts on a large display",
		"startups":                "open startup office, whiteboards with sketches, natural light, collaborative energy",
	}

	scene, ok := topicScenes[strings.ToLower(article.Topic)]
	if !ok {
		scene = fmt.Sprintf("professional modern %s business environment, clean minimalist design", article.Topic)
	}
	return scene + ", photorealistic commercial photography, high resolution, professional lighting, blue and white palette"
}

// TemplateCaption builds a post without any AI: title, bullet insights
// derived from the description, hashtags, and a read-more link.
func TemplateCaption(article news.Article) string {
	var b strings.Builder

	b.WriteString("🚀 " + article.Title + "\n\n")

	bullets := bulletsFromDescription(article.Description)
	if len(bullets) < 2 {
		bullets = fallbackBullets(article.Topic)
	}
	b.WriteString("💡 Key insights:\n")
	for _, bullet := range bullets {
		b.WriteString("• " + bullet + "\n")
	}
	b.WriteString("\n")

	b.WriteString("What are your thoughts on this development? Share your perspective below! 👇\n\n")

	if article.Link != "" {
		b.WriteString("Read more: " + article.Link + "\n\n")
	}

	b.WriteString(hashtags(article.Topic))
	return b.String()
}

// bulletsFromDescription turns the first sentences of the description into
// short bullet points.
func bulletsFromDescription(description string) []string {
	description = collapseWhitespace(description)
	if description == "" {
		return nil
	}

	sentences := strings.Split(description, ". ")
	var bullets []string
	for _, s := range sentences {
		s = strings.TrimSpace(strings.TrimSuffix(s, "."))
		if len(s) < 10 {
			continue
		}
		if utf8.RuneCountInString(s) > 80 {
			runes := []rune(s)
			s = string(runes[:80]) + "..."
		}
		bullets = append(bullets, s)
		if len(bullets) == 3 {
			break
		}
	}
	return bullets
}

func fallbackBullets(topic string) []string {
	topicInsights := map[string][]string{
		"technology":              {"Latest technological breakthrough", "Impact on digital transformation", "Future industry implications"},
		"artificial intelligence": {"AI advancement with real-world applications", "Machine learning innovation", "Potential business transformation"},
		"robotics":                {"Automation technology progress", "Manufacturing and industry impact", "Future of human-robot collaboration"},
		"programming":             {"Software development innovation", "Developer productivity enhancement", "Programming language evolution"},
		"business":                {"Market dynamics and trends", "Strategic business implications", "Economic impact analysis"},
		"startups":                {"Entrepreneurial innovation", "Investment and funding trends", "Startup ecosystem growth"},
	}

	if insights, ok := topicInsights[strings.ToLower(topic)]; ok {
		return insights
	}
	return []string{"Industry development", "Market innovation", "Technology advancement"}
}

func hashtags(topic string) string {
	tags := []string{"#TechNews", "#Innovation", "#Business"}
	switch strings.ToLower(topic) {
	case "artificial intelligence", "ai":
		tags = append(tags, "#ArtificialIntelligence", "#AI")
	case "robotics":
		tags = append(tags, "#Robotics", "#Automation")
	case "programming":
		tags = append(tags, "#Programming", "#SoftwareDevelopment")
	case "startups":
		tags = append(tags, "#Startups", "#Entrepreneurship")
	default:
		tags = append(tags, "#Technology")
	}
	return strings.Join(tags, " ")
}

// Truncate bounds text to limit runes. It prefers cutting at the last full
// sentence and appends an ellipsis otherwise. Truncation happens once,
// before dispatch, never between posting attempts.
func Truncate(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}

	runes := []rune(text)
	cut := string(runes[:limit])

	if idx := strings.LastIndex(cut, ". "); idx > limit/2 {
		return cut[:idx+1]
	}
	if limit > 3 {
		return string(runes[:limit-3]) + "..."
	}
	return string(runes[:limit])
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
