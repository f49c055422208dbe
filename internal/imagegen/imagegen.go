package imagegen

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"linkbot/internal/metrics"
	"linkbot/internal/ratelimit"
	"linkbot/internal/retry"
)

const huggingFaceURL = "https://api-inference.huggingface.co/models/stabilityai/stable-diffusion-xl-base-1.0"

// Client generates article illustrations through the HuggingFace inference
// API. All failures are soft: the pipeline continues without an image.
type Client struct {
	token      string
	imagesDir  string
	budget     *ratelimit.AIBudget
	httpClient *http.Client
}

func NewClient(token, imagesDir string, budget *ratelimit.AIBudget) *Client {
	return &Client{
		token:     token,
		imagesDir: imagesDir,
		budget:    budget,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Enabled reports whether image generation can run at all.
func (c *Client) Enabled() bool {
	return c.token != ""
}

// Generate renders the prompt and saves the image under the images
// directory. It returns the saved path, or an empty path with an error when
// generation is unavailable or failed.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.token == "" {
		return "", fmt.Errorf("no HuggingFace token configured")
	}
	if !c.budget.CanUse() {
		return "", fmt.Errorf("AI request budget exhausted")
	}
	if err := c.budget.UseHuggingFace(); err != nil {
		return "", err
	}

	// The inference API answers 503 while the model is cold; retrying with
	// backoff usually rides it out.
	var data []byte
	err := retry.WithRetry(ctx, retry.RetryConfig{MaxAttempts: 3, Delay: 2 * time.Second, Backoff: true}, func() error {
		var reqErr error
		data, reqErr = c.render(ctx, prompt)
		return reqErr
	})
	if err != nil {
		return "", err
	}

	path, err := c.save(data)
	if err != nil {
		return "", err
	}

	metrics.Global.IncrementImagesGenerated()
	log.Printf("Generated image: %s (%d bytes)", path, len(data))
	return path, nil
}

func (c *Client) render(ctx context.Context, prompt string) ([]byte, error) {
	body := fmt.Sprintf(`{"inputs": %q}`, prompt)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, huggingFaceURL, bytes.NewBufferString(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("image API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("image API returned an empty body")
	}
	return data, nil
}

func (c *Client) save(data []byte) (string, error) {
	if err := os.MkdirAll(c.imagesDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create images dir: %w", err)
	}
	name := fmt.Sprintf("generated_image_%d.jpg", time.Now().Unix())
	path := filepath.Join(c.imagesDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	return path, nil
}
