package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

const apiBase = "https://api.linkedin.com/v2"

// Placeholder URNs accepted by some API tiers when the profile endpoints
// are not readable with the granted scopes.
const (
	placeholderPersonURN = "urn:li:person:~"
	placeholderMemberURN = "urn:li:member:~"
)

// Client is a thin wrapper over the LinkedIn REST API. It caches the
// resolved author URN for the lifetime of the process.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client

	profileTimeout time.Duration
	authorURN      string
}

func NewClient(token string, requestTimeout, profileTimeout time.Duration) *Client {
	return &Client{
		token:   token,
		baseURL: apiBase,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		profileTimeout: profileTimeout,
	}
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")
}

// AuthorURN resolves the author identity for UGC posts. Profile endpoints
// are tried in order; when none is readable the placeholder person URN is
// returned so posting can still be attempted.
func (c *Client) AuthorURN(ctx context.Context) string {
	if c.authorURN != "" {
		return c.authorURN
	}

	endpoints := []string{
		c.baseURL + "/people/~",
		c.baseURL + "/people/~:(id,firstName,lastName)",
		c.baseURL + "/me",
	}

	for _, endpoint := range endpoints {
		id, err := c.fetchProfileID(ctx, endpoint)
		if err != nil {
			log.Printf("Profile lookup %s failed: %v", endpoint, err)
			continue
		}
		c.authorURN = "urn:li:person:" + id
		log.Printf("Resolved author URN: %s", c.authorURN)
		return c.authorURN
	}

	log.Printf("All profile endpoints failed, using placeholder URN")
	c.authorURN = placeholderPersonURN
	return c.authorURN
}

func (c *Client) fetchProfileID(ctx context.Context, endpoint string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.profileTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	var profile struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return "", fmt.Errorf("failed to decode profile: %w", err)
	}
	if profile.ID == "" {
		return "", fmt.Errorf("profile response has no id")
	}
	return profile.ID, nil
}

// post sends a JSON payload and returns the HTTP status plus a short error
// detail extracted from the response body on failure.
func (c *Client) post(ctx context.Context, endpoint string, payload interface{}) (int, string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, "", fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		return resp.StatusCode, "", nil
	}

	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return resp.StatusCode, strings.TrimSpace(string(detail)), nil
}

// UploadImage registers an upload slot and PUTs the image bytes, returning
// the asset URN for use in a UGC post.
func (c *Client) UploadImage(ctx context.Context, authorURN, imagePath string) (string, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}

	registerPayload := map[string]interface{}{
		"registerUploadRequest": map[string]interface{}{
			"recipes": []string{"urn:li:digitalmediaRecipe:feedshare-image"},
			"owner":   authorURN,
			"serviceRelationships": []map[string]interface{}{
				{
					"relationshipType": "OWNER",
					"identifier":       "urn:li:userGeneratedContent",
				},
			},
		},
	}

	body, err := json.Marshal(registerPayload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal register payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/assets?action=registerUpload", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create register request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("register upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("register upload returned %d", resp.StatusCode)
	}

	var registered struct {
		Value struct {
			Asset          string `json:"asset"`
			UploadMechanism map[string]struct {
				UploadURL string `json:"uploadUrl"`
			} `json:"uploadMechanism"`
		} `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&registered); err != nil {
		return "", fmt.Errorf("failed to decode register response: %w", err)
	}

	var uploadURL string
	for _, mech := range registered.Value.UploadMechanism {
		if mech.UploadURL != "" {
			uploadURL = mech.UploadURL
			break
		}
	}
	if uploadURL == "" || registered.Value.Asset == "" {
		return "", fmt.Errorf("register response missing upload URL or asset")
	}

	putReq, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	putReq.Header.Set("Authorization", "Bearer "+c.token)

	putResp, err := c.httpClient.Do(putReq)
	if err != nil {
		return "", fmt.Errorf("image upload failed: %w", err)
	}
	defer putResp.Body.Close()

	if putResp.StatusCode != http.StatusOK && putResp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("image upload returned %d", putResp.StatusCode)
	}

	log.Printf("Uploaded image %s as %s", imagePath, registered.Value.Asset)
	return registered.Value.Asset, nil
}
