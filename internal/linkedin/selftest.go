package linkedin

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
)

// SelfTest probes the API with the configured token and reports which
// endpoints answer. It posts nothing. Useful when the chain keeps landing
// in the fallback store and the token scopes are in question.
func (c *Client) SelfTest(ctx context.Context) error {
	endpoints := []string{
		c.baseURL + "/me",
		c.baseURL + "/people/~",
		c.baseURL + "/people/~:(id,firstName,lastName)",
	}

	readable := 0
	for _, endpoint := range endpoints {
		status, detail, err := c.get(ctx, endpoint)
		switch {
		case err != nil:
			log.Printf("SELFTEST %s: %v", endpoint, err)
		case status == http.StatusOK:
			log.Printf("SELFTEST %s: OK", endpoint)
			readable++
		case status == http.StatusUnauthorized || status == http.StatusForbidden:
			log.Printf("SELFTEST %s: %d (token lacks profile scope): %s", endpoint, status, detail)
		default:
			log.Printf("SELFTEST %s: %d: %s", endpoint, status, detail)
		}
	}

	if readable == 0 {
		log.Printf("SELFTEST: no profile endpoint readable, posting will rely on placeholder URNs")
		return fmt.Errorf("token cannot read any profile endpoint")
	}
	log.Printf("SELFTEST: %d/%d profile endpoints readable", readable, len(endpoints))
	return nil
}

func (c *Client) get(ctx context.Context, endpoint string) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, "", fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return resp.StatusCode, "", nil
	}
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return resp.StatusCode, strings.TrimSpace(string(detail)), nil
}
